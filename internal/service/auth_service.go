package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"itongue/internal/auth"
	apperrors "itongue/internal/errors"
	"itongue/internal/model"
	"itongue/internal/repository"
)

const bcryptCost = 10

// maxSlugAttempts bounds the optimistic retry loop when concurrent
// registrations race on the same slug candidate.
const maxSlugAttempts = 3

// AuthService handles registration and session issuance.
type AuthService interface {
	Register(ctx context.Context, email, password, firstname, lastname string) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	// IssueTokens mints a token pair for the user and durably stores the
	// refresh token, replacing any prior session.
	IssueTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, err error)
}

type authService struct {
	users      repository.UserRepository
	slugs      *SlugResolver
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, slugs *SlugResolver, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		users:      users,
		slugs:      slugs,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with a hashed password and a resolved slug. The
// slug and the row are persisted together; on a duplicate-key race the whole
// resolution is retried so the loser moves to the next suffix.
func (s *authService) Register(ctx context.Context, email, password, firstname, lastname string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.slugs.Resolve(ctx, firstname, lastname)
		if err != nil {
			return nil, err
		}

		user := &model.User{
			Email:        email,
			PasswordHash: string(hashedPassword),
			Firstname:    firstname,
			Lastname:     lastname,
			Slug:         slug,
		}

		err = s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create user: %w", err)
		}

		// The duplicate key may be the email as well as the slug.
		if taken, lookupErr := s.users.FindByEmail(ctx, email); lookupErr == nil && taken != nil {
			return nil, apperrors.ErrEmailTaken
		}
		// Slug collision: a concurrent registration won the candidate.
		// Re-resolving now sees the winner's row and yields the next suffix.
	}

	return nil, apperrors.ErrIdentityConflict
}

// Login authenticates a user and returns a token pair. No detail is leaked
// about which part of the credential check failed.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil, apperrors.ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err = s.IssueTokens(ctx, user)
	if err != nil {
		return "", "", nil, err
	}
	return accessToken, refreshToken, user, nil
}

// IssueTokens builds both tokens from the user snapshot and persists the
// refresh token keyed by user id, overwriting any prior one. The store write
// is the last step: a client never observes a token pair whose refresh token
// was not durably persisted.
func (s *authService) IssueTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, err error) {
	snapshot := auth.UserSnapshot{
		ID:        user.ID,
		Email:     user.Email,
		Slug:      user.Slug,
		AvatarURL: user.AvatarURL,
		IsAdmin:   user.IsAdmin,
	}

	accessToken, err = s.jwtService.GenerateAccessToken(snapshot)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err = s.jwtService.GenerateRefreshToken(snapshot)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return "", "", fmt.Errorf("%w: %w", apperrors.ErrSessionPersistence, err)
	}

	return accessToken, refreshToken, nil
}

// Refresh validates a refresh token against the stored copy for its user and
// mints a new access token. Only the exact token last stored is accepted,
// which is what makes revocation by overwrite immediate.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (accessToken string, err error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	stored, err := s.tokenStore.GetRefreshToken(ctx, claims.UserSnapshot.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrSessionPersistence, err)
	}
	if stored == "" || stored != refreshToken {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err = s.jwtService.GenerateAccessToken(claims.UserSnapshot)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the user's refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.UserSnapshot.ID); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSessionPersistence, err)
	}
	return nil
}
