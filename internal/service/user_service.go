package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"itongue/internal/auth"
	"itongue/internal/cache"
	apperrors "itongue/internal/errors"
	"itongue/internal/model"
	"itongue/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ProfileUpdate carries the editable profile fields. Empty fields are left
// unchanged.
type ProfileUpdate struct {
	Firstname string
	Lastname  string
	Bio       string
	Password  string
}

// UserService exposes user profile operations.
type UserService interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetBySlug(ctx context.Context, slug string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*model.User, error)
	// UpdateSlug sets a user-chosen slug. On a conflict the returned string
	// carries an available alternative alongside ErrSlugTaken.
	UpdateSlug(ctx context.Context, id uint, requested string) (string, error)
	// Delete removes the user, its language associations and its session.
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	users      repository.UserRepository
	slugs      *SlugResolver
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
}

// NewUserService builds a UserService.
func NewUserService(users repository.UserRepository, slugs *SlugResolver, tokenStore auth.TokenStoreInterface, cacheClient *cache.Client) UserService {
	return &userService{
		users:      users,
		slugs:      slugs,
		tokenStore: tokenStore,
		cache:      cacheClient,
	}
}

// GetByID retrieves a user with read-through caching. Cache errors degrade to
// misses.
func (s *userService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, cache.UserKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, cache.UserKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) GetBySlug(ctx context.Context, slug string) (*model.User, error) {
	if !SlugPattern.MatchString(slug) {
		return nil, apperrors.ErrInvalidSlug
	}
	user, err := s.users.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// UpdateProfile applies the given edits and invalidates the cached profile.
// The caller reissues tokens afterwards since the snapshot may have changed.
func (s *userService) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if update.Firstname != "" {
		user.Firstname = update.Firstname
	}
	if update.Lastname != "" {
		user.Lastname = update.Lastname
	}
	if update.Bio != "" {
		user.Bio = update.Bio
	}
	if update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	_ = s.cache.InvalidateUser(ctx, id)
	return user, nil
}

// UpdateSlug sets a user-chosen slug after format validation. When the slug is
// taken by another user, the next available variant is returned together with
// ErrSlugTaken so the client can suggest it.
func (s *userService) UpdateSlug(ctx context.Context, id uint, requested string) (string, error) {
	if !SlugPattern.MatchString(requested) {
		return "", apperrors.ErrInvalidSlug
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", err
	}
	if user.Slug == requested {
		return requested, nil
	}

	err = s.users.SetSlug(ctx, id, requested)
	if err == nil {
		_ = s.cache.InvalidateUser(ctx, id)
		return requested, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", fmt.Errorf("update slug: %w", err)
	}

	available, suggestErr := s.slugs.NextAvailable(ctx, requested)
	if suggestErr != nil {
		return "", apperrors.ErrSlugTaken
	}
	return available, apperrors.ErrSlugTaken
}

// Delete hard-deletes the user, cascading language associations, and revokes
// the stored refresh token.
func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSessionPersistence, err)
	}
	_ = s.cache.InvalidateUser(ctx, id)
	return nil
}
