package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"itongue/internal/cache"
	apperrors "itongue/internal/errors"
	"itongue/internal/model"
	"itongue/internal/repository"
)

// LanguageService mediates language catalog reads and user/language
// association changes.
type LanguageService interface {
	ListLanguages(ctx context.Context) ([]model.Language, error)
	// AddUserLanguage creates the (user, language, role) association. When the
	// triple already exists, the existing association is returned together
	// with ErrLanguageRoleExists so the caller can display it idempotently.
	AddUserLanguage(ctx context.Context, userID, languageID uint, role string) (*model.UserLanguage, error)
	// RemoveUserLanguage is idempotent: removing a missing association is not
	// an error.
	RemoveUserLanguage(ctx context.Context, userID, languageID uint, role string) error
}

type languageService struct {
	users     repository.UserRepository
	languages repository.LanguageRepository
	assocs    repository.UserLanguageRepository
	profiles  cache.ProfileInvalidator
}

// NewLanguageService builds a LanguageService. Association changes invalidate
// the user's cached profile through profiles.
func NewLanguageService(users repository.UserRepository, languages repository.LanguageRepository, assocs repository.UserLanguageRepository, profiles cache.ProfileInvalidator) LanguageService {
	return &languageService{
		users:     users,
		languages: languages,
		assocs:    assocs,
		profiles:  profiles,
	}
}

func (s *languageService) ListLanguages(ctx context.Context) ([]model.Language, error) {
	return s.languages.List(ctx)
}

func (s *languageService) AddUserLanguage(ctx context.Context, userID, languageID uint, role string) (*model.UserLanguage, error) {
	if !model.ValidRole(role) {
		return nil, apperrors.ErrInvalidRole
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	language, err := s.languages.FindByID(ctx, languageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLanguageNotFound
		}
		return nil, err
	}

	// Advisory pre-check for a friendly conflict payload; the composite
	// unique index still rejects concurrent duplicates below.
	existing, err := s.assocs.Find(ctx, userID, languageID, role)
	if err == nil {
		return existing, apperrors.ErrLanguageRoleExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check language association: %w", err)
	}

	assoc := &model.UserLanguage{
		UserID:     userID,
		LanguageID: languageID,
		Role:       role,
	}
	if err := s.assocs.Create(ctx, assoc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, findErr := s.assocs.Find(ctx, userID, languageID, role); findErr == nil {
				return existing, apperrors.ErrLanguageRoleExists
			}
			return nil, apperrors.ErrLanguageRoleExists
		}
		return nil, fmt.Errorf("create language association: %w", err)
	}
	_ = s.profiles.InvalidateUser(ctx, userID)

	assoc.Language = language
	return assoc, nil
}

func (s *languageService) RemoveUserLanguage(ctx context.Context, userID, languageID uint, role string) error {
	if !model.ValidRole(role) {
		return apperrors.ErrInvalidRole
	}
	if err := s.assocs.Delete(ctx, userID, languageID, role); err != nil {
		return err
	}
	_ = s.profiles.InvalidateUser(ctx, userID)
	return nil
}
