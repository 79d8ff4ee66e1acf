package repository

import (
	"context"

	"gorm.io/gorm"

	"itongue/internal/model"
)

// UserLanguageRepository defines persistence operations on user/language
// associations.
type UserLanguageRepository interface {
	Create(ctx context.Context, assoc *model.UserLanguage) error
	Find(ctx context.Context, userID, languageID uint, role string) (*model.UserLanguage, error)
	ListByUser(ctx context.Context, userID uint) ([]model.UserLanguage, error)
	// Delete removes the association for the triple. Deleting a missing
	// association is not an error.
	Delete(ctx context.Context, userID, languageID uint, role string) error
}

type userLanguageRepository struct {
	db *gorm.DB
}

// NewUserLanguageRepository builds a GORM-backed repository.
func NewUserLanguageRepository(db *gorm.DB) UserLanguageRepository {
	return &userLanguageRepository{db: db}
}

func (r *userLanguageRepository) Create(ctx context.Context, assoc *model.UserLanguage) error {
	return r.db.WithContext(ctx).Create(assoc).Error
}

func (r *userLanguageRepository) Find(ctx context.Context, userID, languageID uint, role string) (*model.UserLanguage, error) {
	var assoc model.UserLanguage
	err := r.db.WithContext(ctx).
		Preload("Language").
		Where("user_id = ? AND language_id = ? AND role = ?", userID, languageID, role).
		First(&assoc).Error
	if err != nil {
		return nil, err
	}
	return &assoc, nil
}

func (r *userLanguageRepository) ListByUser(ctx context.Context, userID uint) ([]model.UserLanguage, error) {
	var assocs []model.UserLanguage
	err := r.db.WithContext(ctx).
		Preload("Language").
		Where("user_id = ?", userID).
		Find(&assocs).Error
	if err != nil {
		return nil, err
	}
	return assocs, nil
}

func (r *userLanguageRepository) Delete(ctx context.Context, userID, languageID uint, role string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND language_id = ? AND role = ?", userID, languageID, role).
		Delete(&model.UserLanguage{}).Error
}
