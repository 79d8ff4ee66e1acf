package repository

import (
	"context"

	"gorm.io/gorm"

	"itongue/internal/model"
)

// LanguageRepository defines persistence operations on the language catalog.
type LanguageRepository interface {
	Create(ctx context.Context, language *model.Language) error
	FindByID(ctx context.Context, id uint) (*model.Language, error)
	List(ctx context.Context) ([]model.Language, error)
}

type languageRepository struct {
	db *gorm.DB
}

// NewLanguageRepository builds a GORM-backed repository.
func NewLanguageRepository(db *gorm.DB) LanguageRepository {
	return &languageRepository{db: db}
}

func (r *languageRepository) Create(ctx context.Context, language *model.Language) error {
	return r.db.WithContext(ctx).Create(language).Error
}

func (r *languageRepository) FindByID(ctx context.Context, id uint) (*model.Language, error) {
	var language model.Language
	if err := r.db.WithContext(ctx).First(&language, id).Error; err != nil {
		return nil, err
	}
	return &language, nil
}

func (r *languageRepository) List(ctx context.Context) ([]model.Language, error) {
	var languages []model.Language
	if err := r.db.WithContext(ctx).Order("name").Find(&languages).Error; err != nil {
		return nil, err
	}
	return languages, nil
}
