package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "itongue/internal/errors"
	"itongue/internal/model"
)

func TestUserService_UpdateSlug(t *testing.T) {
	user := &model.User{ID: 1, Slug: "jane-doe"}

	t.Run("sets a free slug", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
		mockRepo.On("SetSlug", mock.Anything, uint(1), "janey").Return(nil)

		service := NewUserService(mockRepo, NewSlugResolver(mockRepo), new(MockTokenStore), nil)
		slug, err := service.UpdateSlug(context.Background(), 1, "janey")

		assert.NoError(t, err)
		assert.Equal(t, "janey", slug)
	})

	t.Run("conflict suggests an available variant", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
		mockRepo.On("SetSlug", mock.Anything, uint(1), "janey").Return(gorm.ErrDuplicatedKey)
		mockRepo.On("FindSlugsByPrefix", mock.Anything, "janey").Return([]string{"janey", "janey3"}, nil)

		service := NewUserService(mockRepo, NewSlugResolver(mockRepo), new(MockTokenStore), nil)
		slug, err := service.UpdateSlug(context.Background(), 1, "janey")

		assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
		assert.Equal(t, "janey4", slug)
	})

	t.Run("rejects a malformed slug", func(t *testing.T) {
		service := NewUserService(new(MockUserRepository), nil, new(MockTokenStore), nil)
		_, err := service.UpdateSlug(context.Background(), 1, "Jane--Doe!")
		assert.ErrorIs(t, err, apperrors.ErrInvalidSlug)
	})

	t.Run("resubmitting the current slug is a no-op", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(user, nil)

		service := NewUserService(mockRepo, NewSlugResolver(mockRepo), new(MockTokenStore), nil)
		slug, err := service.UpdateSlug(context.Background(), 1, "jane-doe")

		assert.NoError(t, err)
		assert.Equal(t, "jane-doe", slug)
		mockRepo.AssertNotCalled(t, "SetSlug", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("cascades associations and revokes the session", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokenStore := new(MockTokenStore)
		mockRepo.On("FindByID", mock.Anything, uint(4)).Return(&model.User{ID: 4}, nil)
		mockRepo.On("Delete", mock.Anything, uint(4)).Return(nil)
		mockTokenStore.On("DeleteRefreshToken", mock.Anything, uint(4)).Return(nil)

		service := NewUserService(mockRepo, nil, mockTokenStore, nil)
		assert.NoError(t, service.Delete(context.Background(), 4))
		mockRepo.AssertExpectations(t)
		mockTokenStore.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(4)).Return(nil, gorm.ErrRecordNotFound)

		service := NewUserService(mockRepo, nil, new(MockTokenStore), nil)
		assert.ErrorIs(t, service.Delete(context.Background(), 4), apperrors.ErrUserNotFound)
	})
}

func TestUserService_GetBySlug(t *testing.T) {
	t.Run("rejects a malformed slug before querying", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo, nil, new(MockTokenStore), nil)

		_, err := service.GetBySlug(context.Background(), "Not A Slug")
		assert.ErrorIs(t, err, apperrors.ErrInvalidSlug)
		mockRepo.AssertNotCalled(t, "FindBySlug", mock.Anything, mock.Anything)
	})

	t.Run("maps a missing row to user not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindBySlug", mock.Anything, "jane-doe").Return(nil, gorm.ErrRecordNotFound)

		service := NewUserService(mockRepo, nil, new(MockTokenStore), nil)
		_, err := service.GetBySlug(context.Background(), "jane-doe")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
