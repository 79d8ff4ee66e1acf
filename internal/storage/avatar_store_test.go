package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "itongue/internal/errors"
	"itongue/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindBySlug(ctx context.Context, slug string) (*model.User, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindSlugsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetAvatarURL(ctx context.Context, id uint, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

func (m *MockUserRepository) SetSlug(ctx context.Context, id uint, slug string) error {
	args := m.Called(ctx, id, slug)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProfileInvalidator is a mock implementation of cache.ProfileInvalidator.
type MockProfileInvalidator struct {
	mock.Mock
}

func (m *MockProfileInvalidator) InvalidateUser(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func permissiveInvalidator() *MockProfileInvalidator {
	m := new(MockProfileInvalidator)
	m.On("InvalidateUser", mock.Anything, mock.Anything).Return(nil)
	return m
}

func stageFile(t *testing.T, dir, content string) string {
	t.Helper()
	f, err := os.CreateTemp(dir, "staged-*")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestAvatarStore_Commit_FreshAddress(t *testing.T) {
	publicDir := t.TempDir()
	staged := stageFile(t, publicDir, "first upload")

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
	mockRepo.On("SetAvatarURL", mock.Anything, uint(1), mock.AnythingOfType("string")).Return(nil)
	mockProfiles := new(MockProfileInvalidator)
	mockProfiles.On("InvalidateUser", mock.Anything, uint(1)).Return(nil)

	store := NewAvatarStore(publicDir, mockRepo, mockProfiles, zap.NewNop())
	address, err := store.Commit(context.Background(), 1, staged, "image/png")

	require.NoError(t, err)
	assert.Regexp(t, `^uploads/avatars/[0-9a-f]/[0-9a-f]/[0-9a-f]/[0-9a-f]/[0-9a-f]{28}$`, address)

	content, err := os.ReadFile(filepath.Join(publicDir, filepath.FromSlash(address)+".png"))
	require.NoError(t, err)
	assert.Equal(t, "first upload", string(content))

	// Staged file was consumed by the move.
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))

	mockRepo.AssertCalled(t, "SetAvatarURL", mock.Anything, uint(1), address)
	// The cached profile carries avatarUrl, so the commit must drop it.
	mockProfiles.AssertCalled(t, "InvalidateUser", mock.Anything, uint(1))
}

func TestAvatarStore_Commit_ReusesAddress(t *testing.T) {
	publicDir := t.TempDir()
	address := "uploads/avatars/a/b/c/d/0123456789abcdef0123456789ab"

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, AvatarURL: address}, nil)

	store := NewAvatarStore(publicDir, mockRepo, permissiveInvalidator(), zap.NewNop())

	first := stageFile(t, publicDir, "first upload")
	got, err := store.Commit(context.Background(), 1, first, "image/png")
	require.NoError(t, err)
	assert.Equal(t, address, got)

	second := stageFile(t, publicDir, "second upload")
	got, err = store.Commit(context.Background(), 1, second, "image/png")
	require.NoError(t, err)
	assert.Equal(t, address, got)

	content, err := os.ReadFile(filepath.Join(publicDir, filepath.FromSlash(address)+".png"))
	require.NoError(t, err)
	assert.Equal(t, "second upload", string(content))

	// The address was never written back: it was assigned before.
	mockRepo.AssertNotCalled(t, "SetAvatarURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestAvatarStore_Commit_ExtensionChangeLeavesNoOrphan(t *testing.T) {
	publicDir := t.TempDir()
	address := "uploads/avatars/a/b/c/d/0123456789abcdef0123456789ab"

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, AvatarURL: address}, nil)

	store := NewAvatarStore(publicDir, mockRepo, permissiveInvalidator(), zap.NewNop())

	first := stageFile(t, publicDir, "png bytes")
	_, err := store.Commit(context.Background(), 1, first, "image/png")
	require.NoError(t, err)

	second := stageFile(t, publicDir, "jpeg bytes")
	_, err = store.Commit(context.Background(), 1, second, "image/jpeg")
	require.NoError(t, err)

	base := filepath.Join(publicDir, filepath.FromSlash(address))
	_, err = os.Stat(base + ".jpg")
	assert.NoError(t, err)
	_, err = os.Stat(base + ".png")
	assert.True(t, os.IsNotExist(err), "stale extension variant should be removed")
}

func TestAvatarStore_Commit_UnsupportedMediaType(t *testing.T) {
	publicDir := t.TempDir()
	staged := stageFile(t, publicDir, "some bytes")

	store := NewAvatarStore(publicDir, new(MockUserRepository), new(MockProfileInvalidator), zap.NewNop())
	_, err := store.Commit(context.Background(), 1, staged, "application/pdf")

	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)

	// Staged file is cleaned up on every failure path.
	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAvatarStore_Commit_MissingUpload(t *testing.T) {
	publicDir := t.TempDir()

	store := NewAvatarStore(publicDir, new(MockUserRepository), new(MockProfileInvalidator), zap.NewNop())
	_, err := store.Commit(context.Background(), 1, filepath.Join(publicDir, "nope"), "image/png")

	assert.ErrorIs(t, err, apperrors.ErrMissingUpload)
}

func TestAvatarStore_Commit_UserNotFound(t *testing.T) {
	publicDir := t.TempDir()
	staged := stageFile(t, publicDir, "some bytes")

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	store := NewAvatarStore(publicDir, mockRepo, new(MockProfileInvalidator), zap.NewNop())
	_, err := store.Commit(context.Background(), 9, staged, "image/png")

	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAvatarStore_Commit_FailedMoveCleansStagedFile(t *testing.T) {
	publicDir := t.TempDir()
	staged := stageFile(t, publicDir, "some bytes")

	// A regular file where the shard tree should go makes MkdirAll fail.
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "uploads"), []byte("in the way"), 0o644))

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
	mockRepo.On("SetAvatarURL", mock.Anything, uint(1), mock.AnythingOfType("string")).Return(nil)
	mockProfiles := new(MockProfileInvalidator)

	store := NewAvatarStore(publicDir, mockRepo, mockProfiles, zap.NewNop())
	_, err := store.Commit(context.Background(), 1, staged, "image/png")

	assert.ErrorIs(t, err, apperrors.ErrStorageIO)
	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr), "staged file must not be left behind")
	// No commit happened, so the cached profile is still accurate.
	mockProfiles.AssertNotCalled(t, "InvalidateUser", mock.Anything, mock.Anything)
}
