package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"itongue/internal/cache"
	apperrors "itongue/internal/errors"
	"itongue/internal/repository"
)

const (
	avatarRoot = "uploads/avatars"

	// Generated filenames are lowercase hex; the first shardDepth characters
	// become single-character directory levels so no directory's entry count
	// grows unbounded.
	nameAlphabet = "0123456789abcdef"
	nameLength   = 32
	shardDepth   = 4
)

var mimeExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarStore commits staged avatar uploads to a sharded directory tree under
// the public dir. A user's avatar address is allocated once and reused for
// every subsequent upload, so re-uploads overwrite in place.
type AvatarStore struct {
	publicDir string
	users     repository.UserRepository
	profiles  cache.ProfileInvalidator
	log       *zap.Logger
}

// NewAvatarStore creates an avatar store rooted at publicDir. Committed
// uploads invalidate the user's cached profile through profiles.
func NewAvatarStore(publicDir string, users repository.UserRepository, profiles cache.ProfileInvalidator, log *zap.Logger) *AvatarStore {
	return &AvatarStore{publicDir: publicDir, users: users, profiles: profiles, log: log}
}

// Commit moves the staged file to the user's avatar address and returns the
// address (a relative path without extension). The staged file must live on
// the same filesystem volume as publicDir: the final os.Rename is what makes
// the commit atomic for concurrent readers. On any failure the staged file is
// removed best-effort and the primary error is returned; a cleanup failure is
// logged as a secondary error.
func (s *AvatarStore) Commit(ctx context.Context, userID uint, stagedPath, declaredMIME string) (string, error) {
	committed := false
	defer func() {
		if !committed {
			s.discardStaged(stagedPath)
		}
	}()

	ext, ok := mimeExtensions[declaredMIME]
	if !ok {
		return "", apperrors.ErrUnsupportedMediaType
	}

	if _, err := os.Stat(stagedPath); err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.ErrMissingUpload
		}
		return "", fmt.Errorf("%w: stat staged upload: %w", apperrors.ErrStorageIO, err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	address := user.AvatarURL
	if address == "" {
		name, err := gonanoid.Generate(nameAlphabet, nameLength)
		if err != nil {
			return "", fmt.Errorf("generate avatar name: %w", err)
		}
		address = path.Join(avatarRoot, shardPath(name[:shardDepth]), name[shardDepth:])

		// Recorded before the move: if the move fails the address still
		// belongs to the user and the next upload fills it, so no second
		// address is ever allocated.
		if err := s.users.SetAvatarURL(ctx, userID, address); err != nil {
			return "", fmt.Errorf("record avatar address: %w", err)
		}
	}

	dest := filepath.Join(s.publicDir, filepath.FromSlash(address)+ext)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("%w: create avatar directory: %w", apperrors.ErrStorageIO, err)
	}

	if err := os.Rename(stagedPath, dest); err != nil {
		return "", fmt.Errorf("%w: move staged upload: %w", apperrors.ErrStorageIO, err)
	}
	committed = true

	s.removeStaleSiblings(dest)

	// The cached profile now carries a stale avatarUrl; readers repopulate
	// from the row on the next lookup.
	_ = s.profiles.InvalidateUser(ctx, userID)

	return address, nil
}

func (s *AvatarStore) discardStaged(stagedPath string) {
	if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove staged upload",
			zap.String("path", stagedPath),
			zap.Error(err))
	}
}

// removeStaleSiblings deletes files at the same address with a different
// extension, left behind when a re-upload changes content type. Best effort;
// failures are logged, the commit already succeeded.
func (s *AvatarStore) removeStaleSiblings(dest string) {
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	matches, err := filepath.Glob(base + ".*")
	if err != nil {
		return
	}
	for _, m := range matches {
		if m == dest {
			continue
		}
		if err := os.Remove(m); err != nil {
			s.log.Warn("failed to remove stale avatar file",
				zap.String("path", m),
				zap.Error(err))
		}
	}
}

func shardPath(prefix string) string {
	parts := strings.Split(prefix, "")
	return path.Join(parts...)
}
