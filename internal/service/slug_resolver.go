package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "itongue/internal/errors"
	"itongue/internal/repository"
)

// SlugPattern is the accepted shape of a slug: lowercase alphanumeric groups
// joined by single hyphens.
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slugify normalizes free text into a slug candidate: ASCII letters are
// lowercased, digits kept, and every other run of characters collapses into a
// single hyphen. Non-ASCII characters are dropped.
func Slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r + ('a' - 'A'))
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// SlugResolver derives a unique slug for a user from their display name. The
// collision lookup is read-only; the unique index on users.slug remains the
// ultimate arbiter, and registration retries resolution on a duplicate-key
// error.
type SlugResolver struct {
	users repository.UserRepository
}

// NewSlugResolver creates a resolver backed by the user repository.
func NewSlugResolver(users repository.UserRepository) *SlugResolver {
	return &SlugResolver{users: users}
}

// Resolve returns a slug for the given names, suffixing a numeral when the
// bare candidate is already taken.
func (r *SlugResolver) Resolve(ctx context.Context, firstname, lastname string) (string, error) {
	candidate := Slugify(firstname + " " + lastname)
	if candidate == "" {
		return "", apperrors.ErrInvalidName
	}
	return r.NextAvailable(ctx, candidate)
}

// NextAvailable returns candidate itself when free, otherwise candidate
// suffixed with one more than the highest numeral among existing
// "candidate<n>" slugs (highest numeral wins, so suffix assignment is
// deterministic regardless of row order), defaulting to 1.
func (r *SlugResolver) NextAvailable(ctx context.Context, candidate string) (string, error) {
	slugs, err := r.users.FindSlugsByPrefix(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("slug collision lookup: %w", err)
	}

	// Prefix matches include unrelated slugs like "jane-doe-smith"; only the
	// bare candidate and its numbered variants count as collisions.
	variant := regexp.MustCompile(`^` + regexp.QuoteMeta(candidate) + `([0-9]+)?$`)

	bareTaken := false
	highest := 0
	for _, slug := range slugs {
		m := variant.FindStringSubmatch(slug)
		if m == nil {
			continue
		}
		if m[1] == "" {
			bareTaken = true
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}

	if !bareTaken {
		return candidate, nil
	}
	return candidate + strconv.Itoa(highest+1), nil
}
