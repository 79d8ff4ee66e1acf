package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jane Doe", "jane-doe"},
		{"  Jane   Doe  ", "jane-doe"},
		{"Jean-Luc O'Neill", "jean-luc-o-neill"},
		{"Marie Curie 2", "marie-curie-2"},
		{"UPPER lower", "upper-lower"},
		{"éàü", ""},
		{"!!!", ""},
		{"a", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{
			name:     "no collision yields bare candidate",
			existing: []string{},
			expected: "jane-doe",
		},
		{
			name:     "bare collision yields suffix 1",
			existing: []string{"jane-doe"},
			expected: "jane-doe1",
		},
		{
			name:     "numbered collisions yield highest plus one",
			existing: []string{"jane-doe", "jane-doe1"},
			expected: "jane-doe2",
		},
		{
			name:     "gap in numerals still picks highest plus one",
			existing: []string{"jane-doe", "jane-doe7"},
			expected: "jane-doe8",
		},
		{
			name:     "prefix matches that are not numbered variants do not count",
			existing: []string{"jane-doe-smith", "jane-doette"},
			expected: "jane-doe",
		},
		{
			name:     "numbered variant without the bare slug leaves the candidate free",
			existing: []string{"jane-doe1"},
			expected: "jane-doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockRepo.On("FindSlugsByPrefix", mock.Anything, "jane-doe").Return(tt.existing, nil)

			resolver := NewSlugResolver(mockRepo)
			slug, err := resolver.Resolve(context.Background(), "Jane", "Doe")

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, slug)
			assert.Regexp(t, `^[a-z0-9]+(-[a-z0-9]+)*[0-9]*$`, slug)
		})
	}
}

func TestSlugResolver_Resolve_EmptyCandidate(t *testing.T) {
	resolver := NewSlugResolver(new(MockUserRepository))
	_, err := resolver.Resolve(context.Background(), "éé", "!!")
	assert.Error(t, err)
}
