package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "simple title",
			title:    "Why Physics Matters",
			expected: "why-physics-matters",
		},
		{
			name:     "punctuation stripped",
			title:    "Hello, World!",
			expected: "hello-world",
		},
		{
			name:     "diacritics folded",
			title:    "Café Résumé Über",
			expected: "cafe-resume-uber",
		},
		{
			name:     "mixed case and digits kept",
			title:    "Top 10 Science Projects",
			expected: "top-10-science-projects",
		},
		{
			name:     "runs of separators collapse",
			title:    "  spaced --- out   title  ",
			expected: "spaced-out-title",
		},
		{
			name:     "leading and trailing hyphens trimmed",
			title:    "-- edgy title --",
			expected: "edgy-title",
		},
		{
			name:     "only symbols yields empty",
			title:    "!!! ??? ***",
			expected: "",
		},
		{
			name:     "empty input yields empty",
			title:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.title))
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	title := "Annual Science Fair: Results & Photos"

	first := Slugify(title)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Slugify(title))
	}
}

func TestRemoveDiacritics(t *testing.T) {
	assert.Equal(t, "aeiou", RemoveDiacritics("àéîõü"))
	assert.Equal(t, "plain ascii", RemoveDiacritics("plain ascii"))
}
