package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Accents stripped",
			input:    "Châtelet",
			expected: "chatelet",
		},
		{
			name:     "Case and whitespace folded",
			input:    "  Gare   de  Lyon ",
			expected: "gare de lyon",
		},
		{
			name:     "Punctuation becomes separator",
			input:    "Bibliothèque François-Mitterrand",
			expected: "bibliotheque francois mitterrand",
		},
		{
			name:     "Empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestCleanDisruptionText(t *testing.T) {
	assert.Equal(t,
		"Ligne 4 : trafic interrompu entre Porte de Clignancourt et Barbès",
		CleanDisruptionText("<p><b>Ligne 4 :</b> trafic interrompu<br/>entre Porte de Clignancourt et Barbès</p>"),
	)
}

func TestTrimString(t *testing.T) {
	assert.Equal(t, "abc", TrimString("abcdef", 3))
	assert.Equal(t, "ab", TrimString("ab", 3))
}
