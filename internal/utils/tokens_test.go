package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMeaningfulTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple words",
			input:    "Liquid Touch Foundation 210W",
			expected: []string{"liquid", "touch", "foundation", "210w"},
		},
		{
			name:     "with punctuation",
			input:    "Soft-Pinch, Dewy!",
			expected: []string{"soft", "pinch", "dewy"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "numbers only",
			input:    "110 210 310",
			expected: []string{"110", "210", "310"},
		},
		{
			name:     "single letters dropped, single digits kept",
			input:    "shade 4 in a W tone",
			expected: []string{"shade", "4", "tone"},
		},
		{
			name:     "unicode letters",
			input:    "Crème Blush™",
			expected: []string{"crème", "blush"},
		},
		{
			name:     "with stopwords",
			input:    "please recommend a blush for my cheeks",
			expected: []string{"blush", "cheeks"},
		},
		{
			name:     "duplicates removed",
			input:    "matte matte lip matte",
			expected: []string{"matte", "lip"},
		},
		{
			name:     "all stopwords",
			input:    "a an the and or for with to of",
			expected: []string{},
		},
		{
			name:     "only special characters",
			input:    "!@#$%^&*()",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractMeaningfulTokens(tt.input)
			assert.ElementsMatch(t, tt.expected, result, "Tokens should match")
		})
	}
}

func TestExtractMeaningfulTokens_PreservesOrder(t *testing.T) {
	assert.Equal(t, []string{"warm", "310n", "concealer"}, ExtractMeaningfulTokens("Warm 310N concealer warm"))
}

func TestShadeTokens(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "shade number", query: "Liquid Touch foundation in 210W", expected: []string{"210w"}},
		{name: "several", query: "compare 110N and 120C", expected: []string{"110n", "120c"}},
		{name: "none", query: "dewy pink blush", expected: nil},
		{name: "empty", query: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShadeTokens(tt.query))
		})
	}
}

func TestTokenHasDigit(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected bool
	}{
		{"has digit at end", "shade4", true},
		{"has digit at start", "210w", true},
		{"no digits", "blush", false},
		{"only digits", "123", true},
		{"empty string", "", false},
		{"unicode digits", "test①②③", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TokenHasDigit(tt.token))
		})
	}
}

func TestContainsAllTokens(t *testing.T) {
	tests := []struct {
		name            string
		productTokens   map[string]struct{}
		requiredTokens  []string
		expectedOk      bool
		expectedMissing []string
	}{
		{
			name:           "all tokens present",
			productTokens:  map[string]struct{}{"foundation": {}, "210w": {}, "matte": {}},
			requiredTokens: []string{"210w"},
			expectedOk:     true,
		},
		{
			name:            "missing one token",
			productTokens:   map[string]struct{}{"foundation": {}, "210w": {}},
			requiredTokens:  []string{"210w", "220n"},
			expectedOk:      false,
			expectedMissing: []string{"220n"},
		},
		{
			name:           "empty required tokens",
			productTokens:  map[string]struct{}{"blush": {}},
			requiredTokens: []string{},
			expectedOk:     true,
		},
		{
			name:            "empty product tokens",
			productTokens:   map[string]struct{}{},
			requiredTokens:  []string{"210w"},
			expectedOk:      false,
			expectedMissing: []string{"210w"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, missing := ContainsAllTokens(tt.productTokens, tt.requiredTokens)
			assert.Equal(t, tt.expectedOk, ok)
			assert.ElementsMatch(t, tt.expectedMissing, missing)
		})
	}
}

func TestBuildTokenSet(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected []string
	}{
		{
			name:     "single value",
			values:   []string{"Liquid Touch Foundation"},
			expected: []string{"liquid", "touch", "foundation"},
		},
		{
			name:     "multiple values with duplicates",
			values:   []string{"Soft Pinch Blush", "Hope", "Soft Pinch"},
			expected: []string{"soft", "pinch", "blush", "hope"},
		},
		{
			name:     "empty values",
			values:   []string{"", " "},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildTokenSet(tt.values...)
			assert.Equal(t, len(tt.expected), len(result))
			for _, key := range tt.expected {
				_, exists := result[key]
				assert.True(t, exists, "Token '%s' should exist", key)
			}
		})
	}
}

func BenchmarkExtractMeaningfulTokens(b *testing.B) {
	input := "Liquid Touch Weightless Foundation - 210W, light with warm undertones"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExtractMeaningfulTokens(input)
	}
}
