package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Ada", "ada"},
		{"  Ada   Lovelace  ", "ada lovelace"},
		{"Müller", "muller"},
		{"ÉLODIE", "elodie"},
		{"12345", "12345"},
		{"a\tb\nc", "a b c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{"  Ada   Lovelace ", "Müller", "élodie durand", "12345"}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "Sanitize must be idempotent for %q", in)
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ada", "Ada"},
		{"ada lovelace", "Ada Lovelace"},
		{"van der berg", "Van Der Berg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Capitalize(tt.in), "Capitalize(%q)", tt.in)
	}
}
