package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"gumbo", "gambol", 2},
		{"12345", "12346", 1},
		{"12345", "12345", 0},
		{"a", "b", 1},
		{"ab", "ba", 2},
		{"saturday", "sunday", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "Distance(%q, %q)", tt.a, tt.b)
	}
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"lovelace", "lovelance"},
		{"ada", "adah"},
		{"short", "averylongstring"},
	}

	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]),
			"distance must be symmetric for %q and %q", p[0], p[1])
	}
}

func TestDistance_Runes(t *testing.T) {
	// Multi-byte runes count as single edits.
	assert.Equal(t, 1, Distance("müller", "muller"))
	assert.Equal(t, 0, Distance("žofia", "žofia"))
}
