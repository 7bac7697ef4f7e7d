package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_ScoreExactIdentifier(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	score, admitted := m.Score("12345", Candidate{Identifier: "12345", FirstName: "ada", LastName: "lovelace"})
	assert.True(t, admitted)
	assert.Equal(t, 0, score.LeastDistance)
	assert.Equal(t, 0, score.IdentifierDistance)
}

func TestMatcher_AdmissionThresholds(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	// Identifier 4 edits away, names unrelated: rejected.
	_, admitted := m.Score("zzzz99999", Candidate{Identifier: "11111", FirstName: "bob", LastName: "ng"})
	assert.False(t, admitted)

	// Last name within the single-name threshold: admitted even though the
	// identifier comparison is hopeless.
	_, admitted = m.Score("lovelac", Candidate{Identifier: "12345", FirstName: "ada", LastName: "lovelace"})
	assert.True(t, admitted)

	// Full-name comparison carries candidates whose single fields are both
	// out of range.
	_, admitted = m.Score("ada lovelace", Candidate{Identifier: "12345", FirstName: "ada", LastName: "lovelace"})
	assert.True(t, admitted)
}

func TestMatcher_RankOrdersByLeastDistance(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	candidates := []Candidate{
		{Identifier: "12346", FirstName: "grace", LastName: "hopper"},
		{Identifier: "12345", FirstName: "ada", LastName: "lovelace"},
	}

	ranked := m.Rank("12345", candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, "12345", ranked[0].Identifier)
	assert.Equal(t, 0, ranked[0].Score.LeastDistance)
	assert.Equal(t, "12346", ranked[1].Identifier)
	assert.Equal(t, 1, ranked[1].Score.LeastDistance)
}

func TestMatcher_IdentifierDistanceBreaksTies(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	// Both candidates have leastDistance 1: one through its name, one
	// through its identifier. The identifier-close one must come first.
	candidates := []Candidate{
		{Identifier: "99999", FirstName: "adaaa", LastName: "x"},
		{Identifier: "adab", FirstName: "zzz", LastName: "yyy"},
	}

	ranked := m.Rank("adaa", candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, "adab", ranked[0].Identifier)
	assert.Equal(t, 1, ranked[0].Score.IdentifierDistance)
	assert.Equal(t, "99999", ranked[1].Identifier)
}

func TestMatcher_LexicalIdentifierIsFinalTieBreak(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	// Identical scores; ordering must fall back to the identifier so that
	// repeated queries paginate identically.
	candidates := []Candidate{
		{Identifier: "y100", FirstName: "ada", LastName: "lovelace"},
		{Identifier: "x100", FirstName: "ada", LastName: "lovelace"},
	}

	ranked := m.Rank("ada", candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "x100", ranked[0].Identifier)
	assert.Equal(t, "y100", ranked[1].Identifier)
}

func TestMatcher_RankIsDeterministic(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	candidates := []Candidate{
		{Identifier: "s003", FirstName: "ann", LastName: "lee"},
		{Identifier: "s001", FirstName: "anna", LastName: "leigh"},
		{Identifier: "s002", FirstName: "anne", LastName: "li"},
	}

	first := m.Rank("anna", candidates)
	second := m.Rank("anna", candidates)
	assert.Equal(t, first, second)
}

func TestNewMatcher_ZeroThresholdsFallBackToDefaults(t *testing.T) {
	m := NewMatcher(Thresholds{})
	assert.Equal(t, DefaultThresholds(), m.thresholds)

	m = NewMatcher(Thresholds{Identifier: 1, SingleName: 2, FullName: 3})
	assert.Equal(t, Thresholds{Identifier: 1, SingleName: 2, FullName: 3}, m.thresholds)
}
