package search

import "sort"

// ══════════════════════════════════════════════════════════════════════════════
// FUZZY MATCHER
// Scores candidates against a query across five derived strings: the raw
// identifier, first name, last name, "first last" and "last first". A
// candidate is admitted when at least one comparison stays within its
// per-field threshold.
// ══════════════════════════════════════════════════════════════════════════════

// Thresholds holds the per-field admission thresholds: the maximum edit
// distance at which a comparison still counts as a match. Longer strings
// tolerate more edits, so the defaults grow with the field length.
type Thresholds struct {
	// Identifier is the threshold for the identifier comparison.
	Identifier int

	// SingleName is the threshold for first-name-only and last-name-only
	// comparisons.
	SingleName int

	// FullName is the threshold for the two concatenated name comparisons.
	FullName int
}

// DefaultThresholds returns the default admission thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Identifier: 3,
		SingleName: 5,
		FullName:   6,
	}
}

// Candidate is one searchable person, with fields already normalized the
// same way as the query (the matcher never normalizes by itself).
type Candidate struct {
	Identifier string
	FirstName  string
	LastName   string
}

// Score is the result of matching one candidate against a query.
type Score struct {
	// LeastDistance is the minimum distance over the five comparisons.
	// Primary sort key.
	LeastDistance int

	// IdentifierDistance is the identifier-only distance. Secondary sort
	// key, so identifier-close matches outrank coincidental name matches at
	// equal LeastDistance.
	IdentifierDistance int
}

// Matcher ranks candidates by edit-distance similarity.
type Matcher struct {
	thresholds Thresholds
}

// NewMatcher creates a matcher with the given thresholds. Zero-valued
// thresholds fall back to the defaults.
func NewMatcher(t Thresholds) *Matcher {
	def := DefaultThresholds()
	if t.Identifier <= 0 {
		t.Identifier = def.Identifier
	}
	if t.SingleName <= 0 {
		t.SingleName = def.SingleName
	}
	if t.FullName <= 0 {
		t.FullName = def.FullName
	}
	return &Matcher{thresholds: t}
}

// Score matches one candidate against the query. The second return value
// reports whether the candidate is admitted into the result set, i.e.
// whether at least one of the five comparisons stays within its threshold.
// The query must be non-empty; empty queries bypass the matcher entirely.
func (m *Matcher) Score(query string, c Candidate) (Score, bool) {
	idDist := Distance(query, c.Identifier)
	comparisons := [5]struct {
		distance  int
		threshold int
	}{
		{idDist, m.thresholds.Identifier},
		{Distance(query, c.FirstName), m.thresholds.SingleName},
		{Distance(query, c.LastName), m.thresholds.SingleName},
		{Distance(query, c.FirstName+" "+c.LastName), m.thresholds.FullName},
		{Distance(query, c.LastName+" "+c.FirstName), m.thresholds.FullName},
	}

	least := comparisons[0].distance
	admitted := false
	for _, cmp := range comparisons {
		if cmp.distance < least {
			least = cmp.distance
		}
		if cmp.distance <= cmp.threshold {
			admitted = true
		}
	}

	return Score{LeastDistance: least, IdentifierDistance: idDist}, admitted
}

// Ranked pairs an admitted candidate's index with its score.
type Ranked struct {
	// Index points back into the caller's candidate slice.
	Index int

	Score Score

	// Identifier is the candidate identifier, kept for the final tie-break.
	Identifier string
}

// Rank scores every candidate, drops the ones outside all thresholds and
// returns the admitted ones ordered by ascending LeastDistance, then
// ascending IdentifierDistance, then ascending identifier. The lexical
// identifier tie-break makes the ordering deterministic, which repeated
// identical queries need for stable pagination.
func (m *Matcher) Rank(query string, candidates []Candidate) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for i, c := range candidates {
		score, admitted := m.Score(query, c)
		if !admitted {
			continue
		}
		ranked = append(ranked, Ranked{Index: i, Score: score, Identifier: c.Identifier})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.LeastDistance != b.Score.LeastDistance {
			return a.Score.LeastDistance < b.Score.LeastDistance
		}
		if a.Score.IdentifierDistance != b.Score.IdentifierDistance {
			return a.Score.IdentifierDistance < b.Score.IdentifierDistance
		}
		return a.Identifier < b.Identifier
	})

	return ranked
}
