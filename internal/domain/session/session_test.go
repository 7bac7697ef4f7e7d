package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	first, err := GenerateToken()
	require.NoError(t, err)
	second, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "=")
	assert.Equal(t, strings.ToLower(first), first, "tokens use the lowercase alphabet")
}

func TestTokenID(t *testing.T) {
	id := TokenID("some-token")

	assert.Len(t, id, 64)
	assert.Equal(t, id, TokenID("some-token"))
	assert.NotEqual(t, id, TokenID("other-token"))
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Hour)))
	assert.True(t, s.Expired(now.Add(2*time.Hour)))
}

func TestSession_ShouldRenew(t *testing.T) {
	now := time.Now()

	fresh := Session{ExpiresAt: now.Add(Lifetime)}
	assert.False(t, fresh.ShouldRenew(now))

	aging := Session{ExpiresAt: now.Add(RenewalWindow - time.Minute)}
	assert.True(t, aging.ShouldRenew(now))
}
