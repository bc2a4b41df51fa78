package security

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTokenShape(t *testing.T, token string, parts int) {
	t.Helper()
	fields := strings.Split(token, "-")
	require.Len(t, fields, parts)
	for _, f := range fields {
		_, err := strconv.ParseUint(f, 10, 32)
		assert.NoError(t, err, "part %q", f)
	}
}

func TestGenerateCSRFToken(t *testing.T) {
	a := GenerateCSRFToken()
	b := GenerateCSRFToken()
	assertTokenShape(t, a, 4)
	assert.NotEqual(t, a, b)
}

func TestNewSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession(now, 0)

	assertTokenShape(t, s.Token, 8)
	assert.Equal(t, now.Add(2*time.Hour), s.ExpiresAt)
	assert.True(t, s.Valid(now))
	assert.True(t, s.Valid(now.Add(119*time.Minute)))
	assert.False(t, s.Valid(now.Add(2*time.Hour)))

	s = NewSession(now, 6*time.Hour)
	assert.Equal(t, now.Add(6*time.Hour), s.ExpiresAt)
}
