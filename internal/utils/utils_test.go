package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := GenerateToken("secret", id, "1234-5678", expires)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "1234-5678", claims.SessionID)
	assert.True(t, expires.Equal(claims.ExpiresAt))

	_, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := GenerateToken("secret", uuid.New(), "s", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err, "expired")

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: uuid.NewString()}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseToken("secret", noExpiry)
	assert.Error(t, err, "no expiry")

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseToken("secret", badSubject)
	assert.Error(t, err, "bad subject")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken("secret", none)
	assert.Error(t, err, "alg none")
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return nil
	})

	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"?page=3&limit=10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"?page=-1&limit=abc", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"?limit=500", Pagination{Page: 1, Limit: 100, Offset: 0}},
	}
	for _, tt := range tests {
		_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestPaginationMeta(t *testing.T) {
	p := Pagination{Page: 2, Limit: 20, Offset: 20}
	assert.Equal(t, PageMeta{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, p.Meta(41))
	assert.Equal(t, int64(2), p.Meta(40).TotalPages)
	assert.Equal(t, int64(0), p.Meta(0).TotalPages)
}
