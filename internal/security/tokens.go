package security

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

// SessionTTL is the default session lifetime.
const SessionTTL = 2 * time.Hour

// Session is an opaque, unsigned session token. It proves nothing on its own.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session has not yet expired at now.
func (s Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// GenerateCSRFToken returns four random uint32 values joined by hyphens.
func GenerateCSRFToken() string {
	return randomToken(4)
}

// NewSession issues a session token of eight random values expiring ttl
// after now. A non-positive ttl means SessionTTL.
func NewSession(now time.Time, ttl time.Duration) Session {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return Session{Token: randomToken(8), ExpiresAt: now.Add(ttl)}
}

func randomToken(n int) string {
	buf := make([]byte, 4*n)
	if _, err := rand.Read(buf); err != nil {
		panic("security: crypto/rand unavailable: " + err.Error())
	}

	parts := make([]string, n)
	for i := range parts {
		parts[i] = strconv.FormatUint(uint64(binary.LittleEndian.Uint32(buf[i*4:])), 10)
	}
	return strings.Join(parts, "-")
}
