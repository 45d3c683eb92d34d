// Package auth implements the two credentials used by the ironSource APIs:
// a short lived bearer token exchanged for the account's refresh token and
// secret key, and a static basic-auth token for the audience API.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// msThreshold separates expiry claims given in milliseconds from ones given
// in seconds. Anything above it is past the year 33658 in seconds.
const msThreshold = 1_000_000_000_000

// Token is a bearer token together with its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// IsExpired returns true if the token is empty or past its expiry.
func (t Token) IsExpired(now time.Time) bool {
	if t.Value == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

// ParseToken reads the exp claim of a JWT without verifying its signature.
// The token is only ever checked for expiry; the API validates it.
func ParseToken(raw string) (Token, error) {
	parser := jwt.NewParser(jwt.WithJSONNumber(), jwt.WithPaddingAllowed())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return Token{}, fmt.Errorf("malformed bearer token: %w", err)
	}

	var exp int64
	switch v := claims["exp"].(type) {
	case nil:
		return Token{Value: raw}, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return Token{}, fmt.Errorf("parse exp claim %q: %w", v, err)
			}
			n = int64(f)
		}
		exp = n
	case float64:
		exp = int64(v)
	default:
		return Token{}, fmt.Errorf("parse exp claim: unexpected type %T", v)
	}

	var expiresAt time.Time
	if exp > msThreshold {
		expiresAt = time.UnixMilli(exp)
	} else {
		expiresAt = time.Unix(exp, 0)
	}
	return Token{Value: raw, ExpiresAt: expiresAt}, nil
}

// TokenCache holds the current bearer token of one client. It is safe for
// concurrent use; refreshes are serialized so only one exchange runs at a time.
type TokenCache struct {
	mu    sync.Mutex
	token Token
	now   func() time.Time
}

// NewTokenCache returns an empty cache using the wall clock.
func NewTokenCache() *TokenCache {
	return &TokenCache{now: time.Now}
}

// Get returns the cached token if it is still valid, otherwise calls fetch,
// stores its result and returns it.
func (c *TokenCache) Get(fetch func() (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	if !c.token.IsExpired(now()) {
		return c.token.Value, nil
	}

	raw, err := fetch()
	if err != nil {
		return "", err
	}
	tok, err := ParseToken(raw)
	if err != nil {
		return "", err
	}
	c.token = tok
	return tok.Value, nil
}

// Reset drops the cached token.
func (c *TokenCache) Reset() {
	c.mu.Lock()
	c.token = Token{}
	c.mu.Unlock()
}

// BasicToken returns the base64 of "user:secret" used with the Basic scheme.
func BasicToken(user, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + secret))
}
