// Package session carries the caller's household view (current owner and
// privacy mode) in a signed, stateless token.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finova/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "finova-api"

// ErrInvalidToken is returned for malformed, expired or tampered tokens.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Context is the per-session view state. Owner scopes every list and
// aggregate; PrivacyMode asks clients to mask amounts.
type Context struct {
	Owner       models.Owner `json:"owner"`
	PrivacyMode bool         `json:"privacy_mode"`
}

// Claims are the JWT claims of a session token.
type Claims struct {
	Owner       models.Owner `json:"owner"`
	PrivacyMode bool         `json:"privacy_mode"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager signing with secret. Tokens expire after ttl.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for sc and returns it with its expiry.
func (m *Manager) Issue(sc Context) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := &Claims{
		Owner:       sc.Owner,
		PrivacyMode: sc.PrivacyMode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   string(sc.Owner),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

// Parse verifies token and returns its session context.
func (m *Manager) Parse(token string) (Context, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return Context{}, ErrInvalidToken
	}
	return Context{Owner: claims.Owner, PrivacyMode: claims.PrivacyMode}, nil
}

type ctxKey struct{}

// WithContext stores sc in ctx.
func WithContext(ctx context.Context, sc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (Context, bool) {
	sc, ok := ctx.Value(ctxKey{}).(Context)
	return sc, ok
}
