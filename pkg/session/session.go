// Package session issues and reads the signed session token carried in a cookie or bearer header.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
)

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

type Manager struct {
	secret  []byte
	cookie  string
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewManager(cfg Config, revoker Revoker) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "enenni_session"
	}
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &Manager{
		secret:  []byte(cfg.Secret),
		cookie:  cfg.CookieName,
		ttl:     cfg.TTL,
		revoker: revoker,
		now:     time.Now,
	}
}

func (m *Manager) CookieName() string { return m.cookie }

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Issue(user models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign session token")
	}
	return token, expires, nil
}

// Parse verifies the signature, expiry and revocation of token. Every failure is an *apperr.AuthError.
func (m *Manager) Parse(ctx context.Context, token string) (Claims, error) {
	if token == "" {
		return Claims{}, apperr.Auth("missing session")
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return Claims{}, apperr.Auth("invalid or expired session")
	}
	if claims.UserID == "" {
		return Claims{}, apperr.Auth("session has no subject")
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Claims{}, apperr.Auth("session revocation check failed: " + err.Error())
	}
	if revoked {
		return Claims{}, apperr.Auth("session revoked")
	}
	return claims, nil
}

// Revoke makes token unusable for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, claims Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(m.now()); left > 0 {
			ttl = left
		}
	}
	return m.revoker.Revoke(ctx, claims.ID, ttl)
}

// TokenFromRequest prefers the session cookie and falls back to a bearer header.
func (m *Manager) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(m.cookie); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
