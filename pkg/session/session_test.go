package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
)

var testUser = models.User{ID: "u-1", Email: "jane@enenni.com"}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(Config{Secret: "test-secret", CookieName: "sid", TTL: time.Hour}, NewMemoryRevoker())
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t)

	token, expires, err := m.Issue(testUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "jane@enenni.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejects(t *testing.T) {
	m := newTestManager(t)
	other := NewManager(Config{Secret: "other-secret"}, nil)
	foreign, _, err := other.Issue(testUser)
	require.NoError(t, err)

	expiredManager := newTestManager(t)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredManager.Issue(testUser)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, _, err := m.Issue(models.User{})
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"expired":        expired,
		"unsigned":       none,
		"missing userId": noSubject,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(context.Background(), token)
			require.Error(t, err)
			assert.True(t, apperr.IsAuth(err))
		})
	}
}

func TestRevokedSessionIsRejected(t *testing.T) {
	m := newTestManager(t)
	token, _, err := m.Issue(testUser)
	require.NoError(t, err)

	claims, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(context.Background(), claims))

	_, err = m.Parse(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")
}

func TestRevocationBackendFailureFailsClosed(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	m := NewManager(Config{Secret: "test-secret"}, NewRedisRevoker(rdb))
	token, _, err := m.Issue(testUser)
	require.NoError(t, err)

	_, err = m.Parse(context.Background(), token)
	require.Error(t, err)
	assert.True(t, apperr.IsAuth(err))
}

func TestMemoryRevokerExpires(t *testing.T) {
	r := NewMemoryRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(context.Background(), "jti-1", time.Minute))
	revoked, err := r.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(time.Minute)
	revoked, err = r.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenFromRequest(t *testing.T) {
	m := newTestManager(t)

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, "", m.TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", m.TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", m.TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", m.TokenFromRequest(r))
}
