package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sara = models.Session{Name: "Sara", Email: "sara@test.com", Role: models.RoleUser}

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateJWT(sara)
	require.NoError(t, err)

	claims, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, sara, claims.Session())
}

func TestValidate_RejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewManager("secret", time.Hour)

	foreign, err := NewManager("other", time.Hour).GenerateJWT(sara)
	require.NoError(t, err)
	_, err = m.ValidateJWT(foreign)
	require.Error(t, err)

	old := NewManager("secret", time.Hour)
	old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := old.GenerateJWT(sara)
	require.NoError(t, err)
	_, err = m.ValidateJWT(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = m.ValidateJWT("not.a.token")
	require.Error(t, err)
}

func protected(m *Manager, admin bool) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := MustClaims(r.Context())
		_, _ = w.Write([]byte(claims.Email))
	})
	if admin {
		h = RequireAdmin(h)
	}
	return m.JWTMiddleware()(h)
}

func TestMiddleware_TokenSources(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.GenerateJWT(sara)
	require.NoError(t, err)

	requests := map[string]*http.Request{
		"header": httptest.NewRequest(http.MethodGet, "/", nil),
		"cookie": httptest.NewRequest(http.MethodGet, "/", nil),
		"query":  httptest.NewRequest(http.MethodGet, "/?token="+token, nil),
	}
	requests["header"].Header.Set("Authorization", "Bearer "+token)
	requests["cookie"].AddCookie(m.Cookie(token, false))

	for name, req := range requests {
		rec := httptest.NewRecorder()
		protected(m, false).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "sara@test.com", rec.Body.String(), name)
	}
}

func TestMiddleware_Rejections(t *testing.T) {
	m := NewManager("secret", time.Hour)

	rec := httptest.NewRecorder()
	protected(m, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	protected(m, false).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	m := NewManager("secret", time.Hour)

	userToken, err := m.GenerateJWT(sara)
	require.NoError(t, err)
	adminToken, err := m.GenerateJWT(models.Session{Name: "Admin", Email: "admin@test.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	protected(m, true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	protected(m, true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCookie_EmptyTokenExpires(t *testing.T) {
	c := NewManager("secret", time.Hour).Cookie("", true)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
}
