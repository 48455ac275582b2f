// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenPrefersCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultTokenCookie, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")

	assert.Equal(t, "cookie-token", ExtractToken(r, ""))
}

func TestExtractTokenConfiguredCookieName(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})

	assert.Equal(t, "cookie-token", ExtractToken(r, "session_token"))
	assert.Empty(t, ExtractToken(r, ""))
}

func TestExtractTokenBearerFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")

	assert.Equal(t, "header-token", ExtractToken(r, ""))
}

func TestExtractTokenMalformedHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	assert.Empty(t, ExtractToken(r, ""))
}

func TestExtractTokenAbsent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(r, ""))
}

func requestWithClaims(role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	claims := &AccessTokenClaims{UserID: uuid.New(), Role: role}
	return r.WithContext(withClaims(r.Context(), claims))
}

func TestRequireInstructor(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		role   string
		status int
	}{
		{"instructor", http.StatusNoContent},
		{"admin", http.StatusNoContent},
		{"student", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireInstructor(next).ServeHTTP(rec, requestWithClaims(tt.role))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	RequireAdmin(next).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimsHelpers(t *testing.T) {
	userID := uuid.New()
	claims := &AccessTokenClaims{UserID: userID, Role: "student"}
	ctx := withClaims(context.Background(), claims)

	assert.Equal(t, userID, GetUserID(ctx))
	assert.Equal(t, "student", GetUserRole(ctx))
	assert.True(t, IsAuthenticated(ctx))

	require.NotNil(t, GetClaims(ctx))
	assert.Equal(t, claims, GetClaims(ctx))

	empty := context.Background()
	assert.Equal(t, uuid.Nil, GetUserID(empty))
	assert.False(t, IsAuthenticated(empty))
	assert.Nil(t, GetClaims(empty))
}
