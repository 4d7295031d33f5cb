package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedEcho(t *testing.T) http.Handler {
	return Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := UserIDFromContext(r.Context())
		require.NoError(t, err)
		assert.Equal(t, 42, id)
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuthenticateValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/matches/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/matches/1", nil)
	rec := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/matches/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/matches/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protectedEcho(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	assert.Error(t, err)

	ctx := context.WithValue(context.Background(), userContextKey, jwt.MapClaims{})
	_, err = UserIDFromContext(ctx)
	assert.Error(t, err)

	ctx = context.WithValue(context.Background(), userContextKey, jwt.MapClaims{"user_id": "seven"})
	_, err = UserIDFromContext(ctx)
	assert.Error(t, err)

	ctx = context.WithValue(context.Background(), userContextKey, jwt.MapClaims{"user_id": float64(-3)})
	_, err = UserIDFromContext(ctx)
	assert.Error(t, err)

	ctx = context.WithValue(context.Background(), userContextKey, jwt.MapClaims{"user_id": float64(7)})
	id, err := UserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}
