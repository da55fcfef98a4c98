package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/config"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hmcommon"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T) {
	t.Helper()
	config.Config().Auth.SigningSecret = "unit-test-secret"
	t.Cleanup(func() {
		config.Config().Auth.SigningSecret = ""
	})
}

func TestIssueAndParseToken(t *testing.T) {
	withSecret(t)

	token, err := IssueToken("user-1", "alice")
	require.Nil(t, err)
	require.NotEmpty(t, token)

	userID, principalID, err := ParseToken(token)
	require.Nil(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "alice", principalID)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	withSecret(t)

	token, err := IssueToken("user-1", "")
	require.Nil(t, err)

	_, _, err = ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	config.Config().Auth.SigningSecret = ""
	_, err := IssueToken("user-1", "")
	assert.NotNil(t, err)
}

func TestParseTokenRequiresSecret(t *testing.T) {
	config.Config().Auth.SigningSecret = ""

	// A token signed with the empty key must not pass verification when no
	// secret is configured.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "intruder",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, signErr := forged.SignedString([]byte(""))
	require.NoError(t, signErr)

	_, _, err := ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request with a forged token reached the handler")
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware(t *testing.T) {
	withSecret(t)

	var gotUser, gotPrincipal string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = hmcommon.UserIdFromContext(r.Context())
		gotPrincipal = hmcommon.PrincipalIdFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// No header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong scheme.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token loads the identity into the context.
	token, err := IssueToken("user-9", "bob")
	require.Nil(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-9", gotUser)
	assert.Equal(t, "bob", gotPrincipal)
}
