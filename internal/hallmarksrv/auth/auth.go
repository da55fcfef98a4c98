// Package auth issues and validates the bearer tokens guarding the mutating
// API surface. Tokens are HS256 JWTs signed with the configured secret.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/config"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/hmcommon"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var ErrInvalidToken apperrors.Error = apperrors.New("invalid or expired token").SetStatusCode(http.StatusUnauthorized)

type claims struct {
	PrincipalID string `json:"principalId,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed token for a user, optionally bound to a
// principal. Validity comes from configuration.
func IssueToken(userID string, principalID string) (string, apperrors.Error) {
	cfg := config.Config().Auth
	if cfg.SigningSecret == "" {
		return "", apperrors.New("auth signing secret is not configured").SetStatusCode(http.StatusInternalServerError)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		PrincipalID: principalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenValidityDuration())),
		},
	})
	signed, err := token.SignedString([]byte(cfg.SigningSecret))
	if err != nil {
		return "", apperrors.New("failed to sign token").Err(err).SetStatusCode(http.StatusInternalServerError)
	}
	return signed, nil
}

// ParseToken validates a token and returns the user and principal it carries.
func ParseToken(tokenString string) (userID string, principalID string, err apperrors.Error) {
	cfg := config.Config().Auth
	if cfg.SigningSecret == "" {
		// Without a configured secret there is no key to verify against;
		// a token signed with the empty key must never validate.
		return "", "", ErrInvalidToken
	}
	var c claims
	token, parseErr := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return []byte(cfg.SigningSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if parseErr != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	return c.Subject, c.PrincipalID, nil
}

// Middleware rejects requests without a valid bearer token and loads the
// token's identity into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.ErrMissingKeyInRequest().Send(w)
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			httpx.ErrUnAuthorized("authorization header must be a bearer token").Send(w)
			return
		}
		userID, principalID, err := ParseToken(tokenString)
		if err != nil {
			log.Ctx(r.Context()).Debug().Msg("rejected request with invalid token")
			httpx.ErrUnAuthorized().Send(w)
			return
		}
		ctx := hmcommon.SetUserIdInContext(r.Context(), userID)
		if principalID != "" {
			ctx = hmcommon.SetPrincipalIdInContext(ctx, principalID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
