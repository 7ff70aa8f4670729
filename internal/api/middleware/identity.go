package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
)

// Identity resolves the caller's user ID and stores it in the request
// context. A bearer token's subject claim is authoritative; when
// devHeaderFallback is enabled the X-User-ID header is accepted instead,
// which is only safe behind a trusted proxy or in local development.
func Identity(secret string, devHeaderFallback bool, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveUserID(r, secret, devHeaderFallback)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("unauthenticated request")
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the user ID stored by Identity, or "".
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func resolveUserID(r *http.Request, secret string, devHeaderFallback bool) (string, error) {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return subjectFromToken(strings.TrimPrefix(auth, "Bearer "), secret)
	}
	if devHeaderFallback {
		if id := r.Header.Get("X-User-ID"); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("resolveUserID: no credentials presented")
}

func subjectFromToken(raw, secret string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("subjectFromToken: parsing token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("subjectFromToken: token has no usable subject")
	}
	return claims.Subject, nil
}
