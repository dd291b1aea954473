package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"invadmin-stock-services/internal/gateway"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const sessionContextKey contextKey = "stockSession"

// Session identifies one admin session. Token is the opaque bearer credential
// forwarded to the backing store; Key is the stable value that owns the
// session's cart and run history.
type Session struct {
	Token string
	Key   string
}

func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func GetSession(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	return session, ok
}

// BearerSession requires an Authorization bearer on every request. The token
// is not verified here: acquisition, refresh and validation belong to the
// upstream auth service, and the backing store rejects bad credentials on its
// own. The token's subject claim (when the bearer is a JWT) keys the session;
// opaque tokens key by digest.
func BearerSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			session := &Session{Token: token, Key: sessionKey(token)}
			ctx := WithSession(r.Context(), session)
			ctx = gateway.WithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func sessionKey(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if subject, err := claims.GetSubject(); err == nil && subject != "" {
			return subject
		}
	}
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:16])
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}
