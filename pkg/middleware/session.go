package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	userIDKey      contextKeyType = "user_id"
	clientIDKey    contextKeyType = "client_id"
	bearerTokenKey contextKeyType = "bearer_token"
)

// Session extracts the storefront session identity from request headers and
// injects it into the request context.
//
// Every browser client carries a stable X-Client-ID (generated on first visit
// and persisted locally); authenticated clients additionally carry X-User-ID
// and a bearer token for the upstream wishlist API. A missing X-User-ID means
// the request is from a guest session, which is valid for cart operations and
// read-only wishlist state.
func Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get("X-Client-ID")
			if clientID == "" {
				writeSessionError(w, "missing X-Client-ID header")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, clientID)

			if userID := r.Header.Get("X-User-ID"); userID != "" {
				ctx = context.WithValue(ctx, userIDKey, userID)
			}

			if auth := r.Header.Get("Authorization"); auth != "" {
				parts := strings.SplitN(auth, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					ctx = context.WithValue(ctx, bearerTokenKey, parts[1])
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the user ID from the request context.
// Returns "" for guest sessions.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// ClientIDFromContext extracts the client ID from the request context.
func ClientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey).(string); ok {
		return id
	}
	return ""
}

// BearerTokenFromContext extracts the upstream API bearer token from the
// request context. Returns "" when the request carried no Authorization header.
func BearerTokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(bearerTokenKey).(string); ok {
		return tok
	}
	return ""
}

func writeSessionError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "VALIDATION_ERROR",
		"message": message,
	})
}
