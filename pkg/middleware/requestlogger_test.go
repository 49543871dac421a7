package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gamingty/storefront/pkg/logger"
)

func TestRequestLogger_EnrichesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	ctx := context.WithValue(req.Context(), clientIDKey, "client-xyz")
	ctx = context.WithValue(ctx, userIDKey, "user-7")
	req = req.WithContext(ctx)

	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"client_id":"client-xyz"`)
	assert.Contains(t, out, `"user_id":"user-7"`)
	assert.Contains(t, out, "inside handler")
}

func TestRequestLogger_GuestOmitsUserID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("guest request")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = req.WithContext(context.WithValue(req.Context(), clientIDKey, "client-xyz"))

	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"client_id":"client-xyz"`)
	assert.NotContains(t, out, "user_id")
}
