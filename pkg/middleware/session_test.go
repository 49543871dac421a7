package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_GuestWithClientID(t *testing.T) {
	var gotClientID, gotUserID string
	handler := Session()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClientID = ClientIDFromContext(r.Context())
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Client-ID", "client-abc")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "client-abc", gotClientID)
	assert.Empty(t, gotUserID)
}

func TestSession_AuthenticatedUser(t *testing.T) {
	var gotUserID, gotToken string
	handler := Session()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotToken = BearerTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil)
	req.Header.Set("X-Client-ID", "client-abc")
	req.Header.Set("X-User-ID", "user-42")
	req.Header.Set("Authorization", "Bearer tok-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "user-42", gotUserID)
	assert.Equal(t, "tok-123", gotToken)
}

func TestSession_MissingClientIDRejected(t *testing.T) {
	handler := Session()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "X-Client-ID")
}

func TestSession_MalformedAuthorizationIgnored(t *testing.T) {
	var gotToken string
	handler := Session()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = BearerTokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil)
	req.Header.Set("X-Client-ID", "client-abc")
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Empty(t, gotToken)
}
