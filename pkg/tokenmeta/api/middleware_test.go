package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(RequestIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_PreservesIncomingID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(RequestIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-assigned")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "client-assigned", seen)
	assert.Equal(t, "client-assigned", w.Header().Get("X-Request-ID"))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	var readErr error
	handler := RequestSizeLimitMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	t.Run("small body passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.NoError(t, readErr)
	})

	t.Run("oversized body is cut off", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Error(t, readErr)
	})
}

// setupJWTRouter wires the verification chain the way the server binary does:
// Verifier, then Authenticator, then principal binding.
func setupJWTRouter(ja *jwtauth.JWTAuth, probe http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(ja))
		r.Use(jwtauth.Authenticator)
		r.Use(JWTPrincipalMiddleware)
		r.Get("/", probe)
	})
	return r
}

func TestJWTPrincipalMiddleware_BindsSubject(t *testing.T) {
	ja := NewJWTAuth("test-secret")
	_, tokenString, err := ja.Encode(map[string]interface{}{"sub": "operator"})
	require.NoError(t, err)

	var principal string
	var bound bool
	router := setupJWTRouter(ja, func(w http.ResponseWriter, r *http.Request) {
		principal, bound = tokenmeta.PrincipalFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bound)
	assert.Equal(t, "operator", principal)
}

func TestJWTPrincipalMiddleware_NoSubjectLeavesUnbound(t *testing.T) {
	ja := NewJWTAuth("test-secret")
	_, tokenString, err := ja.Encode(map[string]interface{}{"scope": "read"})
	require.NoError(t, err)

	var bound bool
	router := setupJWTRouter(ja, func(w http.ResponseWriter, r *http.Request) {
		_, bound = tokenmeta.PrincipalFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, bound)
}

func TestJWTAuthenticator_RejectsMissingToken(t *testing.T) {
	ja := NewJWTAuth("test-secret")
	router := setupJWTRouter(ja, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for unauthenticated requests")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthenticator_RejectsWrongKey(t *testing.T) {
	other := NewJWTAuth("other-secret")
	_, tokenString, err := other.Encode(map[string]interface{}{"sub": "operator"})
	require.NoError(t, err)

	ja := NewJWTAuth("test-secret")
	router := setupJWTRouter(ja, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for forged tokens")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
