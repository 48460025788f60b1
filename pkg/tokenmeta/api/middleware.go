package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Context keys for middleware
type contextKey string

// RequestIDKey holds the request id assigned by RequestIDMiddleware.
const RequestIDKey contextKey = "request_id"

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// Add to context
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		// Add to response headers
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestSizeLimitMiddleware limits the size of request bodies
func RequestSizeLimitMiddleware(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}

// NewJWTAuth builds the token verifier for the "jwt" auth mode. Mount with
// jwtauth.Verifier and jwtauth.Authenticator, then JWTPrincipalMiddleware.
func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// JWTPrincipalMiddleware binds the verified token's subject claim as the
// request principal. Domain-level authorizers read it back with
// tokenmeta.PrincipalFromContext. Requests without a subject pass through
// unbound; rejecting unverified tokens is the Authenticator's job.
func JWTPrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err == nil {
			if sub, ok := claims["sub"].(string); ok && sub != "" {
				r = r.WithContext(tokenmeta.WithPrincipal(r.Context(), sub))
			}
		}

		next.ServeHTTP(w, r)
	})
}
