package tokenmeta

import (
	"context"
	"fmt"
)

type principalKey struct{}

// WithPrincipal returns a context carrying the caller identity consulted by
// principal-based authorizers. HTTP middleware and CLIs set this after
// authenticating the request.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the caller identity set by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey{}).(string)
	return p, ok
}

// AllowAllAuthorizer grants every operation. It is the default when no
// authorizer is configured; embedding applications are expected to enforce
// access control in front of the service.
type AllowAllAuthorizer struct{}

// NewAllowAllAuthorizer creates an authorizer that grants every operation
func NewAllowAllAuthorizer() Authorizer {
	return &AllowAllAuthorizer{}
}

// Authorize always grants the operation
func (a *AllowAllAuthorizer) Authorize(ctx context.Context, op Operation) error {
	return nil
}

// StaticPrincipalAuthorizer grants mutations to a fixed set of principals.
// The caller identity is read from the context via PrincipalFromContext.
type StaticPrincipalAuthorizer struct {
	allowed map[string]struct{}
}

// NewStaticPrincipalAuthorizer creates an authorizer that grants mutations to
// the given principals only
func NewStaticPrincipalAuthorizer(principals ...string) Authorizer {
	allowed := make(map[string]struct{}, len(principals))
	for _, p := range principals {
		allowed[p] = struct{}{}
	}
	return &StaticPrincipalAuthorizer{allowed: allowed}
}

// Authorize grants the operation when the context carries an allowed principal
func (a *StaticPrincipalAuthorizer) Authorize(ctx context.Context, op Operation) error {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no principal", ErrUnauthorized)
	}
	if _, ok := a.allowed[p]; !ok {
		return fmt.Errorf("%w: principal %q may not perform %s", ErrUnauthorized, p, op)
	}
	return nil
}
