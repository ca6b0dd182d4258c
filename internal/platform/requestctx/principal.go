// Package requestctx carries request-scoped identity through context.
package requestctx

import "context"

// Principal identifies the authenticated caller and the agency scope every
// downstream read or write must be filtered by.
type Principal struct {
	UserID   string
	AgencyID string
	Role     string
}

// principalContextKey is the context key for the authenticated principal.
type principalContextKey struct{}

// WithPrincipal stores the authenticated principal in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal stored in context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	value, ok := ctx.Value(principalContextKey{}).(Principal)
	return value, ok
}
