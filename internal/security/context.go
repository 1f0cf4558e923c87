package security

import "context"

type claimsKey struct{}

// WithClaims stores the authenticated staff claims on ctx.
func WithClaims(ctx context.Context, claims *StaffClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*StaffClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*StaffClaims)
	return c, ok
}
