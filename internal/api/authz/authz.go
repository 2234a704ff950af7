package authz

import (
	"context"
	"errors"

	"github.com/buzzleague/buzz/internal/eligibility"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type identityContextKey struct{}

func ContextWithIdentity(ctx context.Context, id eligibility.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the caller identity stored in ctx.
// It returns the anonymous identity if ctx is nil or carries none.
func IdentityFromContext(ctx context.Context) eligibility.Identity {
	if ctx == nil {
		return eligibility.Anonymous()
	}
	id, ok := ctx.Value(identityContextKey{}).(eligibility.Identity)
	if !ok {
		return eligibility.Anonymous()
	}
	return id
}

// RequireAuthenticated fails with ErrUnauthenticated for anonymous callers.
func RequireAuthenticated(ctx context.Context) error {
	if !IdentityFromContext(ctx).Authenticated {
		return ErrUnauthenticated
	}
	return nil
}

// RequireService allows only service accounts through.
func RequireService(ctx context.Context) error {
	id := IdentityFromContext(ctx)
	if !id.Authenticated {
		return ErrUnauthenticated
	}
	if !id.IsService {
		return ErrForbidden
	}
	return nil
}
