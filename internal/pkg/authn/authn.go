// Package authn carries the authenticated session through a request.
//
// Session tokens are opaque: a Verifier resolves one against server-side state
// and returns the Claims it stands for.
package authn

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidToken is returned when a token is unknown or has expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims describes a verified session.
type Claims struct {
	Email     string
	ExpiresAt time.Time
}

// Verifier resolves an opaque token into Claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type authContextKey struct{}

// GetAuth returns the claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authContextKey{}).(*Claims)
	if !ok {
		return nil
	}
	return clm
}

// SetAuth stores claims in the context.
func SetAuth(ctx context.Context, clm *Claims) context.Context {
	return context.WithValue(ctx, authContextKey{}, clm)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (*Claims, error)

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, token string) (*Claims, error) {
	return f(ctx, token)
}
