package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/pkg/authn"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

// Authenticate resolves an opaque session token. It backs the
// authentication middleware, so it returns authn.ErrInvalidToken for every
// client-side failure and a server error otherwise.
func (s *Usecase) Authenticate(ctx context.Context, token string) (*authn.Claims, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	if token == "" {
		return nil, authn.ErrInvalidToken
	}

	tokenHash, err := s.digest(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return nil, goerror.NewServer(err)
	}

	sess, err := s.repoStore.GetSession(ctx, tokenHash)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, authn.ErrInvalidToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get session", "error", err)
		return nil, goerror.NewServer(err)
	}

	if sess.Expired(s.clock.Now()) {
		return nil, authn.ErrInvalidToken
	}

	return &authn.Claims{Email: sess.Email, ExpiresAt: sess.ExpiresAt}, nil
}
