package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/authn"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type ProfileOutput struct {
	User entity.User
}

// Profile returns the registered user behind the authenticated session.
func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm := authn.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("unauthenticated", goerror.CodeUnauthorized)
	}

	user, err := s.repoDirectory.FindUserByEmail(ctx, clm.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find user by email", "email", clm.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{User: *user}, nil
}
