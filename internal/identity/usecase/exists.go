package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type ExistsInput struct {
	Email string `validate:"required"`
}

func (s *Usecase) Exists(ctx context.Context, in ExistsInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "Exists")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDirectory.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find user by email", "email", in.Email, "error", err)
		return false, goerror.NewServer(err)
	}

	return true, nil
}
