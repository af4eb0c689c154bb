package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type VerifyOTPInput struct {
	Email string `validate:"required"`
	Code  string `validate:"required"`
}

type VerifyOTPOutput struct {
	Token     string
	ExpiresAt time.Time
}

// VerifyOTP checks a code against the pending challenge and trades it for
// a session token.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	errNoChallenge := goerror.NewBusiness("no challenge", goerror.CodePrecondition)

	chal, err := s.repoStore.GetChallenge(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errNoChallenge
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if chal.Expired(now) {
		if _, err := s.repoStore.DeleteChallenge(ctx, in.Email); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired challenge", "email", in.Email, "error", err)
		}
		return nil, goerror.NewBusiness("expired", goerror.CodeExpired)
	}

	attempts, err := s.repoStore.IncrementAttempts(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errNoChallenge
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo increment attempts", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if attempts > s.otpMaxAttempts() {
		if _, err := s.repoStore.DeleteChallenge(ctx, in.Email); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete exhausted challenge", "email", in.Email, "error", err)
		}
		slog.WarnContext(ctx, "otp attempts exhausted", "email", in.Email, "attempts", attempts)
		return nil, goerror.NewBusiness("too many attempts", goerror.CodeTooManyRequest)
	}

	codeHash, err := s.digest(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	// Compare and delete in one step; only the caller that removes the
	// challenge may mint a token.
	consumed, err := s.repoStore.ConsumeChallenge(ctx, in.Email, codeHash)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errNoChallenge
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume challenge", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !consumed {
		return nil, goerror.NewBusiness("invalid code", goerror.CodeInvalidInput)
	}

	token := s.tokenID.Generate()
	tokenHash, err := s.digest(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return nil, goerror.NewServer(err)
	}

	sess := entity.Session{Token: tokenHash, Email: in.Email, ExpiresAt: now.Add(s.tokenTTL())}
	if err := s.repoStore.PutSession(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo put session", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyOTPOutput{Token: token, ExpiresAt: sess.ExpiresAt}, nil
}
