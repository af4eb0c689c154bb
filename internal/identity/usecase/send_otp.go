package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type SendOTPInput struct {
	Email string `validate:"required,email,max=254"`
}

// SendOTP issues a fresh code for the email unless the current one was sent
// too recently.
func (s *Usecase) SendOTP(ctx context.Context, in SendOTPInput) error {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	ttl := s.otpTTL()

	prev, err := s.repoStore.GetChallenge(ctx, in.Email)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get challenge", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}
	if prev != nil && prev.Expired(now) {
		prev = nil
	}

	if prev != nil && prev.Remaining(now) > ttl-s.otpResendThreshold() {
		slog.WarnContext(ctx, "otp requested again too soon", "email", in.Email, "remaining", prev.Remaining(now).String())
		return goerror.NewBusiness("try again later", goerror.CodeTooManyRequest)
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return goerror.NewServer(err)
	}

	codeHash, err := s.digest(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoStore.PutChallenge(ctx, entity.Challenge{
		Email:     in.Email,
		Code:      codeHash,
		ExpiresAt: now.Add(ttl),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo put challenge", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoEmail.SendOTP(ctx, entity.OTPMail{To: in.Email, Code: code, ExpiresIn: ttl}); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "email", in.Email, "error", err)
		s.rollbackChallenge(ctx, in.Email, prev)
		return goerror.NewServer(err)
	}

	return nil
}

// rollbackChallenge puts back the challenge that was live before a failed
// send, or removes the undelivered one.
func (s *Usecase) rollbackChallenge(ctx context.Context, email string, prev *entity.Challenge) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var err error
	if prev != nil {
		err = s.repoStore.PutChallenge(ctx, *prev)
	} else {
		_, err = s.repoStore.DeleteChallenge(ctx, email)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to roll back undelivered challenge", "email", email, "error", err)
	}
}
