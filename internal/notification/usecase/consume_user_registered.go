package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpauth/internal/notification/entity"
)

type ConsumeUserRegisteredInput struct {
	UserID    string `validate:"required"`
	Name      string `validate:"required,max=100"`
	Email     string `validate:"required,email"`
	CreatedAt time.Time
}

// ConsumeUserRegistered sends the welcome email. Invalid events are dropped
// so the broker stops redelivering them; mail failures are returned.
func (s *Usecase) ConsumeUserRegistered(ctx context.Context, in ConsumeUserRegisteredInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistered")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "drop invalid user registered event", "user_id", in.UserID, "error", err)
		return nil
	}

	if err := s.repoMail.SendWelcome(ctx, entity.Welcome{
		UserID:       in.UserID,
		Name:         in.Name,
		Email:        in.Email,
		RegisteredAt: in.CreatedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo send welcome email", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
