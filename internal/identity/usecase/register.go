package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type RegisterInput struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"required,email,max=254"`
	Token string `validate:"required"`
}

type RegisterOutput struct {
	User entity.User
}

// Register creates a user for the email proven by token. The token is
// consumed only after the user is persisted.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	errInvalidToken := goerror.NewBusiness("invalid or expired token", goerror.CodePrecondition)

	tokenHash, err := s.digest(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return nil, goerror.NewServer(err)
	}

	sess, err := s.repoStore.GetSession(ctx, tokenHash)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errInvalidToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get session", "error", err)
		return nil, goerror.NewServer(err)
	}
	if sess.Expired(now) || sess.Email != in.Email {
		return nil, errInvalidToken
	}

	errUserExists := goerror.NewBusiness("user exists", goerror.CodeConflict)

	_, err = s.repoDirectory.FindUserByEmail(ctx, in.Email)
	if err == nil {
		return nil, errUserExists
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo find user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.User{
		ID:        s.userID.Generate(),
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: now.UTC(),
	}

	if err := s.repoDirectory.CreateUser(ctx, user); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, errUserExists
		}
		slog.ErrorContext(ctx, "failed to repo create user", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if _, err := s.repoStore.DeleteSession(ctx, tokenHash); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete consumed session", "user_id", user.ID, "error", err)
	}

	if err := s.repoMessaging.PublishUserRegistered(ctx, entity.UserRegistered{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user registered", "user_id", user.ID, "error", err)
	}

	return &RegisterOutput{User: user}, nil
}
