package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// Config keys read on every call so a reloaded file takes effect without restart.
const (
	KeyOTPTTL             = "modules.identity.otp_ttl_seconds"
	KeyOTPResendThreshold = "modules.identity.otp_resend_threshold_seconds"
	KeyOTPMaxAttempts     = "modules.identity.otp_max_attempts"
	KeyTokenTTL           = "modules.identity.token_ttl_seconds"
)

const (
	defaultOTPTTL             = 300 * time.Second
	defaultOTPResendThreshold = 250 * time.Second
	defaultOTPMaxAttempts     = 6
	defaultTokenTTL           = 900 * time.Second
)

type repoStore interface {
	GetChallenge(ctx context.Context, email string) (*entity.Challenge, error)
	PutChallenge(ctx context.Context, c entity.Challenge) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
	DeleteChallenge(ctx context.Context, email string) (bool, error)
	ConsumeChallenge(ctx context.Context, email, code string) (bool, error)
	SweepChallenges(ctx context.Context, now time.Time) (int, error)

	GetSession(ctx context.Context, token string) (*entity.Session, error)
	PutSession(ctx context.Context, s entity.Session) error
	DeleteSession(ctx context.Context, token string) (bool, error)
	SweepSessions(ctx context.Context, now time.Time) (int, error)
}

type repoDirectory interface {
	FindUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.User) error
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, ev entity.UserRegistered) error
}

type repoEmail interface {
	SendOTP(ctx context.Context, msg entity.OTPMail) error
}

type Usecase struct {
	repoStore     repoStore
	repoDirectory repoDirectory
	repoMessaging repoMessaging
	repoEmail     repoEmail
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	otp           otp.Generator
	tokenID       uid.StringID
	userID        uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoStore     repoStore
	RepoDirectory repoDirectory
	RepoMessaging repoMessaging
	RepoEmail     repoEmail
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	OTP           otp.Generator
	// TokenID generates session tokens (40 hex chars).
	TokenID uid.StringID
	// UserID generates user ids (16 hex chars).
	UserID     uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoStore:     dep.RepoStore,
		repoDirectory: dep.RepoDirectory,
		repoMessaging: dep.RepoMessaging,
		repoEmail:     dep.RepoEmail,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		otp:           dep.OTP,
		tokenID:       dep.TokenID,
		userID:        dep.UserID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	return positiveOr(s.cfg.GetSecond(KeyOTPTTL), defaultOTPTTL)
}

func (s *Usecase) otpResendThreshold() time.Duration {
	return positiveOr(s.cfg.GetSecond(KeyOTPResendThreshold), defaultOTPResendThreshold)
}

func (s *Usecase) otpMaxAttempts() int {
	return positiveOr(s.cfg.GetInt(KeyOTPMaxAttempts), defaultOTPMaxAttempts)
}

func (s *Usecase) tokenTTL() time.Duration {
	return positiveOr(s.cfg.GetSecond(KeyTokenTTL), defaultTokenTTL)
}

func positiveOr[T int | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

func (s *Usecase) digest(secret string) (string, error) {
	sum, err := s.hmac.Hash(secret)
	if err != nil {
		return "", err
	}
	return string(sum), nil
}
