package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/store"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	mu        sync.Mutex
	users     []entity.User
	findErr   error
	createErr error
}

func (d *fakeDirectory) FindUserByEmail(_ context.Context, email string) (*entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.findErr != nil {
		return nil, d.findErr
	}
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (d *fakeDirectory) CreateUser(_ context.Context, user entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.createErr != nil {
		return d.createErr
	}
	for _, u := range d.users {
		if strings.EqualFold(u.Email, user.Email) {
			return goerror.ErrConflict
		}
	}
	d.users = append(d.users, user)
	return nil
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []entity.UserRegistered
	err    error
}

func (m *fakeMessaging) PublishUserRegistered(_ context.Context, ev entity.UserRegistered) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, ev)
	return m.err
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []entity.OTPMail
	err  error
}

func (e *fakeEmail) SendOTP(_ context.Context, msg entity.OTPMail) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, msg)
	return nil
}

func (e *fakeEmail) lastCode(t *testing.T) string {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()

	require.NotEmpty(t, e.sent, "no otp email sent")
	return e.sent[len(e.sent)-1].Code
}

type testEnv struct {
	uc        *Usecase
	clock     *clock.Manual
	store     *store.Memory
	directory *fakeDirectory
	messaging *fakeMessaging
	email     *fakeEmail
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  identity:
    otp_ttl_seconds: 300
    otp_resend_threshold_seconds: 250
    otp_max_attempts: 6
    token_ttl_seconds: 900
`))
	require.NoError(t, err)

	env := &testEnv{
		clock:     clock.NewManual(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)),
		store:     store.NewMemory(),
		directory: &fakeDirectory{},
		messaging: &fakeMessaging{},
		email:     &fakeEmail{},
	}

	env.uc = New(Dependency{
		RepoStore:     env.store,
		RepoDirectory: env.directory,
		RepoMessaging: env.messaging,
		RepoEmail:     env.email,
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256([]byte("test-secret")),
		OTP:           otp.NewNumeric(libotp.DigitsSix),
		TokenID:       uid.NewHex(20),
		UserID:        uid.NewHex(8),
		Clock:         env.clock,
		Instrument:    instrument.NewNoop(),
	})

	return env
}

// verifiedToken runs send-otp and verify-otp for email and returns the session token.
func (e *testEnv) verifiedToken(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, e.uc.SendOTP(ctx, SendOTPInput{Email: email}))
	out, err := e.uc.VerifyOTP(ctx, VerifyOTPInput{Email: email, Code: e.email.lastCode(t)})
	require.NoError(t, err)
	return out.Token
}

func requireCode(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()

	gerr, ok := goerror.As(err)
	require.True(t, ok, "expected *goerror.Error, got %v", err)
	assert.Equal(t, code, gerr.Code())
	if msg != "" {
		assert.Equal(t, msg, gerr.Msg())
	}
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

var errBoom = errors.New("boom")
