package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/directory"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/email"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/mq"
	"github.com/shandysiswandi/otpauth/internal/identity/outbound/store"
	"github.com/shandysiswandi/otpauth/internal/identity/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

type server struct {
	handler http.Handler
	mailbox *mail.Memory
	clock   *clock.Manual
	uc      *usecase.Usecase
}

func newServer(t *testing.T) *server {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  identity:
    otp_ttl_seconds: 300
    otp_resend_threshold_seconds: 250
    otp_max_attempts: 6
    token_ttl_seconds: 900
`))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	ins := instrument.NewNoop()
	broker := messaging.NewMemory()
	t.Cleanup(func() { _ = broker.Close() })

	srv := &server{
		mailbox: mail.NewMemory(),
		clock:   clock.NewManual(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)),
	}

	srv.uc = usecase.New(usecase.Dependency{
		RepoStore:     store.NewMemory(),
		RepoDirectory: directory.NewFile(filepath.Join(t.TempDir(), "users.json")),
		RepoMessaging: mq.NewMessaging(broker, ins),
		RepoEmail:     email.New(srv.mailbox, ins),
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256([]byte("test-secret")),
		OTP:           otp.NewNumeric(libotp.DigitsSix),
		TokenID:       uid.NewHex(20),
		UserID:        uid.NewHex(8),
		Clock:         srv.clock,
		Instrument:    ins,
	})

	r := router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID(), Instrument: ins})
	RegisterHTTPEndpoint(r, srv.uc)
	srv.handler = r

	return srv
}

func (s *server) do(t *testing.T, method, target, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (s *server) lastCode(t *testing.T) string {
	t.Helper()

	msg, ok := s.mailbox.Last()
	require.True(t, ok, "no mail sent")
	code := sixDigits.FindString(msg.TextBody)
	require.NotEmpty(t, code, msg.TextBody)
	return code
}

func (s *server) token(t *testing.T, addr string) string {
	t.Helper()

	status, _ := s.do(t, http.MethodPost, "/send-otp", `{"email":"`+addr+`"}`, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, http.MethodPost, "/verify-otp", `{"email":"`+addr+`","code":"`+s.lastCode(t)+`"}`, nil)
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func TestHTTP_RegistrationFlow(t *testing.T) {
	t.Parallel()

	// Arrange
	srv := newServer(t)

	// Act & Assert: send
	status, body := srv.do(t, http.MethodPost, "/send-otp", `{"email":"alice@example.com"}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	msg, ok := srv.mailbox.Last()
	require.True(t, ok)
	assert.Equal(t, []string{"alice@example.com"}, msg.To)

	// Act & Assert: verify
	status, body = srv.do(t, http.MethodPost, "/verify-otp",
		`{"email":"alice@example.com","code":"`+srv.lastCode(t)+`"}`, nil)
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.Len(t, token, 40)

	// Act & Assert: register
	status, body = srv.do(t, http.MethodPost, "/register",
		`{"name":"Alice","email":"alice@example.com","token":"`+token+`"}`, nil)
	require.Equal(t, http.StatusOK, status, body)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Len(t, user["id"], 16)
	assert.NotEmpty(t, user["createdAt"])

	// Act & Assert: exists
	status, body = srv.do(t, http.MethodPost, "/exists", `{"email":"alice@example.com"}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["exists"])

	status, body = srv.do(t, http.MethodPost, "/exists", `{"email":"bob@example.com"}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["exists"])

	// Act & Assert: the token was consumed by register
	status, body = srv.do(t, http.MethodPost, "/register",
		`{"name":"Alice","email":"alice@example.com","token":"`+token+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid or expired token", body["error"])
}

func TestHTTP_Me(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	token := srv.token(t, "carol@example.com")
	status, body := srv.do(t, http.MethodPost, "/register",
		`{"name":"Carol","email":"carol@example.com","token":"`+token+`"}`, nil)
	require.Equal(t, http.StatusOK, status, body)

	meToken := srv.token(t, "carol@example.com")
	orphan := srv.token(t, "dave@example.com")

	tests := []struct {
		name       string
		target     string
		headers    map[string]string
		wantStatus int
		wantError  string
	}{
		{
			name:       "MissingToken",
			target:     "/me",
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthenticated",
		},
		{
			name:       "UnknownToken",
			target:     "/me",
			headers:    map[string]string{router.HeaderAuthToken: strings.Repeat("a", 40)},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid or expired token",
		},
		{
			name:       "Header",
			target:     "/me",
			headers:    map[string]string{router.HeaderAuthToken: meToken},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Query",
			target:     "/me?token=" + meToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "NotRegistered",
			target:     "/me",
			headers:    map[string]string{router.HeaderAuthToken: orphan},
			wantStatus: http.StatusNotFound,
			wantError:  "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			status, body := srv.do(t, http.MethodGet, tt.target, "", tt.headers)

			// Assert
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			user, _ := body["user"].(map[string]any)
			require.NotNil(t, user)
			assert.Equal(t, "carol@example.com", user["email"])
		})
	}
}

func TestHTTP_Me_ExpiredToken(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	token := srv.token(t, "erin@example.com")

	srv.clock.Advance(901 * time.Second)

	status, body := srv.do(t, http.MethodGet, "/me", "", map[string]string{router.HeaderAuthToken: token})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["ok"])
}

func TestHTTP_VerifyErrors(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	status, body := srv.do(t, http.MethodPost, "/verify-otp", `{"email":"frank@example.com","code":"123456"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "no challenge", body["error"])

	status, _ = srv.do(t, http.MethodPost, "/send-otp", `{"email":"frank@example.com"}`, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = srv.do(t, http.MethodPost, "/send-otp", `{"email":"frank@example.com"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "try again later", body["error"])

	wrong := "000000"
	if srv.lastCode(t) == wrong {
		wrong = "111111"
	}
	for range 6 {
		status, body = srv.do(t, http.MethodPost, "/verify-otp", `{"email":"frank@example.com","code":"`+wrong+`"}`, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid code", body["error"])
	}

	status, body = srv.do(t, http.MethodPost, "/verify-otp", `{"email":"frank@example.com","code":"`+wrong+`"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "too many attempts", body["error"])
}

func TestHTTP_ValidationError(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	status, body := srv.do(t, http.MethodPost, "/send-otp", `{"email":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])
	assert.Empty(t, srv.mailbox.Sent())
}

func TestJanitorJob(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	srv.token(t, "gina@example.com")
	srv.clock.Advance(time.Hour)

	job := &JanitorJob{uc: srv.uc}
	assert.Equal(t, "identity_janitor", job.Name())
	assert.NoError(t, job.Run(context.Background()))
}
