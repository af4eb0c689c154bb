package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

type testServer struct {
	baseURL string
	mailbox *mail.Memory
}

func startApp(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
app:
  tz: UTC
hash:
  hmac:
    secret: e2e-secret
mail:
  driver: memory
modules:
  identity:
    directory:
      driver: file
      path: %s
`, filepath.Join(dir, "users.json"))), 0o600))

	t.Setenv("CONFIG_PATH", cfgPath)

	application := New()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errChan := application.Serve(l)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		application.Stop(ctx)
		<-errChan
	})

	mailbox, ok := application.mail.(*mail.Memory)
	require.True(t, ok)

	return &testServer{baseURL: "http://" + l.Addr().String(), mailbox: mailbox}
}

func (s *testServer) doJSON(t *testing.T, method, path string, payload any, token string) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
		body = buf
	}

	req, err := http.NewRequest(method, s.baseURL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp.StatusCode, out
}

func (s *testServer) codeFor(t *testing.T, email string) string {
	t.Helper()

	var code string
	for _, msg := range s.mailbox.Sent() {
		if len(msg.To) == 1 && msg.To[0] == email && msg.Subject == "Your verification code" {
			code = sixDigits.FindString(msg.TextBody)
		}
	}
	require.NotEmpty(t, code, "no verification code mailed to %s", email)
	return code
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestApp_EndToEnd(t *testing.T) {
	srv := startApp(t)
	email := uniqueEmail("e2e")

	// health
	status, body := srv.doJSON(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	// send-otp
	status, body = srv.doJSON(t, http.MethodPost, "/send-otp", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, status, body)

	// verify-otp
	status, body = srv.doJSON(t, http.MethodPost, "/verify-otp",
		map[string]string{"email": email, "code": srv.codeFor(t, email)}, "")
	require.Equal(t, http.StatusOK, status, body)
	token, _ := body["token"].(string)
	require.Len(t, token, 40)

	// /me before registration
	status, body = srv.doJSON(t, http.MethodGet, "/me", nil, token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "user not found", body["error"])

	// register
	status, body = srv.doJSON(t, http.MethodPost, "/register",
		map[string]string{"name": "  E2E User  ", "email": email, "token": token}, "")
	require.Equal(t, http.StatusOK, status, body)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	assert.Equal(t, "E2E User", user["name"])

	// exists
	status, body = srv.doJSON(t, http.MethodPost, "/exists", map[string]string{"email": strings.ToUpper(email)}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["exists"])

	// welcome email through the in-process broker
	require.Eventually(t, func() bool {
		for _, msg := range srv.mailbox.Sent() {
			if msg.Subject == "Welcome aboard" && msg.To[0] == email {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)

	// /me without token
	status, body = srv.doJSON(t, http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthenticated", body["error"])
}
