package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpauth/internal/pkg/authn"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newTestRouter(t *testing.T, yaml string, staticDir string) *Router {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	return NewRouter(Config{
		Config:     cfg,
		UUID:       fixedID("generated-cid"),
		Instrument: instrument.NewNoop(),
		StaticDir:  staticDir,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, "app: {}", "")

	rec, out := do(t, r, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"ok": true, "status": "up"}, out)
	assert.Equal(t, "generated-cid", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_SuccessBodyIsFlattened(t *testing.T) {
	r := newTestRouter(t, "app: {}", "")
	r.POST("/obj", func(*Request) (any, error) {
		return struct {
			Token string `json:"token"`
			OK    bool   `json:"ok"`
		}{Token: "abc", OK: false}, nil
	})
	r.POST("/scalar", func(*Request) (any, error) { return 42, nil })
	r.POST("/nil", func(*Request) (any, error) { return nil, nil })

	_, out := do(t, r, http.MethodPost, "/obj", "", nil)
	assert.Equal(t, map[string]any{"ok": true, "token": "abc"}, out)

	_, out = do(t, r, http.MethodPost, "/scalar", "", nil)
	assert.Equal(t, map[string]any{"ok": true, "data": float64(42)}, out)

	_, out = do(t, r, http.MethodPost, "/nil", "", nil)
	assert.Equal(t, map[string]any{"ok": true}, out)
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "business",
			err:        goerror.NewBusiness("try again later", goerror.CodeTooManyRequest),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   map[string]any{"ok": false, "error": "try again later", "code": "ERROR_CODE_TOO_MANY_REQUESTS"},
		},
		{
			name:       "validation",
			err:        goerror.NewInvalidInput(validator.V10ValidationError{"email": "email is a required field"}),
			wantStatus: http.StatusBadRequest,
			wantBody: map[string]any{
				"ok": false, "error": "Validation error", "code": "ERROR_CODE_INVALID_INPUT",
				"fields": map[string]any{"email": "email is a required field"},
			},
		},
		{
			name:       "server error hides cause",
			err:        goerror.NewServer(errors.New("open /data/users.json: permission denied")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"ok": false, "error": "Internal server error", "code": "ERROR_CODE_INTERNAL"},
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"ok": false, "error": "Internal server error", "code": "ERROR_CODE_INTERNAL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "app: {}", "")
			r.POST("/x", func(*Request) (any, error) { return nil, tt.err })

			rec, out := do(t, r, http.MethodPost, "/x", "", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, out)
		})
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	r := newTestRouter(t, "app: {}", "")

	rec, out := do(t, r, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", out["error"])

	rec, _ = do(t, r, http.MethodPost, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_StaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	r := newTestRouter(t, "app: {}", dir)

	rec, _ := do(t, r, http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log(1)")

	rec, out := do(t, r, http.MethodGet, "/missing.js", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", out["error"])
}

func TestRouter_CorrelationIDFromHeader(t *testing.T) {
	r := newTestRouter(t, "app: {}", "")
	var seen string
	r.GET("/cid", func(req *Request) (any, error) {
		seen = instrument.GetCorrelationID(req.Context())
		return nil, nil
	})

	rec, _ := do(t, r, http.MethodGet, "/cid", "", map[string]string{HeaderRequestID: "  req-1 "})

	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, `
app:
  maintenance:
    endpoints: "/send-otp"
`, "")
	r.POST("/send-otp", func(*Request) (any, error) { return nil, nil })

	rec, out := do(t, r, http.MethodPost, "/send-otp", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ERROR_CODE_UNAVAILABLE", out["code"])

	rec, _ = do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RecoversPanic(t *testing.T) {
	r := newTestRouter(t, "app: {}", "")
	r.GET("/panic", func(*Request) (any, error) { panic("kaboom") })

	rec, out := do(t, r, http.MethodGet, "/panic", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", out["error"])
}

func TestMiddlewareAuthentication(t *testing.T) {
	verifier := authn.VerifierFunc(func(_ context.Context, token string) (*authn.Claims, error) {
		switch token {
		case "good":
			return &authn.Claims{Email: "a@x.com"}, nil
		case "broken":
			return nil, goerror.NewServer(errors.New("redis down"))
		default:
			return nil, authn.ErrInvalidToken
		}
	})

	r := newTestRouter(t, "app: {}", "")
	r.GET("/me", func(req *Request) (any, error) {
		return map[string]string{"email": authn.GetAuth(req.Context()).Email}, nil
	}, MiddlewareAuthentication(verifier))

	tests := []struct {
		name       string
		target     string
		headers    map[string]string
		wantStatus int
		wantError  string
	}{
		{name: "header", target: "/me", headers: map[string]string{"x-auth-token": "good"}, wantStatus: http.StatusOK},
		{name: "query", target: "/me?token=good", wantStatus: http.StatusOK},
		{name: "missing", target: "/me", wantStatus: http.StatusUnauthorized, wantError: "unauthenticated"},
		{name: "unknown", target: "/me?token=bad", wantStatus: http.StatusUnauthorized, wantError: "invalid or expired token"},
		{name: "store failure", target: "/me?token=broken", wantStatus: http.StatusInternalServerError, wantError: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, r, http.MethodGet, tt.target, "", tt.headers)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError == "" {
				assert.Equal(t, "a@x.com", out["email"])
				return
			}
			assert.Equal(t, tt.wantError, out["error"])
		})
	}
}

func TestRequest_DecodeBody(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"email":"a@x.com"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"email":"a@x.com","x":1}`, wantErr: true},
		{name: "trailing data", body: `{"email":"a@x.com"}{}`, wantErr: true},
		{name: "not json", body: `email=a@x.com`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}
			var dst payload
			err := req.DecodeBody(&dst)
			if tt.wantErr {
				ge, ok := goerror.As(err)
				require.True(t, ok)
				assert.Equal(t, goerror.CodeInvalidFormat, ge.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", dst.Email)
		})
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", realIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", realIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "10.0.0.1", realIP(req))
}
