package inbound

import (
	"github.com/shandysiswandi/otpauth/internal/identity/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP and registration workflow.
type HTTPEndpoint struct {
	uc uc
}

// SendOTP emails a verification code.
// @Summary Send verification code
// @Description Emails a 6-digit code to the address. A new code can be requested once the current one is old enough.
// @Tags Identity
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Send OTP payload"
// @Success 200 {object} map[string]bool "ok"
// @Failure 400 {object} router.ErrorResponse "Missing or invalid email"
// @Failure 429 {object} router.ErrorResponse "try again later"
// @Failure 500 {object} router.ErrorResponse "Mail delivery failed"
// @Router /send-otp [post]
func (h *HTTPEndpoint) SendOTP(r *router.Request) (any, error) {
	var req SendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.SendOTP(r.Context(), usecase.SendOTPInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return nil, nil
}

// VerifyOTP trades a valid code for a session token.
// @Summary Verify code
// @Description Checks the code sent to the email and returns a session token.
// @Tags Identity
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verify OTP payload"
// @Success 200 {object} VerifyOTPResponse "Session token"
// @Failure 400 {object} router.ErrorResponse "no challenge, expired or invalid code"
// @Failure 429 {object} router.ErrorResponse "too many attempts"
// @Router /verify-otp [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{Token: resp.Token}, nil
}

// Register creates the user proven by a session token.
// @Summary Register user
// @Description Creates a user for the verified email. The token cannot register twice.
// @Tags Identity
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Register payload"
// @Success 200 {object} UserResponse "Registered user"
// @Failure 400 {object} router.ErrorResponse "invalid or expired token, or user exists"
// @Failure 500 {object} router.ErrorResponse "Internal server error"
// @Router /register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Token: req.Token,
	})
	if err != nil {
		return nil, err
	}

	return UserResponse{User: newUser(resp.User)}, nil
}

// Exists reports whether an email is registered.
// @Summary Check email
// @Tags Identity
// @Accept json
// @Produce json
// @Param request body ExistsRequest true "Exists payload"
// @Success 200 {object} ExistsResponse "Existence flag"
// @Failure 400 {object} router.ErrorResponse "Missing email"
// @Router /exists [post]
func (h *HTTPEndpoint) Exists(r *router.Request) (any, error) {
	var req ExistsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ok, err := h.uc.Exists(r.Context(), usecase.ExistsInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return ExistsResponse{Exists: ok}, nil
}

// Me returns the registered user behind the session token.
// @Summary Current user
// @Tags Identity
// @Produce json
// @Param X-Auth-Token header string false "Session token"
// @Param token query string false "Session token"
// @Success 200 {object} UserResponse "Registered user"
// @Failure 401 {object} router.ErrorResponse "unauthenticated"
// @Failure 404 {object} router.ErrorResponse "user not found"
// @Router /me [get]
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return UserResponse{User: newUser(resp.User)}, nil
}
