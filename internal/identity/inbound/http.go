package inbound

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/identity/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/authn"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

type uc interface {
	SendOTP(ctx context.Context, in usecase.SendOTPInput) error
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Exists(ctx context.Context, in usecase.ExistsInput) (bool, error)
	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
	Authenticate(ctx context.Context, token string) (*authn.Claims, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	auth := router.MiddlewareAuthentication(authn.VerifierFunc(uc.Authenticate))

	// OTP
	r.POST("/send-otp", end.SendOTP)
	r.POST("/verify-otp", end.VerifyOTP)

	// Directory
	r.POST("/register", end.Register)
	r.POST("/exists", end.Exists)

	// Session (need authenticated)
	r.GET("/me", end.Me, auth)
}
