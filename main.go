package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpauth/internal/app"
)

// @title           OTP Auth API
// @version         1.0
// @description     Email one-time-password verification, session tokens and user registration.
// @contact.name    Contact Support
// @contact.email   support@otpauth.dev
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  AuthToken
// @in header
// @name X-Auth-Token
// @description Session token returned by /verify-otp.
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
