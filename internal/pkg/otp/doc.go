// Package otp generates numeric one-time passcodes for email verification.
//
// Codes are drawn uniformly from crypto/rand so every digit sequence,
// including ones with leading zeros, is equally likely.
package otp
