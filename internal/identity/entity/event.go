package entity

import "time"

// UserRegistered is emitted after a user is persisted.
type UserRegistered struct {
	UserID    string
	Name      string
	Email     string
	CreatedAt time.Time
}

// OTPMail is the content of a verification code email.
type OTPMail struct {
	To        string
	Code      string
	ExpiresIn time.Duration
}
