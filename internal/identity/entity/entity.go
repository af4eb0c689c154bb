package entity

import "time"

// Challenge is a pending one-time passcode for an email. Code holds the
// HMAC digest of the plaintext code.
type Challenge struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	Attempts  int
}

// Expired reports whether the challenge lifetime has passed at now.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Remaining returns the lifetime left at now, never negative.
func (c Challenge) Remaining(now time.Time) time.Duration {
	return max(c.ExpiresAt.Sub(now), 0)
}

// Session is an email proven by a verified code. Token holds the HMAC
// digest of the opaque token handed to the client.
type Session struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the session lifetime has passed at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
