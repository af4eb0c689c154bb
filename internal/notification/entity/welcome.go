package entity

import "time"

// Welcome is the greeting sent once a user finishes registration.
type Welcome struct {
	UserID       string
	Name         string
	Email        string
	RegisteredAt time.Time
}
