package inbound

import (
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
)

type SendOTPRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" example:"alice@example.com"`
	Code  string `json:"code" example:"042917"`
}

type VerifyOTPResponse struct {
	Token string `json:"token" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b"`
}

type RegisterRequest struct {
	Name  string `json:"name" example:"Alice"`
	Email string `json:"email" example:"alice@example.com"`
	Token string `json:"token" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b"`
}

type ExistsRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type User struct {
	ID        string    `json:"id" example:"3f2a9c0d51e8b7a4"`
	Name      string    `json:"name" example:"Alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserResponse struct {
	User User `json:"user"`
}

func newUser(u entity.User) User {
	return User{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}
