package users

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const MinPasswordLength = 6

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("username or email already exists")
	ErrWrongPassword  = errors.New("wrong credentials")
	ErrInvalidRequest = errors.New("invalid request")
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate trims the request and checks it, returning an error wrapping
// ErrInvalidRequest with a message fit for the client.
func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if r.Username == "" || r.Email == "" || r.Password == "" {
		return invalidRequest("username, email and password are required")
	}
	if len(r.Password) < MinPasswordLength {
		return invalidRequest("password must be at least 6 characters")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return invalidRequest("email is invalid")
	}
	return nil
}

type LoginRequest struct {
	// Username may also hold the email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return invalidRequest("username and password are required")
	}
	return nil
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

func (e *requestError) Unwrap() error {
	return ErrInvalidRequest
}

func invalidRequest(msg string) error {
	return &requestError{msg: msg}
}
