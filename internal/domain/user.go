package domain

import "strings"

// MinPasswordLength mirrors the backend's sign-up constraint.
const MinPasswordLength = 6

// User is the profile persisted next to the auth token.
type User struct {
	ID    string `json:"user_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is the backend's answer to a sign-in or sign-up.
type AuthResult struct {
	User  User
	Token string
}

// SignUpInput is validated locally before the backend is called.
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (in SignUpInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("Please enter your name")
	}
	if strings.TrimSpace(in.Email) == "" {
		return NewValidationError("Please enter your email")
	}
	if in.Password != in.ConfirmPassword {
		return NewValidationError("Passwords do not match")
	}
	if len(in.Password) < MinPasswordLength {
		return NewValidationError("Password must be at least 6 characters long")
	}
	return nil
}

// SignInInput holds credentials for an existing account.
type SignInInput struct {
	Email    string
	Password string
}

func (in SignInInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return NewValidationError("Email and password are required")
	}
	return nil
}
