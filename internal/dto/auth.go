package dto

import "github.com/golang-jwt/jwt/v5"

// AuthClaims defines the custom claims for the gateway JWT.
type AuthClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// SignUpRequest represents the request body for creating an account
// @Description Request body for sign-up
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// SignInRequest represents the request body for signing in
// @Description Request body for sign-in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the persisted profile of the signed-in user
type UserResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// AuthResponse is returned after a successful sign-up or sign-in
// @Description Gateway access token and user profile
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}
