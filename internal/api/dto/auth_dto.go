package dto

import "time"

// LoginRequest payload for POST /auth/token.
type LoginRequest struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

// TokenResponse carries an operator access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
