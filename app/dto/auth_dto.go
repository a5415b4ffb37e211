// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SignupRequest represents the request payload for account creation
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Username        string `json:"username" validate:"required,min=3,max=50,alphanum" example:"janedoe"`
	Password        string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password" example:"SecurePass123!"`
}

// SignupResponse represents the successful signup response
type SignupResponse struct {
	UserID       uint     `json:"user_id" example:"123"`
	UUID         string   `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type" example:"Bearer"`
	ExpiresIn    int      `json:"expires_in" example:"3600"`
	User         UserInfo `json:"user"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=255" example:"user@example.com or janedoe"`
	Password   string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type" example:"Bearer"`
	ExpiresIn    int      `json:"expires_in" example:"3600"`
	User         UserInfo `json:"user"`
}

// RefreshTokenRequest represents the request to exchange a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse represents new tokens issued from a refresh
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"3600"`
}

// LogoutRequest represents the request to terminate a session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// UserInfo represents user information returned in auth responses
type UserInfo struct {
	ID              uint   `json:"id" example:"123"`
	UUID            string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email           string `json:"email" example:"user@example.com"`
	Username        string `json:"username" example:"janedoe"`
	IsEmailVerified *bool  `json:"is_email_verified" example:"false"`
	IsActive        *bool  `json:"is_active" example:"true"`
	CreatedAt       string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}
