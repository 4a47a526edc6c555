package dto

import (
	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/service"
)

// RegisterRequest represents the request body for registering a user.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToInput converts the request to service input.
func (r RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToInput converts the request to service input.
func (r LoginRequest) ToInput() service.LoginInput {
	return service.LoginInput{
		Email:    r.Email,
		Password: r.Password,
	}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// ToUserResponse converts a user summary to its response form.
func ToUserResponse(u model.UserSummary) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// ToLoginResponse converts a login result to its response form.
func ToLoginResponse(result *service.LoginResult) *LoginResponse {
	return &LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		User:        ToUserResponse(result.User),
	}
}
