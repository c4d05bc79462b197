// File: internal/dtos/user.go
package dtos

import "github.com/iyunix/chat-gateway/internal/domain"

// RegisterRequestDTO is the JSON body of POST /auth/register.
type RegisterRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponseDTO defines what fields to expose in user API responses.
type UserResponseDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// TokenResponseDTO is the OAuth2-style password grant response.
type TokenResponseDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ToUserResponse converts a domain.User to a UserResponseDTO.
func ToUserResponse(user *domain.User) UserResponseDTO {
	return UserResponseDTO{
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}
}

// ErrorResponseDTO is the body of every error response.
type ErrorResponseDTO struct {
	Detail string `json:"detail"`
}

// MessageResponseDTO acknowledges a mutation.
type MessageResponseDTO struct {
	Message string `json:"message"`
}
