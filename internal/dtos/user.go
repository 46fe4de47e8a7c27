// File: internal/dtos/user.go
package dtos

import (
	"strings"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
// Sensitive fields like the password hash are excluded, and email is
// masked for non-admin consumers.
type UserResponseDTO struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Email       string `json:"email,omitempty"` // Masked for privacy
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at"`
}

// UserRegisterRequestDTO represents the expected payload to create a new account.
type UserRegisterRequestDTO struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// UserLoginRequestDTO represents the login payload.
type UserLoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserLoginResponseDTO represents the login response.
type UserLoginResponseDTO struct {
	User  UserResponseDTO `json:"user"`
	Token string          `json:"token"`
}

// UserUpdateRequestDTO represents the payload to update profile fields.
type UserUpdateRequestDTO struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// AdminUserResponseDTO includes additional fields for admin endpoints.
type AdminUserResponseDTO struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"` // Not masked for admin
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// FromDomain maps a domain.User to UserResponseDTO for public API responses.
func FromDomain(user domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Email:       maskEmail(user.Email),
		IsAdmin:     user.IsAdmin,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

// ToAdminDomain maps a domain.User to AdminUserResponseDTO for admin endpoints.
func ToAdminDomain(user domain.User) AdminUserResponseDTO {
	return AdminUserResponseDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		AvatarURL:   user.AvatarURL,
		IsAdmin:     user.IsAdmin,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   user.UpdatedAt.Format(time.RFC3339),
	}
}

// FromDomainSlice maps a slice of domain.User to []UserResponseDTO.
func FromDomainSlice(users []domain.User) []UserResponseDTO {
	dtos := make([]UserResponseDTO, len(users))
	for i, user := range users {
		dtos[i] = FromDomain(user)
	}
	return dtos
}

// ToAdminDomainSlice maps a slice of domain.User to []AdminUserResponseDTO.
func ToAdminDomainSlice(users []domain.User) []AdminUserResponseDTO {
	dtos := make([]AdminUserResponseDTO, len(users))
	for i, user := range users {
		dtos[i] = ToAdminDomain(user)
	}
	return dtos
}

// maskEmail partially masks an email address for public responses.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + "****" + email[at:]
}

// Response wrapper DTOs for consistent API responses

// ErrorResponse represents an error API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
