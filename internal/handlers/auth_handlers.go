// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/huddlehq/huddle/internal/dtos"
	"github.com/huddlehq/huddle/internal/middleware"
	"github.com/huddlehq/huddle/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	UserService *user_services.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *user_services.UserService) *AuthHandler {
	return &AuthHandler{UserService: service}
}

// Register handles new account registrations.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.UserRegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.UserService.Register(r.Context(), req.Username, req.Email, req.DisplayName, req.Password)
	if err != nil {
		log.Printf("Registration error: %v", err)
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, dtos.FromDomain(*account))
}

// Login validates user credentials, sets the auth cookie, and returns
// the token for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.UserLoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, "Username and password are required.", http.StatusBadRequest)
		return
	}

	account, token, err := h.UserService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("Login error: %v", err)
		writeError(w, "Invalid username or password.", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, dtos.UserLoginResponseDTO{
		User:  dtos.FromDomain(*account),
		Token: token,
	})
}

// Logout clears the auth cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Path:     "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetMe returns the authenticated user's profile.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	account, err := h.UserService.GetProfile(r.Context(), userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(*account))
}

// UpdateMe updates the authenticated user's profile fields.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.UserUpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.UserService.UpdateProfile(r.Context(), userID, req.DisplayName, req.AvatarURL)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(*account))
}
