// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/repository/user"
)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	adminEmail   string
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey, adminEmail string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		adminEmail:   adminEmail,
		logger:       logger,
	}
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", errors.New("username and password are required")
	}

	s.logger.Info("user login attempt",
		"username", username[:min(4, len(username))]+"****")

	account, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login failed - user not found",
			"username", username[:min(4, len(username))]+"****")
		return nil, "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		s.logger.Warn("login failed - invalid password",
			"username", username[:min(4, len(username))]+"****",
			"user_id", account.ID)
		return nil, "", errors.New("invalid credentials")
	}

	token, err := s.generateJWTToken(account)
	if err != nil {
		s.logger.Error("JWT token generation failed",
			"error", err,
			"user_id", account.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful",
		"user_id", account.ID,
		"is_admin", account.IsAdmin)

	return account, token, nil
}

// Register creates a new account. The configured admin email gets the
// admin flag.
func (s *AuthService) Register(ctx context.Context, username, email, displayName, password string) (*domain.User, error) {
	if err := s.validateRegistrationInput(username, email, password); err != nil {
		s.logger.Warn("registration validation failed",
			"username", username[:min(4, len(username))]+"****",
			"error", err.Error())
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.logger.Info("user registration attempt",
		"username", username[:min(4, len(username))]+"****")

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		s.logger.Warn("registration failed - username already exists",
			"username", username[:min(4, len(username))]+"****",
			"existing_user_id", existing.ID)
		return nil, errors.New("username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hashing failed",
			"error", err,
			"username", username[:min(4, len(username))]+"****")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.User{
		Username:    username,
		Email:       email,
		DisplayName: displayName,
		Password:    string(hashedPassword),
		IsAdmin:     s.adminEmail != "" && email == s.adminEmail,
	}

	created, err := s.userRepo.Create(ctx, account)
	if err != nil {
		s.logger.Error("user creation failed",
			"error", err,
			"username", username[:min(4, len(username))]+"****")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"user_id", created.ID,
		"is_admin", created.IsAdmin)

	return created, nil
}

func (s *AuthService) validateRegistrationInput(username, email, password string) error {
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username validation: username must be 3-20 characters, alphanumeric or underscore")
	}

	emailRegex := regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email validation: invalid email format")
	}

	if len(password) < 8 {
		return fmt.Errorf("password validation: password must be at least 8 characters")
	}

	return nil
}

// ValidateJWTToken validates a JWT token and returns the user ID
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	if tokenString == "" {
		s.logger.Warn("JWT validation attempted with empty token")
		return 0, errors.New("empty token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Warn("JWT token with invalid signing method",
				"method", token.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecretKey), nil
	})

	if err != nil {
		s.logger.Warn("JWT token validation failed", "error", err)
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(float64)
		if !ok {
			s.logger.Warn("JWT token missing user_id claim")
			return 0, errors.New("invalid token claims")
		}

		s.logger.Debug("JWT token validated successfully", "user_id", uint(userID))
		return uint(userID), nil
	}

	s.logger.Warn("JWT token validation failed - invalid claims")
	return 0, errors.New("invalid token")
}

// generateJWTToken creates a JWT token for the user
func (s *AuthService) generateJWTToken(account *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  account.ID,
		"username": account.Username,
		"is_admin": account.IsAdmin,
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecretKey))
	if err != nil {
		return "", err
	}

	s.logger.Debug("JWT token generated",
		"user_id", account.ID,
		"expires_in", "7 days")

	return tokenString, nil
}
