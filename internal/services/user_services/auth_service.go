// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iyunix/chat-gateway/internal/auth"
	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/repository/user"
)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey []byte
	tokenTTL     time.Duration
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, tokenTTL time.Duration, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// Register creates a non-admin account. Duplicate usernames or emails are
// rejected with ErrUserExists, both by the lookup here and by the unique
// indexes when two registrations race.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, errors.New("username, email and password are required")
	}

	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		s.logger.Warn("registration failed - user already exists",
			"username", maskUsername(username),
			"existing_user_id", existing.ID)
		return nil, ErrUserExists
	}
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	newUser := &domain.User{Username: username, Email: email}
	if err := newUser.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "error", err, "username", maskUsername(username))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		s.logger.Error("user creation failed", "error", err, "username", maskUsername(username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"username", maskUsername(username),
		"user_id", created.ID)
	return created, nil
}

// Login verifies the password and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", ErrInvalidCredentials
	}

	found, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("login failed - user not found", "username", maskUsername(username))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := found.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password",
			"username", maskUsername(username),
			"user_id", found.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(found.ID, s.jwtSecretKey, s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", found.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful",
		"username", maskUsername(username),
		"user_id", found.ID,
		"is_admin", found.IsAdmin)
	return found, token, nil
}

// Authenticate resolves a bearer token to its user. Missing, malformed and
// expired tokens, and tokens for deleted users, all yield ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	userID, err := auth.ValidateToken(token, s.jwtSecretKey)
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return nil, ErrUnauthorized
	}

	found, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("token subject no longer exists", "user_id", userID)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return found, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
