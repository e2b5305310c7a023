package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/auth"
	"github.com/Sunil4510/smart-appointment-booking-system/internal/platform/db"
	"github.com/Sunil4510/smart-appointment-booking-system/pkg/apperr"
)

const minPasswordLen = 8

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginInput carries a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService implements registration and login.
type AuthService struct {
	users  UserRepository
	jwtCfg auth.JWTConfig
}

func NewAuthService(users UserRepository, jwtCfg auth.JWTConfig) *AuthService {
	return &AuthService{users: users, jwtCfg: jwtCfg}
}

// Register creates a new account and returns the user with a signed token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apperr.Validation("A valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", apperr.Validation("Password must be at least 8 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, "", apperr.Validation("Name is required")
	}

	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if role == "" {
		role = auth.RoleUser
	}
	if role != auth.RoleUser && role != auth.RoleProvider {
		return nil, "", apperr.Validation("Role must be USER or PROVIDER")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", apperr.Conflict("User with this email already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Internal("failed to hash password", err)
	}

	u := &User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// The unique index is the arbiter under concurrent registration.
		if db.IsUniqueViolation(err) {
			return nil, "", apperr.Conflict("User with this email already exists")
		}
		return nil, "", err
	}

	token, err := auth.NewToken(s.jwtCfg, u.ID, u.Role)
	if err != nil {
		return nil, "", apperr.Internal("failed to issue token", err)
	}
	return u, token, nil
}

// Login verifies credentials and returns the user with a signed token.
// The same error is returned for unknown email and wrong password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}

	token, err := auth.NewToken(s.jwtCfg, u.ID, u.Role)
	if err != nil {
		return nil, "", apperr.Internal("failed to issue token", err)
	}
	return u, token, nil
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	return u, err
}
