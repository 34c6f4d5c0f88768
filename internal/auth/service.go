package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

var _ core.IdentityResolver = (*Service)(nil)

// Service provides authentication operations.
type Service struct {
	store        store.UserStore
	jwtConfig    *JWTConfig
	passwordCost int
}

// Option configures a Service.
type Option func(*Service)

// WithPasswordCost sets the bcrypt cost for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig, opts ...Option) *Service {
	s := &Service{
		store:        userStore,
		jwtConfig:    jwtConfig,
		passwordCost: DefaultPasswordCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user with hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	hashedPassword, err := HashPassword(password, s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login validates credentials and returns a JWT token with the user it was issued for.
func (s *Service) Login(ctx context.Context, username, password string) (string, *store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// Verify resolves a session credential into the identity of a live connection.
func (s *Service) Verify(credential string) (core.Identity, error) {
	if credential == "" {
		return core.Identity{}, fmt.Errorf("%w: missing credential", core.ErrUnauthenticated)
	}
	claims, err := s.ValidateToken(credential)
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %w", core.ErrUnauthenticated, err)
	}
	return core.Identity{ID: claims.UserID, Name: claims.Username}, nil
}

// TTL returns how long issued tokens stay valid.
func (s *Service) TTL() int {
	return int(s.jwtConfig.TTL.Seconds())
}
