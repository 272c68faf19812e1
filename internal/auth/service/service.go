package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ijazah/internal/auth/models"
	"ijazah/internal/auth/store"
	"ijazah/pkg/domain"
	dErrors "ijazah/pkg/domain-errors"
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role domain.Role) (string, error)
}

// Option configures the auth service.
type Option func(*Service)

// Service authenticates users and issues access tokens.
type Service struct {
	store    store.Store
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService creates an auth service with the required dependencies.
func NewService(store store.Store, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords return the same error so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "login failed - password mismatch", "user_id", user.ID)
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		UserID:      user.ID,
		Name:        user.Name,
		Role:        user.Role.String(),
	}, nil
}

// Register creates a user account with a bcrypt-hashed password.
// Used by the seeder and by admin provisioning.
func (s *Service) Register(ctx context.Context, email, name, password string, role domain.Role) (*models.User, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return user, nil
}

// Profile returns the public-safe view of a user.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read user")
	}
	return &models.Profile{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role.String(),
	}, nil
}
