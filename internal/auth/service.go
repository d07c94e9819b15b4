// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

var tracer = otel.Tracer("perkhub/auth")

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsVerified   bool
	Role         string
	CreatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name string,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type TokenIssuer interface {
	CreateAccessToken(claims AccessTokenClaims) (string, time.Time, error)
}

// OutcomeRecorder receives one outcome label per register/login attempt.
type OutcomeRecorder interface {
	ObserveRegistration(outcome string)
	ObserveLogin(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRegistration(string) {}
func (nopRecorder) ObserveLogin(string)        {}

type Service struct {
	tokens       TokenIssuer
	userProvider UserProvider
	hasher       *core.PasswordHasher
	recorder     OutcomeRecorder
	logger       *slog.Logger
}

func NewService(
	tokens TokenIssuer,
	userProvider UserProvider,
	hasher *core.PasswordHasher,
	recorder OutcomeRecorder,
	logger *slog.Logger,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		tokens:       tokens,
		userProvider: userProvider,
		hasher:       hasher,
		recorder:     recorder,
		logger:       logger,
	}
}

// Register creates an unverified account. The lookup catches the common
// case; the unique email index catches concurrent registrations.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.userProvider.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.recorder.ObserveRegistration("exists")
		return nil, ErrUserExists
	case !errors.Is(err, core.ErrNotFound):
		s.recorder.ObserveRegistration("error")
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.recorder.ObserveRegistration("error")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, email, passwordHash, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			s.recorder.ObserveRegistration("exists")
			return nil, ErrUserExists
		}
		s.recorder.ObserveRegistration("error")
		return nil, fmt.Errorf("create user: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.recorder.ObserveRegistration("created")
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	return s.issue(user)
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong
// password, and spends the same hashing work on either path.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.hasher.VerifyTimingSafe(req.Password, nil)
			s.recorder.ObserveLogin("invalid")
			return nil, ErrInvalidCredentials
		}
		s.recorder.ObserveLogin("error")
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.VerifyTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		s.recorder.ObserveLogin("error")
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		s.recorder.ObserveLogin("invalid")
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.recorder.ObserveLogin("success")

	return s.issue(user)
}

// CurrentUser returns the stored view of the token subject. A missing record
// is reported as core.ErrNotFound.
func (s *Service) CurrentUser(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) issue(user *UserInfo) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.CreateAccessToken(AccessTokenClaims{
		UserID:     user.ID,
		Email:      user.Email,
		IsVerified: user.IsVerified,
		Role:       user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User:      toUserResponse(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
