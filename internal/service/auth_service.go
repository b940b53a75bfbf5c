package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"kairos/internal/auth"
	apperrors "kairos/internal/errors"
	"kairos/internal/metrics"
	"kairos/internal/model"
	"kairos/internal/repository"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 64
	minPasswordLen = 8
	maxPasswordLen = 128
	maxNameLen     = 255
)

// AuthService handles credentials and session tokens.
type AuthService interface {
	Register(ctx context.Context, username, name, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (token string, user *model.User, err error)
	Resolve(ctx context.Context, token string) (*model.User, error)
	ResolveClaims(ctx context.Context, claims *auth.Claims) (*model.User, error)
	Logout(ctx context.Context, token string)
}

type authService struct {
	userRepo   repository.UserRepository
	issuer     *auth.TokenIssuer
	tokenStore auth.TokenStoreInterface
	log        *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, issuer *auth.TokenIssuer, tokenStore auth.TokenStoreInterface, log *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		issuer:     issuer,
		tokenStore: tokenStore,
		log:        log,
	}
}

// Ensure authService can back the auth middleware.
var _ auth.UserResolver = (*authService)(nil)

// dummyDigest is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison.
var dummyDigest = sync.OnceValue(func() string {
	digest, _ := auth.HashPassword("kairos-dummy-password")
	return digest
})

// Register creates a user with a hashed password.
func (s *authService) Register(ctx context.Context, username, name, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = username
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, apperrors.NewValidationError("name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}

	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Name:         name,
		PasswordHash: digest,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			auth.CheckPassword(password, dummyDigest())
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a session token.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			metrics.LoginAttempt(false)
			s.log.Info("login failed", zap.String("username", strings.TrimSpace(username)))
		}
		return "", nil, err
	}

	token, _, err := s.issuer.Issue(user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginAttempt(true)
	s.log.Info("login succeeded", zap.Uint("user_id", user.ID))
	return token, user, nil
}

// Resolve verifies a raw token and loads its user.
func (s *authService) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.ResolveClaims(ctx, claims)
}

// ResolveClaims loads the user of already verified claims.
func (s *authService) ResolveClaims(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	revoked, _ := s.tokenStore.IsTokenRevoked(ctx, claims.ID)
	if revoked {
		return nil, apperrors.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// Logout revokes token when it is still valid. It never fails: a missing,
// broken or expired token needs no revocation, and an unreachable token
// store only loses the early revocation.
func (s *authService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return
	}
	if err := s.tokenStore.RevokeToken(ctx, claims.ID, s.issuer.Remaining(claims)); err != nil {
		s.log.Warn("revoke token", zap.Error(err))
		return
	}
	s.log.Info("logged out", zap.String("username", claims.Subject))
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return apperrors.NewValidationError("username", fmt.Sprintf("must be between %d and %d characters", minUsernameLen, maxUsernameLen))
	}
	return nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxPasswordLen {
		return apperrors.NewValidationError("password", fmt.Sprintf("must be between %d and %d characters", minPasswordLen, maxPasswordLen))
	}
	return nil
}
