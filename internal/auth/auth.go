package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthorized covers bad credentials and missing, expired or revoked sessions
	ErrUnauthorized = errors.New("unauthorized")
)

// Accounts looks up admin credentials
type Accounts interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// SessionStore keeps the set of live admin sessions
type SessionStore interface {
	SetAdminSession(ctx context.Context, tokenID, email string, ttl time.Duration) error
	GetAdminSession(ctx context.Context, tokenID string) (string, error)
	DeleteAdminSession(ctx context.Context, tokenID string) error
}

// Claims are carried by an admin session token
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs admins in and out
type Service struct {
	accounts Accounts
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates an auth service
func NewService(accounts Accounts, sessions SessionStore, secret string, ttl time.Duration) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		logger:   util.GetLogger(),
	}
}

// HashPassword returns the bcrypt hash stored for an admin
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SignIn verifies email and password and opens a session
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.SignIn")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	admin, err := s.accounts.GetAdminByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("failed to load admin: %w", err)
		}
		util.AdminLoginsTotal.WithLabelValues("rejected").Inc()
		return "", ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		util.AdminLoginsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Admin sign-in rejected", zap.String("email", email))
		return "", ErrUnauthorized
	}

	now := s.now()
	claims := &Claims{
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.SetAdminSession(ctx, claims.ID, admin.Email, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	util.AdminLoginsTotal.WithLabelValues("accepted").Inc()
	s.logger.Info("Admin signed in", zap.String("email", admin.Email))
	return token, nil
}

// Active returns the claims of a live session token
func (s *Service) Active(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}

	email, err := s.sessions.GetAdminSession(ctx, claims.ID)
	if err != nil || email != claims.Email {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// SignOut revokes a session. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.Active(ctx, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteAdminSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("Admin signed out", zap.String("email", claims.Email))
	return nil
}
