package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-desk/internal/auth"
	"github.com/spec-kit/repair-desk/internal/config"
	apperrors "github.com/spec-kit/repair-desk/pkg/util/errorutil"
)

// AuthService trades the operator password for an access token.
type AuthService struct {
	tokenMgr     *auth.TokenManager
	passwordHash string
	logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tokenMgr:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.AccessTokenTTLMinutes),
		passwordHash: cfg.Auth.OperatorPasswordHash,
		logger:       logger,
	}
}

// TokenManager exposes the token manager for middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Enabled reports whether an operator password is configured.
func (s *AuthService) Enabled() bool {
	return s.passwordHash != ""
}

// Login verifies the operator password and issues a token.
func (s *AuthService) Login(_ context.Context, operator, password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, apperrors.NewValidationError("operator login is disabled", nil)
	}
	operator = strings.TrimSpace(operator)
	if operator == "" {
		operator = "desk"
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		s.logger.Warn("operator login rejected", zap.String("operator", operator))
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(operator)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("operator logged in", zap.String("operator", operator))
	return token, exp, nil
}
