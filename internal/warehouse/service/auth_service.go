package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConfig "github.com/warehouse-management/warehouse/internal/warehouse/config"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
	"github.com/warehouse-management/warehouse/internal/warehouse/dao"
	"github.com/warehouse-management/warehouse/internal/warehouse/model"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService struct {
	*core.BaseComponent
	Dao     dao.UserDao `infra:"dep:dao_user"`
	Metrics *Metrics    `infra:"dep:warehouse_metrics?"`

	cfg *bizConfig.Config
	now func() time.Time
}

func NewAuthService(cfg *bizConfig.Config) *AuthService {
	return &AuthService{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_SVC_AUTH),
		cfg:           cfg,
		now:           time.Now,
	}
}

func (s *AuthService) Start(ctx context.Context) error {
	if s.cfg.UsesDefaultSecret() {
		logging.Warn(ctx, "auth: tokens are signed with the built-in secret, set WAREHOUSE_JWT_SECRET")
	}
	return s.BaseComponent.Start(ctx)
}

func (s *AuthService) Stop(ctx context.Context) error { return s.BaseComponent.Stop(ctx) }

// Login checks the credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.Dao.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			logging.Warn(ctx, "login failed: unknown user", zap.String("username", username))
			s.Metrics.LoginAttempt("invalid_credentials")
			return "", nil, ErrInvalidCredentials
		}
		s.Metrics.LoginAttempt("error")
		return "", nil, err
	}
	if err := user.CheckPassword(password); err != nil {
		logging.Warn(ctx, "login failed: password mismatch", zap.String("username", username))
		s.Metrics.LoginAttempt("invalid_credentials")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		s.Metrics.LoginAttempt("error")
		return "", nil, err
	}
	logging.Info(ctx, "login succeeded", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	s.Metrics.LoginAttempt("success")
	return token, user, nil
}

// Register creates a user; a taken username or email is ErrDuplicate.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	taken, err := s.Dao.Exists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username or email: %w", ErrDuplicate)
	}
	user := &model.User{Username: username, Email: email}
	if err := user.HashPassword(password, s.cfg.BcryptCost); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.Dao.Create(ctx, user); err != nil {
		return nil, err
	}
	logging.Info(ctx, "user registered", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, algorithm and expiry.
func (s *AuthService) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// EnsureAdmin creates the configured admin when no user exists yet.
func (s *AuthService) EnsureAdmin(ctx context.Context) (bool, error) {
	n, err := s.Dao.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	a := s.cfg.Admin
	if _, err := s.Register(ctx, a.Username, a.Email, a.Password); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
