package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

// AuthConfig defines configuration for the admin passcode login.
type AuthConfig struct {
	Passcode      string
	SessionSecret string
	SessionExpiry time.Duration
	Issuer        string
}

// AuthService checks the admin passcode and issues session tokens.
type AuthService struct {
	passcodeHash []byte
	secret       []byte
	expiry       time.Duration
	issuer       string
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService hashes the passcode once so it is never compared in plain
// text. An empty session secret is replaced by a random one, which means
// sessions do not survive a restart.
func NewAuthService(config AuthConfig, validate *validator.Validate, logger *zap.Logger) (*AuthService, error) {
	if config.Passcode == "" {
		return nil, fmt.Errorf("admin passcode is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.SessionExpiry <= 0 {
		config.SessionExpiry = 45 * time.Minute
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(config.Passcode), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin passcode: %w", err)
	}
	secret := []byte(config.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("SESSION_SECRET not set, using an ephemeral secret",
			zap.String("fingerprint", base64.RawURLEncoding.EncodeToString(secret[:4])))
	}
	return &AuthService{
		passcodeHash: hash,
		secret:       secret,
		expiry:       config.SessionExpiry,
		issuer:       config.Issuer,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Login verifies the passcode and returns an admin session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "passcode is required")
	}
	if err := bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(req.Passcode)); err != nil {
		s.logger.Warn("admin login rejected")
		return nil, appErrors.Clone(appErrors.ErrInvalidPasscode, "")
	}

	issuedAt := s.now()
	token, err := s.issue(issuedAt)
	if err != nil {
		return nil, internalError(err, "failed to create session token")
	}
	s.logger.Info("admin logged in")
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiry.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses a session token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired session")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid || claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}

func (s *AuthService) issue(issuedAt time.Time) (string, error) {
	claims := &models.AdminClaims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
