package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-teacher/internal/cache"
	"ai-teacher/internal/config"
	"ai-teacher/internal/domain"
	"ai-teacher/internal/dto"
	"ai-teacher/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	fieldAuthToken = "authToken"
	fieldUser      = "user"
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService defines the interface for authentication operations.
type AuthService interface {
	SignUp(ctx context.Context, in domain.SignUpInput) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, in domain.SignInInput) (*dto.AuthResponse, error)
	SignOut(ctx context.Context, userID string) error
	// CurrentUser restores the persisted profile; a corrupt profile clears the session.
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	IsSignedIn(ctx context.Context, userID string) bool
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	backend    domain.AuthBackend
	cache      domain.Cache
	secret     []byte
	accessTTL  time.Duration
	sessionTTL time.Duration
	clock      func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(backend domain.AuthBackend, c domain.Cache, cfg *config.Config) (AuthService, error) {
	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}
	return &authServiceImpl{
		backend:    backend,
		cache:      c,
		secret:     []byte(cfg.JWT.SecretKey),
		accessTTL:  cfg.JWT.AccessTTL,
		sessionTTL: cfg.CacheTTLs.AuthSession,
		clock:      time.Now,
	}, nil
}

func (s *authServiceImpl) SignUp(ctx context.Context, in domain.SignUpInput) (*dto.AuthResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := s.backend.SignUp(ctx, strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		logger.Get().Warn("Sign-up failed", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	return s.establish(ctx, res, in.Email)
}

func (s *authServiceImpl) SignIn(ctx context.Context, in domain.SignInInput) (*dto.AuthResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := s.backend.SignIn(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		logger.Get().Warn("Sign-in failed", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	return s.establish(ctx, res, in.Email)
}

// establish persists the backend token and profile and issues a gateway token.
func (s *authServiceImpl) establish(ctx context.Context, res *domain.AuthResult, email string) (*dto.AuthResponse, error) {
	user := res.User
	if user.Email == "" {
		user.Email = strings.TrimSpace(email)
	}
	if user.ID == "" {
		user.ID = strings.ToLower(user.Email)
	}

	accessToken, err := s.createJWT(user.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to issue access token", err)
	}

	backendToken := res.Token
	if backendToken == "" {
		backendToken = accessToken
	}
	profile, err := json.Marshal(user)
	if err != nil {
		return nil, domain.NewInternalError("Failed to encode user profile", err)
	}
	fields := map[string]string{fieldAuthToken: backendToken, fieldUser: string(profile)}
	if err := s.cache.SetHash(ctx, cache.AuthSessionKey(user.ID), fields, s.sessionTTL); err != nil {
		return nil, domain.NewInternalError("Failed to persist session", err)
	}

	logger.Get().Info("User signed in", zap.String("userID", user.ID), zap.String("email", user.Email))
	return &dto.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User:        dto.UserResponse{UserID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

func (s *authServiceImpl) SignOut(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, cache.AuthSessionKey(userID)); err != nil {
		return domain.NewInternalError("Failed to clear session", err)
	}
	logger.Get().Info("User signed out", zap.String("userID", userID))
	return nil
}

func (s *authServiceImpl) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	fields, err := s.cache.GetHash(ctx, cache.AuthSessionKey(userID))
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, domain.NewAuthRequiredError("continue")
	}
	if err != nil {
		return nil, domain.NewInternalError("Failed to load session", err)
	}
	if fields[fieldAuthToken] == "" || fields[fieldUser] == "" {
		return nil, domain.NewAuthRequiredError("continue")
	}

	var user domain.User
	if err := json.Unmarshal([]byte(fields[fieldUser]), &user); err != nil {
		logger.Get().Warn("Clearing corrupt persisted profile", zap.String("userID", userID), zap.Error(err))
		if delErr := s.cache.Delete(ctx, cache.AuthSessionKey(userID)); delErr != nil {
			logger.Get().Error("Failed to clear corrupt session", zap.String("userID", userID), zap.Error(delErr))
		}
		return nil, domain.NewAuthRequiredError("continue")
	}
	return &user, nil
}

func (s *authServiceImpl) IsSignedIn(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	_, err := s.CurrentUser(ctx, userID)
	return err == nil
}

func (s *authServiceImpl) createJWT(userID string) (string, error) {
	now := s.clock()
	claims := dto.AuthClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *authServiceImpl) ValidateJWT(_ context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}
