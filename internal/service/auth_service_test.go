package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-teacher/internal/adapter"
	"ai-teacher/internal/cache"
	"ai-teacher/internal/config"
	"ai-teacher/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JWT:       config.JWTConfig{SecretKey: "test-secret-key", AccessTTL: time.Hour},
		CacheTTLs: config.CacheTTLConfig{AuthSession: 24 * time.Hour},
	}
}

func newTestAuthService(t *testing.T, backend domain.AuthBackend, c domain.Cache) AuthService {
	t.Helper()
	svc, err := NewAuthService(backend, c, authTestConfig())
	require.NoError(t, err)
	return svc
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService(new(MockAuthBackend), newMemCache(), &config.Config{})
	assert.Error(t, err)
}

func TestAuthService_SignIn_PersistsSession(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	backend := new(MockAuthBackend)
	svc := newTestAuthService(t, backend, adapter.NewRedisCacheAdapter(db))
	ctx := context.Background()

	backend.On("SignIn", ctx, "ada@example.com", "secret1").Return(&domain.AuthResult{
		User:  domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		Token: "backend-token",
	}, nil).Once()

	key := cache.AuthSessionKey("u1")
	rmock.ExpectTxPipeline()
	rmock.ExpectHSet(key, "authToken", "backend-token", "user", `{"user_id":"u1","name":"Ada","email":"ada@example.com"}`).SetVal(2)
	rmock.ExpectExpire(key, 24*time.Hour).SetVal(true)
	rmock.ExpectTxPipelineExec()

	resp, err := svc.SignIn(ctx, domain.SignInInput{Email: " ada@example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "u1", resp.User.UserID)
	assert.NoError(t, rmock.ExpectationsWereMet())

	claims, err := svc.ValidateJWT(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1", claims.Subject)
}

func TestAuthService_SignUp(t *testing.T) {
	backend := new(MockAuthBackend)
	mc := newMemCache()
	svc := newTestAuthService(t, backend, mc)
	ctx := context.Background()

	backend.On("SignUp", ctx, "Ada", "ada@example.com", "secret1").Return(&domain.AuthResult{
		User: domain.User{Name: "Ada"},
	}, nil).Once()

	resp, err := svc.SignUp(ctx, domain.SignUpInput{
		Name: " Ada ", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.User.UserID)

	// Without a backend token the gateway token is persisted instead.
	fields := mc.hashes[cache.AuthSessionKey("ada@example.com")]
	assert.Equal(t, resp.AccessToken, fields["authToken"])
	assert.True(t, svc.IsSignedIn(ctx, "ada@example.com"))
}

func TestAuthService_LocalValidation(t *testing.T) {
	backend := new(MockAuthBackend)
	svc := newTestAuthService(t, backend, newMemCache())
	ctx := context.Background()

	tests := []struct {
		name string
		in   domain.SignUpInput
		msg  string
	}{
		{"missing name", domain.SignUpInput{Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret1"}, "Please enter your name"},
		{"mismatch", domain.SignUpInput{Name: "A", Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret2"}, "Passwords do not match"},
		{"short password", domain.SignUpInput{Name: "A", Email: "a@b.c", Password: "abc", ConfirmPassword: "abc"}, "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.in)
			require.True(t, domain.IsCode(err, domain.CodeValidation))
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	_, err := svc.SignIn(ctx, domain.SignInInput{Email: "a@b.c"})
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	backend.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	backend.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_BackendRejection(t *testing.T) {
	backend := new(MockAuthBackend)
	mc := newMemCache()
	svc := newTestAuthService(t, backend, mc)
	ctx := context.Background()

	backend.On("SignIn", ctx, "a@b.c", "wrongpw").
		Return(nil, domain.NewUnauthorizedError("Invalid email or password", nil)).Once()

	_, err := svc.SignIn(ctx, domain.SignInInput{Email: "a@b.c", Password: "wrongpw"})
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
	assert.Empty(t, mc.hashes)
}

func TestAuthService_CurrentUserAndSignOut(t *testing.T) {
	mc := newMemCache()
	svc := newTestAuthService(t, new(MockAuthBackend), mc)
	ctx := context.Background()
	key := cache.AuthSessionKey("u1")

	_, err := svc.CurrentUser(ctx, "u1")
	assert.True(t, domain.IsCode(err, domain.CodeAuthRequired))

	mc.hashes[key] = map[string]string{"authToken": "tok", "user": `{"user_id":"u1","name":"Ada","email":"ada@example.com"}`}
	user, err := svc.CurrentUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	require.NoError(t, svc.SignOut(ctx, "u1"))
	assert.False(t, svc.IsSignedIn(ctx, "u1"))
	assert.False(t, svc.IsSignedIn(ctx, ""))
}

func TestAuthService_CorruptProfileClearsSession(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	svc := newTestAuthService(t, new(MockAuthBackend), adapter.NewRedisCacheAdapter(db))
	key := cache.AuthSessionKey("u1")

	rmock.ExpectHGetAll(key).SetVal(map[string]string{"authToken": "tok", "user": "{not json"})
	rmock.ExpectDel(key).SetVal(1)

	_, err := svc.CurrentUser(context.Background(), "u1")
	assert.True(t, domain.IsCode(err, domain.CodeAuthRequired))
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestAuthService_CacheFailure(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	svc := newTestAuthService(t, new(MockAuthBackend), adapter.NewRedisCacheAdapter(db))
	key := cache.AuthSessionKey("u1")

	rmock.ExpectHGetAll(key).SetErr(errors.New("connection refused"))
	_, err := svc.CurrentUser(context.Background(), "u1")
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}

func TestAuthService_ValidateJWT(t *testing.T) {
	svc := newTestAuthService(t, new(MockAuthBackend), newMemCache())
	ctx := context.Background()

	_, err := svc.ValidateJWT(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forged, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateJWT(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	stale, err := expired.SignedString([]byte("test-secret-key"))
	require.NoError(t, err)
	_, err = svc.ValidateJWT(ctx, stale)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}
