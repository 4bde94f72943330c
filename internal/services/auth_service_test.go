package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/config"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
	"flavorfix/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret = "test_jwt_secret"
	testPhone     = "9876543210"
	wrongCode     = "0000" // codes are always in [1000, 9999]
)

func newAuthService(t *testing.T) (*services.AuthService, *repositories.MemoryUserRepository, *MockSender, *clock) {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	clk := newClock()

	svc := services.NewAuthService(users, sender, testJWTSecret, 30*24*time.Hour, config.OTPConfig{
		TTL:         5 * time.Minute,
		MaxAttempts: 3,
		BcryptCost:  bcrypt.MinCost,
	})
	svc.SetClock(clk.Now)
	return svc, users, sender, clk
}

func TestAuthService_RequestCodeCreatesUser(t *testing.T) {
	svc, users, sender, clk := newAuthService(t)
	ctx := context.Background()

	issued, err := svc.RequestCode(ctx, "Asha", testPhone)
	require.NoError(t, err)
	assert.False(t, issued.ExistingUser)
	assert.Len(t, issued.Code, 4)
	assert.Equal(t, clk.Now().Add(5*time.Minute), issued.ExpiresAt)
	sender.AssertCalled(t, "Send", mock.Anything, testPhone, issued.Code)

	user, err := users.GetByPhone(ctx, testPhone)
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsVerified)
	assert.True(t, user.OTP.Pending())
	assert.Zero(t, user.OTP.Attempts)
	assert.NotEqual(t, issued.Code, user.OTP.CodeHash, "code must not be stored in plaintext")

	// A second request refreshes the name of the existing user.
	issued, err = svc.RequestCode(ctx, "Asha K", testPhone)
	require.NoError(t, err)
	assert.True(t, issued.ExistingUser)
	user, err = users.GetByPhone(ctx, testPhone)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", user.Name)
	n, _ := users.Count(ctx)
	assert.EqualValues(t, 1, n)
}

func TestAuthService_RequestCodeRejectsBadPhone(t *testing.T) {
	svc, _, sender, _ := newAuthService(t)

	for _, phone := range []string{"", "12345", "98765432101", "98765abcde"} {
		_, err := svc.RequestCode(context.Background(), "Asha", phone)
		requireKind(t, err, apperrors.KindValidation)
	}
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_SenderFailureIsNotFatal(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	sender := new(MockSender)
	sender.On("Send", mock.Anything, testPhone, mock.AnythingOfType("string")).Return(errors.New("gateway down")).Once()
	svc := services.NewAuthService(users, sender, testJWTSecret, time.Hour, config.OTPConfig{BcryptCost: bcrypt.MinCost})

	issued, err := svc.RequestCode(context.Background(), "Asha", testPhone)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Code)
	sender.AssertExpectations(t)
}

func TestAuthService_VerifyCodeSuccess(t *testing.T) {
	svc, users, _, clk := newAuthService(t)
	ctx := context.Background()

	issued, err := svc.RequestCode(ctx, "Asha", testPhone)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	session, err := svc.VerifyCode(ctx, testPhone, issued.Code)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.User.IsVerified)
	require.NotNil(t, session.User.LastLogin)
	assert.Equal(t, clk.Now(), *session.User.LastLogin)

	stored, err := users.GetByPhone(ctx, testPhone)
	require.NoError(t, err)
	assert.False(t, stored.OTP.Pending(), "challenge must be cleared")

	claims, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims["user_id"])
	assert.EqualValues(t, clk.Now().Add(30*24*time.Hour).Unix(), claims["exp"])

	// The challenge is consumed.
	_, err = svc.VerifyCode(ctx, testPhone, issued.Code)
	requireKind(t, err, apperrors.KindNoChallenge)
}

func TestAuthService_VerifyCodeLocksAfterThreeFailures(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	ctx := context.Background()

	issued, err := svc.RequestCode(ctx, "Asha", testPhone)
	require.NoError(t, err)

	for left := 2; left >= 0; left-- {
		_, err := svc.VerifyCode(ctx, testPhone, wrongCode)
		appErr := requireKind(t, err, apperrors.KindInvalidCode)
		assert.Equal(t, left, appErr.Fields["attemptsLeft"])
	}

	// Fourth attempt fails even with the right code.
	_, err = svc.VerifyCode(ctx, testPhone, issued.Code)
	requireKind(t, err, apperrors.KindTooManyAttempts)
}

func TestAuthService_ResendResetsAttempts(t *testing.T) {
	svc, users, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.RequestCode(ctx, "Asha", testPhone)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = svc.VerifyCode(ctx, testPhone, wrongCode)
		requireKind(t, err, apperrors.KindInvalidCode)
	}

	issued, err := svc.ResendCode(ctx, testPhone)
	require.NoError(t, err)
	user, err := users.GetByPhone(ctx, testPhone)
	require.NoError(t, err)
	assert.Zero(t, user.OTP.Attempts)
	assert.Equal(t, "Asha", user.Name)

	_, err = svc.VerifyCode(ctx, testPhone, issued.Code)
	assert.NoError(t, err)
}

func TestAuthService_VerifyCodeExpired(t *testing.T) {
	svc, _, _, clk := newAuthService(t)
	ctx := context.Background()

	issued, err := svc.RequestCode(ctx, "Asha", testPhone)
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	_, err = svc.VerifyCode(ctx, testPhone, issued.Code)
	requireKind(t, err, apperrors.KindExpired)
}

func TestAuthService_UnknownPhone(t *testing.T) {
	svc, _, _, _ := newAuthService(t)

	_, err := svc.VerifyCode(context.Background(), testPhone, "1234")
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.ResendCode(context.Background(), testPhone)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.ResendCode(context.Background(), "98765")
	requireKind(t, err, apperrors.KindValidation)
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc, users, _, _ := newAuthService(t)
	user := seedUser(t, users, "Asha", testPhone, models.RoleUser)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)
	got, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.ValidateToken("invalid.token.string")
	requireKind(t, err, apperrors.KindUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = svc.ValidateToken(expiredString)
	requireKind(t, err, apperrors.KindUnauthorized)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	foreignString, _ := foreign.SignedString([]byte("another secret"))
	_, err = svc.ValidateToken(foreignString)
	requireKind(t, err, apperrors.KindUnauthorized)
}

func TestAuthService_AuthenticateUnknownUser(t *testing.T) {
	svc, _, _, _ := newAuthService(t)

	token, err := svc.IssueToken(&models.User{ID: "ghost"})
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	requireKind(t, err, apperrors.KindUnauthorized)
}
