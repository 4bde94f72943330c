package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/config"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
	"flavorfix/internal/validation"
	"flavorfix/pkg/sms"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// CodeIssued describes a freshly generated one-time code.
type CodeIssued struct {
	User         *models.User
	ExistingUser bool
	Code         string
	ExpiresAt    time.Time
}

// Session is the result of a successful code verification.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles phone/OTP login and JWT sessions.
type AuthService struct {
	userRepo      repositories.UserRepository
	sender        sms.Sender
	jwtSecret     []byte
	tokenDuration time.Duration
	otp           config.OTPConfig
	now           func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sender sms.Sender, jwtSecret string, tokenDuration time.Duration, otp config.OTPConfig) *AuthService {
	if otp.MaxAttempts <= 0 {
		otp.MaxAttempts = 3
	}
	if otp.TTL <= 0 {
		otp.TTL = 5 * time.Minute
	}
	if otp.BcryptCost == 0 {
		otp.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:      userRepo,
		sender:        sender,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
		otp:           otp,
		now:           time.Now,
	}
}

// SetClock replaces the time source.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// RequestCode creates the user on first contact, or refreshes the display
// name, then issues and dispatches a new code.
func (s *AuthService) RequestCode(ctx context.Context, name, phone string) (*CodeIssued, error) {
	if !validation.ValidPhone(phone) {
		return nil, apperrors.Validation("phone must be exactly 10 digits")
	}

	existing := true
	user, err := s.userRepo.GetByPhone(ctx, phone)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		existing = false
		if name == "" {
			return nil, apperrors.Validation("name is required")
		}
		user = &models.User{Name: name, Phone: phone, Role: models.RoleUser, Addresses: []models.Address{}}
	case err != nil:
		return nil, err
	case name != "":
		user.Name = name
	}

	issued, err := s.issueCode(user)
	if err != nil {
		return nil, err
	}
	issued.ExistingUser = existing

	if existing {
		err = s.userRepo.Update(ctx, user)
	} else {
		err = s.userRepo.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, phone, issued.Code)
	return issued, nil
}

// ResendCode issues a new code to an existing user without touching the name.
func (s *AuthService) ResendCode(ctx context.Context, phone string) (*CodeIssued, error) {
	if !validation.ValidPhone(phone) {
		return nil, apperrors.Validation("phone must be exactly 10 digits")
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	issued, err := s.issueCode(user)
	if err != nil {
		return nil, err
	}
	issued.ExistingUser = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.dispatch(ctx, phone, issued.Code)
	return issued, nil
}

// VerifyCode checks code against the pending challenge of phone. A wrong
// code consumes one attempt; once MaxAttempts is reached every further
// attempt fails, correct or not, until a new code is requested.
func (s *AuthService) VerifyCode(ctx context.Context, phone, code string) (*Session, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user").With("hint", "request an OTP first")
		}
		return nil, err
	}

	challenge := user.OTP
	if !challenge.Pending() || challenge.ExpiresAt == nil {
		return nil, apperrors.New(apperrors.KindNoChallenge, "No OTP found. Please request new OTP.")
	}
	if !s.now().Before(*challenge.ExpiresAt) {
		return nil, apperrors.New(apperrors.KindExpired, "OTP expired. Please request new OTP.")
	}
	if challenge.Attempts >= s.otp.MaxAttempts {
		return nil, apperrors.New(apperrors.KindTooManyAttempts, "Too many failed attempts. Request new OTP.")
	}

	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) != nil {
		user.OTP.Attempts++
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return nil, apperrors.New(apperrors.KindInvalidCode, "Invalid OTP").
			With("attemptsLeft", s.otp.MaxAttempts-user.OTP.Attempts)
	}

	now := s.now()
	user.IsVerified = true
	user.LastLogin = &now
	user.OTP = models.OTPChallenge{}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// Profile returns the user behind an authenticated request.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// IssueToken signs a session token bound to the user's ID.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     now.Add(s.tokenDuration).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token: %v", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.Unauthorized("invalid token")
}

// Authenticate resolves a bearer token to the current user record, so role
// changes apply to tokens issued before them.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, apperrors.Unauthorized("invalid token: missing user_id")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("user no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueCode(user *models.User) (*CodeIssued, error) {
	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.otp.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash otp: %w", err)
	}

	expiresAt := s.now().Add(s.otp.TTL)
	user.OTP = models.OTPChallenge{
		CodeHash:  string(hash),
		ExpiresAt: &expiresAt,
		Attempts:  0,
	}
	return &CodeIssued{User: user, Code: code, ExpiresAt: expiresAt}, nil
}

// dispatch never fails the request; the user can ask for a resend.
func (s *AuthService) dispatch(ctx context.Context, phone, code string) {
	if s.sender == nil {
		return
	}
	if err := s.sender.Send(ctx, phone, code); err != nil {
		log.Printf("SMS sending failed for %s: %v", phone, err)
	}
}

// generateCode returns a uniformly random code in [1000, 9999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}
