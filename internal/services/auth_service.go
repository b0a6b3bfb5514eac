package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles credential verification, the token lifecycle and
// per-request identity resolution.
type AuthService struct {
	userRepo  repositories.UserRepository
	publisher EventPublisher
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService. tokenTTL is the validity window of
// issued tokens.
func NewAuthService(userRepo repositories.UserRepository, publisher EventPublisher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		publisher: publisher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new account with role USER and immediately issues a token
// for it. The password confirmation is checked before any store access.
func (s *AuthService) Register(email, password, confirmPassword, name string) (*models.User, string, error) {
	if password != confirmPassword {
		return nil, "", ErrPasswordMismatch
	}

	taken, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing email: %w", err)
	}
	if taken {
		return nil, "", ErrEmailTaken
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:    email,
		Password: hashedPassword,
		Name:     name,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.publishEvent("user.registered", map[string]interface{}{
		"event":  "user.registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return user, token, nil
}

// HashPassword hashes a plaintext password with the adaptive hash used for
// stored credentials.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the credentials and returns the user with a fresh token.
// Unknown email and wrong password produce the same outward error; the
// distinction is only logged.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			log.Printf("Login failed for %s: unknown email", email)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("Login failed for %s: wrong password", email)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken produces a signed token with subject = user email, expiring at
// issuance time plus the configured validity window. Signing is stateless.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   user.Email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken checks the token and returns the embedded subject email.
// Signature and structural failures are reported as ErrTokenInvalid, and are
// checked before expiry: a tampered token never reports ErrTokenExpired.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			if ve.Errors&(jwt.ValidationErrorMalformed|jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0 {
				return "", ErrTokenInvalid
			}
			if ve.Errors&jwt.ValidationErrorExpired != 0 {
				return "", ErrTokenExpired
			}
		}
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// Authenticate resolves the acting user for a bearer token: verify the token,
// then load the user named by its subject. This runs once per protected
// request; the resolved user is threaded explicitly into service calls.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	email, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			log.Printf("Token subject %s no longer exists", email)
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up token subject: %w", err)
	}
	return user, nil
}

func (s *AuthService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish("", rabbitmq.EventsQueue, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
