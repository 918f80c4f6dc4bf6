// Package service provides the backend business logic: accounts and bearer
// tokens, subscription plans and content generation. Persistence is
// delegated to a UserRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/ContentAI/internal/models"
)

const minPasswordLen = 6

// UserRepository defines the persistence operations required by the services.
type UserRepository interface {
	// CreateUser stores a free-plan user. A duplicate email yields models.ErrUserExists.
	CreateUser(ctx context.Context, email, name string, passwordHash []byte) (int64, error)
	// GetUserByEmail yields models.ErrUserNotFound when nothing matches.
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// GetUserByID yields models.ErrUserNotFound when nothing matches.
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	// UpdateSubscription sets the plan and its end; nil end clears it.
	UpdateSubscription(ctx context.Context, id int64, plan string, end *time.Time) error
}

// Claims is the bearer token payload.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthService registers users, checks passwords and issues tokens.
type AuthService struct {
	repo       UserRepository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewAuthService constructs an AuthService signing HS256 tokens with secret
// that live for ttl.
func NewAuthService(repo UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		repo:       repo,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Signup validates the input, hashes the password and creates the user.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return 0, invalid("email", "a valid email is required")
	}
	if len(password) < minPasswordLen {
		return 0, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, email, strings.TrimSpace(name), hash)
}

// Login checks the password and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", models.User{}, invalid("email", "email and password are required")
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return "", models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, err
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

// IssueToken signs a token for userID.
func (s *AuthService) IssueToken(userID int64) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ParseToken verifies raw and returns the user id it was issued for.
func (s *AuthService) ParseToken(raw string) (int64, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
