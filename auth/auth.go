package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ternarybob/arbor"
	"golang.org/x/crypto/bcrypt"

	"blockpress/globals"
	"blockpress/middleware"
	"blockpress/models"
	"blockpress/storage"
	"blockpress/utils"
)

const DefaultTokenTTL = 72 * time.Hour

var ErrInvalidCredentials = errors.New("invalid username or password")

// IssueToken signs an access token for the user with globals.JwtSecret.
func IssueToken(userID, username string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	expires := now.Add(ttl)
	claims := &middleware.Claims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

type Service struct {
	users  storage.UserStore
	ttl    time.Duration
	cost   int
	logger arbor.ILogger
}

func NewService(users storage.UserStore, ttl time.Duration, logger arbor.ILogger) *Service {
	return &Service{users: users, ttl: ttl, cost: bcrypt.DefaultCost, logger: logger}
}

func (s *Service) respond(u *models.User) (*models.TokenResponse, error) {
	token, expires, err := IssueToken(u.ID, u.Username, s.ttl)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		ExpiresAt: expires,
	}, nil
}

// Register creates the user and returns a token for it. A taken username
// yields storage.ErrConflict.
func (s *Service) Register(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GetUUID(),
		Username:     strings.ToLower(creds.Username),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user", user.Username).Msg("User registered")
	return s.respond(user)
}

func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.ToLower(creds.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.respond(user)
}
