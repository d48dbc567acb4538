// Package auth implements registration, login, and token verification.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/fireworld/fireworld/internal/app/apperr"
	"github.com/fireworld/fireworld/internal/app/domain/user"
	"github.com/fireworld/fireworld/internal/app/storage"
	"github.com/fireworld/fireworld/pkg/logger"
)

const (
	minNameLen     = 3
	minPasswordLen = 6
)

// Claims is the token payload: user id and display name, no expiry.
type Claims struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens.
type Service struct {
	users  storage.UserStore
	secret []byte
	log    *logger.Logger
}

// New constructs an auth service signing tokens with the given secret.
func New(users storage.UserStore, secret string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{users: users, secret: []byte(secret), log: log}
}

// Register validates the credentials, stores the user with a bcrypt hash, and
// returns the stored record plus a signed token. Validation happens before
// any store call.
func (s *Service) Register(ctx context.Context, name, password, imageURL string) (user.User, string, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLen {
		return user.User{}, "", apperr.Newf(apperr.KindValidation, "name must be at least %d characters", minNameLen)
	}
	if len(password) < minPasswordLen {
		return user.User{}, "", apperr.Newf(apperr.KindValidation, "password must be at least %d characters", minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, user.User{
		Name:         name,
		PasswordHash: string(hash),
		ImageURL:     strings.TrimSpace(imageURL),
	})
	if err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			return user.User{}, "", apperr.New(apperr.KindConflict, "Username already exists")
		}
		return user.User{}, "", err
	}

	token, err := s.sign(created)
	if err != nil {
		return user.User{}, "", err
	}

	s.log.WithField("user_id", created.ID).WithField("name", created.Name).Info("user registered")
	return created, token, nil
}

// Login verifies the name/password pair. Unknown names and wrong passwords
// yield the same error so callers cannot enumerate users.
func (s *Service) Login(ctx context.Context, name, password string) (user.User, string, error) {
	u, err := s.users.GetUserByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, "", apperr.New(apperr.KindUnauthorized, "Invalid credentials")
		}
		return user.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, "", apperr.New(apperr.KindUnauthorized, "Invalid credentials")
	}

	token, err := s.sign(u)
	if err != nil {
		return user.User{}, "", err
	}

	s.log.WithField("user_id", u.ID).Debug("user logged in")
	return u, token, nil
}

// VerifyToken checks the signature and requires a user id claim. It has no
// side effects.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Invalid token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.New(apperr.KindUnauthorized, "Invalid token")
	}
	if claims.UserID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "Invalid token")
	}
	return claims, nil
}

func (s *Service) sign(u user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: u.ID, Name: u.Name})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
