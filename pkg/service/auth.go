package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
	"enenni_wallet_back/pkg/repository"
	"enenni_wallet_back/pkg/validation"
)

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type AuthService struct {
	repos    repository.Authorization
	sessions SessionManager
	users    UserCache
	log      *logrus.Entry
}

func NewAuthService(repos repository.Authorization, sessions SessionManager, users UserCache, log *logrus.Entry) *AuthService {
	return &AuthService{
		repos:    repos,
		sessions: sessions,
		users:    users,
		log:      log,
	}
}

func (s *AuthService) Register(ctx context.Context, input models.RegisterInput) (models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input).Err(); err != nil {
		return models.User{}, err
	}

	_, err := s.repos.GetUserByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return models.User{}, &apperr.ValidationError{Fields: apperr.FieldErrors{{
			Field:   "email",
			Message: "Email already in use",
			Tag:     "unique",
		}}}
	case !apperr.IsNotFound(err):
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}
	user := models.User{Email: input.Email, Name: input.Name, PasswordHash: string(hash)}
	if user.ID, err = s.repos.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input models.LoginInput) (Session, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input).Err(); err != nil {
		return Session{}, err
	}

	user, err := s.repos.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return Session{}, apperr.Auth("invalid credentials")
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return Session{}, apperr.Auth("invalid credentials")
	}

	token, expires, err := s.sessions.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}
	claims, err := s.sessions.Parse(ctx, token)
	if err != nil {
		s.log.Debugf("session rejected: %s", err)
		return nil
	}

	var user models.User
	if s.users != nil {
		user, err = s.users.AuthUser(ctx, claims.UserID)
	} else {
		user, err = s.repos.GetUserByID(ctx, claims.UserID)
	}
	if err != nil {
		s.log.WithField("user_id", claims.UserID).Errorf("load session user: %s", err)
		return nil
	}
	return &user
}

func (s *AuthService) Logout(ctx context.Context, token string) models.ActionResult {
	claims, err := s.sessions.Parse(ctx, token)
	if err != nil {
		return models.ActionResult{Error: "Not signed in"}
	}
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		s.log.WithField("user_id", claims.UserID).Errorf("revoke session: %s", err)
		return models.ActionResult{Error: "Failed to sign out"}
	}
	if s.users != nil {
		s.users.InvalidateAuthUser(claims.UserID)
	}
	return models.ActionResult{Success: true}
}
