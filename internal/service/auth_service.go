package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rezeptapp/internal/auth"
	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

// adminSeats is how many of the first registered users become ADMIN.
const adminSeats = 2

// RegisterInput carries registration fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService handles registration, login and logout.
type AuthService interface {
	// Register creates a user. The first two users ever created become ADMIN.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login verifies credentials and returns the user to snapshot into a session.
	Login(ctx context.Context, username, password string) (*model.User, error)
	// Logout revokes the session's token until it would have expired.
	Logout(ctx context.Context, sess *auth.Session) error
	// AdminSlotsOpen reports whether the next registration would become ADMIN.
	AdminSlotsOpen(ctx context.Context) (bool, error)
}

// RegistrationObserver receives successful registrations.
type RegistrationObserver interface {
	ObserveRegistration(role string)
}

type authService struct {
	users    repository.UserRepository
	sessions auth.RevocationStore
	observer RegistrationObserver
	log      logrus.FieldLogger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, sessions auth.RevocationStore, observer RegistrationObserver, log logrus.FieldLogger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		observer: observer,
		log:      log.WithField("service", "auth"),
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation("username, email and password are required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("register user", err)
	}

	var created *model.User
	err = s.users.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		existing, err := repo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
		if err == nil && existing != nil {
			if existing.Username == in.Username {
				return apperrors.Conflict("username already exists")
			}
			return apperrors.Conflict("email already exists")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check user existence: %w", err)
		}

		ordinal, err := repo.NextRegistrationNumber(ctx)
		if err != nil {
			return fmt.Errorf("claim registration number: %w", err)
		}
		role := model.RoleUser
		if ordinal <= adminSeats {
			role = model.RoleAdmin
		}

		user := &model.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
			Role:         role,
		}
		if err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("username or email already exists")
			}
			return fmt.Errorf("create user: %w", err)
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  created.ID,
		"username": created.Username,
		"role":     created.Role,
	}).Info("user registered")
	if s.observer != nil {
		s.observer.ObserveRegistration(string(created.Role))
	}
	return created, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, needsUpgrade := auth.VerifyPassword(user.PasswordHash, password)
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	if needsUpgrade {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
				s.log.WithError(err).WithField("user_id", user.ID).Warn("legacy password upgrade failed")
			} else {
				user.PasswordHash = hash
				s.log.WithField("user_id", user.ID).Info("legacy password upgraded")
			}
		}
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, sess *auth.Session) error {
	if sess == nil || sess.TokenID == "" {
		return nil
	}
	ttl := auth.SessionTTL
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
	}
	if err := s.sessions.RevokeToken(ctx, sess.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *authService) AdminSlotsOpen(ctx context.Context) (bool, error) {
	registered, err := s.users.RegistrationCount(ctx)
	if err != nil {
		return false, fmt.Errorf("count registrations: %w", err)
	}
	return registered < adminSeats, nil
}
