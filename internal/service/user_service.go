package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rezeptapp/internal/auth"
	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

// UserService exposes admin user management. Every method checks the actor
// against the guard, independent of route middleware.
type UserService interface {
	ListUsers(ctx context.Context, actor *auth.Session) ([]model.User, error)
	// ChangeRole sets a user's role and revokes their sessions.
	ChangeRole(ctx context.Context, actor *auth.Session, id uint, role model.Role) error
	// DeleteUser removes a user and revokes their sessions. Self-deletion is forbidden.
	DeleteUser(ctx context.Context, actor *auth.Session, id uint) error
}

type userService struct {
	repo     repository.UserRepository
	guard    *auth.Guard
	sessions auth.RevocationStore
	log      logrus.FieldLogger
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, guard *auth.Guard, sessions auth.RevocationStore, log logrus.FieldLogger) UserService {
	return &userService{
		repo:     repo,
		guard:    guard,
		sessions: sessions,
		log:      log.WithField("service", "users"),
	}
}

func (s *userService) ListUsers(ctx context.Context, actor *auth.Session) ([]model.User, error) {
	if err := s.guard.Authorize(actor, auth.Request{Capability: auth.CapAdminOnly}); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *userService) ChangeRole(ctx context.Context, actor *auth.Session, id uint, role model.Role) error {
	if err := s.guard.Authorize(actor, auth.Request{
		Capability:   auth.CapAdminOnly,
		Action:       auth.ActionChangeRole,
		TargetUserID: id,
	}); err != nil {
		return err
	}
	if !role.Valid() {
		return apperrors.Validation("invalid role")
	}

	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	s.revoke(ctx, id)
	s.log.WithFields(logrus.Fields{
		"actor_id": actor.UserID,
		"user_id":  id,
		"role":     role,
	}).Info("user role changed")
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *auth.Session, id uint) error {
	if err := s.guard.Authorize(actor, auth.Request{
		Capability:   auth.CapAdminOnly,
		Action:       auth.ActionDeleteUser,
		TargetUserID: id,
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.revoke(ctx, id)
	s.log.WithFields(logrus.Fields{
		"actor_id": actor.UserID,
		"user_id":  id,
	}).Info("user deleted")
	return nil
}

func (s *userService) findUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// revoke invalidates the user's existing sessions. Failures are logged; the
// mutation itself has already been committed.
func (s *userService) revoke(ctx context.Context, id uint) {
	if err := s.sessions.RevokeUserSessions(ctx, id); err != nil {
		s.log.WithError(err).WithField("user_id", id).Error("session revocation failed")
		return
	}
	s.log.WithField("user_id", id).Info("user sessions revoked")
}
