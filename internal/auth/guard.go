package auth

import (
	apperrors "rezeptapp/internal/errors"
)

// Capability is a named authorization requirement.
type Capability int

const (
	// CapPublicRead is always allowed.
	CapPublicRead Capability = iota
	// CapAuthenticated requires a logged-in session.
	CapAuthenticated
	// CapAdminOnly requires a logged-in ADMIN session.
	CapAdminOnly
	// CapSelfOrAdmin requires the session to own the target or be ADMIN.
	CapSelfOrAdmin
)

func (c Capability) String() string {
	switch c {
	case CapPublicRead:
		return "PUBLIC_READ"
	case CapAuthenticated:
		return "AUTHENTICATED"
	case CapAdminOnly:
		return "ADMIN_ONLY"
	case CapSelfOrAdmin:
		return "SELF_OR_ADMIN"
	default:
		return "UNKNOWN"
	}
}

// Action names a guarded operation with extra self-protection rules.
type Action int

const (
	ActionNone Action = iota
	ActionDeleteUser
	ActionChangeRole
)

// Request describes what the caller wants to do.
type Request struct {
	Capability   Capability
	Action       Action
	TargetUserID uint
}

// Guard decides requests against a session snapshot. It performs no I/O.
type Guard struct {
	// AllowSelfRoleChange permits CHANGE_ROLE on the caller's own id.
	AllowSelfRoleChange bool
}

// NewGuard creates a guard.
func NewGuard(allowSelfRoleChange bool) *Guard {
	return &Guard{AllowSelfRoleChange: allowSelfRoleChange}
}

// Authorize returns nil to allow, or an Unauthorized or Forbidden error.
func (g *Guard) Authorize(s *Session, req Request) error {
	if req.Capability == CapPublicRead {
		return nil
	}
	if s == nil || !s.IsLoggedIn {
		return apperrors.ErrUnauthorized
	}

	switch req.Capability {
	case CapAuthenticated:
	case CapAdminOnly:
		if !s.IsAdmin() {
			return apperrors.ErrForbidden
		}
	case CapSelfOrAdmin:
		if s.UserID != req.TargetUserID && !s.IsAdmin() {
			return apperrors.ErrForbidden
		}
	default:
		return apperrors.ErrForbidden
	}

	if req.TargetUserID == s.UserID {
		switch req.Action {
		case ActionDeleteUser:
			return apperrors.ErrCannotDeleteSelf
		case ActionChangeRole:
			if !g.AllowSelfRoleChange {
				return apperrors.ErrCannotChangeOwnRole
			}
		}
	}
	return nil
}
