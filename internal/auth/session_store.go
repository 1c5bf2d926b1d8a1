package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	revokedTokenKeyPrefix = "session:revoked:"
	revokedUserKeyPrefix  = "session:revoked_before:"
)

// KeyValue is the storage the revocation store needs. cache.Client implements it.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RevocationStore invalidates sessions before they expire.
type RevocationStore interface {
	// RevokeToken invalidates a single session token until ttl elapses.
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	// RevokeUserSessions invalidates every session of userID started before now.
	RevokeUserSessions(ctx context.Context, userID uint) error
	IsRevoked(ctx context.Context, s *Session) (bool, error)
}

// SessionStore keeps revocation markers in a key/value store.
type SessionStore struct {
	kv  KeyValue
	now func() time.Time
}

// Ensure SessionStore implements RevocationStore
var _ RevocationStore = (*SessionStore)(nil)

// NewSessionStore creates a new revocation store.
func NewSessionStore(kv KeyValue) *SessionStore {
	return &SessionStore{kv: kv, now: time.Now}
}

// RevokeToken marks a token id as logged out.
func (s *SessionStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.kv.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// RevokeUserSessions records a cutoff; sessions started at or before it are rejected.
// The marker lives as long as the longest possible session.
func (s *SessionStore) RevokeUserSessions(ctx context.Context, userID uint) error {
	cutoff := strconv.FormatInt(s.now().UnixMilli(), 10)
	key := revokedUserKeyPrefix + strconv.FormatUint(uint64(userID), 10)
	if err := s.kv.Set(ctx, key, []byte(cutoff), SessionTTL); err != nil {
		return fmt.Errorf("revoke sessions of user %d: %w", userID, err)
	}
	return nil
}

// IsRevoked reports whether the session was logged out or predates a user-wide cutoff.
func (s *SessionStore) IsRevoked(ctx context.Context, sess *Session) (bool, error) {
	if sess.TokenID != "" {
		marker, err := s.kv.Get(ctx, revokedTokenKeyPrefix+sess.TokenID)
		if err != nil {
			return false, err
		}
		if marker != nil {
			return true, nil
		}
	}

	raw, err := s.kv.Get(ctx, revokedUserKeyPrefix+strconv.FormatUint(uint64(sess.UserID), 10))
	if err != nil || raw == nil {
		return false, err
	}
	cutoff, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation cutoff: %w", err)
	}
	return sess.SessionStart.UnixMilli() <= cutoff, nil
}
