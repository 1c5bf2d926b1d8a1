package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"rezeptapp/internal/model"
)

// SessionTTL is the lifetime of a session cookie and its token.
const SessionTTL = 7 * 24 * time.Hour

// Session is the denormalized identity snapshot taken at login. Authorization
// decisions read only this snapshot.
type Session struct {
	UserID       uint       `json:"userId"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Role         model.Role `json:"role"`
	IsLoggedIn   bool       `json:"isLoggedIn"`
	ProfileImage *string    `json:"profileImage,omitempty"`

	TokenID      string    `json:"-"`
	SessionStart time.Time `json:"-"`
	ExpiresAt    time.Time `json:"-"`
}

// IsAdmin reports whether the snapshot carries the ADMIN role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == model.RoleAdmin
}

// NewSession snapshots user.
func NewSession(user *model.User) *Session {
	return &Session{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		IsLoggedIn:   true,
		ProfileImage: user.ProfileImageURL,
	}
}

// SessionClaims is the signed cookie payload.
type SessionClaims struct {
	UserID       uint       `json:"uid"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Role         model.Role `json:"role"`
	IsLoggedIn   bool       `json:"isLoggedIn"`
	ProfileImage *string    `json:"profileImage,omitempty"`
	// SessionStart is the issue time in unix milliseconds; revocation compares against it.
	SessionStart int64 `json:"sst"`
	jwt.RegisteredClaims
}

// Session converts claims back into a snapshot.
func (c *SessionClaims) Session() *Session {
	s := &Session{
		UserID:       c.UserID,
		Username:     c.Username,
		Email:        c.Email,
		Role:         c.Role,
		IsLoggedIn:   c.IsLoggedIn,
		ProfileImage: c.ProfileImage,
		TokenID:      c.ID,
		SessionStart: time.UnixMilli(c.SessionStart),
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

// SessionManager signs session snapshots into the session cookie.
type SessionManager struct {
	secret     []byte
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewSessionManager creates a manager. secure controls the cookie's Secure flag.
func NewSessionManager(secret, cookieName string, secure bool) *SessionManager {
	return &SessionManager{
		secret:     []byte(secret),
		cookieName: cookieName,
		secure:     secure,
		now:        time.Now,
	}
}

// CookieName returns the session cookie name.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Sign fills the token id and validity window of s and returns the signed token.
func (m *SessionManager) Sign(s *Session) (string, error) {
	now := m.now()
	s.TokenID = uuid.New().String()
	s.SessionStart = now
	s.ExpiresAt = now.Add(SessionTTL)

	claims := &SessionClaims{
		UserID:       s.UserID,
		Username:     s.Username,
		Email:        s.Email,
		Role:         s.Role,
		IsLoggedIn:   s.IsLoggedIn,
		ProfileImage: s.ProfileImage,
		SessionStart: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.TokenID,
			Subject:   fmt.Sprint(s.UserID),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Issue signs s and writes it as the session cookie.
func (m *SessionManager) Issue(c echo.Context, s *Session) error {
	token, err := m.Sign(s)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.SetCookie(m.cookie(token, s.ExpiresAt, int(SessionTTL.Seconds())))
	return nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(c echo.Context) {
	c.SetCookie(m.cookie("", time.Unix(0, 0), -1))
}

func (m *SessionManager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Parse validates a signed session token.
func (m *SessionManager) Parse(token string) (*Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, m.keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims.Session(), nil
}

func (m *SessionManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return m.secret, nil
}
