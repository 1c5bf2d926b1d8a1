package auth

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "rezeptapp/internal/errors"
)

const (
	tokenContextKey   = "session_token"
	sessionContextKey = "session"
)

// SessionMiddleware loads the session cookie when present and valid. Requests
// without a usable session continue anonymously; route guards decide access.
func SessionMiddleware(m *SessionManager, store RevocationStore, log logrus.FieldLogger) echo.MiddlewareFunc {
	parse := echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + m.CookieName(),
		ContextKey:  tokenContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.Parse(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})

	load := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := c.Get(tokenContextKey).(*Session)
			if !ok || sess == nil {
				return next(c)
			}
			revoked, err := store.IsRevoked(c.Request().Context(), sess)
			if err != nil {
				log.WithError(err).WithField("user_id", sess.UserID).Warn("session revocation check failed")
			}
			if revoked {
				m.Clear(c)
				return next(c)
			}
			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(load(next))
	}
}

// SessionFromContext returns the request's session or nil.
func SessionFromContext(c echo.Context) *Session {
	sess, _ := c.Get(sessionContextKey).(*Session)
	return sess
}

// Require rejects requests whose session does not satisfy capability.
func Require(g *Guard, capability Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := g.Authorize(SessionFromContext(c), Request{Capability: capability}); err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}
