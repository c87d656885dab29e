package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionCookie is the name of the login cookie.
const SessionCookie = "unihome_session"

// NewSessionStore builds the in-memory session store behind the login cookie.
func NewSessionStore(ttl time.Duration, secure bool) *session.Store {
	return session.New(session.Config{
		Expiration:     ttl,
		KeyLookup:      "cookie:" + SessionCookie,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}
