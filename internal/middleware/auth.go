package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

const (
	userContextKey = "currentUser"
	sessionUserKey = "user_id"
)

// Auth resolves the current user from the session cookie or a bearer token.
type Auth struct {
	db       *gorm.DB
	sessions *session.Store
	secret   string
}

// NewAuth constructs Auth.
func NewAuth(db *gorm.DB, sessions *session.Store, secret string) *Auth {
	return &Auth{db: db, sessions: sessions, secret: secret}
}

// Load looks up the user on every request and stores it in the context. It never
// rejects a request; the Require* handlers do that.
func (a *Auth) Load() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := a.userID(c)
		if err != nil {
			return err
		}
		if userID == 0 {
			return c.Next()
		}

		var user models.User
		if err := a.db.First(&user, userID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return c.Next()
		}

		c.Locals(userContextKey, &user)
		return c.Next()
	}
}

func (a *Auth) userID(c *fiber.Ctx) (uint, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if id, err := utils.ParseToken(a.secret, parts[1]); err == nil {
				return id, nil
			}
		}
	}

	sess, err := a.sessions.Get(c)
	if err != nil {
		return 0, err
	}
	if id, ok := sess.Get(sessionUserKey).(uint); ok {
		return id, nil
	}
	return 0, nil
}

// Login binds the user to the session.
func (a *Auth) Login(c *fiber.Ctx, user *models.User) error {
	sess, err := a.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserKey, user.ID)
	return sess.Save()
}

// Logout destroys the session.
func (a *Auth) Logout(c *fiber.Ctx) error {
	sess, err := a.sessions.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// RequireUser rejects guests with 401 and need_login.
func (a *Auth) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success":    false,
				"message":    "请先登录",
				"need_login": true,
			})
		}
		return c.Next()
	}
}

// RequireAdminAPI answers 401 for guests and 403 for non-admins.
func (a *Auth) RequireAdminAPI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "未登录")
		}
		if !user.IsAdmin {
			return fiber.NewError(fiber.StatusForbidden, "权限不足")
		}
		return c.Next()
	}
}

// RequireAdminPage redirects anyone but an admin to the console login.
func (a *Auth) RequireAdminPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			return c.Redirect("/admin/login")
		}
		return c.Next()
	}
}

// CurrentUser returns the user loaded for this request, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(userContextKey).(*models.User); ok {
		return user
	}
	return nil
}
