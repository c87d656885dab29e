package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/middleware"
	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/services"
	"github.com/example/unihome/internal/utils"
)

// AuthHandler handles public account endpoints.
type AuthHandler struct {
	db          *gorm.DB
	accounts    *services.AccountService
	auth        *middleware.Auth
	tokenSecret string
	tokenTTL    time.Duration
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(db *gorm.DB, accounts *services.AccountService, auth *middleware.Auth, tokenSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		db:          db,
		accounts:    accounts,
		auth:        auth,
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
	}
}

type emailCodeRequest struct {
	Email string `json:"email"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendEmailCode mails a six digit verification code.
func (h *AuthHandler) SendEmailCode(c *fiber.Ctx) error {
	var req emailCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "邮箱不能为空")
	}

	if err := h.accounts.SendCode(c.UserContext(), req.Email); err != nil {
		if errors.Is(err, services.ErrMailDelivery) {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "验证码已发送"})
}

// Register verifies the code and sets the account password.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Code == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "请填写完整信息")
	}

	if _, err := h.accounts.Register(c.UserContext(), req.Email, req.Code, req.Password); err != nil {
		if errors.Is(err, services.ErrCodeNotRequested) || errors.Is(err, services.ErrInvalidCode) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "注册成功"})
}

// Login checks credentials, starts a session and issues a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "请填写邮箱和密码")
	}

	user, err := h.accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) || errors.Is(err, services.ErrEmailNotVerified) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	if err := h.auth.Login(c, user); err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.tokenSecret, user.ID, h.tokenTTL)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "登录成功", "token": token})
}

// Logout ends the session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// CurrentUser reports who is logged in.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(fiber.Map{"success": false})
	}
	return c.JSON(fiber.Map{"success": true, "email": user.Email, "username": user.Username})
}

// ContactInfo returns the first admin's contact block for the footer.
func (h *AuthHandler) ContactInfo(c *fiber.Ctx) error {
	var admin models.User
	err := h.db.Where("is_admin = ?", true).Order("id asc").First(&admin).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "contact": fiber.Map{
			"phone":        "",
			"email":        "info@unihome.com",
			"address":      "",
			"display_name": "UniHome",
		}})
	}

	return c.JSON(fiber.Map{"success": true, "contact": fiber.Map{
		"phone":        admin.Phone,
		"email":        admin.Email,
		"address":      admin.Address,
		"display_name": admin.NameOrUsername(),
	}})
}
