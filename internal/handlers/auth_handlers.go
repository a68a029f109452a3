package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/middleware"
	"github.com/amaamoun99/recepito/internal/services"
	"github.com/amaamoun99/recepito/internal/utils"
)

type AuthHandler struct {
	sessions     services.SessionService
	cookieMaxAge time.Duration
	secureCookie bool
}

func NewAuthHandler(sessions services.SessionService, cookieMaxAge time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

// sendToken writes the minted credential both in the body and as an httpOnly
// cookie so browser and API clients can use either transport.
func (h *AuthHandler) sendToken(c *fiber.Ctx, status int, res *services.AuthResult) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    res.Token,
		Expires:  time.Now().Add(h.cookieMaxAge),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return success(c, status, fiber.Map{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	})
}

type signupReq struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return apperrors.Validation(msg)
	}
	res, err := h.sessions.Signup(c.Context(), services.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusCreated, res)
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return apperrors.Validation(msg)
	}
	res, err := h.sessions.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, res)
}

// Logout is purely client-directed: the server holds no session state, so the
// cookie is overwritten with an already-expired placeholder.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "loggedout",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return success(c, fiber.StatusOK, nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.sessions.CurrentUser(c.Context(), identity.ID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": user})
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req changePasswordReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return apperrors.Validation(msg)
	}
	res, err := h.sessions.ChangePassword(c.Context(), identity.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, res)
}

type forgotPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return apperrors.Validation(msg)
	}
	devTicket, err := h.sessions.ForgotPassword(c.Context(), req.Email)
	if err != nil {
		return err
	}
	data := fiber.Map{"message": "reset instructions sent"}
	if devTicket != "" {
		// Only populated under the explicit development shortcut.
		data["reset_token"] = devTicket
	}
	return success(c, fiber.StatusOK, data)
}

type resetPasswordReq struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return apperrors.Validation(msg)
	}
	res, err := h.sessions.ResetPassword(c.Context(), req.Token, req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, fiber.StatusOK, res)
}
