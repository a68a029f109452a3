package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/services"
)

type UserHandler struct {
	users  services.UserService
	social services.SocialService
}

func NewUserHandler(users services.UserService, social services.SocialService) *UserHandler {
	return &UserHandler{users: users, social: social}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Context(), identity.ID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": user})
}

type updateProfileReq struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	Avatar          *string `json:"avatar"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Password != nil || req.PasswordConfirm != nil {
		return apperrors.Validation("this route is not for password updates, use /auth/change-password")
	}
	user, err := h.users.UpdateProfile(c.Context(), identity.ID, services.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
		Location: req.Location,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": user})
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	if err := h.users.Deactivate(c.Context(), identity.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": user})
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 10))
	res, err := h.users.List(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, res)
}

func (h *UserHandler) GetUserRecipes(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	res, err := h.users.GetRecipes(c.Context(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, res)
}

// FollowUser toggles the follow relationship between the caller and :id.
func (h *UserHandler) FollowUser(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	targetID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	following, err := h.social.ToggleFollow(c.Context(), identity.ID, targetID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"following": following})
}
