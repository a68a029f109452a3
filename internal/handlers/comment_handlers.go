package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/services"
	"github.com/amaamoun99/recepito/internal/utils"
)

type CommentHandler struct {
	social services.SocialService
}

func NewCommentHandler(social services.SocialService) *CommentHandler {
	return &CommentHandler{social: social}
}

type commentReq struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// Create posts a comment on the recipe in :id.
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	recipeID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	var req commentReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return apperrors.Validation(msg)
	}
	comment, err := h.social.AddComment(c.Context(), identity.ID, recipeID, req.Text)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, fiber.Map{"comment": comment})
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	commentID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	var req commentReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return apperrors.Validation(msg)
	}
	comment, err := h.social.UpdateComment(c.Context(), identity, commentID, req.Text)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"comment": comment})
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	commentID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.social.RemoveComment(c.Context(), identity, commentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CommentHandler) ToggleLike(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	commentID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	liked, err := h.social.ToggleCommentLike(c.Context(), identity.ID, commentID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"liked": liked})
}
