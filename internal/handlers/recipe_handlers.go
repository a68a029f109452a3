package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/services"
	"github.com/amaamoun99/recepito/internal/utils"
)

type RecipeHandler struct {
	recipes services.RecipeService
	social  services.SocialService
}

func NewRecipeHandler(recipes services.RecipeService, social services.SocialService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, social: social}
}

func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var in services.CreateRecipeInput
	if err := c.BodyParser(&in); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if msg := utils.ValidateStruct(in); msg != "" {
		return apperrors.Validation(msg)
	}
	rec, err := h.recipes.Create(c.Context(), identity.ID, in)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, fiber.Map{"recipe": rec})
}

func (h *RecipeHandler) List(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 10))
	res, err := h.recipes.List(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, res)
}

func (h *RecipeHandler) Get(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.recipes.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, detail)
}

func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	var in services.UpdateRecipeInput
	if err := c.BodyParser(&in); err != nil {
		return apperrors.Validation("invalid request body")
	}
	rec, err := h.recipes.Update(c.Context(), identity, id, in)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"recipe": rec})
}

func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.recipes.Delete(c.Context(), identity, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecipeHandler) ToggleLike(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	res, err := h.social.ToggleLike(c.Context(), identity.ID, id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, res)
}

func (h *RecipeHandler) ToggleSave(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	saved, err := h.social.ToggleSave(c.Context(), identity.ID, id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"saved": saved})
}

type rateRecipeReq struct {
	Rating int    `json:"rating" validate:"required"`
	Review string `json:"review"`
}

func (h *RecipeHandler) Rate(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	var req rateRecipeReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	res, err := h.social.RateRecipe(c.Context(), identity.ID, id, req.Rating, req.Review)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, res)
}
