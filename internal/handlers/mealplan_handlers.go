package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/services"
)

type MealPlanHandler struct {
	plans services.MealPlanService
}

func NewMealPlanHandler(plans services.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{plans: plans}
}

type mealPlanReq struct {
	WeekStartDate string           `json:"week_start_date"`
	Meals         []models.DayPlan `json:"meals"`
}

func (h *MealPlanHandler) CreateOrUpdate(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req mealPlanReq
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	weekStart, err := time.Parse("2006-01-02", req.WeekStartDate)
	if err != nil {
		return apperrors.Validation("week_start_date must be formatted YYYY-MM-DD")
	}
	view, err := h.plans.CreateOrUpdate(c.Context(), identity.ID, weekStart, req.Meals)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"meal_plan": view})
}

func (h *MealPlanHandler) Get(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var week *time.Time
	if q := c.Query("week_start_date"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			return apperrors.Validation("week_start_date must be formatted YYYY-MM-DD")
		}
		week = &t
	}
	views, err := h.plans.Get(c.Context(), identity.ID, week)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"meal_plans": views})
}
