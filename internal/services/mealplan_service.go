package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/repository"
)

// RecipeSummary is the slim projection joined into meal plan reads.
type RecipeSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ImageURL    string `json:"image_url,omitempty"`
	CookingTime int    `json:"cooking_time"`
	Servings    int    `json:"servings"`
}

// MealPlanView is a plan with its referenced recipes resolved.
type MealPlanView struct {
	Plan    *models.MealPlan         `json:"plan"`
	Recipes map[string]RecipeSummary `json:"recipes"`
}

type MealPlanService interface {
	CreateOrUpdate(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, meals []models.DayPlan) (*MealPlanView, error)
	Get(ctx context.Context, userID primitive.ObjectID, week *time.Time) ([]*MealPlanView, error)
}

type mealPlanService struct {
	plans   repository.MealPlanRepository
	recipes repository.RecipeRepository
	log     *zap.SugaredLogger
}

func NewMealPlanService(plans repository.MealPlanRepository, recipes repository.RecipeRepository, log *zap.SugaredLogger) MealPlanService {
	return &mealPlanService{plans: plans, recipes: recipes, log: log}
}

func normalizeWeekStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *mealPlanService) CreateOrUpdate(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, meals []models.DayPlan) (*MealPlanView, error) {
	if weekStart.IsZero() {
		return nil, apperrors.Validation("week start date is required")
	}
	seen := make(map[string]bool, len(meals))
	for _, m := range meals {
		if !models.ValidDay(m.Day) {
			return nil, apperrors.Validation(fmt.Sprintf("%q is not a valid day", m.Day))
		}
		if seen[m.Day] {
			return nil, apperrors.Validation(fmt.Sprintf("day %q appears more than once", m.Day))
		}
		seen[m.Day] = true
	}

	plan := &models.MealPlan{
		User:          userID,
		WeekStartDate: normalizeWeekStart(weekStart),
		Meals:         meals,
	}
	saved, err := s.plans.Upsert(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}
	return s.joinRecipes(ctx, saved)
}

func (s *mealPlanService) Get(ctx context.Context, userID primitive.ObjectID, week *time.Time) ([]*MealPlanView, error) {
	if week != nil {
		normalized := normalizeWeekStart(*week)
		week = &normalized
	}
	plans, err := s.plans.FindByUser(ctx, userID, week)
	if err != nil {
		if err == repository.ErrMealPlanNotFound {
			return nil, apperrors.NotFound("no meal plan found for that week")
		}
		return nil, fmt.Errorf("failed to load meal plans: %w", err)
	}
	out := make([]*MealPlanView, 0, len(plans))
	for _, p := range plans {
		view, err := s.joinRecipes(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// joinRecipes resolves every recipe id referenced by the plan into a summary
// projection. Dangling ids (recipe deleted after planning) are skipped.
func (s *mealPlanService) joinRecipes(ctx context.Context, plan *models.MealPlan) (*MealPlanView, error) {
	idSet := make(map[primitive.ObjectID]bool)
	for _, day := range plan.Meals {
		for _, slot := range []*primitive.ObjectID{day.Breakfast, day.Lunch, day.Dinner} {
			if slot != nil {
				idSet[*slot] = true
			}
		}
		for _, snack := range day.Snacks {
			idSet[snack] = true
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	recipes, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve planned recipes: %w", err)
	}
	summaries := make(map[string]RecipeSummary, len(recipes))
	for _, r := range recipes {
		summaries[r.ID.Hex()] = RecipeSummary{
			ID:          r.ID.Hex(),
			Title:       r.Title,
			ImageURL:    r.ImageURL,
			CookingTime: r.CookingTime,
			Servings:    r.Servings,
		}
	}
	return &MealPlanView{Plan: plan, Recipes: summaries}, nil
}
