package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
)

type mealPlanFixture struct {
	plans   *fakeMealPlanRepo
	recipes *fakeRecipeRepo
	svc     MealPlanService
}

func newMealPlanFixture(t *testing.T) *mealPlanFixture {
	t.Helper()
	f := &mealPlanFixture{
		plans:   newFakeMealPlanRepo(),
		recipes: newFakeRecipeRepo(),
	}
	f.svc = NewMealPlanService(f.plans, f.recipes, zap.NewNop().Sugar())
	return f
}

func (f *mealPlanFixture) addRecipe(t *testing.T, title string) *models.Recipe {
	t.Helper()
	r := &models.Recipe{Author: primitive.NewObjectID(), Title: title}
	require.NoError(t, f.recipes.Insert(context.Background(), r))
	return r
}

func TestMealPlanCreateOrUpdate(t *testing.T) {
	f := newMealPlanFixture(t)
	user := primitive.NewObjectID()
	rec := f.addRecipe(t, "Shakshuka")

	week := time.Date(2026, 3, 2, 14, 30, 0, 0, time.FixedZone("CET", 3600))
	view, err := f.svc.CreateOrUpdate(context.Background(), user, week, []models.DayPlan{
		{Day: "Monday", Dinner: &rec.ID},
	})
	require.NoError(t, err)

	// The week start is normalized to UTC midnight.
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), view.Plan.WeekStartDate)
	require.Contains(t, view.Recipes, rec.ID.Hex())
	assert.Equal(t, "Shakshuka", view.Recipes[rec.ID.Hex()].Title)

	// A second write for the same week replaces the plan instead of adding one.
	other := f.addRecipe(t, "Granola")
	view, err = f.svc.CreateOrUpdate(context.Background(), user, week, []models.DayPlan{
		{Day: "Monday", Breakfast: &other.ID},
	})
	require.NoError(t, err)
	assert.Len(t, view.Plan.Meals, 1)

	plans, err := f.svc.Get(context.Background(), user, nil)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestMealPlanCreateOrUpdate_Validation(t *testing.T) {
	f := newMealPlanFixture(t)
	user := primitive.NewObjectID()
	week := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateOrUpdate(context.Background(), user, week, []models.DayPlan{
		{Day: "Funday"},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.CreateOrUpdate(context.Background(), user, week, []models.DayPlan{
		{Day: "Monday"}, {Day: "Monday"},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.CreateOrUpdate(context.Background(), user, time.Time{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMealPlanGet_SkipsDanglingRecipes(t *testing.T) {
	f := newMealPlanFixture(t)
	user := primitive.NewObjectID()
	rec := f.addRecipe(t, "Shakshuka")

	week := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateOrUpdate(context.Background(), user, week, []models.DayPlan{
		{Day: "Monday", Lunch: &rec.ID},
	})
	require.NoError(t, err)

	require.NoError(t, f.recipes.Delete(context.Background(), rec.ID))

	plans, err := f.svc.Get(context.Background(), user, &week)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.NotContains(t, plans[0].Recipes, rec.ID.Hex())
}
