package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/policy"
	"github.com/amaamoun99/recepito/internal/repository"
)

type CreateRecipeInput struct {
	Title        string               `json:"title" validate:"required"`
	Description  string               `json:"description" validate:"required"`
	Ingredients  []models.Ingredient  `json:"ingredients" validate:"required,min=1"`
	Instructions []models.Instruction `json:"instructions" validate:"required,min=1"`
	CookingTime  int                  `json:"cooking_time" validate:"required,min=1"`
	PrepTime     int                  `json:"prep_time" validate:"required,min=1"`
	Servings     int                  `json:"servings" validate:"required,min=1"`
	Difficulty   string               `json:"difficulty" validate:"required"`
	Cuisine      string               `json:"cuisine" validate:"required"`
	ImageURL     string               `json:"image_url"`
}

type UpdateRecipeInput struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Ingredients  []models.Ingredient  `json:"ingredients"`
	Instructions []models.Instruction `json:"instructions"`
	CookingTime  *int                 `json:"cooking_time"`
	PrepTime     *int                 `json:"prep_time"`
	Servings     *int                 `json:"servings"`
	Difficulty   *string              `json:"difficulty"`
	Cuisine      *string              `json:"cuisine"`
	ImageURL     *string              `json:"image_url"`
}

// CommentWithAuthor is the read-side join of a comment and its author's
// public view.
type CommentWithAuthor struct {
	Comment *models.Comment    `json:"comment"`
	Author  *models.PublicUser `json:"author,omitempty"`
}

// RecipeDetail is the projection returned for a single recipe read: the
// document plus joined author and comments, with the derived average rating.
type RecipeDetail struct {
	Recipe        *models.Recipe      `json:"recipe"`
	Author        *models.PublicUser  `json:"author,omitempty"`
	Comments      []CommentWithAuthor `json:"comments"`
	AverageRating float64             `json:"average_rating"`
}

type RecipePage struct {
	Recipes []*models.Recipe `json:"recipes"`
	Total   int64            `json:"total"`
	Page    int64            `json:"page"`
	Limit   int64            `json:"limit"`
}

type RecipeService interface {
	Create(ctx context.Context, authorID primitive.ObjectID, in CreateRecipeInput) (*models.Recipe, error)
	Get(ctx context.Context, id primitive.ObjectID) (*RecipeDetail, error)
	List(ctx context.Context, page, limit int64) (*RecipePage, error)
	Update(ctx context.Context, caller policy.Identity, id primitive.ObjectID, in UpdateRecipeInput) (*models.Recipe, error)
	// Delete removes the recipe and sweeps its id out of comments, user
	// saved/authored sets and meal plans. The sweep is best-effort: partial
	// failures are logged, never fatal.
	Delete(ctx context.Context, caller policy.Identity, id primitive.ObjectID) error
}

type recipeService struct {
	recipes   repository.RecipeRepository
	users     repository.UserRepository
	comments  repository.CommentRepository
	mealplans repository.MealPlanRepository
	log       *zap.SugaredLogger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	mealplans repository.MealPlanRepository,
	log *zap.SugaredLogger,
) RecipeService {
	return &recipeService{
		recipes:   recipes,
		users:     users,
		comments:  comments,
		mealplans: mealplans,
		log:       log,
	}
}

func (s *recipeService) Create(ctx context.Context, authorID primitive.ObjectID, in CreateRecipeInput) (*models.Recipe, error) {
	if !models.ValidDifficulty(in.Difficulty) {
		return nil, apperrors.Validation("difficulty must be Easy, Medium or Hard")
	}
	rec := &models.Recipe{
		Author:       authorID,
		Title:        in.Title,
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		CookingTime:  in.CookingTime,
		PrepTime:     in.PrepTime,
		Servings:     in.Servings,
		Difficulty:   in.Difficulty,
		Cuisine:      in.Cuisine,
		ImageURL:     in.ImageURL,
	}
	if err := s.recipes.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	if err := s.users.AddRecipeRef(ctx, authorID, rec.ID); err != nil {
		s.log.Warnw("failed to record recipe on author",
			"recipe", rec.ID.Hex(), "author", authorID.Hex(), "error", err)
	}
	return rec, nil
}

// Get performs the read-side join: author and comment authors are resolved
// explicitly by the query layer, never lazily by the entity.
func (s *recipeService) Get(ctx context.Context, id primitive.ObjectID) (*RecipeDetail, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, apperrors.NotFound("no recipe found with that id")
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	detail := &RecipeDetail{
		Recipe:        rec,
		Comments:      []CommentWithAuthor{},
		AverageRating: rec.AverageRating(),
	}

	if author, err := s.users.FindByID(ctx, rec.Author); err == nil {
		view := author.PublicView()
		detail.Author = &view
	}

	comments, err := s.comments.FindByRecipe(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.Author)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment authors: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.User, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	for _, c := range comments {
		cwa := CommentWithAuthor{Comment: c}
		if a, ok := byID[c.Author]; ok {
			view := a.PublicView()
			cwa.Author = &view
		}
		detail.Comments = append(detail.Comments, cwa)
	}
	return detail, nil
}

func (s *recipeService) List(ctx context.Context, page, limit int64) (*RecipePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	recs, total, err := s.recipes.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	if recs == nil {
		recs = []*models.Recipe{}
	}
	return &RecipePage{Recipes: recs, Total: total, Page: page, Limit: limit}, nil
}

func (s *recipeService) Update(ctx context.Context, caller policy.Identity, id primitive.ObjectID, in UpdateRecipeInput) (*models.Recipe, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, apperrors.NotFound("no recipe found with that id")
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if err := policy.Authorize(caller, rec.Author); err != nil {
		return nil, err
	}

	if in.Title != nil {
		rec.Title = *in.Title
	}
	if in.Description != nil {
		rec.Description = *in.Description
	}
	if in.Ingredients != nil {
		rec.Ingredients = in.Ingredients
	}
	if in.Instructions != nil {
		rec.Instructions = in.Instructions
	}
	if in.CookingTime != nil {
		rec.CookingTime = *in.CookingTime
	}
	if in.PrepTime != nil {
		rec.PrepTime = *in.PrepTime
	}
	if in.Servings != nil {
		rec.Servings = *in.Servings
	}
	if in.Difficulty != nil {
		if !models.ValidDifficulty(*in.Difficulty) {
			return nil, apperrors.Validation("difficulty must be Easy, Medium or Hard")
		}
		rec.Difficulty = *in.Difficulty
	}
	if in.Cuisine != nil {
		rec.Cuisine = *in.Cuisine
	}
	if in.ImageURL != nil {
		rec.ImageURL = *in.ImageURL
	}

	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return rec, nil
}

func (s *recipeService) Delete(ctx context.Context, caller policy.Identity, id primitive.ObjectID) error {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return apperrors.NotFound("no recipe found with that id")
		}
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if err := policy.Authorize(caller, rec.Author); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	// Best-effort cascade over the back-references.
	if _, err := s.comments.DeleteByRecipe(ctx, id); err != nil {
		s.log.Errorw("cascade: failed to delete recipe comments",
			"recipe", id.Hex(), "error", err)
	}
	if err := s.users.PullRecipeRefs(ctx, id); err != nil {
		s.log.Errorw("cascade: failed to pull recipe refs from users",
			"recipe", id.Hex(), "error", err)
	}
	if err := s.mealplans.PullRecipe(ctx, id); err != nil {
		s.log.Errorw("cascade: failed to pull recipe from meal plans",
			"recipe", id.Hex(), "error", err)
	}
	return nil
}
