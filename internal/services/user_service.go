package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/repository"
)

type UpdateProfileInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Avatar   *string `json:"avatar"`
}

// UserRecipes is the joined view of a user's authored and saved recipes.
type UserRecipes struct {
	Recipes      []*models.Recipe `json:"recipes"`
	SavedRecipes []*models.Recipe `json:"saved_recipes"`
}

type UserPage struct {
	Users []models.PublicUser `json:"users"`
	Total int64               `json:"total"`
	Page  int64               `json:"page"`
	Limit int64               `json:"limit"`
}

type UserService interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.PublicUser, error)
	List(ctx context.Context, page, limit int64) (*UserPage, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.PublicUser, error)
	// Deactivate soft-deletes the account; the guard treats inactive accounts
	// as no longer existing.
	Deactivate(ctx context.Context, userID primitive.ObjectID) error
	GetRecipes(ctx context.Context, userID primitive.ObjectID) (*UserRecipes, error)
}

type userService struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
	log     *zap.SugaredLogger
}

func NewUserService(users repository.UserRepository, recipes repository.RecipeRepository, log *zap.SugaredLogger) UserService {
	return &userService{users: users, recipes: recipes, log: log}
}

func (s *userService) Get(ctx context.Context, id primitive.ObjectID) (*models.PublicUser, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NotFound("no user found with that id")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	view := u.PublicView()
	return &view, nil
}

func (s *userService) List(ctx context.Context, page, limit int64) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	views := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		views = append(views, u.PublicView())
	}
	return &UserPage{Users: views, Total: total, Page: page, Limit: limit}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.PublicUser, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NotFound("no user found with that id")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if in.Username != nil {
		if strings.TrimSpace(*in.Username) == "" {
			return nil, apperrors.Validation("username cannot be empty")
		}
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, apperrors.Validation("email cannot be empty")
		}
		u.Email = email
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Location != nil {
		u.Location = *in.Location
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.Conflict("email or username is already taken")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	view := u.PublicView()
	return &view, nil
}

func (s *userService) Deactivate(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NotFound("no user found with that id")
		}
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

func (s *userService) GetRecipes(ctx context.Context, userID primitive.ObjectID) (*UserRecipes, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NotFound("no user found with that id")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	authored, err := s.recipes.FindByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load authored recipes: %w", err)
	}
	saved, err := s.recipes.FindByIDs(ctx, u.SavedRecipes)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved recipes: %w", err)
	}
	if authored == nil {
		authored = []*models.Recipe{}
	}
	if saved == nil {
		saved = []*models.Recipe{}
	}
	return &UserRecipes{Recipes: authored, SavedRecipes: saved}, nil
}
