package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/amaamoun99/recepito/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrMealPlanNotFound = errors.New("meal plan not found")
	ErrDuplicateKey     = errors.New("duplicate key")
)

// IsDuplicateKey reports whether err is a Mongo unique-index violation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, ErrDuplicateKey) {
		return true
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

// UserRepository exposes the user collection. Set mutations are single
// conditional store-level operations ($addToSet / $pull), never
// read-modify-write; the bool result reports whether the document changed.
type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailWithPassword includes the otherwise-hidden credential fields.
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, page, limit int64) ([]*models.User, int64, error)
	Update(ctx context.Context, u *models.User) error
	// UpdatePassword stores a new hash, sets the password_changed_at watermark
	// and clears any outstanding reset ticket.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	// FindByResetToken matches the stored ticket hash with an unexpired expiry.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error

	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error)
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error)
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error)
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error)
	AddSavedRecipe(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error)
	RemoveSavedRecipe(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error)
	AddRecipeRef(ctx context.Context, userID, recipeID primitive.ObjectID) error
	RemoveRecipeRef(ctx context.Context, userID, recipeID primitive.ObjectID) error
	AddCommentRef(ctx context.Context, userID, commentID primitive.ObjectID) error
	RemoveCommentRef(ctx context.Context, userID, commentID primitive.ObjectID) error
	// PullRecipeRefs sweeps a deleted recipe id out of every user's authored
	// and saved sets.
	PullRecipeRefs(ctx context.Context, recipeID primitive.ObjectID) error
}

// RecipeRepository exposes the recipe collection.
type RecipeRepository interface {
	Insert(ctx context.Context, r *models.Recipe) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Recipe, error)
	FindByAuthor(ctx context.Context, author primitive.ObjectID) ([]*models.Recipe, error)
	List(ctx context.Context, page, limit int64) ([]*models.Recipe, int64, error)
	Update(ctx context.Context, r *models.Recipe) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddLike(ctx context.Context, recipeID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, recipeID, userID primitive.ObjectID) (bool, error)
	AttachComment(ctx context.Context, recipeID, commentID primitive.ObjectID) error
	DetachComment(ctx context.Context, recipeID, commentID primitive.ObjectID) error
	// UpdateRating replaces the caller's existing rating entry in place.
	UpdateRating(ctx context.Context, recipeID primitive.ObjectID, rating models.Rating) (bool, error)
	// PushRating appends a rating entry only when the caller has none yet.
	PushRating(ctx context.Context, recipeID primitive.ObjectID, rating models.Rating) (bool, error)
}

// CommentRepository exposes the comment collection.
type CommentRepository interface {
	Insert(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindByRecipe(ctx context.Context, recipeID primitive.ObjectID) ([]*models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByRecipe(ctx context.Context, recipeID primitive.ObjectID) (int64, error)
	AddLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error)
}

// MealPlanRepository exposes the meal plan collection.
type MealPlanRepository interface {
	Upsert(ctx context.Context, p *models.MealPlan) (*models.MealPlan, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, week *time.Time) ([]*models.MealPlan, error)
	// PullRecipe removes a deleted recipe from every plan slot that holds it.
	PullRecipe(ctx context.Context, recipeID primitive.ObjectID) error
}
