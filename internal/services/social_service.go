package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/metrics"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/policy"
	"github.com/amaamoun99/recepito/internal/repository"
)

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// RatingSummary is the derived aggregate after a rating upsert.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// SocialService mutates the denormalized social graph. Toggles flip
// membership through single conditional store operations; cross-document
// pairs are two independent writes where a partial failure is logged and
// tolerated, never fatal.
type SocialService interface {
	ToggleLike(ctx context.Context, userID, recipeID primitive.ObjectID) (*LikeResult, error)
	ToggleSave(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error)
	ToggleFollow(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error)
	AddComment(ctx context.Context, authorID, recipeID primitive.ObjectID, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, caller policy.Identity, commentID primitive.ObjectID, text string) (*models.Comment, error)
	RemoveComment(ctx context.Context, caller policy.Identity, commentID primitive.ObjectID) error
	ToggleCommentLike(ctx context.Context, userID, commentID primitive.ObjectID) (bool, error)
	RateRecipe(ctx context.Context, userID, recipeID primitive.ObjectID, value int, review string) (*RatingSummary, error)
}

type socialService struct {
	users    repository.UserRepository
	recipes  repository.RecipeRepository
	comments repository.CommentRepository
	log      *zap.SugaredLogger
}

func NewSocialService(
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	comments repository.CommentRepository,
	log *zap.SugaredLogger,
) SocialService {
	return &socialService{users: users, recipes: recipes, comments: comments, log: log}
}

// ToggleLike flips the caller's membership in the recipe's like set. The
// $addToSet/$pull pair keeps concurrent toggles from producing duplicates.
func (s *socialService) ToggleLike(ctx context.Context, userID, recipeID primitive.ObjectID) (*LikeResult, error) {
	added, err := s.recipes.AddLike(ctx, recipeID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, apperrors.NotFound("no recipe found with that id")
		}
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	liked := added
	if !added {
		if _, err := s.recipes.RemoveLike(ctx, recipeID, userID); err != nil {
			return nil, fmt.Errorf("failed to toggle like: %w", err)
		}
		liked = false
	}

	rec, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read recipe: %w", err)
	}
	metrics.SocialToggles.WithLabelValues("like", toggleState(liked)).Inc()
	return &LikeResult{Liked: liked, Likes: len(rec.Likes)}, nil
}

// ToggleSave is symmetric to ToggleLike but scoped to the caller's saved set.
func (s *socialService) ToggleSave(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return false, apperrors.NotFound("no recipe found with that id")
		}
		return false, fmt.Errorf("failed to resolve recipe: %w", err)
	}

	added, err := s.users.AddSavedRecipe(ctx, userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle save: %w", err)
	}
	saved := added
	if !added {
		if _, err := s.users.RemoveSavedRecipe(ctx, userID, recipeID); err != nil {
			return false, fmt.Errorf("failed to toggle save: %w", err)
		}
		saved = false
	}
	metrics.SocialToggles.WithLabelValues("save", toggleState(saved)).Inc()
	return saved, nil
}

// ToggleFollow maintains the following/followers pair across two user
// documents. The two writes are independent; when the mirror write fails the
// relationship is temporarily asymmetric and the failure is logged.
func (s *socialService) ToggleFollow(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	if actorID == targetID {
		return false, apperrors.Validation("you cannot follow yourself")
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, apperrors.NotFound("no user found with that id")
		}
		return false, fmt.Errorf("failed to resolve user: %w", err)
	}

	added, err := s.users.AddFollowing(ctx, actorID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle follow: %w", err)
	}
	following := added
	if !added {
		if _, err := s.users.RemoveFollowing(ctx, actorID, targetID); err != nil {
			return false, fmt.Errorf("failed to toggle follow: %w", err)
		}
		following = false
	}

	var mirrorErr error
	if following {
		_, mirrorErr = s.users.AddFollower(ctx, targetID, actorID)
	} else {
		_, mirrorErr = s.users.RemoveFollower(ctx, targetID, actorID)
	}
	if mirrorErr != nil {
		s.log.Errorw("follow mirror write failed, relationship is asymmetric",
			"actor", actorID.Hex(), "target", targetID.Hex(), "error", mirrorErr)
	}

	metrics.SocialToggles.WithLabelValues("follow", toggleState(following)).Inc()
	return following, nil
}

// AddComment inserts the comment first and attaches the back-reference
// second. A failed attach leaves a logged orphan; the comment itself is kept.
func (s *socialService) AddComment(ctx context.Context, authorID, recipeID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, apperrors.NotFound("no recipe found with that id")
		}
		return nil, fmt.Errorf("failed to resolve recipe: %w", err)
	}

	comment := &models.Comment{Author: authorID, Recipe: recipeID, Text: text}
	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	if err := s.recipes.AttachComment(ctx, recipeID, comment.ID); err != nil {
		s.log.Errorw("comment created but not attached to recipe",
			"comment", comment.ID.Hex(), "recipe", recipeID.Hex(), "error", err)
	}
	if err := s.users.AddCommentRef(ctx, authorID, comment.ID); err != nil {
		s.log.Warnw("failed to record comment on author",
			"comment", comment.ID.Hex(), "author", authorID.Hex(), "error", err)
	}
	return comment, nil
}

func (s *socialService) UpdateComment(ctx context.Context, caller policy.Identity, commentID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, apperrors.NotFound("no comment found with that id")
		}
		return nil, fmt.Errorf("failed to resolve comment: %w", err)
	}
	if err := policy.Authorize(caller, comment.Author); err != nil {
		return nil, err
	}
	comment.Text = text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// RemoveComment detaches the back-reference before deleting the comment so a
// reader can never resolve a dangling id from the recipe.
func (s *socialService) RemoveComment(ctx context.Context, caller policy.Identity, commentID primitive.ObjectID) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return apperrors.NotFound("no comment found with that id")
		}
		return fmt.Errorf("failed to resolve comment: %w", err)
	}
	if err := policy.Authorize(caller, comment.Author); err != nil {
		return err
	}

	if err := s.recipes.DetachComment(ctx, comment.Recipe, commentID); err != nil &&
		!errors.Is(err, repository.ErrRecipeNotFound) {
		return fmt.Errorf("failed to detach comment from recipe: %w", err)
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		// Back-reference is already gone, so the comment is orphaned rather
		// than dangling; surface the failure.
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if err := s.users.RemoveCommentRef(ctx, comment.Author, commentID); err != nil {
		s.log.Warnw("failed to remove comment ref from author",
			"comment", commentID.Hex(), "author", comment.Author.Hex(), "error", err)
	}
	return nil
}

func (s *socialService) ToggleCommentLike(ctx context.Context, userID, commentID primitive.ObjectID) (bool, error) {
	added, err := s.comments.AddLike(ctx, commentID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return false, apperrors.NotFound("no comment found with that id")
		}
		return false, fmt.Errorf("failed to toggle comment like: %w", err)
	}
	liked := added
	if !added {
		if _, err := s.comments.RemoveLike(ctx, commentID, userID); err != nil {
			return false, fmt.Errorf("failed to toggle comment like: %w", err)
		}
		liked = false
	}
	metrics.SocialToggles.WithLabelValues("comment_like", toggleState(liked)).Inc()
	return liked, nil
}

// RateRecipe upserts the caller's rating entry: replace in place when one
// exists, otherwise a guarded push. Last write wins on a re-rate.
func (s *socialService) RateRecipe(ctx context.Context, userID, recipeID primitive.ObjectID, value int, review string) (*RatingSummary, error) {
	if value < 1 || value > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	rating := models.Rating{
		UserID:  userID,
		Value:   value,
		Review:  strings.TrimSpace(review),
		RatedAt: time.Now().UTC(),
	}

	updated, err := s.recipes.UpdateRating(ctx, recipeID, rating)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, apperrors.NotFound("no recipe found with that id")
		}
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}
	if !updated {
		pushed, err := s.recipes.PushRating(ctx, recipeID, rating)
		if err != nil {
			return nil, fmt.Errorf("failed to push rating: %w", err)
		}
		if !pushed {
			// Lost the race to a concurrent first rating by the same user;
			// the entry exists now, replace it in place.
			if _, err := s.recipes.UpdateRating(ctx, recipeID, rating); err != nil {
				return nil, fmt.Errorf("failed to update rating: %w", err)
			}
		}
	}

	rec, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read recipe: %w", err)
	}
	return &RatingSummary{Average: rec.AverageRating(), Count: len(rec.Ratings)}, nil
}

func toggleState(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
