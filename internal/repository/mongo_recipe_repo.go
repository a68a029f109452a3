package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amaamoun99/recepito/internal/models"
)

type mongoRecipeRepo struct {
	col *mongo.Collection
}

func NewMongoRecipeRepo(db *mongo.Database, collection string) RecipeRepository {
	col := db.Collection(collection)
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return &mongoRecipeRepo{col: col}
}

func (r *mongoRecipeRepo) Insert(ctx context.Context, rec *models.Recipe) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Likes == nil {
		rec.Likes = []primitive.ObjectID{}
	}
	if rec.Comments == nil {
		rec.Comments = []primitive.ObjectID{}
	}
	if rec.Ratings == nil {
		rec.Ratings = []models.Rating{}
	}
	res, err := r.col.InsertOne(ctx, rec)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid
	}
	return nil
}

func (r *mongoRecipeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	var rec models.Recipe
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *mongoRecipeRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *mongoRecipeRepo) FindByAuthor(ctx context.Context, author primitive.ObjectID) ([]*models.Recipe, error) {
	return r.findMany(ctx, bson.M{"author": author},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *mongoRecipeRepo) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Recipe, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.col.Find(ctx, filter, opts)
	} else {
		cur, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Recipe
	for cur.Next(ctx) {
		var rec models.Recipe
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, cur.Err()
}

func (r *mongoRecipeRepo) List(ctx context.Context, page, limit int64) ([]*models.Recipe, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	out, err := r.findMany(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *mongoRecipeRepo) Update(ctx context.Context, rec *models.Recipe) error {
	rec.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, rec.ID, bson.M{"$set": bson.M{
		"title":        rec.Title,
		"description":  rec.Description,
		"ingredients":  rec.Ingredients,
		"instructions": rec.Instructions,
		"cooking_time": rec.CookingTime,
		"prep_time":    rec.PrepTime,
		"servings":     rec.Servings,
		"difficulty":   rec.Difficulty,
		"cuisine":      rec.Cuisine,
		"image_url":    rec.ImageURL,
		"updated_at":   rec.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func (r *mongoRecipeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func (r *mongoRecipeRepo) addToSet(ctx context.Context, recipeID primitive.ObjectID, field string, value interface{}) (bool, error) {
	res, err := r.col.UpdateByID(ctx, recipeID, bson.M{
		"$addToSet": bson.M{field: value},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrRecipeNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoRecipeRepo) pull(ctx context.Context, recipeID primitive.ObjectID, field string, value interface{}) (bool, error) {
	res, err := r.col.UpdateByID(ctx, recipeID, bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrRecipeNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoRecipeRepo) AddLike(ctx context.Context, recipeID, userID primitive.ObjectID) (bool, error) {
	return r.addToSet(ctx, recipeID, "likes", userID)
}

func (r *mongoRecipeRepo) RemoveLike(ctx context.Context, recipeID, userID primitive.ObjectID) (bool, error) {
	return r.pull(ctx, recipeID, "likes", userID)
}

func (r *mongoRecipeRepo) AttachComment(ctx context.Context, recipeID, commentID primitive.ObjectID) error {
	_, err := r.addToSet(ctx, recipeID, "comments", commentID)
	return err
}

func (r *mongoRecipeRepo) DetachComment(ctx context.Context, recipeID, commentID primitive.ObjectID) error {
	_, err := r.pull(ctx, recipeID, "comments", commentID)
	return err
}

// UpdateRating rewrites the caller's rating entry in place through a
// positional update. Returns false when the caller has no entry yet.
func (r *mongoRecipeRepo) UpdateRating(ctx context.Context, recipeID primitive.ObjectID, rating models.Rating) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": recipeID, "ratings.user_id": rating.UserID},
		bson.M{"$set": bson.M{
			"ratings.$.value":    rating.Value,
			"ratings.$.review":   rating.Review,
			"ratings.$.rated_at": rating.RatedAt,
			"updated_at":         time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	// Distinguish a missing entry from a missing recipe.
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": recipeID})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrRecipeNotFound
	}
	return false, nil
}

// PushRating appends only when no entry for the user exists; the $ne guard
// keeps concurrent upserts from creating duplicates.
func (r *mongoRecipeRepo) PushRating(ctx context.Context, recipeID primitive.ObjectID, rating models.Rating) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": recipeID, "ratings.user_id": bson.M{"$ne": rating.UserID}},
		bson.M{
			"$push": bson.M{"ratings": rating},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
