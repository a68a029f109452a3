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

type mongoCommentRepo struct {
	col *mongo.Collection
}

func NewMongoCommentRepo(db *mongo.Database, collection string) CommentRepository {
	col := db.Collection(collection)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "recipe", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &mongoCommentRepo{col: col}
}

func (r *mongoCommentRepo) Insert(ctx context.Context, c *models.Comment) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (r *mongoCommentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoCommentRepo) FindByRecipe(ctx context.Context, recipeID primitive.ObjectID) ([]*models.Comment, error) {
	cur, err := r.col.Find(ctx, bson.M{"recipe": recipeID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Comment
	for cur.Next(ctx) {
		var c models.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *mongoCommentRepo) Update(ctx context.Context, c *models.Comment) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, c.ID, bson.M{"$set": bson.M{
		"text":       c.Text,
		"updated_at": c.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *mongoCommentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *mongoCommentRepo) DeleteByRecipe(ctx context.Context, recipeID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"recipe": recipeID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoCommentRepo) AddLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateByID(ctx, commentID, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrCommentNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoCommentRepo) RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateByID(ctx, commentID, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrCommentNotFound
	}
	return res.ModifiedCount > 0, nil
}
