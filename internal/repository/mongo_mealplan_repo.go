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

type mongoMealPlanRepo struct {
	col *mongo.Collection
}

func NewMongoMealPlanRepo(db *mongo.Database, collection string) MealPlanRepository {
	col := db.Collection(collection)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "week_start_date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoMealPlanRepo{col: col}
}

func (r *mongoMealPlanRepo) Upsert(ctx context.Context, p *models.MealPlan) (*models.MealPlan, error) {
	now := time.Now().UTC()
	filter := bson.M{"user": p.User, "week_start_date": p.WeekStartDate}
	update := bson.M{
		"$set": bson.M{
			"meals":      p.Meals,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user":            p.User,
			"week_start_date": p.WeekStartDate,
			"created_at":      now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var out models.MealPlan
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *mongoMealPlanRepo) FindByUser(ctx context.Context, userID primitive.ObjectID, week *time.Time) ([]*models.MealPlan, error) {
	filter := bson.M{"user": userID}
	if week != nil {
		filter["week_start_date"] = *week
	}
	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "week_start_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.MealPlan
	for cur.Next(ctx) {
		var p models.MealPlan
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 && week != nil {
		return nil, ErrMealPlanNotFound
	}
	return out, nil
}

// PullRecipe clears a deleted recipe from every slot: snack sets are pulled,
// meal slots holding the id are unset through filtered positional updates.
func (r *mongoMealPlanRepo) PullRecipe(ctx context.Context, recipeID primitive.ObjectID) error {
	var errs []error
	if _, err := r.col.UpdateMany(ctx, bson.M{},
		bson.M{"$pull": bson.M{"meals.$[].snacks": recipeID}}); err != nil {
		errs = append(errs, err)
	}
	for _, slot := range []string{"breakfast", "lunch", "dinner"} {
		field := "meals.$[m]." + slot
		_, err := r.col.UpdateMany(ctx,
			bson.M{"meals." + slot: recipeID},
			bson.M{"$unset": bson.M{field: ""}},
			options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []interface{}{bson.M{"m." + slot: recipeID}},
			}))
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
