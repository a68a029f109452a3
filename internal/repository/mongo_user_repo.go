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

// credentialProjection hides the hashed password and reset fields on default
// reads, mirroring the schema-level "select: false" of the original data model.
var credentialProjection = bson.M{
	"password_hash":          0,
	"password_reset_token":   0,
	"password_reset_expires": 0,
}

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database, collection string) UserRepository {
	col := db.Collection(collection)
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "password_reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return &mongoUserRepo{col: col}
}

func (r *mongoUserRepo) Insert(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Recipes == nil {
		u.Recipes = []primitive.ObjectID{}
	}
	if u.SavedRecipes == nil {
		u.SavedRecipes = []primitive.ObjectID{}
	}
	if u.Comments == nil {
		u.Comments = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M, hideCredentials bool) (*models.User, error) {
	opts := options.FindOne()
	if hideCredentials {
		opts.SetProjection(credentialProjection)
	}
	var u models.User
	err := r.col.FindOne(ctx, filter, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, true)
}

func (r *mongoUserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(credentialProjection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, true)
}

func (r *mongoUserRepo) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, false)
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, true)
}

func (r *mongoUserRepo) List(ctx context.Context, page, limit int64) ([]*models.User, int64, error) {
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
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().
		SetProjection(credentialProjection).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var out []*models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, 0, err
		}
		out = append(out, &u)
	}
	return out, total, cur.Err()
}

func (r *mongoUserRepo) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"username":   u.Username,
		"email":      u.Email,
		"bio":        u.Bio,
		"location":   u.Location,
		"avatar":     u.Avatar,
		"updated_at": u.UpdatedAt,
	}})
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password_hash":       hash,
			"password_changed_at": changedAt,
			"updated_at":          time.Now().UTC(),
		},
		"$unset": bson.M{
			"password_reset_token":   "",
			"password_reset_expires": "",
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_reset_token":   tokenHash,
		"password_reset_expires": expires,
		"updated_at":             time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepo) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"password_reset_token":   tokenHash,
		"password_reset_expires": bson.M{"$gt": now},
	}, false)
}

func (r *mongoUserRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"active":     false,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// addToSet applies a conditional membership insert in a single store-level
// operation and reports whether the set actually changed.
func (r *mongoUserRepo) addToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{field: value},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrUserNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoUserRepo) pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrUserNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoUserRepo) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return r.addToSet(ctx, userID, "following", targetID)
}

func (r *mongoUserRepo) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return r.pull(ctx, userID, "following", targetID)
}

func (r *mongoUserRepo) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return r.addToSet(ctx, userID, "followers", followerID)
}

func (r *mongoUserRepo) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return r.pull(ctx, userID, "followers", followerID)
}

func (r *mongoUserRepo) AddSavedRecipe(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	return r.addToSet(ctx, userID, "saved_recipes", recipeID)
}

func (r *mongoUserRepo) RemoveSavedRecipe(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	return r.pull(ctx, userID, "saved_recipes", recipeID)
}

func (r *mongoUserRepo) AddRecipeRef(ctx context.Context, userID, recipeID primitive.ObjectID) error {
	_, err := r.addToSet(ctx, userID, "recipes", recipeID)
	return err
}

func (r *mongoUserRepo) RemoveRecipeRef(ctx context.Context, userID, recipeID primitive.ObjectID) error {
	_, err := r.pull(ctx, userID, "recipes", recipeID)
	return err
}

func (r *mongoUserRepo) AddCommentRef(ctx context.Context, userID, commentID primitive.ObjectID) error {
	_, err := r.addToSet(ctx, userID, "comments", commentID)
	return err
}

func (r *mongoUserRepo) RemoveCommentRef(ctx context.Context, userID, commentID primitive.ObjectID) error {
	_, err := r.pull(ctx, userID, "comments", commentID)
	return err
}

func (r *mongoUserRepo) PullRecipeRefs(ctx context.Context, recipeID primitive.ObjectID) error {
	_, err := r.col.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{
		"recipes":       recipeID,
		"saved_recipes": recipeID,
	}})
	return err
}
