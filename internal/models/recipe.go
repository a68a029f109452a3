package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

func ValidDifficulty(s string) bool {
	return s == DifficultyEasy || s == DifficultyMedium || s == DifficultyHard
}

type Ingredient struct {
	Name     string `bson:"name" json:"name"`
	Quantity string `bson:"quantity" json:"quantity"`
}

type Instruction struct {
	Step string `bson:"step" json:"step"`
}

// Rating is one user's rating of a recipe. At most one entry per user lives in
// Recipe.Ratings; a re-rate replaces the entry in place.
type Rating struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Value   int                `bson:"value" json:"value"`
	Review  string             `bson:"review,omitempty" json:"review,omitempty"`
	RatedAt time.Time          `bson:"rated_at" json:"rated_at"`
}

type Recipe struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author       primitive.ObjectID   `bson:"author" json:"author"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	Ingredients  []Ingredient         `bson:"ingredients" json:"ingredients"`
	Instructions []Instruction        `bson:"instructions" json:"instructions"`
	CookingTime  int                  `bson:"cooking_time" json:"cooking_time"`
	PrepTime     int                  `bson:"prep_time" json:"prep_time"`
	Servings     int                  `bson:"servings" json:"servings"`
	Difficulty   string               `bson:"difficulty" json:"difficulty"`
	Cuisine      string               `bson:"cuisine" json:"cuisine"`
	ImageURL     string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments     []primitive.ObjectID `bson:"comments" json:"comments"`
	Ratings      []Rating             `bson:"ratings" json:"ratings"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

func (r *Recipe) HasLiked(userID primitive.ObjectID) bool {
	return containsID(r.Likes, userID)
}

// AverageRating reduces the ratings array; the average is derived, never stored.
func (r *Recipe) AverageRating() float64 {
	if len(r.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rt := range r.Ratings {
		sum += rt.Value
	}
	return float64(sum) / float64(len(r.Ratings))
}

func (r *Recipe) RatingBy(userID primitive.ObjectID) (Rating, bool) {
	for _, rt := range r.Ratings {
		if rt.UserID == userID {
			return rt, true
		}
	}
	return Rating{}, false
}
