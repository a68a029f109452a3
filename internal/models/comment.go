package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is owned by its author and weakly referenced by its parent recipe
// through the recipe's comment-id set.
type Comment struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Recipe    primitive.ObjectID   `bson:"recipe" json:"recipe"`
	Text      string               `bson:"text" json:"text"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

func (c *Comment) HasLiked(userID primitive.ObjectID) bool {
	return containsID(c.Likes, userID)
}
