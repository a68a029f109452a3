package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAverageRating(t *testing.T) {
	r := &Recipe{}
	assert.Equal(t, 0.0, r.AverageRating())

	r.Ratings = []Rating{
		{UserID: primitive.NewObjectID(), Value: 5},
		{UserID: primitive.NewObjectID(), Value: 2},
	}
	assert.Equal(t, 3.5, r.AverageRating())
}

func TestRatingBy(t *testing.T) {
	alice := primitive.NewObjectID()
	r := &Recipe{Ratings: []Rating{{UserID: alice, Value: 4, Review: "good"}}}

	got, ok := r.RatingBy(alice)
	assert.True(t, ok)
	assert.Equal(t, 4, got.Value)

	_, ok = r.RatingBy(primitive.NewObjectID())
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("")
	assert.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	role, err = ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("agent")
	assert.Error(t, err)
	_, err = ParseRole("superadmin")
	assert.Error(t, err)
}

func TestValidDifficulty(t *testing.T) {
	assert.True(t, ValidDifficulty(DifficultyEasy))
	assert.True(t, ValidDifficulty(DifficultyHard))
	assert.False(t, ValidDifficulty("easy"))
	assert.False(t, ValidDifficulty(""))
}
