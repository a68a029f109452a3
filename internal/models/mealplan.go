package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var WeekDays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func ValidDay(day string) bool {
	for _, d := range WeekDays {
		if d == day {
			return true
		}
	}
	return false
}

// DayPlan holds the recipe slots for a single day of the week.
type DayPlan struct {
	Day       string               `bson:"day" json:"day"`
	Breakfast *primitive.ObjectID  `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	Lunch     *primitive.ObjectID  `bson:"lunch,omitempty" json:"lunch,omitempty"`
	Dinner    *primitive.ObjectID  `bson:"dinner,omitempty" json:"dinner,omitempty"`
	Snacks    []primitive.ObjectID `bson:"snacks,omitempty" json:"snacks,omitempty"`
}

// MealPlan is one user's plan for a week, keyed by user + week start date.
type MealPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	WeekStartDate time.Time          `bson:"week_start_date" json:"week_start_date"`
	Meals         []DayPlan          `bson:"meals" json:"meals"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
