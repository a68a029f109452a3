package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a closed enumeration. Earlier schema revisions carried "agent" and
// "superadmin" values; those are rejected on parse.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	case "":
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User represents an account document. PasswordHash and the reset fields are
// never serialized outward and are excluded from default read projections.
type User struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username             string               `bson:"username" json:"username"`
	Email                string               `bson:"email" json:"email"`
	PasswordHash         string               `bson:"password_hash,omitempty" json:"-"`
	Role                 Role                 `bson:"role" json:"role"`
	Bio                  string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Location             string               `bson:"location,omitempty" json:"location,omitempty"`
	Avatar               string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Active               bool                 `bson:"active" json:"-"`
	PasswordChangedAt    time.Time            `bson:"password_changed_at,omitempty" json:"-"`
	PasswordResetToken   string               `bson:"password_reset_token,omitempty" json:"-"`
	PasswordResetExpires time.Time            `bson:"password_reset_expires,omitempty" json:"-"`
	Followers            []primitive.ObjectID `bson:"followers" json:"followers"`
	Following            []primitive.ObjectID `bson:"following" json:"following"`
	Recipes              []primitive.ObjectID `bson:"recipes" json:"recipes"`
	SavedRecipes         []primitive.ObjectID `bson:"saved_recipes" json:"saved_recipes"`
	Comments             []primitive.ObjectID `bson:"comments" json:"comments"`
	CreatedAt            time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time            `bson:"updated_at" json:"updated_at"`
}

// ChangedPasswordAfter reports whether the password was mutated strictly after
// the given token issue time. Tokens issued before the watermark are stale.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}

func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

func (u *User) HasSaved(recipeID primitive.ObjectID) bool {
	return containsID(u.SavedRecipes, recipeID)
}

// PublicUser is the outward view of an account. Credential fields never
// appear here.
type PublicUser struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	Bio            string    `json:"bio,omitempty"`
	Location       string    `json:"location,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	RecipeCount    int       `json:"recipe_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) PublicView() PublicUser {
	return PublicUser{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		Bio:            u.Bio,
		Location:       u.Location,
		Avatar:         u.Avatar,
		FollowerCount:  len(u.Followers),
		FollowingCount: len(u.Following),
		RecipeCount:    len(u.Recipes),
		CreatedAt:      u.CreatedAt,
	}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
