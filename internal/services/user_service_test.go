package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
)

type userFixture struct {
	users   *fakeUserRepo
	recipes *fakeRecipeRepo
	svc     UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{users: newFakeUserRepo(), recipes: newFakeRecipeRepo()}
	f.svc = NewUserService(f.users, f.recipes, zap.NewNop().Sugar())
	return f
}

func (f *userFixture) addUser(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Role: models.RoleUser, Active: true}
	require.NoError(t, f.users.Insert(context.Background(), u))
	return u
}

func TestUserGet(t *testing.T) {
	f := newUserFixture(t)
	alice := f.addUser(t, "alice")

	view, err := f.svc.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)

	_, err = f.svc.Get(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newUserFixture(t)
	alice := f.addUser(t, "alice")
	f.addUser(t, "bob")

	bio := "home cook"
	view, err := f.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "home cook", view.Bio)

	empty := "  "
	_, err = f.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Username: &empty})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	taken := "bob@example.com"
	_, err = f.svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeactivate(t *testing.T) {
	f := newUserFixture(t)
	alice := f.addUser(t, "alice")

	require.NoError(t, f.svc.Deactivate(context.Background(), alice.ID))
	assert.False(t, alice.Active)

	err := f.svc.Deactivate(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetRecipes(t *testing.T) {
	f := newUserFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	authored := &models.Recipe{Author: alice.ID, Title: "Mine"}
	require.NoError(t, f.recipes.Insert(context.Background(), authored))
	saved := &models.Recipe{Author: bob.ID, Title: "Theirs"}
	require.NoError(t, f.recipes.Insert(context.Background(), saved))
	_, err := f.users.AddSavedRecipe(context.Background(), alice.ID, saved.ID)
	require.NoError(t, err)

	res, err := f.svc.GetRecipes(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, "Mine", res.Recipes[0].Title)
	require.Len(t, res.SavedRecipes, 1)
	assert.Equal(t, "Theirs", res.SavedRecipes[0].Title)
}
