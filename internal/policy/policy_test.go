package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
)

func TestAuthorize_Owner(t *testing.T) {
	owner := primitive.NewObjectID()
	caller := Identity{ID: owner, Role: models.RoleUser}

	assert.NoError(t, Authorize(caller, owner))
}

func TestAuthorize_Admin(t *testing.T) {
	caller := Identity{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	assert.NoError(t, Authorize(caller, primitive.NewObjectID()))
}

func TestAuthorize_Stranger(t *testing.T) {
	caller := Identity{ID: primitive.NewObjectID(), Role: models.RoleUser}

	err := Authorize(caller, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
