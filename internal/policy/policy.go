// Package policy holds the ownership/role authorization check. It is purely
// functional: it runs after the access guard has resolved an identity and
// before any mutation executes.
package policy

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
)

// Identity is the resolved caller attached to a request by the access guard.
type Identity struct {
	ID   primitive.ObjectID
	Role models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Authorize permits a mutation when the caller owns the resource or is an
// admin; every other caller is rejected.
func Authorize(caller Identity, ownerID primitive.ObjectID) error {
	if caller.IsAdmin() || caller.ID == ownerID {
		return nil
	}
	return apperrors.Forbidden("you can only modify your own resources")
}
