package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/middleware"
	"github.com/amaamoun99/recepito/internal/policy"
)

func objectIDParam(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(name))
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("invalid id")
	}
	return id, nil
}

func callerIdentity(c *fiber.Ctx) (policy.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return policy.Identity{}, apperrors.Unauthenticated("you are not logged in")
	}
	return identity, nil
}

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}
