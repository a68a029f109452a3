package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/policy"
	"github.com/amaamoun99/recepito/internal/repository"
	"github.com/amaamoun99/recepito/internal/utils"
)

const identityKey = "identity"

// CookieName is the cookie carrying the credential token when the client
// does not use the Authorization header.
const CookieName = "jwt"

// IdentityFrom returns the identity the guard attached to the request.
func IdentityFrom(c *fiber.Ctx) (policy.Identity, bool) {
	id, ok := c.Locals(identityKey).(policy.Identity)
	return id, ok
}

func extractToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Cookies(CookieName)
}

// Protect is the access guard: it verifies the bearer token, re-resolves the
// subject and rejects credentials issued before the password watermark. On
// success it attaches the resolved identity to the request and nothing else.
func Protect(tokens *utils.TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			return apperrors.Unauthenticated("you are not logged in")
		}

		identity, err := resolveIdentity(c, tokens, users, tokenStr)
		if err != nil {
			return err
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is presented but lets
// anonymous requests through untouched. Routes that allow anonymous reads use
// this instead of Protect.
func OptionalAuth(tokens *utils.TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			return c.Next()
		}
		identity, err := resolveIdentity(c, tokens, users, tokenStr)
		if err == nil {
			c.Locals(identityKey, identity)
		}
		return c.Next()
	}
}

func resolveIdentity(c *fiber.Ctx, tokens *utils.TokenManager, users repository.UserRepository, tokenStr string) (policy.Identity, error) {
	claims, err := tokens.Parse(tokenStr)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return policy.Identity{}, apperrors.InvalidToken("token has expired, please log in again")
		}
		return policy.Identity{}, apperrors.InvalidToken("invalid token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return policy.Identity{}, apperrors.InvalidToken("invalid token")
	}

	user, err := users.FindByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return policy.Identity{}, apperrors.Authentication("user no longer exists")
		}
		return policy.Identity{}, err
	}
	if !user.Active {
		return policy.Identity{}, apperrors.Authentication("user no longer exists")
	}
	if claims.IssuedAt != nil && user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return policy.Identity{}, apperrors.Authentication("password changed, please log in again")
	}

	// The role comes from the live record, not the token, so a role change
	// takes effect without waiting for token expiry.
	return policy.Identity{ID: user.ID, Role: user.Role}, nil
}

// RequireRoles rejects callers whose role is not in the allowed set. Must run
// after Protect.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return apperrors.Unauthenticated("you are not logged in")
		}
		for _, r := range roles {
			if identity.Role == r {
				return c.Next()
			}
		}
		return apperrors.Forbidden("you do not have permission to perform this action")
	}
}
