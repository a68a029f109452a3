package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amaamoun99/recepito/internal/handlers"
	"github.com/amaamoun99/recepito/internal/middleware"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/repository"
	"github.com/amaamoun99/recepito/internal/utils"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Recipes   *handlers.RecipeHandler
	Comments  *handlers.CommentHandler
	MealPlans *handlers.MealPlanHandler

	Tokens    *utils.TokenManager
	UserRepo  repository.UserRepository
	AuthLimit *middleware.RateLimiter
}

func Setup(app *fiber.App, d Deps) {
	protect := middleware.Protect(d.Tokens, d.UserRepo)
	optional := middleware.OptionalAuth(d.Tokens, d.UserRepo)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/signup", d.Auth.Signup)
	auth.Post("/login", d.AuthLimit.ByIP(), d.Auth.Login)
	auth.Post("/logout", d.Auth.Logout)
	auth.Post("/forgot-password", d.AuthLimit.ByIP(), d.Auth.ForgotPassword)
	auth.Post("/reset-password", d.Auth.ResetPassword)
	auth.Get("/me", protect, d.Auth.Me)
	auth.Post("/change-password", protect, d.Auth.ChangePassword)

	users := api.Group("/users")
	users.Get("/", protect, middleware.RequireRoles(models.RoleAdmin), d.Users.ListUsers)
	users.Get("/me", protect, d.Users.GetMe)
	users.Patch("/me", protect, d.Users.UpdateMe)
	users.Delete("/me", protect, d.Users.DeleteMe)
	users.Get("/:id", d.Users.GetUser)
	users.Get("/:id/recipes", d.Users.GetUserRecipes)
	users.Post("/:id/follow", protect, d.Users.FollowUser)

	recipes := api.Group("/recipes")
	recipes.Get("/", optional, d.Recipes.List)
	recipes.Post("/", protect, d.Recipes.Create)
	recipes.Get("/:id", optional, d.Recipes.Get)
	recipes.Patch("/:id", protect, d.Recipes.Update)
	recipes.Delete("/:id", protect, d.Recipes.Delete)
	recipes.Post("/:id/like", protect, d.Recipes.ToggleLike)
	recipes.Post("/:id/save", protect, d.Recipes.ToggleSave)
	recipes.Post("/:id/rate", protect, d.Recipes.Rate)
	recipes.Post("/:id/comments", protect, d.Comments.Create)

	comments := api.Group("/comments")
	comments.Patch("/:id", protect, d.Comments.Update)
	comments.Delete("/:id", protect, d.Comments.Delete)
	comments.Post("/:id/like", protect, d.Comments.ToggleLike)

	plans := api.Group("/mealplans")
	plans.Post("/", protect, d.MealPlans.CreateOrUpdate)
	plans.Get("/", protect, d.MealPlans.Get)
}
