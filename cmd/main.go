package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/amaamoun99/recepito/internal/config"
	"github.com/amaamoun99/recepito/internal/database"
	"github.com/amaamoun99/recepito/internal/handlers"
	"github.com/amaamoun99/recepito/internal/mail"
	"github.com/amaamoun99/recepito/internal/middleware"
	"github.com/amaamoun99/recepito/internal/repository"
	"github.com/amaamoun99/recepito/internal/routes"
	"github.com/amaamoun99/recepito/internal/server"
	"github.com/amaamoun99/recepito/internal/services"
	"github.com/amaamoun99/recepito/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting recepito in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	userRepo := repository.NewMongoUserRepo(db, "users")
	recipeRepo := repository.NewMongoRecipeRepo(db, "recipes")
	commentRepo := repository.NewMongoCommentRepo(db, "comments")
	mealPlanRepo := repository.NewMongoMealPlanRepo(db, "meal_plans")

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	var mailer mail.Channel
	brevo := mail.NewBrevoChannel(cfg.Mail.BrevoAPIKey, cfg.Mail.SenderEmail, cfg.Mail.SenderName, cfg.Mail.ResetURL)
	if brevo.IsConfigured() {
		sugar.Info("Brevo mail channel configured")
		mailer = brevo
	} else {
		sugar.Warn("Brevo not configured, password reset mails will only be logged")
		mailer = mail.NewLogChannel(sugar)
	}

	sessionSvc := services.NewSessionService(
		userRepo, tokens, mailer, sugar,
		cfg.Security.PasswordHashCost,
		cfg.Security.ResetTTL,
		cfg.Security.AllowAdminSignup,
		cfg.Security.ExposeResetTicket,
	)
	socialSvc := services.NewSocialService(userRepo, recipeRepo, commentRepo, sugar)
	recipeSvc := services.NewRecipeService(recipeRepo, userRepo, commentRepo, mealPlanRepo, sugar)
	userSvc := services.NewUserService(userRepo, recipeRepo, sugar)
	mealPlanSvc := services.NewMealPlanService(mealPlanRepo, recipeRepo, sugar)

	authLimit := middleware.NewRateLimiter(rdb, "rl:auth", cfg.Security.LoginRateLimit, cfg.Security.LoginRateWindow)

	deps := routes.Deps{
		Auth:      handlers.NewAuthHandler(sessionSvc, cfg.JWT.Expiry, !cfg.IsDevelopment()),
		Users:     handlers.NewUserHandler(userSvc, socialSvc),
		Recipes:   handlers.NewRecipeHandler(recipeSvc, socialSvc),
		Comments:  handlers.NewCommentHandler(socialSvc),
		MealPlans: handlers.NewMealPlanHandler(mealPlanSvc),
		Tokens:    tokens,
		UserRepo:  userRepo,
		AuthLimit: authLimit,
	}

	app := server.New(cfg, deps, logger)

	go func() {
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			sugar.Errorf("Redis client close error: %v", err)
		}
	}

	sugar.Info("Graceful shutdown complete")
}
