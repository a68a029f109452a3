package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/config"
	"github.com/amaamoun99/recepito/internal/metrics"
	"github.com/amaamoun99/recepito/internal/routes"
)

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, deps routes.Deps, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
		ErrorHandler: errorHandler(logger),
	})

	app.Use(cors.New())
	app.Use(zapLoggerMiddleware(logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	routes.Setup(app, deps)

	return app
}

// errorHandler is the single place request errors become responses. Domain
// errors carry their own status, fiber errors keep theirs, anything else is a
// 500 with the detail kept out of the body.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "something went wrong"

		var appErr *apperrors.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			status = apperrors.StatusCode(appErr)
			message = appErr.Error()
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		default:
			logger.Error("unhandled request error",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(status).JSON(fiber.Map{
			"status":  "error",
			"message": message,
		})
	}
}

// zapLoggerMiddleware logs each request with a generated request id.
func zapLoggerMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := uuid.NewString()
		c.Set(fiber.HeaderXRequestID, reqID)

		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()
		metrics.HTTPRequests.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()

		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}

		if err != nil {
			logger.Error("HTTP Request Error", append(fields, zap.Error(err))...)
			return err
		}

		logger.Info("HTTP Request", fields...)
		return nil
	}
}
