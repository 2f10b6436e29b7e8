package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nix1947/statementTracker/internal/audit"
	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/banks"
	apphttp "github.com/nix1947/statementTracker/internal/http"
	"github.com/nix1947/statementTracker/internal/logger"
	"github.com/nix1947/statementTracker/internal/mailer"
	"github.com/nix1947/statementTracker/internal/reports"
	"github.com/nix1947/statementTracker/internal/router"
	"github.com/nix1947/statementTracker/internal/transactions"
	"github.com/nix1947/statementTracker/internal/users"
)

func main() {
	log := logger.New()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}
	secret, err := auth.Secret()
	if err != nil {
		log.Fatal().Err(err).Msg("jwt secret")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("creating pgx pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("pinging database")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware())
	app.Use(requestLogger(log))

	userRepo := users.NewRepo(pool)
	userService := users.NewService(userRepo)
	txRepo := transactions.NewRepo(pool)
	txService := transactions.NewService(txRepo)
	recorder := &audit.Recorder{Pool: pool}

	r := &router.Router{
		AuthHandler: &apphttp.AuthHandler{
			Users:        userRepo,
			Service:      userService,
			Mailer:       mailer.NewFromEnv(),
			JWTSecret:    secret,
			ResetBaseURL: os.Getenv("PASSWORD_RESET_URL"),
		},
		UserHandler:    users.NewHandler(userRepo),
		BankHandler:    banks.NewHandler(banks.NewRepo(pool)),
		TxHandler:      transactions.NewHandler(txService, recorder),
		ReportsHandler: reports.NewHandler(reports.NewRepo(pool), txService),
		AuthMW:         auth.Middleware(pool, secret),
	}
	r.RegisterRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("listening")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// requestLogger attaches the logger to the request context and emits one
// line per request.
func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.SetUserContext(logger.WithContext(c.UserContext(), log))

		err := c.Next()

		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
