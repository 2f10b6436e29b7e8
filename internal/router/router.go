package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nix1947/statementTracker/internal/banks"
	handlers "github.com/nix1947/statementTracker/internal/http"
	"github.com/nix1947/statementTracker/internal/reports"
	"github.com/nix1947/statementTracker/internal/transactions"
	"github.com/nix1947/statementTracker/internal/users"
)

// Router wires handlers onto the fiber app. Role checks live in the
// handlers and services; AuthMW only establishes who is calling.
type Router struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *users.Handler
	BankHandler    *banks.Handler
	TxHandler      *transactions.Handler
	ReportsHandler *reports.Handler
	AuthMW         fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authLimit := RateLimitAuth()
	app.Post("/api/auth/register", authLimit, r.AuthHandler.Register)
	app.Post("/api/auth/login", authLimit, r.AuthHandler.Login)
	app.Post("/api/auth/password/reset", authLimit, r.AuthHandler.RequestPasswordReset)
	app.Post("/api/auth/password/reset/confirm", authLimit, r.AuthHandler.ConfirmPasswordReset)
	app.Post("/api/auth/password/change", r.AuthMW, r.AuthHandler.ChangePassword)

	app.Get("/api/me", r.AuthMW, r.UserHandler.Me)
	app.Get("/api/users", r.AuthMW, r.UserHandler.List)
	app.Get("/api/users/:id", r.AuthMW, r.UserHandler.Get)
	app.Put("/api/users/:id", r.AuthMW, r.UserHandler.Update)
	app.Delete("/api/users/:id", r.AuthMW, r.UserHandler.Delete)

	app.Get("/api/banks", r.AuthMW, r.BankHandler.List)
	app.Post("/api/banks", r.AuthMW, r.BankHandler.Create)
	app.Get("/api/banks/:id", r.AuthMW, r.BankHandler.Get)
	app.Put("/api/banks/:id", r.AuthMW, r.BankHandler.Update)
	app.Delete("/api/banks/:id", r.AuthMW, r.BankHandler.Delete)

	writeLimit := RateLimitWrite()
	app.Get("/api/transactions", r.AuthMW, r.TxHandler.List)
	app.Post("/api/transactions", r.AuthMW, writeLimit, r.TxHandler.Create)
	app.Get("/api/transactions/:id", r.AuthMW, r.TxHandler.Get)
	app.Put("/api/transactions/:id", r.AuthMW, writeLimit, r.TxHandler.Update)
	app.Delete("/api/transactions/:id", r.AuthMW, r.TxHandler.Delete)
	app.Post("/api/transactions/:id/verify", r.AuthMW, r.TxHandler.Verify)
	app.Post("/api/transactions/:id/reconcile", r.AuthMW, r.TxHandler.Reconcile)

	app.Get("/api/reports/summary", r.AuthMW, r.ReportsHandler.Summary)
	app.Get("/api/reports/statement.pdf", r.AuthMW, r.ReportsHandler.StatementPDF)
}
