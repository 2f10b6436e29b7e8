// Package httperr maps domain errors onto JSON HTTP responses so every
// handler surfaces the same shapes: field-keyed validation maps as 400,
// missing rows as 404, refused deletes as 409.
package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nix1947/statementTracker/internal/logger"
	"github.com/nix1947/statementTracker/internal/storage"
	"github.com/nix1947/statementTracker/internal/validation"
)

// Write renders err. Validation errors are surfaced verbatim so a client
// can fix every field in one round trip; anything unrecognized becomes an
// opaque 500 with the detail kept server-side.
func Write(c *fiber.Ctx, err error) error {
	if fe, ok := validation.AsFieldErrors(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fe})
	}
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	if errors.Is(err, storage.ErrReferenced) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "record is still referenced by transactions"})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	logger.FromContext(c.UserContext()).Error().Err(err).
		Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// Forbidden is the uniform access-denied response; it leaks nothing about
// whether the target exists.
func Forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
}
