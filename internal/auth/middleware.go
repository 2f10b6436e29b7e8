package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const actorKey = "actor"

// Middleware parses the bearer token and loads the actor's record so role
// flags are fresh on every request. Inactive accounts are rejected here.
func Middleware(pool *pgxpool.Pool, secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		var a Actor
		err = pool.QueryRow(c.UserContext(), `
SELECT id::text, username, email, is_active, is_staff, is_superuser
FROM users
WHERE id = $1::uuid
`, userID).Scan(&a.ID, &a.Username, &a.Email, &a.IsActive, &a.IsStaff, &a.IsSuperuser)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load user")
		}
		if !a.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "account disabled")
		}

		c.Locals(actorKey, &a)
		return c.Next()
	}
}

// ActorFromCtx returns the actor attached by Middleware, or nil on
// unauthenticated routes.
func ActorFromCtx(c *fiber.Ctx) *Actor {
	a, _ := c.Locals(actorKey).(*Actor)
	return a
}
