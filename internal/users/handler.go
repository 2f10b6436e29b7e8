package users

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/httperr"
	"github.com/nix1947/statementTracker/internal/policy"
)

type Handler struct {
	Repo    *Repo
	Service *Service
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo, Service: NewService(repo)}
}

type userResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	Mobile     *string    `json:"mobile"`
	IsActive   bool       `json:"is_active"`
	IsStaff    bool       `json:"is_staff"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

func toResponse(u *User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Mobile:     u.Mobile,
		IsActive:   u.IsActive,
		IsStaff:    u.IsStaff,
		DateJoined: u.DateJoined,
		LastLogin:  u.LastLogin,
	}
}

// List is staff-only.
func (h *Handler) List(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	if !policy.Allow(actor, policy.UserList, "") {
		return httperr.Forbidden(c)
	}

	all, err := h.Repo.List(c.UserContext())
	if err != nil {
		return httperr.Write(c, err)
	}
	out := make([]userResponse, 0, len(all))
	for i := range all {
		out = append(out, toResponse(&all[i]))
	}
	return c.JSON(fiber.Map{"users": out})
}

// Me returns the caller's own record; the canonical self-service lookup.
func (h *Handler) Me(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	if !actor.Authenticated() {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	u, err := h.Repo.GetByID(c.UserContext(), actor.ID)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(fiber.Map{"user": toResponse(u)})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	id := c.Params("id")
	if !policy.Allow(actor, policy.UserRetrieve, id) {
		return httperr.Forbidden(c)
	}

	u, err := h.Repo.GetByID(c.UserContext(), id)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(fiber.Map{"user": toResponse(u)})
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Mobile   *string `json:"mobile"`
	IsActive *bool   `json:"is_active"`
	IsStaff  *bool   `json:"is_staff"`
}

// Update applies a profile update. The whole record is re-validated, not
// just the touched fields. Role flags are accepted from staff only.
func (h *Handler) Update(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	id := c.Params("id")
	if !policy.Allow(actor, policy.UserUpdate, id) {
		return httperr.Forbidden(c)
	}

	var body updateUserRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx := c.UserContext()
	u, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		return httperr.Write(c, err)
	}

	if body.Email != nil {
		u.Email = *body.Email
	}
	if body.Username != nil {
		u.Username = *body.Username
	}
	if body.FullName != nil {
		u.FullName = *body.FullName
	}
	if body.Mobile != nil {
		u.Mobile = body.Mobile
	}
	if actor.Admin() {
		if body.IsActive != nil {
			u.IsActive = *body.IsActive
		}
		if body.IsStaff != nil {
			u.IsStaff = *body.IsStaff
		}
	}

	saved, err := h.Service.Update(ctx, u)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(fiber.Map{"user": toResponse(saved)})
}

// Delete is staff-only and refused while transactions reference the user.
func (h *Handler) Delete(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	id := c.Params("id")
	if !policy.Allow(actor, policy.UserDelete, id) {
		return httperr.Forbidden(c)
	}

	if err := h.Repo.Delete(c.UserContext(), id); err != nil {
		return httperr.Write(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
