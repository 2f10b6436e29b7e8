package banks

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/httperr"
	"github.com/nix1947/statementTracker/internal/policy"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

type bankRequest struct {
	Name        string  `json:"name"`
	AccountNo   string  `json:"account_no"`
	Description *string `json:"description"`
}

func (h *Handler) List(c *fiber.Ctx) error {
	if !policy.Allow(auth.ActorFromCtx(c), policy.BankList, "") {
		return httperr.Forbidden(c)
	}
	all, err := h.Repo.List(c.UserContext())
	if err != nil {
		return httperr.Write(c, err)
	}
	if all == nil {
		all = []Bank{}
	}
	return c.JSON(fiber.Map{"banks": all})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	if !policy.Allow(auth.ActorFromCtx(c), policy.BankRetrieve, "") {
		return httperr.Forbidden(c)
	}
	b, err := h.Repo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(fiber.Map{"bank": b})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	if !policy.Allow(auth.ActorFromCtx(c), policy.BankCreate, "") {
		return httperr.Forbidden(c)
	}

	var body bankRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	b := &Bank{Name: body.Name, AccountNo: body.AccountNo, Description: body.Description}
	saved, err := h.validateAndSave(c.UserContext(), b, false)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"bank": saved})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	if !policy.Allow(auth.ActorFromCtx(c), policy.BankUpdate, "") {
		return httperr.Forbidden(c)
	}

	ctx := c.UserContext()
	b, err := h.Repo.GetByID(ctx, c.Params("id"))
	if err != nil {
		return httperr.Write(c, err)
	}

	var body bankRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if body.Name != "" {
		b.Name = body.Name
	}
	if body.AccountNo != "" {
		b.AccountNo = body.AccountNo
	}
	if body.Description != nil {
		b.Description = body.Description
	}

	saved, err := h.validateAndSave(ctx, b, true)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(fiber.Map{"bank": saved})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if !policy.Allow(auth.ActorFromCtx(c), policy.BankDelete, "") {
		return httperr.Forbidden(c)
	}
	if err := h.Repo.Delete(c.UserContext(), c.Params("id")); err != nil {
		return httperr.Write(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// validateAndSave runs the full rule set plus the advisory uniqueness check,
// then persists. The unique index still backstops concurrent creates.
func (h *Handler) validateAndSave(ctx context.Context, b *Bank, existing bool) (*Bank, error) {
	b.Normalize()
	errs := b.Validate()

	if _, ok := errs["name"]; !ok {
		excludeID := ""
		if existing {
			excludeID = b.ID
		}
		taken, err := h.Repo.NameTaken(ctx, b.Name, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("name", "a bank with this name already exists")
		}
	}

	if !errs.Empty() {
		return nil, errs
	}
	if existing {
		return h.Repo.Update(ctx, b)
	}
	return h.Repo.Insert(ctx, b)
}
