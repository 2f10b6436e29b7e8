package reports

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/httperr"
	"github.com/nix1947/statementTracker/internal/transactions"
)

const dateLayout = "2006-01-02"

type Handler struct {
	Repo *Repo
	Tx   *transactions.Service
}

func NewHandler(repo *Repo, tx *transactions.Service) *Handler {
	return &Handler{Repo: repo, Tx: tx}
}

// period resolves the from/to query range, defaulting to the last 30 days.
func period(c *fiber.Ctx) (from, to time.Time, err error) {
	to = time.Now().UTC().Truncate(24 * time.Hour)
	from = to.AddDate(0, 0, -29)

	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(dateLayout, raw); err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(dateLayout, raw); err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
	}
	if to.Before(from) {
		return from, to, fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
	}
	return from, to, nil
}

// Summary returns aggregate totals over the actor's visible transactions.
func (h *Handler) Summary(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	from, to, err := period(c)
	if err != nil {
		return err
	}

	createdBy := actor.ID
	if actor.Admin() {
		createdBy = c.Query("created_by")
		if createdBy != "" && uuid.Validate(createdBy) != nil {
			return fiber.NewError(fiber.StatusBadRequest, "created_by must be a valid user id")
		}
	}

	s, err := h.Repo.GetSummary(c.UserContext(), createdBy, from, to)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(fiber.Map{"summary": s, "from": from.Format(dateLayout), "to": to.Format(dateLayout)})
}

// StatementPDF streams a PDF statement of the actor's visible transactions
// for the period.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	from, to, err := period(c)
	if err != nil {
		return err
	}

	f := transactions.Filter{From: &from, To: &to, BankID: c.Query("bank"), Limit: statementMaxRows}
	if f.BankID != "" && uuid.Validate(f.BankID) != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bank must be a valid bank id")
	}
	items, err := h.Tx.ListVisible(c.UserContext(), actor, f)
	if err != nil {
		return httperr.Write(c, err)
	}

	createdBy := actor.ID
	if actor.Admin() {
		createdBy = ""
	}
	summary, err := h.Repo.GetSummary(c.UserContext(), createdBy, from, to)
	if err != nil {
		return httperr.Write(c, err)
	}

	fromStr, toStr := from.Format(dateLayout), to.Format(dateLayout)
	pdfBytes, err := buildStatementPDF(items, summary, fromStr, toStr, len(items) >= statementMaxRows)
	if err != nil {
		return err
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="statement-`+fromStr+`-to-`+toStr+`.pdf"`)
	return c.Send(pdfBytes)
}
