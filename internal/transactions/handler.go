package transactions

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nix1947/statementTracker/internal/audit"
	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/httperr"
	"github.com/nix1947/statementTracker/internal/validation"
)

const dateLayout = "2006-01-02"

type Handler struct {
	Service *Service
	Audit   *audit.Recorder
}

func NewHandler(svc *Service, recorder *audit.Recorder) *Handler {
	return &Handler{Service: svc, Audit: recorder}
}

// transactionRequest is the write shape for create and update. Amounts
// accept JSON numbers or strings; decimal parsing keeps them exact.
type transactionRequest struct {
	BankID          string  `json:"bank"`
	BankAccountNo   string  `json:"bank_account_no"`
	BankTransID     string  `json:"bank_trans_id"`
	BankDepositDate string  `json:"bank_deposit_date"`
	SystemValueDate string  `json:"system_value_date"`
	ChequeNo        *string `json:"cheque_no"`
	PolicyNo        *string `json:"policy_no"`
	Detail          string  `json:"transaction_detail"`
	SystemVoucherNo string  `json:"system_voucher_no"`

	Debit         decimal.Decimal  `json:"debit"`
	Credit        decimal.Decimal  `json:"credit"`
	VoucherAmount decimal.Decimal  `json:"voucher_amount"`
	RefundAmount  *decimal.Decimal `json:"refund_amount"`

	UsedInSystem                bool    `json:"used_in_system"`
	ReverseVoucherNo            *string `json:"reverse_voucher_no"`
	ReversalCorrectionVoucherNo *string `json:"reversal_correction_voucher_no"`
	RefundVoucherNo             *string `json:"refund_voucher_no"`
	Remarks                     *string `json:"remarks"`
	Source                      *string `json:"source"`
	Status                      *string `json:"status"`
}

type transactionResponse struct {
	ID                string  `json:"id"`
	CreatedBy         string  `json:"created_by"`
	CreatedByUsername string  `json:"created_by_username"`
	CreatedDate       string  `json:"created_date"`
	Bank              string  `json:"bank"`
	BankName          string  `json:"bank_name"`
	BankAccountNo     string  `json:"bank_account_no"`
	BankTransID       string  `json:"bank_trans_id"`
	BankDepositDate   string  `json:"bank_deposit_date"`
	SystemValueDate   string  `json:"system_value_date"`
	ChequeNo          *string `json:"cheque_no"`
	PolicyNo          *string `json:"policy_no"`
	Detail            string  `json:"transaction_detail"`
	SystemVoucherNo   string  `json:"system_voucher_no"`

	Debit         decimal.Decimal  `json:"debit"`
	Credit        decimal.Decimal  `json:"credit"`
	VoucherAmount decimal.Decimal  `json:"voucher_amount"`
	RefundAmount  *decimal.Decimal `json:"refund_amount"`

	UsedInSystem bool `json:"used_in_system"`

	ReconciledBy             *string `json:"reconciled_by"`
	ReconciledByUsername     *string `json:"reconciled_by_username"`
	ReconciledDate           *string `json:"reconciled_date"`
	SystemPostedBy           *string `json:"system_posted_by"`
	SystemPostedByUsername   *string `json:"system_posted_by_username"`
	SystemVerifiedBy         *string `json:"system_verified_by"`
	SystemVerifiedByUsername *string `json:"system_verified_by_username"`

	ReverseVoucherNo            *string `json:"reverse_voucher_no"`
	ReversalCorrectionVoucherNo *string `json:"reversal_correction_voucher_no"`
	RefundVoucherNo             *string `json:"refund_voucher_no"`
	Remarks                     *string `json:"remarks"`
	Source                      *string `json:"source"`

	Status     string `json:"status"`
	IsVerified bool   `json:"is_verified"`
}

func toResponse(t *Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                t.ID,
		CreatedBy:         t.CreatedBy,
		CreatedByUsername: t.CreatedByUsername,
		CreatedDate:       t.CreatedDate.Format(time.RFC3339),
		Bank:              t.BankID,
		BankName:          t.BankName,
		BankAccountNo:     t.BankAccountNo,
		BankTransID:       t.BankTransID,
		BankDepositDate:   t.BankDepositDate.Format(dateLayout),
		SystemValueDate:   t.SystemValueDate.Format(dateLayout),
		ChequeNo:          t.ChequeNo,
		PolicyNo:          t.PolicyNo,
		Detail:            t.TransactionDetail,
		SystemVoucherNo:   t.SystemVoucherNo,

		Debit:         t.Debit,
		Credit:        t.Credit,
		VoucherAmount: t.VoucherAmount,
		RefundAmount:  t.RefundAmount,

		UsedInSystem: t.UsedInSystem,

		ReconciledBy:             t.ReconciledBy,
		ReconciledByUsername:     t.ReconciledByUsername,
		SystemPostedBy:           t.SystemPostedBy,
		SystemPostedByUsername:   t.SystemPostedByUsername,
		SystemVerifiedBy:         t.SystemVerifiedBy,
		SystemVerifiedByUsername: t.SystemVerifiedByUsername,

		ReverseVoucherNo:            t.ReverseVoucherNo,
		ReversalCorrectionVoucherNo: t.ReversalCorrectionVoucherNo,
		RefundVoucherNo:             t.RefundVoucherNo,
		Remarks:                     t.Remarks,
		Source:                      t.Source,

		Status:     string(t.Status),
		IsVerified: t.IsVerified,
	}
	if t.ReconciledDate != nil {
		formatted := t.ReconciledDate.Format(dateLayout)
		resp.ReconciledDate = &formatted
	}
	return resp
}

// buildTransaction maps a request body onto a domain record; malformed
// dates are reported as field errors alongside whatever else validation
// finds later.
func buildTransaction(body *transactionRequest, onto *Transaction) validation.FieldErrors {
	errs := validation.FieldErrors{}

	onto.BankID = body.BankID
	onto.BankAccountNo = body.BankAccountNo
	onto.BankTransID = body.BankTransID
	onto.ChequeNo = body.ChequeNo
	onto.PolicyNo = body.PolicyNo
	onto.TransactionDetail = body.Detail
	onto.SystemVoucherNo = body.SystemVoucherNo
	onto.Debit = body.Debit
	onto.Credit = body.Credit
	onto.VoucherAmount = body.VoucherAmount
	onto.RefundAmount = body.RefundAmount
	onto.UsedInSystem = body.UsedInSystem
	onto.ReverseVoucherNo = body.ReverseVoucherNo
	onto.ReversalCorrectionVoucherNo = body.ReversalCorrectionVoucherNo
	onto.RefundVoucherNo = body.RefundVoucherNo
	onto.Remarks = body.Remarks
	onto.Source = body.Source
	if body.Status != nil {
		onto.Status = Status(*body.Status)
	}

	if body.BankDepositDate == "" {
		onto.BankDepositDate = time.Time{}
	} else if d, err := time.Parse(dateLayout, body.BankDepositDate); err != nil {
		errs.Add("bank_deposit_date", "deposit date must be YYYY-MM-DD")
	} else {
		onto.BankDepositDate = d
	}

	if body.SystemValueDate == "" {
		onto.SystemValueDate = time.Time{}
	} else if d, err := time.Parse(dateLayout, body.SystemValueDate); err != nil {
		errs.Add("system_value_date", "value date must be YYYY-MM-DD")
	} else {
		onto.SystemValueDate = d
	}

	return errs
}

func (h *Handler) Create(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)

	var body transactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var t Transaction
	if errs := buildTransaction(&body, &t); !errs.Empty() {
		return httperr.Write(c, errs)
	}

	ctx := c.UserContext()
	saved, err := h.Service.Create(ctx, actor, &t)
	if err != nil {
		return h.writeServiceErr(c, err)
	}

	h.Audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     audit.ActionCreate,
		EntityType: "transaction",
		EntityID:   saved.ID,
		IP:         c.IP(),
		UserAgent:  c.Get("User-Agent"),
		Metadata:   map[string]any{"system_voucher_no": saved.SystemVoucherNo},
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction": toResponse(saved)})
}

func (h *Handler) List(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)

	f := Filter{
		BankID: c.Query("bank"),
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	if f.BankID != "" && uuid.Validate(f.BankID) != nil {
		return fiber.NewError(fiber.StatusBadRequest, "bank must be a valid bank id")
	}
	if raw := c.Query("from"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		f.From = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		f.To = &d
	}

	items, err := h.Service.ListVisible(c.UserContext(), actor, f)
	if err != nil {
		return h.writeServiceErr(c, err)
	}

	out := make([]transactionResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"transactions": out})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	t, err := h.Service.Get(c.UserContext(), auth.ActorFromCtx(c), c.Params("id"))
	if err != nil {
		return h.writeServiceErr(c, err)
	}
	return c.JSON(fiber.Map{"transaction": toResponse(t)})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	ctx := c.UserContext()

	current, err := h.Service.Get(ctx, actor, c.Params("id"))
	if err != nil {
		return h.writeServiceErr(c, err)
	}

	// Start from the current write shape so omitted fields keep their
	// stored values, then overlay the request.
	body := requestFromTransaction(current)
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	updated := *current
	if errs := buildTransaction(&body, &updated); !errs.Empty() {
		return httperr.Write(c, errs)
	}

	saved, err := h.Service.Update(ctx, actor, &updated)
	if err != nil {
		return h.writeServiceErr(c, err)
	}

	h.Audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     audit.ActionUpdate,
		EntityType: "transaction",
		EntityID:   saved.ID,
		IP:         c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})

	return c.JSON(fiber.Map{"transaction": toResponse(saved)})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	ctx := c.UserContext()
	id := c.Params("id")

	if err := h.Service.Delete(ctx, actor, id); err != nil {
		return h.writeServiceErr(c, err)
	}

	h.Audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     audit.ActionDelete,
		EntityType: "transaction",
		EntityID:   id,
		IP:         c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// Verify is the admin action flipping the one-way verified flag.
func (h *Handler) Verify(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	ctx := c.UserContext()
	id := c.Params("id")

	if err := h.Service.Verify(ctx, actor, id); err != nil {
		return h.writeServiceErr(c, err)
	}

	h.Audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     audit.ActionVerify,
		EntityType: "transaction",
		EntityID:   id,
		IP:         c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})
	return c.JSON(fiber.Map{"status": "transaction verified"})
}

// Reconcile marks the transaction matched against its bank record.
func (h *Handler) Reconcile(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	ctx := c.UserContext()
	id := c.Params("id")

	if err := h.Service.Reconcile(ctx, actor, id); err != nil {
		return h.writeServiceErr(c, err)
	}

	h.Audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		Action:     audit.ActionReconcile,
		EntityType: "transaction",
		EntityID:   id,
		IP:         c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})
	return c.JSON(fiber.Map{"status": "transaction reconciled"})
}

func (h *Handler) writeServiceErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return httperr.Forbidden(c)
	case errors.Is(err, ErrAlreadyVerified), errors.Is(err, ErrAlreadyReconciled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return httperr.Write(c, err)
	}
}

// requestFromTransaction seeds an update body with the stored values so a
// partial JSON payload edits only what it names.
func requestFromTransaction(t *Transaction) transactionRequest {
	status := string(t.Status)
	return transactionRequest{
		BankID:          t.BankID,
		BankAccountNo:   t.BankAccountNo,
		BankTransID:     t.BankTransID,
		BankDepositDate: t.BankDepositDate.Format(dateLayout),
		SystemValueDate: t.SystemValueDate.Format(dateLayout),
		ChequeNo:        t.ChequeNo,
		PolicyNo:        t.PolicyNo,
		Detail:          t.TransactionDetail,
		SystemVoucherNo: t.SystemVoucherNo,

		Debit:         t.Debit,
		Credit:        t.Credit,
		VoucherAmount: t.VoucherAmount,
		RefundAmount:  t.RefundAmount,

		UsedInSystem:                t.UsedInSystem,
		ReverseVoucherNo:            t.ReverseVoucherNo,
		ReversalCorrectionVoucherNo: t.ReversalCorrectionVoucherNo,
		RefundVoucherNo:             t.RefundVoucherNo,
		Remarks:                     t.Remarks,
		Source:                      t.Source,
		Status:                      &status,
	}
}
