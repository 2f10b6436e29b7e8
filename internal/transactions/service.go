package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/policy"
	"github.com/nix1947/statementTracker/internal/storage"
	"github.com/nix1947/statementTracker/internal/validation"
)

var (
	// ErrForbidden is returned when the actor lacks the role for an action.
	ErrForbidden = errors.New("forbidden")

	// Repeat lifecycle calls are conflicts, not silent successes: a client
	// retrying verify or reconcile is a bug worth surfacing.
	ErrAlreadyVerified   = errors.New("transaction already verified")
	ErrAlreadyReconciled = errors.New("transaction already reconciled")
)

// Filter narrows ListVisible. CreatedBy is forced by the service for
// non-staff actors.
type Filter struct {
	CreatedBy string
	BankID    string
	Status    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// Store is the persistence contract the lifecycle manager runs against.
// MarkVerified and MarkReconciled must be conditional writes: they return
// false without modifying anything when the precondition no longer holds,
// so two racing admin actions cannot both win.
type Store interface {
	GetByID(ctx context.Context, id string) (*Transaction, error)
	Insert(ctx context.Context, t *Transaction) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) (*Transaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]Transaction, error)
	VoucherNoTaken(ctx context.Context, voucherNo, excludeID string) (bool, error)
	BankTransTaken(ctx context.Context, bankID, bankTransID, excludeID string) (bool, error)
	MarkVerified(ctx context.Context, id, actorID string) (bool, error)
	MarkReconciled(ctx context.Context, id, actorID string, date time.Time) (bool, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create validates and persists a new transaction. The acting user is
// stamped as owner server-side; client-supplied audit or workflow state is
// discarded.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, t *Transaction) (*Transaction, error) {
	if !policy.Allow(actor, policy.TxCreate, "") {
		return nil, ErrForbidden
	}

	t.CreatedBy = actor.ID
	t.Status = StatusPending
	t.IsVerified = false
	t.ReconciledBy = nil
	t.ReconciledDate = nil
	t.SystemPostedBy = nil
	t.SystemVerifiedBy = nil

	return s.validateAndSave(ctx, t, false)
}

// Get returns a single transaction. Rows outside the actor's visibility
// surface as not-found, the same as the list rules expose.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id string) (*Transaction, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(actor, policy.TxRetrieve, t.CreatedBy) {
		return nil, storage.ErrNotFound
	}
	return t, nil
}

// Update applies a generic edit. Ownership, creation time, the verified
// flag and the audit stamps are restored from the stored row: only
// lifecycle actions may move them. Reconciled rows are frozen.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, t *Transaction) (*Transaction, error) {
	orig, err := s.store.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(actor, policy.TxUpdate, orig.CreatedBy) {
		// Same surface as listing: no hint that the row exists.
		return nil, storage.ErrNotFound
	}

	t.CreatedBy = orig.CreatedBy
	t.CreatedDate = orig.CreatedDate
	t.IsVerified = orig.IsVerified
	t.ReconciledBy = orig.ReconciledBy
	t.ReconciledDate = orig.ReconciledDate
	t.SystemPostedBy = orig.SystemPostedBy
	t.SystemVerifiedBy = orig.SystemVerifiedBy

	if orig.Status == StatusReconciled && t.Status != StatusReconciled {
		errs := validation.FieldErrors{}
		errs.Add("status", "a reconciled transaction cannot change status")
		return nil, errs
	}
	if orig.Status != StatusReconciled && t.Status == StatusReconciled {
		errs := validation.FieldErrors{}
		errs.Add("status", "use the reconcile action to reconcile a transaction")
		return nil, errs
	}

	return s.validateAndSave(ctx, t, true)
}

// Delete removes a transaction the actor may touch; invisible rows report
// not-found rather than forbidden.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Allow(actor, policy.TxDelete, t.CreatedBy) {
		return storage.ErrNotFound
	}
	return s.store.Delete(ctx, id)
}

// ListVisible returns transactions newest-first. Staff see every row;
// everyone else only their own, enforced here rather than in the handler.
func (s *Service) ListVisible(ctx context.Context, actor *auth.Actor, f Filter) ([]Transaction, error) {
	if !policy.Allow(actor, policy.TxList, "") {
		return nil, ErrForbidden
	}
	if !actor.Admin() {
		f.CreatedBy = actor.ID
	}
	return s.store.List(ctx, f)
}

// Verify flips the one-way verified flag and stamps the verifying actor.
// A second call conflicts; so does losing the conditional-update race.
func (s *Service) Verify(ctx context.Context, actor *auth.Actor, id string) error {
	if !policy.Allow(actor, policy.TxVerify, "") {
		return ErrForbidden
	}

	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.IsVerified {
		return ErrAlreadyVerified
	}
	if errs := s.revalidate(t); !errs.Empty() {
		return errs
	}

	won, err := s.store.MarkVerified(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !won {
		return ErrAlreadyVerified
	}
	return nil
}

// Reconcile marks the transaction matched against its bank-side record,
// stamping actor and date. Reconciled is terminal.
func (s *Service) Reconcile(ctx context.Context, actor *auth.Actor, id string) error {
	if !policy.Allow(actor, policy.TxReconcile, "") {
		return ErrForbidden
	}

	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == StatusReconciled {
		return ErrAlreadyReconciled
	}
	if errs := s.revalidate(t); !errs.Empty() {
		return errs
	}

	won, err := s.store.MarkReconciled(ctx, id, actor.ID, dateOnly(s.now()))
	if err != nil {
		return err
	}
	if !won {
		return ErrAlreadyReconciled
	}
	return nil
}

// revalidate re-runs the full rule engine before a partial lifecycle write.
// Every save path revalidates all invariants, even when only two fields
// change.
func (s *Service) revalidate(t *Transaction) validation.FieldErrors {
	t.Normalize()
	return t.Validate(s.now())
}

func (s *Service) validateAndSave(ctx context.Context, t *Transaction, existing bool) (*Transaction, error) {
	t.Normalize()
	errs := t.Validate(s.now())

	excludeID := ""
	if existing {
		excludeID = t.ID
	}

	// Advisory uniqueness lookups; the database constraints are the source
	// of truth under concurrency and the repository translates their
	// violations into this same shape.
	if _, ok := errs["system_voucher_no"]; !ok {
		taken, err := s.store.VoucherNoTaken(ctx, t.SystemVoucherNo, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("system_voucher_no", "a transaction with this voucher number already exists")
		}
	}
	_, badBank := errs["bank"]
	if !badBank && t.BankID != "" && t.BankTransID != "" {
		taken, err := s.store.BankTransTaken(ctx, t.BankID, t.BankTransID, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("bank_trans_id", "this bank transaction id is already recorded for this bank")
		}
	}

	if !errs.Empty() {
		return nil, errs
	}
	if existing {
		return s.store.Update(ctx, t)
	}
	return s.store.Insert(ctx, t)
}
