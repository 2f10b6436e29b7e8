package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/storage"
	"github.com/nix1947/statementTracker/internal/validation"
)

type fakeStore struct {
	rows map[string]*Transaction

	voucherTaken   bool
	bankTransTaken bool

	// mark* preconditions observed when the conditional write runs, letting
	// tests simulate a lost race independently of the loaded snapshot.
	verifyWins    bool
	reconcileWins bool

	inserted *Transaction
	updated  *Transaction
	deleted  string
	listedBy Filter
}

func newFakeStore(rows ...*Transaction) *fakeStore {
	f := &fakeStore{rows: map[string]*Transaction{}, verifyWins: true, reconcileWins: true}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Transaction, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) Insert(_ context.Context, t *Transaction) (*Transaction, error) {
	cp := *t
	cp.ID = "generated"
	cp.CreatedDate = time.Now()
	f.inserted = &cp
	return &cp, nil
}

func (f *fakeStore) Update(_ context.Context, t *Transaction) (*Transaction, error) {
	cp := *t
	f.updated = &cp
	f.rows[t.ID] = &cp
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deleted = id
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) List(_ context.Context, filter Filter) ([]Transaction, error) {
	f.listedBy = filter
	out := []Transaction{}
	for _, t := range f.rows {
		if filter.CreatedBy != "" && t.CreatedBy != filter.CreatedBy {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) VoucherNoTaken(_ context.Context, _, _ string) (bool, error) {
	return f.voucherTaken, nil
}

func (f *fakeStore) BankTransTaken(_ context.Context, _, _, _ string) (bool, error) {
	return f.bankTransTaken, nil
}

func (f *fakeStore) MarkVerified(_ context.Context, id, actorID string) (bool, error) {
	if !f.verifyWins {
		return false, nil
	}
	t := f.rows[id]
	t.IsVerified = true
	t.SystemVerifiedBy = &actorID
	return true, nil
}

func (f *fakeStore) MarkReconciled(_ context.Context, id, actorID string, date time.Time) (bool, error) {
	if !f.reconcileWins {
		return false, nil
	}
	t := f.rows[id]
	t.Status = StatusReconciled
	t.ReconciledBy = &actorID
	t.ReconciledDate = &date
	return true, nil
}

var _ Store = (*fakeStore)(nil)

var (
	owner = &auth.Actor{ID: "u-owner", IsActive: true}
	other = &auth.Actor{ID: "u-other", IsActive: true}
	admin = &auth.Actor{ID: "u-admin", IsActive: true, IsStaff: true}
)

func newTestService(store *fakeStore) *Service {
	s := NewService(store)
	s.now = func() time.Time { return testToday }
	return s
}

func storedTransaction() *Transaction {
	tx := validTransaction()
	tx.ID = "t1"
	tx.CreatedBy = owner.ID
	tx.CreatedDate = testToday.AddDate(0, 0, -3)
	return &tx
}

func TestServiceCreate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validTransaction()
	input.Status = StatusCompleted // client cannot choose the initial state
	input.IsVerified = true
	input.SystemVerifiedBy = strPtr("spoofed")
	input.CreatedBy = "spoofed"

	saved, err := svc.Create(context.Background(), owner, &input)
	require.NoError(t, err)

	assert.Equal(t, owner.ID, store.inserted.CreatedBy)
	assert.Equal(t, StatusPending, saved.Status)
	assert.False(t, saved.IsVerified)
	assert.Nil(t, store.inserted.SystemVerifiedBy)
}

func TestServiceCreateInvalid(t *testing.T) {
	svc := newTestService(newFakeStore())

	input := validTransaction()
	input.TransactionDetail = "short"
	input.VoucherAmount = dec("0")

	_, err := svc.Create(context.Background(), owner, &input)
	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "transaction_detail")
	assert.Contains(t, fe, "voucher_amount")
}

func TestServiceCreateDuplicateVoucher(t *testing.T) {
	store := newFakeStore()
	store.voucherTaken = true
	svc := newTestService(store)

	input := validTransaction()
	_, err := svc.Create(context.Background(), owner, &input)
	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "system_voucher_no")
}

func TestServiceCreateDuplicateBankTrans(t *testing.T) {
	store := newFakeStore()
	store.bankTransTaken = true
	svc := newTestService(store)

	input := validTransaction()
	_, err := svc.Create(context.Background(), owner, &input)
	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "bank_trans_id")
}

func TestServiceGetVisibility(t *testing.T) {
	store := newFakeStore(storedTransaction())
	svc := newTestService(store)

	got, err := svc.Get(context.Background(), owner, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	_, err = svc.Get(context.Background(), other, "t1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.Get(context.Background(), admin, "t1")
	assert.NoError(t, err)
}

func TestServiceUpdatePreservesOwnershipAndAudit(t *testing.T) {
	orig := storedTransaction()
	orig.IsVerified = true
	orig.SystemVerifiedBy = strPtr(admin.ID)
	store := newFakeStore(orig)
	svc := newTestService(store)

	edit := *orig
	edit.TransactionDetail = "Corrected narration for the deposit"
	edit.CreatedBy = "hijacked"
	edit.IsVerified = false
	edit.SystemVerifiedBy = nil

	saved, err := svc.Update(context.Background(), owner, &edit)
	require.NoError(t, err)

	assert.Equal(t, orig.CreatedBy, saved.CreatedBy)
	assert.True(t, saved.IsVerified)
	require.NotNil(t, saved.SystemVerifiedBy)
	assert.Equal(t, admin.ID, *saved.SystemVerifiedBy)
	assert.Equal(t, "Corrected narration for the deposit", saved.TransactionDetail)
}

func TestServiceUpdateReconciledFrozen(t *testing.T) {
	orig := storedTransaction()
	orig.Status = StatusReconciled
	svc := newTestService(newFakeStore(orig))

	edit := *orig
	edit.Status = StatusCompleted
	_, err := svc.Update(context.Background(), owner, &edit)
	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "status")
}

func TestServiceUpdateCannotSetReconciled(t *testing.T) {
	orig := storedTransaction()
	svc := newTestService(newFakeStore(orig))

	edit := *orig
	edit.Status = StatusReconciled
	_, err := svc.Update(context.Background(), owner, &edit)
	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "status")
}

func TestServiceUpdateInvisibleRow(t *testing.T) {
	svc := newTestService(newFakeStore(storedTransaction()))

	edit := *storedTransaction()
	_, err := svc.Update(context.Background(), other, &edit)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestServiceDelete(t *testing.T) {
	store := newFakeStore(storedTransaction())
	svc := newTestService(store)

	err := svc.Delete(context.Background(), other, "t1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, store.deleted)

	require.NoError(t, svc.Delete(context.Background(), owner, "t1"))
	assert.Equal(t, "t1", store.deleted)
}

func TestServiceListVisible(t *testing.T) {
	mine := storedTransaction()
	theirs := storedTransaction()
	theirs.ID = "t2"
	theirs.CreatedBy = other.ID
	store := newFakeStore(mine, theirs)
	svc := newTestService(store)

	rows, err := svc.ListVisible(context.Background(), owner, Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, owner.ID, rows[0].CreatedBy)
	assert.Equal(t, owner.ID, store.listedBy.CreatedBy)

	rows, err = svc.ListVisible(context.Background(), admin, Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Empty(t, store.listedBy.CreatedBy)
}

func TestServiceVerify(t *testing.T) {
	store := newFakeStore(storedTransaction())
	svc := newTestService(store)

	assert.ErrorIs(t, svc.Verify(context.Background(), owner, "t1"), ErrForbidden)

	require.NoError(t, svc.Verify(context.Background(), admin, "t1"))
	assert.True(t, store.rows["t1"].IsVerified)
	require.NotNil(t, store.rows["t1"].SystemVerifiedBy)
	assert.Equal(t, admin.ID, *store.rows["t1"].SystemVerifiedBy)

	assert.ErrorIs(t, svc.Verify(context.Background(), admin, "t1"), ErrAlreadyVerified)
}

func TestServiceVerifyLostRace(t *testing.T) {
	store := newFakeStore(storedTransaction())
	store.verifyWins = false
	svc := newTestService(store)

	assert.ErrorIs(t, svc.Verify(context.Background(), admin, "t1"), ErrAlreadyVerified)
}

func TestServiceVerifyInvalidRow(t *testing.T) {
	row := storedTransaction()
	row.TransactionDetail = "short"
	svc := newTestService(newFakeStore(row))

	err := svc.Verify(context.Background(), admin, "t1")
	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "transaction_detail")
}

func TestServiceReconcile(t *testing.T) {
	store := newFakeStore(storedTransaction())
	svc := newTestService(store)

	assert.ErrorIs(t, svc.Reconcile(context.Background(), owner, "t1"), ErrForbidden)

	require.NoError(t, svc.Reconcile(context.Background(), admin, "t1"))
	row := store.rows["t1"]
	assert.Equal(t, StatusReconciled, row.Status)
	require.NotNil(t, row.ReconciledBy)
	assert.Equal(t, admin.ID, *row.ReconciledBy)
	require.NotNil(t, row.ReconciledDate)
	assert.Equal(t, dateOnly(testToday), *row.ReconciledDate)

	assert.ErrorIs(t, svc.Reconcile(context.Background(), admin, "t1"), ErrAlreadyReconciled)
}

func TestServiceReconcileLostRace(t *testing.T) {
	store := newFakeStore(storedTransaction())
	store.reconcileWins = false
	svc := newTestService(store)

	assert.ErrorIs(t, svc.Reconcile(context.Background(), admin, "t1"), ErrAlreadyReconciled)
}

func TestServiceCreateAnonymousForbidden(t *testing.T) {
	svc := newTestService(newFakeStore())
	tx := validTransaction()
	_, err := svc.Create(context.Background(), nil, &tx)
	assert.ErrorIs(t, err, ErrForbidden)
}
