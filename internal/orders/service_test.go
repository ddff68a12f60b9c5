package orders

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/ledger"
)

type fakeLedger struct {
	accounts map[int64]*ledger.Account
	orders   map[string]*ledger.Order
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts: make(map[int64]*ledger.Account),
		orders:   make(map[string]*ledger.Order),
	}
}

func (f *fakeLedger) GetOrCreate(_ context.Context, userID, startBalance int64) (ledger.Account, bool, error) {
	if acc, ok := f.accounts[userID]; ok {
		return *acc, false, nil
	}
	acc := &ledger.Account{UserID: userID, Balance: startBalance}
	f.accounts[userID] = acc
	return *acc, true, nil
}

func (f *fakeLedger) ByID(_ context.Context, userID int64) (ledger.Account, error) {
	acc, ok := f.accounts[userID]
	if !ok {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	return *acc, nil
}

func (f *fakeLedger) SetPhone(_ context.Context, userID int64, phone string) error {
	acc, ok := f.accounts[userID]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	acc.Phone = sql.NullString{String: phone, Valid: true}
	return nil
}

func (f *fakeLedger) CreateOrder(_ context.Context, o ledger.Order) (int64, bool, error) {
	acc, ok := f.accounts[o.UserID]
	if !ok {
		return 0, false, ledger.ErrAccountNotFound
	}
	stored := o
	f.orders[o.ID] = &stored
	if acc.Balance >= o.ProductPrice {
		acc.Balance -= o.ProductPrice
		return acc.Balance, true, nil
	}
	return acc.Balance, false, nil
}

func (f *fakeLedger) CloseOrder(_ context.Context, userID int64, orderID, status string) (ledger.Order, error) {
	o, ok := f.orders[orderID]
	if !ok || o.UserID != userID {
		return ledger.Order{}, ledger.ErrOrderNotFound
	}
	if o.Status != ledger.StatusPending {
		return ledger.Order{}, ledger.ErrOrderClosed
	}
	o.Status = status
	return *o, nil
}

func (f *fakeLedger) CountOrders(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, o := range f.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLedger) CountPending(_ context.Context) (int, error) {
	n := 0
	for _, o := range f.orders {
		if o.Status == ledger.StatusPending {
			n++
		}
	}
	return n, nil
}

type fakeNotifier struct {
	sent []Notification
	err  error
}

func (f *fakeNotifier) OrderConfirmed(_ context.Context, n Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeLedger, *fakeNotifier) {
	t.Helper()
	store := newFakeLedger()
	notifier := &fakeNotifier{}
	svc := NewService(store, catalog.New(nil), notifier, 1000)
	return svc, store, notifier
}

func TestRegisterGrantsStartingBalance(t *testing.T) {
	svc, _, _ := newTestService(t)

	acc, err := svc.Register(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acc.Balance)
	assert.False(t, acc.Phone.Valid)

	// Re-registering is a no-op.
	again, err := svc.Register(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, acc, again)
}

func TestValidPhone(t *testing.T) {
	valid := []string{"+1", "+1234567890", "+490001"}
	invalid := []string{"", "+", "1234567890", "+12a34", "+12 34", "phone", "++123"}

	for _, s := range valid {
		assert.True(t, ValidPhone(s), s)
	}
	for _, s := range invalid {
		assert.False(t, ValidPhone(s), s)
	}
}

func TestSetPhoneRejectsInvalidWithoutMutation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)

	err = svc.SetPhone(ctx, 42, "not-a-phone")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	acc, err := store.ByID(ctx, 42)
	require.NoError(t, err)
	assert.False(t, acc.Phone.Valid)
}

func TestSetPhoneLastWriteWins(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))
	require.NoError(t, svc.SetPhone(ctx, 42, "+1555999"))

	acc, err := store.ByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "+1555999", acc.Phone.String)
}

func TestStartOrderRequiresPhone(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)

	_, err = svc.StartOrder(ctx, 42)
	assert.ErrorIs(t, err, ErrMissingPhone)

	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))
	products, err := svc.StartOrder(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestProductNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Product(99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFinalizeDebitsWhenFunded(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))

	p, err := svc.Product(2)
	require.NoError(t, err)

	rec, err := svc.Finalize(ctx, 42, p, "PO Box 9", "leave at door")
	require.NoError(t, err)
	assert.True(t, rec.Funded)
	assert.Equal(t, int64(700), rec.Remaining)
	assert.Equal(t, "+1555000", rec.Phone)
	assert.NotEmpty(t, rec.Order.ID)
	assert.Equal(t, ledger.StatusPending, rec.Order.Status)

	acc, err := store.ByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(700), acc.Balance)
}

func TestFinalizeUnderfundedRecordsOrderKeepsBalance(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))

	p, err := svc.Product(3) // 700
	require.NoError(t, err)
	first, err := svc.Finalize(ctx, 42, p, "a", "")
	require.NoError(t, err)
	require.True(t, first.Funded)

	// 300 left, next 700 order is underfunded.
	second, err := svc.Finalize(ctx, 42, p, "b", "")
	require.NoError(t, err)
	assert.False(t, second.Funded)
	assert.Equal(t, int64(300), second.Remaining)

	acc, err := store.ByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(300), acc.Balance)

	profile, err := svc.Profile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Orders)
}

func TestConfirmNotifiesOperator(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))

	p, err := svc.Product(2)
	require.NoError(t, err)
	rec, err := svc.Finalize(ctx, 42, p, "PO Box 9", "leave at door")
	require.NoError(t, err)

	order, err := svc.Confirm(ctx, 42, rec.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusConfirmed, order.Status)

	require.Len(t, notifier.sent, 1)
	n := notifier.sent[0]
	assert.Equal(t, rec.Order.ID, n.OrderID)
	assert.Equal(t, "+1555000", n.Phone)
	assert.Equal(t, "🚗 Toy 2", n.ProductName)
	assert.Equal(t, int64(300), n.Price)
	assert.Equal(t, "PO Box 9", n.Address)
	assert.Equal(t, "leave at door", n.Comment)
}

func TestConfirmClosedOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))

	p, err := svc.Product(1)
	require.NoError(t, err)
	rec, err := svc.Finalize(ctx, 42, p, "a", "")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, 42, rec.Order.ID)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, 42, rec.Order.ID)
	assert.ErrorIs(t, err, ErrOrderClosed)
	_, err = svc.Cancel(ctx, 42, rec.Order.ID)
	assert.ErrorIs(t, err, ErrOrderClosed)
}

func TestConfirmUnknownOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, 42, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelMarksCancelled(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))

	p, err := svc.Product(1)
	require.NoError(t, err)
	rec, err := svc.Finalize(ctx, 42, p, "a", "")
	require.NoError(t, err)

	order, err := svc.Cancel(ctx, 42, rec.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCancelled, order.Status)
	assert.Empty(t, notifier.sent)
}

func TestNotifierFailureDoesNotFailConfirm(t *testing.T) {
	svc, _, notifier := newTestService(t)
	notifier.err = assert.AnError
	ctx := context.Background()
	_, err := svc.Register(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, svc.SetPhone(ctx, 42, "+1555000"))

	p, err := svc.Product(1)
	require.NoError(t, err)
	rec, err := svc.Finalize(ctx, 42, p, "a", "")
	require.NoError(t, err)

	order, err := svc.Confirm(ctx, 42, rec.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusConfirmed, order.Status)
}
