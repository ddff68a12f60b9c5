package ledger

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewStore(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestGetOrCreateNewAccount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO accounts (user_id, balance) VALUES ($1, $2)`)).
		WithArgs(int64(42), int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT user_id, phone, balance FROM accounts WHERE user_id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "phone", "balance"}).
			AddRow(int64(42), nil, int64(1000)))

	acc, created, err := store.GetOrCreate(context.Background(), 42, 1000)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1000), acc.Balance)
	assert.False(t, acc.Phone.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateExistingAccount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO accounts (user_id, balance) VALUES ($1, $2)`)).
		WithArgs(int64(42), int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT user_id, phone, balance FROM accounts WHERE user_id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "phone", "balance"}).
			AddRow(int64(42), "+1555000", int64(700)))

	acc, created, err := store.GetOrCreate(context.Background(), 42, 1000)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "+1555000", acc.Phone.String)
	assert.Equal(t, int64(700), acc.Balance)
}

func TestSetPhoneMissingAccount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE accounts SET phone = $2 WHERE user_id = $1`)).
		WithArgs(int64(7), "+123").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetPhone(context.Background(), 7, "+123")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCreateOrderDebitsWhenFunded(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(1000)))
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs("ord-1", int64(42), 2, "🚗 Toy 2", int64(300), "PO Box 9", "leave at door", StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE accounts SET balance = $2 WHERE user_id = $1`)).
		WithArgs(int64(42), int64(700)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	remaining, funded, err := store.CreateOrder(context.Background(), Order{
		ID: "ord-1", UserID: 42, ProductID: 2, ProductName: "🚗 Toy 2",
		ProductPrice: 300, Address: "PO Box 9", Comment: "leave at door",
	})
	require.NoError(t, err)
	assert.True(t, funded)
	assert.Equal(t, int64(700), remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderUnderfundedKeepsBalance(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(200)))
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs("ord-2", int64(42), 3, "🐻 Toy 3", int64(700), "Main st 1", "", StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	remaining, funded, err := store.CreateOrder(context.Background(), Order{
		ID: "ord-2", UserID: 42, ProductID: 3, ProductName: "🐻 Toy 3",
		ProductPrice: 700, Address: "Main st 1",
	})
	require.NoError(t, err)
	assert.False(t, funded)
	assert.Equal(t, int64(200), remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseOrderPendingOnly(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT order_id, user_id, product_id`).
		WithArgs("ord-1", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "user_id", "product_id", "product_name", "product_price",
			"address", "comment", "status",
		}).AddRow("ord-1", int64(42), 2, "🚗 Toy 2", int64(300),
			"PO Box 9", "leave at door", StatusPending))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE orders SET status = $2 WHERE order_id = $1`)).
		WithArgs("ord-1", StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o, err := store.CloseOrder(context.Background(), 42, "ord-1", StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseOrderAlreadyClosed(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT order_id, user_id, product_id`).
		WithArgs("ord-1", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"order_id", "user_id", "product_id", "product_name", "product_price",
			"address", "comment", "status",
		}).AddRow("ord-1", int64(42), 2, "🚗 Toy 2", int64(300),
			"PO Box 9", "", StatusCancelled))
	mock.ExpectRollback()

	_, err := store.CloseOrder(context.Background(), 42, "ord-1", StatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderClosed)
}

func TestCloseOrderNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT order_id, user_id, product_id`).
		WithArgs("missing", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))
	mock.ExpectRollback()

	_, err := store.CloseOrder(context.Background(), 42, "missing", StatusCancelled)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
