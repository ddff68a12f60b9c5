package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store persists accounts and orders in Postgres. Every mutation runs in a
// single transaction; balance changes take a row lock on the account so
// concurrent updates for the same user serialize.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// GetOrCreate returns the account for userID, creating it with the given
// starting balance on first contact. The second return value reports whether
// a new account was created.
func (s *Store) GetOrCreate(ctx context.Context, userID, startBalance int64) (Account, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, balance) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, startBalance,
	)
	if err != nil {
		return Account{}, false, fmt.Errorf("create account: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return Account{}, false, fmt.Errorf("create account: %w", err)
	}

	acc, err := s.ByID(ctx, userID)
	if err != nil {
		return Account{}, false, err
	}
	return acc, inserted > 0, nil
}

// ByID fetches a single account.
func (s *Store) ByID(ctx context.Context, userID int64) (Account, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc,
		`SELECT user_id, phone, balance FROM accounts WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("select account: %w", err)
	}
	return acc, nil
}

// SetPhone stores the contact phone for an existing account. Last write wins.
func (s *Store) SetPhone(ctx context.Context, userID int64, phone string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET phone = $2 WHERE user_id = $1`, userID, phone)
	if err != nil {
		return fmt.Errorf("update phone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update phone: %w", err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// CreateOrder records the order and settles the balance in one transaction.
// When the balance covers the price it is debited and funded is true; an
// underfunded order is still recorded with the balance untouched, so the
// remaining value then reports the unchanged balance.
func (s *Store) CreateOrder(ctx context.Context, o Order) (remaining int64, funded bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var balance int64
	err = tx.GetContext(ctx, &balance,
		`SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`, o.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrAccountNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("lock account: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (order_id, user_id, product_id, product_name, product_price,
		                     address, comment, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.UserID, o.ProductID, o.ProductName, o.ProductPrice,
		o.Address, o.Comment, StatusPending,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert order: %w", err)
	}

	remaining = balance
	if balance >= o.ProductPrice {
		remaining = balance - o.ProductPrice
		funded = true
		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET balance = $2 WHERE user_id = $1`, o.UserID, remaining)
		if err != nil {
			return 0, false, fmt.Errorf("debit balance: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit: %w", err)
	}
	return remaining, funded, nil
}

// CloseOrder moves a PENDING order to the given terminal status and returns
// the updated row. A missing order yields ErrOrderNotFound; an order already
// confirmed or cancelled yields ErrOrderClosed.
func (s *Store) CloseOrder(ctx context.Context, userID int64, orderID, status string) (Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var o Order
	err = tx.GetContext(ctx, &o,
		`SELECT order_id, user_id, product_id, product_name, product_price,
		        address, comment, status, created_at
		 FROM orders WHERE order_id = $1 AND user_id = $2 FOR UPDATE`,
		orderID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("lock order: %w", err)
	}
	if o.Status != StatusPending {
		err = ErrOrderClosed
		return Order{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE order_id = $1`, orderID, status)
	if err != nil {
		return Order{}, fmt.Errorf("update status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit: %w", err)
	}
	o.Status = status
	return o, nil
}

// CountOrders returns the number of orders ever placed by the user.
func (s *Store) CountOrders(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// CountPending returns the number of orders still awaiting confirmation.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM orders WHERE status = $1`, StatusPending)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}
