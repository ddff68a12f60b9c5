package ledger

import (
	"database/sql"
	"errors"
	"time"
)

// Order status values. An order leaves PENDING exactly once.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

var (
	// ErrAccountNotFound is returned when the user has no account record.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrOrderNotFound is returned when no order matches the given id for the user.
	ErrOrderNotFound = errors.New("ledger: order not found")
	// ErrOrderClosed is returned when a status change targets an order
	// already in a terminal state.
	ErrOrderClosed = errors.New("ledger: order already closed")
)

// Account is the persisted per-user record.
type Account struct {
	UserID  int64          `db:"user_id"`
	Phone   sql.NullString `db:"phone"`
	Balance int64          `db:"balance"`
}

// Order is a persisted order with a snapshot of the product at purchase time.
type Order struct {
	ID           string    `db:"order_id"`
	UserID       int64     `db:"user_id"`
	ProductID    int       `db:"product_id"`
	ProductName  string    `db:"product_name"`
	ProductPrice int64     `db:"product_price"`
	Address      string    `db:"address"`
	Comment      string    `db:"comment"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
}
