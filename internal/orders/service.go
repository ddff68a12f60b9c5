package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/ledger"
)

const component = "service.orders"

var (
	// ErrInvalidPhone is returned for a phone that is not "+" followed by digits.
	ErrInvalidPhone = errors.New("orders: invalid phone format")
	// ErrMissingPhone is returned when ordering starts before a phone is set.
	ErrMissingPhone = errors.New("orders: phone not set")
	// ErrProductNotFound is returned for an unknown product id.
	ErrProductNotFound = errors.New("orders: product not found")
	// ErrOrderNotFound is returned when the order id does not exist for the user.
	ErrOrderNotFound = errors.New("orders: order not found")
	// ErrOrderClosed is returned when confirming or cancelling a non-pending order.
	ErrOrderClosed = errors.New("orders: order already closed")
)

// Ledger is the persistence surface the service needs.
type Ledger interface {
	GetOrCreate(ctx context.Context, userID, startBalance int64) (ledger.Account, bool, error)
	ByID(ctx context.Context, userID int64) (ledger.Account, error)
	SetPhone(ctx context.Context, userID int64, phone string) error
	CreateOrder(ctx context.Context, o ledger.Order) (int64, bool, error)
	CloseOrder(ctx context.Context, userID int64, orderID, status string) (ledger.Order, error)
	CountOrders(ctx context.Context, userID int64) (int, error)
	CountPending(ctx context.Context) (int, error)
}

// Notification carries the order summary delivered to the operator.
type Notification struct {
	OrderID     string
	Phone       string
	ProductName string
	Price       int64
	Address     string
	Comment     string
}

// Notifier delivers operator notifications. Delivery is best-effort: a
// failure is logged and never rolls back the order.
type Notifier interface {
	OrderConfirmed(ctx context.Context, n Notification) error
}

// Profile is the user-facing account summary.
type Profile struct {
	Phone   string
	Balance int64
	Orders  int
}

// Receipt is the outcome of finalizing an order. Phone is carried along for
// the order summary rendering.
type Receipt struct {
	Order     ledger.Order
	Phone     string
	Remaining int64
	Funded    bool
}

// Service drives the ordering flow on top of the ledger and catalog.
type Service struct {
	store        Ledger
	catalog      *catalog.Catalog
	notifier     Notifier
	startBalance int64
}

// NewService wires the order flow controller.
func NewService(store Ledger, cat *catalog.Catalog, notifier Notifier, startBalance int64) *Service {
	return &Service{
		store:        store,
		catalog:      cat,
		notifier:     notifier,
		startBalance: startBalance,
	}
}

// ValidPhone reports whether s is a "+" sign followed by one or more digits.
func ValidPhone(s string) bool {
	if len(s) < 2 || s[0] != '+' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Register returns the account for the user, creating it with the starting
// balance on first contact.
func (s *Service) Register(ctx context.Context, userID int64) (ledger.Account, error) {
	acc, created, err := s.store.GetOrCreate(ctx, userID, s.startBalance)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("register: %w", err)
	}
	if created {
		logger.Info(ctx, component, "account.created",
			slog.Int64("user_id", userID),
			slog.Int64("balance", acc.Balance),
		)
	}
	return acc, nil
}

// Profile returns phone, balance and order count for the user.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	acc, err := s.store.ByID(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}
	count, err := s.store.CountOrders(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}
	return Profile{Phone: acc.Phone.String, Balance: acc.Balance, Orders: count}, nil
}

// Balance returns the current balance for the user.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	acc, err := s.store.ByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return acc.Balance, nil
}

// SetPhone validates and persists the contact phone. Last write wins.
func (s *Service) SetPhone(ctx context.Context, userID int64, phone string) error {
	if !ValidPhone(phone) {
		return ErrInvalidPhone
	}
	if err := s.store.SetPhone(ctx, userID, phone); err != nil {
		return fmt.Errorf("set phone: %w", err)
	}
	logger.Info(ctx, component, "phone.set", slog.Int64("user_id", userID))
	return nil
}

// StartOrder checks the ordering precondition and returns the product list.
// A user without a phone on file is rejected with ErrMissingPhone.
func (s *Service) StartOrder(ctx context.Context, userID int64) ([]catalog.Product, error) {
	acc, err := s.store.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("start order: %w", err)
	}
	if !acc.Phone.Valid || acc.Phone.String == "" {
		return nil, ErrMissingPhone
	}
	return s.catalog.List(), nil
}

// Product resolves a product id selected from the menu.
func (s *Service) Product(id int) (catalog.Product, error) {
	p, ok := s.catalog.Get(id)
	if !ok {
		return catalog.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Finalize records the order with a product snapshot and settles the balance.
// When the balance does not cover the price the order is still recorded and
// the balance stays untouched; Receipt.Funded reports which case applied.
func (s *Service) Finalize(ctx context.Context, userID int64, product catalog.Product, address, comment string) (Receipt, error) {
	acc, err := s.store.ByID(ctx, userID)
	if err != nil {
		return Receipt{}, fmt.Errorf("finalize: %w", err)
	}

	order := ledger.Order{
		ID:           uuid.NewString(),
		UserID:       userID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Address:      address,
		Comment:      comment,
		Status:       ledger.StatusPending,
	}
	remaining, funded, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return Receipt{}, fmt.Errorf("finalize: %w", err)
	}

	logger.Info(ctx, component, "order.created",
		slog.String("order_id", order.ID),
		slog.Int64("user_id", userID),
		slog.Int("product_id", product.ID),
		slog.Int64("price", product.Price),
		slog.Int64("remaining", remaining),
		slog.Bool("funded", funded),
	)
	return Receipt{Order: order, Phone: acc.Phone.String, Remaining: remaining, Funded: funded}, nil
}

// Confirm moves a pending order to CONFIRMED and notifies the operator.
// Notification failure is logged, never returned: the state change stands.
func (s *Service) Confirm(ctx context.Context, userID int64, orderID string) (ledger.Order, error) {
	order, err := s.store.CloseOrder(ctx, userID, orderID, ledger.StatusConfirmed)
	if err != nil {
		return ledger.Order{}, s.mapCloseErr(err)
	}

	acc, err := s.store.ByID(ctx, userID)
	if err != nil {
		return ledger.Order{}, fmt.Errorf("confirm: %w", err)
	}

	logger.Info(ctx, component, "order.confirmed",
		slog.String("order_id", order.ID),
		slog.Int64("user_id", userID),
	)

	if s.notifier != nil {
		n := Notification{
			OrderID:     order.ID,
			Phone:       acc.Phone.String,
			ProductName: order.ProductName,
			Price:       order.ProductPrice,
			Address:     order.Address,
			Comment:     order.Comment,
		}
		if nerr := s.notifier.OrderConfirmed(ctx, n); nerr != nil {
			logger.Warn(ctx, component, "notify.failed",
				slog.String("order_id", order.ID),
				slog.String("err", nerr.Error()),
			)
		}
	}
	return order, nil
}

// Cancel moves a pending order to CANCELLED.
func (s *Service) Cancel(ctx context.Context, userID int64, orderID string) (ledger.Order, error) {
	order, err := s.store.CloseOrder(ctx, userID, orderID, ledger.StatusCancelled)
	if err != nil {
		return ledger.Order{}, s.mapCloseErr(err)
	}
	logger.Info(ctx, component, "order.cancelled",
		slog.String("order_id", order.ID),
		slog.Int64("user_id", userID),
	)
	return order, nil
}

// PendingCount returns the number of orders still awaiting confirmation.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	n, err := s.store.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("pending count: %w", err)
	}
	return n, nil
}

func (s *Service) mapCloseErr(err error) error {
	switch {
	case errors.Is(err, ledger.ErrOrderNotFound):
		return ErrOrderNotFound
	case errors.Is(err, ledger.ErrOrderClosed):
		return ErrOrderClosed
	default:
		return fmt.Errorf("close order: %w", err)
	}
}
