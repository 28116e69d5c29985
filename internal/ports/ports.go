package ports

import (
	"context"
	"time"

	"minangpos-backend/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ShiftStore persists shifts. CreateShift must return domain.ErrConflict when
// the owner already has an open shift. CloseShift must write every field of
// the closing at once or nothing, and returns domain.ErrStaleTotals when the
// committed sales of the shift differ from in.Aggregates.
type ShiftStore interface {
	CreateShift(ctx context.Context, shift domain.Shift) (*domain.Shift, error)
	GetShift(ctx context.Context, id string) (*domain.Shift, error)
	GetOpenShift(ctx context.Context, ownerID int64) (*domain.Shift, error)
	CloseShift(ctx context.Context, in domain.ShiftClosing) (*domain.Shift, error)
	ListClosedShifts(ctx context.Context, ownerID int64, from, to *time.Time, limit int) ([]domain.Shift, error)
}

// HeldOrderStore persists parked orders. PopHeldOrder deletes and returns the
// record in one step so only one caller can ever receive it.
type HeldOrderStore interface {
	CreateHeldOrder(ctx context.Context, held domain.HeldOrder) (*domain.HeldOrder, error)
	ListHeldOrders(ctx context.Context, ownerID int64) ([]domain.HeldOrder, error)
	PopHeldOrder(ctx context.Context, id, ownerID int64) (*domain.HeldOrder, error)
	DeleteHeldOrder(ctx context.Context, id, ownerID int64) (bool, error)
}

// SalesAggregator sums paid transactions tagged with a shift.
type SalesAggregator interface {
	SalesByShift(ctx context.Context, shiftID string) (domain.SalesAggregate, error)
}

// PurchaseAggregator sums cash-paid purchases recorded on a business date.
type PurchaseAggregator interface {
	CashPurchasesOn(ctx context.Context, date time.Time) (domain.Money, error)
}

// TransactionStore books sales. CreateTransaction returns
// domain.ErrShiftNotOpen unless tx.ShiftID is open and owned by tx.OwnerID,
// checked atomically with the insert.
type TransactionStore interface {
	SalesAggregator
	CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, ownerID int64, limit int) ([]domain.Transaction, error)
	GetTransactionByCode(ctx context.Context, code string) (*domain.Transaction, error)
}

type PurchaseStore interface {
	PurchaseAggregator
	CreatePurchase(ctx context.Context, p domain.Purchase) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, from, to *time.Time, limit int) ([]domain.Purchase, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) (*domain.Settings, error)
}
