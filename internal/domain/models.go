package domain

import "time"

// Enumerations
const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleCashier UserRole = "cashier"

	OrderDineIn   OrderType = "dine-in"
	OrderTakeAway OrderType = "take-away"
	OrderDelivery OrderType = "delivery"

	PayCash   PaymentMethod = "cash"
	PayCard   PaymentMethod = "card"
	PayCredit PaymentMethod = "credit"
	PayFOC    PaymentMethod = "foc"

	TransactionPaid   TransactionStatus = "paid"
	TransactionRefund TransactionStatus = "refund"
)

type UserRole string
type OrderType string
type PaymentMethod string
type TransactionStatus string

// Valid reports whether t is one of the supported order types.
func (t OrderType) Valid() bool {
	switch t {
	case OrderDineIn, OrderTakeAway, OrderDelivery:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayCredit, PayFOC:
		return true
	}
	return false
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Role         UserRole
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Settings struct {
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string
	ReceiptFooter   string
	PrinterName     string
	PaperSize       string
	AutoPrint       bool
	CurrencyCode    string
	UpdatedAt       time.Time
}

type Product struct {
	ID            int64
	Name          string
	NameLocalized string
	Category      string
	Price         Money
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Shift is a cashier's drawer session. Financial fields other than
// OpeningBalance are only populated by the close.
type Shift struct {
	ID             string
	OwnerID        int64
	OpenedAt       time.Time
	ClosedAt       *time.Time
	OpeningBalance Money
	Aggregates     SalesAggregate
	CashPurchases  Money
	ExpectedCash   Money
	PhysicalCash   Money
	Breakdown      []DenominationLine
	Variance       Money
	Notes          string
	IsClosed       bool
}

// BusinessDate is the calendar date the shift was opened on in loc.
func (s Shift) BusinessDate(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := s.OpenedAt.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MethodTotal is the count and sum of paid transactions for one payment method.
type MethodTotal struct {
	Count  int64
	Amount Money
}

type SalesAggregate struct {
	Cash      MethodTotal
	Card      MethodTotal
	Credit    MethodTotal
	FOC       MethodTotal
	Discounts Money
}

// Total is the sum of all paid sales regardless of payment method.
func (a SalesAggregate) Total() Money {
	return a.Cash.Amount + a.Card.Amount + a.Credit.Amount + a.FOC.Amount
}

func (a SalesAggregate) Count() int64 {
	return a.Cash.Count + a.Card.Count + a.Credit.Count + a.FOC.Count
}

type DenominationLine struct {
	Denomination Money
	Count        int
	Subtotal     Money
}

// ShiftClosing carries every field written by a close; stores apply it atomically.
type ShiftClosing struct {
	ShiftID       string
	OwnerID       int64
	ClosedAt      time.Time
	Aggregates    SalesAggregate
	CashPurchases Money
	ExpectedCash  Money
	PhysicalCash  Money
	Breakdown     []DenominationLine
	Variance      Money
	Notes         string
}

// ClosedShiftSummary is what printing and reporting receive after a close.
type ClosedShiftSummary struct {
	Shift
	BusinessDate time.Time
}

type LineItem struct {
	ProductID     *int64
	Name          string
	NameLocalized string
	Quantity      int
	UnitPrice     Money
}

func (it LineItem) Subtotal() Money {
	return it.UnitPrice.Mul(int64(it.Quantity))
}

// OrderDraft is the cart of the active sale as submitted by the cashier.
type OrderDraft struct {
	OrderType     OrderType
	LineItems     []LineItem
	CustomerName  string
	CustomerPhone string
	TableNumber   string
	Discount      Money
	DeliveryFee   Money
}

type HeldOrder struct {
	ID            int64
	OwnerID       int64
	OrderNumber   string
	OrderType     OrderType
	LineItems     []LineItem
	CustomerName  string
	CustomerPhone string
	TableNumber   string
	Subtotal      Money
	Discount      Money
	DeliveryFee   Money
	Total         Money
	HeldAt        time.Time
}

// ActiveOrder is the in-progress sale. It is passed explicitly between the
// cart, held orders and checkout instead of living in a session.
type ActiveOrder struct {
	OwnerID       int64
	OrderNumber   string
	OrderType     OrderType
	LineItems     []LineItem
	CustomerName  string
	CustomerPhone string
	TableNumber   string
	Subtotal      Money
	Discount      Money
	DeliveryFee   Money
	Total         Money
	ResumedFrom   *int64
}

type Transaction struct {
	ID            int64
	Code          string
	ShiftID       string
	OwnerID       int64
	OrderType     OrderType
	PaymentMethod PaymentMethod
	Subtotal      Money
	Discount      Money
	DeliveryFee   Money
	Amount        Money
	CustomerName  string
	CustomerPhone string
	TableNumber   string
	Status        TransactionStatus
	Items         []LineItem
	CreatedAt     time.Time
}

type Purchase struct {
	ID            int64
	OwnerID       int64
	Supplier      string
	InvoiceNumber string
	Amount        Money
	PaymentMethod PaymentMethod
	Date          time.Time
	Note          string
	CreatedAt     time.Time
}
