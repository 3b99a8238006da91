package store

import (
	"context"
	"errors"
	"time"

	"ba9alino/backend/internal/domain"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on uniqueness violations: duplicate invoice
	// number, or a second open cash session for the same register key.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned for requests rejected before any mutation.
	ErrValidation = errors.New("invalid request")
	// ErrUnavailable wraps transient backend failures.
	ErrUnavailable = errors.New("store unavailable")
)

// CatalogStore is the read side of the product catalog plus the one write
// the settlement path needs: floor-clamped stock deltas. Stock never goes
// negative; a delta larger than the remaining stock clamps at zero, which
// keeps retried deltas safe to re-issue.
type CatalogStore interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetVariants(ctx context.Context, productID string) ([]domain.ProductVariant, error)
	GetStock(ctx context.Context, productID string, warehouseID string) (float64, error)
	ApplyStockDelta(ctx context.Context, productID string, variantID string, warehouseID string, delta float64) error
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
}

// LedgerStore persists the financial records of the POS: invoices,
// payments, cash sessions and their reconciliation reports. Uniqueness of
// invoice numbers and of the open-session-per-(employee,warehouse) rule is
// enforced here, not by in-process locking, so that several terminals can
// share one ledger.
type LedgerStore interface {
	CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)
	CreatePayment(ctx context.Context, payment domain.Payment) error
	ListInvoices(ctx context.Context, sessionID string) ([]domain.Invoice, error)
	ListPayments(ctx context.Context, sessionID string) ([]domain.Payment, error)

	CreateCashSession(ctx context.Context, session domain.CashSession) (*domain.CashSession, error)
	GetCashSession(ctx context.Context, id string) (*domain.CashSession, error)
	FindOpenCashSession(ctx context.Context, employeeID string, warehouseID string) (*domain.CashSession, error)
	CloseCashSession(ctx context.Context, id string, declaredCents int64, note string, closedAt time.Time) (*domain.CashSession, error)
	CreateSessionReport(ctx context.Context, report domain.ReconciliationReport) error

	GetClient(ctx context.Context, id string) (*domain.Client, error)
	FindClientByName(ctx context.Context, nameAR string) (*domain.Client, error)
	CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error)
}
