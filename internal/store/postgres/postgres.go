// Package postgres is the production store. Schema changes ship as goose
// migrations embedded in the binary and run at startup.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/google/uuid"

	"ba9alino/backend/internal/domain"
	"ba9alino/backend/internal/store"
	"ba9alino/backend/internal/xid"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, "migrations")
}

// --- CatalogStore ---

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sku, name_ar, COALESCE(category_id, ''), base_price_cents,
		       price_a, price_b, price_c, price_d, price_e, active
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.SKU, &p.NameAR, &p.CategoryID, &p.BasePriceCents,
		&p.Prices.A, &p.Prices.B, &p.Prices.C, &p.Prices.D, &p.Prices.E, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetVariants(ctx context.Context, productID string) ([]domain.ProductVariant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, name, unit_type, quantity_contained,
		       price_a, price_b, price_c, price_d, price_e,
		       COALESCE(barcode, ''), is_default, active
		FROM product_variants
		WHERE product_id = $1
		ORDER BY is_default DESC, name
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := make([]domain.ProductVariant, 0, 4)
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.UnitType, &v.QuantityContained,
			&v.Prices.A, &v.Prices.B, &v.Prices.C, &v.Prices.D, &v.Prices.E,
			&v.Barcode, &v.IsDefault, &v.Active); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (s *Store) GetStock(ctx context.Context, productID, warehouseID string) (float64, error) {
	var qty float64
	err := s.db.QueryRowContext(ctx, `
		SELECT quantity FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2
	`, productID, warehouseID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// ApplyStockDelta upserts the stock row with a floor at zero. GREATEST
// keeps a clamped deduction idempotent-safe: once the row hits zero,
// re-issuing the delta cannot drive it negative.
func (s *Store) ApplyStockDelta(ctx context.Context, productID, variantID, warehouseID string, delta float64) error {
	if variantID != "" {
		var unitType domain.UnitType
		var contained float64
		err := s.db.QueryRowContext(ctx, `
			SELECT unit_type, quantity_contained FROM product_variants WHERE id = $1 AND product_id = $2
		`, variantID, productID).Scan(&unitType, &contained)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if unitType.IsContainer() && contained > 0 {
			delta *= contained
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_levels (product_id, warehouse_id, quantity)
		SELECT p.id, $2, GREATEST(0, $3::double precision)
		FROM products p WHERE p.id = $1
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = GREATEST(0, stock_levels.quantity + $3)
	`, productID, warehouseID, delta)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, scope, COALESCE(product_id, ''), min_quantity,
		       COALESCE(unit_type, ''), discount_percent,
		       COALESCE(gift_product_id, ''), gift_quantity,
		       starts_at, ends_at, active
		FROM promotions
		WHERE active = true
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	promos := make([]domain.Promotion, 0, 16)
	for rows.Next() {
		var p domain.Promotion
		var startsAt, endsAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Scope, &p.ProductID, &p.MinQuantity,
			&p.UnitType, &p.DiscountPercent, &p.GiftProductID, &p.GiftQuantity,
			&startsAt, &endsAt, &p.Active); err != nil {
			return nil, err
		}
		if startsAt.Valid {
			t := startsAt.Time
			p.StartsAt = &t
		}
		if endsAt.Valid {
			t := endsAt.Time
			p.EndsAt = &t
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// --- LedgerStore ---

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	if invoice.Number == "" {
		return nil, fmt.Errorf("invoice number required: %w", store.ErrValidation)
	}
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	lines, err := json.Marshal(invoice.Lines)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, invoice_number, status, client_id, client_name_ar,
			cash_session_id, employee_id, warehouse_id, lines, discount_percent,
			subtotal_cents, discount_cents, total_cents, paid_cents, remaining_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, invoice.ID, invoice.Number, invoice.Status,
		nullIfEmpty(invoice.ClientID), nullIfEmpty(invoice.ClientNameAR),
		nullIfEmpty(invoice.CashSessionID), nullIfEmpty(invoice.EmployeeID), nullIfEmpty(invoice.WarehouseID),
		lines, invoice.DiscountPercent,
		invoice.SubtotalCents, invoice.DiscountCents, invoice.TotalCents,
		invoice.PaidCents, invoice.RemainingCents, invoice.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("invoice number %s: %w", invoice.Number, store.ErrConflict)
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) CreatePayment(ctx context.Context, payment domain.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.RecordedAt.IsZero() {
		payment.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, payment_number, invoice_id, client_id, amount_cents,
			method, cash_session_id, collected_by, status, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, payment.ID, payment.Number, payment.InvoiceID, nullIfEmpty(payment.ClientID),
		payment.AmountCents, payment.Method, nullIfEmpty(payment.SessionID),
		nullIfEmpty(payment.CollectedBy), payment.Status, payment.RecordedAt)
	return err
}

func (s *Store) ListInvoices(ctx context.Context, sessionID string) ([]domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_number, status, COALESCE(client_id, ''), COALESCE(client_name_ar, ''),
		       COALESCE(cash_session_id, ''), COALESCE(employee_id, ''), COALESCE(warehouse_id, ''),
		       lines, discount_percent, subtotal_cents, discount_cents, total_cents,
		       paid_cents, remaining_cents, created_at
		FROM invoices
		WHERE cash_session_id = $1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, 32)
	for rows.Next() {
		var inv domain.Invoice
		var lines []byte
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.Status, &inv.ClientID, &inv.ClientNameAR,
			&inv.CashSessionID, &inv.EmployeeID, &inv.WarehouseID,
			&lines, &inv.DiscountPercent, &inv.SubtotalCents, &inv.DiscountCents,
			&inv.TotalCents, &inv.PaidCents, &inv.RemainingCents, &inv.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(lines, &inv.Lines); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *Store) ListPayments(ctx context.Context, sessionID string) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payment_number, invoice_id, COALESCE(client_id, ''), amount_cents,
		       method, COALESCE(cash_session_id, ''), COALESCE(collected_by, ''), status, recorded_at
		FROM payments
		WHERE cash_session_id = $1
		ORDER BY recorded_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, 32)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.Number, &p.InvoiceID, &p.ClientID, &p.AmountCents,
			&p.Method, &p.SessionID, &p.CollectedBy, &p.Status, &p.RecordedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *Store) CreateCashSession(ctx context.Context, session domain.CashSession) (*domain.CashSession, error) {
	if session.ID == "" {
		session.ID = xid.New("sess")
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_sessions (id, employee_id, warehouse_id, opening_cash_cents, opened_at)
		VALUES ($1,$2,$3,$4,$5)
	`, session.ID, session.EmployeeID, session.WarehouseID, session.OpeningCashCents, session.OpenedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("open session exists for %s/%s: %w",
				session.EmployeeID, session.WarehouseID, store.ErrConflict)
		}
		return nil, err
	}
	return &session, nil
}

func (s *Store) GetCashSession(ctx context.Context, id string) (*domain.CashSession, error) {
	sess, err := s.scanSession(s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, warehouse_id, opening_cash_cents, opened_at,
		       closed_at, closing_cash_declared_cents, closing_note
		FROM cash_sessions
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return sess, err
}

func (s *Store) FindOpenCashSession(ctx context.Context, employeeID, warehouseID string) (*domain.CashSession, error) {
	sess, err := s.scanSession(s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, warehouse_id, opening_cash_cents, opened_at,
		       closed_at, closing_cash_declared_cents, closing_note
		FROM cash_sessions
		WHERE employee_id = $1 AND warehouse_id = $2 AND closed_at IS NULL
	`, employeeID, warehouseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no open session: %w", store.ErrNotFound)
	}
	return sess, err
}

func (s *Store) CloseCashSession(ctx context.Context, id string, declaredCents int64, note string, closedAt time.Time) (*domain.CashSession, error) {
	sess, err := s.scanSession(s.db.QueryRowContext(ctx, `
		UPDATE cash_sessions
		SET closed_at = $2, closing_cash_declared_cents = $3, closing_note = $4
		WHERE id = $1 AND closed_at IS NULL
		RETURNING id, employee_id, warehouse_id, opening_cash_cents, opened_at,
		          closed_at, closing_cash_declared_cents, closing_note
	`, id, closedAt, declaredCents, note))
	if errors.Is(err, sql.ErrNoRows) {
		// Missing or already closed; distinguish for the caller.
		var exists bool
		if scanErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cash_sessions WHERE id = $1)`, id).Scan(&exists); scanErr != nil {
			return nil, scanErr
		}
		if exists {
			return nil, fmt.Errorf("session %s already closed: %w", id, store.ErrConflict)
		}
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return sess, err
}

func (s *Store) CreateSessionReport(ctx context.Context, report domain.ReconciliationReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_session_reports (session_id, total_sales_cents, total_cash_cents,
			total_check_cents, total_card_cents, total_transfer_cents, total_credit_cents,
			expected_cash_cents, declared_cash_cents, difference_cents, note, closed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (session_id) DO NOTHING
	`, report.SessionID, report.TotalSalesCents, report.TotalCashCents,
		report.TotalCheckCents, report.TotalCardCents, report.TotalTransferCents,
		report.TotalCreditCents, report.ExpectedCashCents, report.DeclaredCashCents,
		report.DifferenceCents, report.Note, report.ClosedAt)
	return err
}

func (s *Store) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_name_ar, COALESCE(company_name_en, ''), subscription_tier
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.CompanyNameAR, &c.CompanyNameEN, &c.SubscriptionTier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindClientByName(ctx context.Context, nameAR string) (*domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_name_ar, COALESCE(company_name_en, ''), subscription_tier
		FROM clients
		WHERE company_name_ar = $1
		LIMIT 1
	`, nameAR).Scan(&c.ID, &c.CompanyNameAR, &c.CompanyNameEN, &c.SubscriptionTier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %q: %w", nameAR, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	if client.ID == "" {
		client.ID = xid.New("cl")
	}
	if client.SubscriptionTier == "" {
		client.SubscriptionTier = domain.TierDefault
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, company_name_ar, company_name_en, subscription_tier)
		VALUES ($1,$2,$3,$4)
	`, client.ID, client.CompanyNameAR, nullIfEmpty(client.CompanyNameEN), client.SubscriptionTier)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanSession(row rowScanner) (*domain.CashSession, error) {
	var sess domain.CashSession
	var closedAt sql.NullTime
	err := row.Scan(&sess.ID, &sess.EmployeeID, &sess.WarehouseID, &sess.OpeningCashCents,
		&sess.OpenedAt, &closedAt, &sess.ClosingCashDeclaredCents, &sess.ClosingNote)
	if err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		sess.ClosedAt = &t
	}
	return &sess, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
