// Package memory is the in-process store used for dev/demo mode and for
// service tests. It is seeded with a small Moroccan grocery catalog so the
// terminal is usable without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ba9alino/backend/internal/domain"
	"ba9alino/backend/internal/store"
	"ba9alino/backend/internal/xid"
)

type Store struct {
	mu               sync.RWMutex
	products         map[string]domain.Product
	variantsByProd   map[string][]domain.ProductVariant
	stock            map[string]map[string]float64 // warehouse -> product -> qty
	promosByID       map[string]domain.Promotion
	invoicesByID     map[string]domain.Invoice
	invoiceNumbers   map[string]string // number -> invoice id
	paymentsByID     map[string]domain.Payment
	sessionsByID     map[string]domain.CashSession
	openSessionByKey map[string]string // employee|warehouse -> session id
	reports          map[string]domain.ReconciliationReport
	clientsByID      map[string]domain.Client
}

func sessionKey(employeeID, warehouseID string) string {
	return employeeID + "|" + warehouseID
}

// NewSeeded builds a store pre-loaded with products, variants, tier prices,
// clients, promotions and opening stock in the main warehouse.
func NewSeeded() *Store {
	products := []domain.Product{
		{ID: "prod-atay", SKU: "SKU-ATAY-01", NameAR: "أتاي سلطان", BasePriceCents: 2400,
			Prices: domain.TierPrices{A: 2100, B: 2200, C: 2300, D: 2350, E: 2400}, Active: true},
		{ID: "prod-sukkar", SKU: "SKU-SUKKAR-01", NameAR: "سكر سنيدة 1كغ", BasePriceCents: 1250,
			Prices: domain.TierPrices{A: 1100, B: 1150, C: 1200, E: 1250}, Active: true},
		{ID: "prod-zit", SKU: "SKU-ZIT-01", NameAR: "زيت المائدة 1ل", BasePriceCents: 1700,
			Prices: domain.TierPrices{A: 1500, E: 1700}, Active: true},
		{ID: "prod-dgig", SKU: "SKU-DGIG-01", NameAR: "دقيق فورس 1كغ", BasePriceCents: 650,
			Prices: domain.TierPrices{E: 650}, Active: true},
		{ID: "prod-hlib", SKU: "SKU-HLIB-01", NameAR: "حليب نصف لتر", BasePriceCents: 380,
			Prices: domain.TierPrices{A: 340, B: 350, C: 360, D: 370, E: 380}, Active: true},
		{ID: "prod-ma", SKU: "SKU-MA-01", NameAR: "ماء معدني 1.5ل", BasePriceCents: 550,
			Prices: domain.TierPrices{E: 550}, Active: true},
	}

	variants := map[string][]domain.ProductVariant{
		"prod-hlib": {
			{ID: "var-hlib-unit", ProductID: "prod-hlib", Name: "وحدة", UnitType: domain.UnitPiece,
				QuantityContained: 1, IsDefault: true, Active: true},
			{ID: "var-hlib-carton", ProductID: "prod-hlib", Name: "كرطونة 12", UnitType: domain.UnitCarton,
				QuantityContained: 12, Prices: domain.TierPrices{A: 3900, E: 4300}, Active: true},
		},
		"prod-ma": {
			{ID: "var-ma-unit", ProductID: "prod-ma", Name: "وحدة", UnitType: domain.UnitPiece,
				QuantityContained: 1, IsDefault: true, Active: true},
			{ID: "var-ma-carton", ProductID: "prod-ma", Name: "كرطونة 6", UnitType: domain.UnitCarton,
				QuantityContained: 6, Prices: domain.TierPrices{E: 3000}, Active: true},
		},
	}

	promos := map[string]domain.Promotion{
		"promo-sukkar": {
			ID: "promo-sukkar", Name: "تخفيض السكر", Type: domain.PromotionDiscount,
			Scope: domain.ScopeProduct, ProductID: "prod-sukkar",
			MinQuantity: 5, DiscountPercent: 10, Active: true,
		},
		"promo-atay-gift": {
			ID: "promo-atay-gift", Name: "هدية أتاي", Type: domain.PromotionGift,
			Scope: domain.ScopeProduct, ProductID: "prod-atay",
			MinQuantity: 10, GiftProductID: "prod-sukkar", GiftQuantity: 1, Active: true,
		},
	}

	clients := map[string]domain.Client{
		"cl-nour":   {ID: "cl-nour", CompanyNameAR: "شركة النور", CompanyNameEN: "Nour SARL", SubscriptionTier: domain.TierA},
		"cl-baraka": {ID: "cl-baraka", CompanyNameAR: "محلبة البركة", SubscriptionTier: domain.TierC},
	}

	productMap := make(map[string]domain.Product, len(products))
	stock := map[string]map[string]float64{"wh-main": {}}
	for _, p := range products {
		productMap[p.ID] = p
		stock["wh-main"][p.ID] = 100
	}

	return &Store{
		products:         productMap,
		variantsByProd:   variants,
		stock:            stock,
		promosByID:       promos,
		invoicesByID:     make(map[string]domain.Invoice),
		invoiceNumbers:   make(map[string]string),
		paymentsByID:     make(map[string]domain.Payment),
		sessionsByID:     make(map[string]domain.CashSession),
		openSessionByKey: make(map[string]string),
		reports:          make(map[string]domain.ReconciliationReport),
		clientsByID:      clients,
	}
}

// --- CatalogStore ---

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) GetVariants(_ context.Context, productID string) ([]domain.ProductVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.products[productID]; !ok {
		return nil, fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	out := make([]domain.ProductVariant, len(s.variantsByProd[productID]))
	copy(out, s.variantsByProd[productID])
	return out, nil
}

func (s *Store) GetStock(_ context.Context, productID, warehouseID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wh, ok := s.stock[warehouseID]
	if !ok {
		return 0, nil
	}
	return wh[productID], nil
}

// ApplyStockDelta adjusts stock in base units, clamping at zero. Variants
// that contain multiple base units are converted before the adjustment.
func (s *Store) ApplyStockDelta(_ context.Context, productID, variantID, warehouseID string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	if variantID != "" {
		for _, v := range s.variantsByProd[productID] {
			if v.ID == variantID && v.UnitType.IsContainer() && v.QuantityContained > 0 {
				delta *= v.QuantityContained
				break
			}
		}
	}
	wh, ok := s.stock[warehouseID]
	if !ok {
		wh = make(map[string]float64)
		s.stock[warehouseID] = wh
	}
	next := wh[productID] + delta
	if next < 0 {
		next = 0
	}
	wh[productID] = next
	return nil
}

func (s *Store) ListPromotions(_ context.Context) ([]domain.Promotion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Promotion, 0, len(s.promosByID))
	for _, p := range s.promosByID {
		out = append(out, p)
	}
	return out, nil
}

// --- LedgerStore ---

func (s *Store) CreateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if invoice.Number == "" {
		return nil, fmt.Errorf("invoice number required: %w", store.ErrValidation)
	}
	if _, dup := s.invoiceNumbers[invoice.Number]; dup {
		return nil, fmt.Errorf("invoice number %s: %w", invoice.Number, store.ErrConflict)
	}
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	s.invoicesByID[invoice.ID] = invoice
	s.invoiceNumbers[invoice.Number] = invoice.ID
	return &invoice, nil
}

func (s *Store) CreatePayment(_ context.Context, payment domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.RecordedAt.IsZero() {
		payment.RecordedAt = time.Now().UTC()
	}
	s.paymentsByID[payment.ID] = payment
	return nil
}

func (s *Store) ListInvoices(_ context.Context, sessionID string) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Invoice
	for _, inv := range s.invoicesByID {
		if inv.CashSessionID == sessionID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *Store) ListPayments(_ context.Context, sessionID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Payment
	for _, p := range s.paymentsByID {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) CreateCashSession(_ context.Context, session domain.CashSession) (*domain.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(session.EmployeeID, session.WarehouseID)
	if id, busy := s.openSessionByKey[key]; busy {
		return nil, fmt.Errorf("session %s already open for %s: %w", id, key, store.ErrConflict)
	}
	if session.ID == "" {
		session.ID = xid.New("sess")
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}
	s.sessionsByID[session.ID] = session
	s.openSessionByKey[key] = session.ID
	return &session, nil
}

func (s *Store) GetCashSession(_ context.Context, id string) (*domain.CashSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessionsByID[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return &sess, nil
}

func (s *Store) FindOpenCashSession(_ context.Context, employeeID, warehouseID string) (*domain.CashSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.openSessionByKey[sessionKey(employeeID, warehouseID)]
	if !ok {
		return nil, fmt.Errorf("no open session: %w", store.ErrNotFound)
	}
	sess := s.sessionsByID[id]
	return &sess, nil
}

func (s *Store) CloseCashSession(_ context.Context, id string, declaredCents int64, note string, closedAt time.Time) (*domain.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessionsByID[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	if sess.ClosedAt != nil {
		return nil, fmt.Errorf("session %s already closed: %w", id, store.ErrConflict)
	}
	sess.ClosedAt = &closedAt
	sess.ClosingCashDeclaredCents = declaredCents
	sess.ClosingNote = note
	s.sessionsByID[id] = sess
	delete(s.openSessionByKey, sessionKey(sess.EmployeeID, sess.WarehouseID))
	return &sess, nil
}

func (s *Store) CreateSessionReport(_ context.Context, report domain.ReconciliationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.SessionID] = report
	return nil
}

// SessionReport returns the stored reconciliation report, for tests.
func (s *Store) SessionReport(sessionID string) (domain.ReconciliationReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[sessionID]
	return r, ok
}

func (s *Store) GetClient(_ context.Context, id string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clientsByID[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) FindClientByName(_ context.Context, nameAR string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clientsByID {
		if c.CompanyNameAR == nameAR {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("client %q: %w", nameAR, store.ErrNotFound)
}

func (s *Store) CreateClient(_ context.Context, client domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client.ID == "" {
		client.ID = xid.New("cl")
	}
	s.clientsByID[client.ID] = client
	return &client, nil
}
