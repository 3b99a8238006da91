// Package service is the settlement core of the POS. It owns the live cart
// of every open cash session, evaluates pricing and promotions on each
// edit, and runs the checkout and session-close workflows against the
// catalog and ledger stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ba9alino/backend/internal/cache"
	"ba9alino/backend/internal/cart"
	"ba9alino/backend/internal/config"
	"ba9alino/backend/internal/domain"
	"ba9alino/backend/internal/metrics"
	"ba9alino/backend/internal/pricing"
	"ba9alino/backend/internal/promo"
	"ba9alino/backend/internal/store"
	"ba9alino/backend/internal/xid"
)

var (
	// ErrEmptyCart rejects a checkout with no sellable line.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartNotEmpty rejects closing a session whose cart still has live
	// lines; the cashier must settle or hold them first.
	ErrCartNotEmpty = errors.New("cart has unsettled lines")
	// ErrOversell rejects a checkout that exceeds available stock when the
	// oversell policy is "reject".
	ErrOversell = errors.New("insufficient stock")
	// ErrVarianceNote rejects a session close where the declared cash does
	// not match the expected cash and no explanation was given.
	ErrVarianceNote = errors.New("variance note required")
)

// register is the per-session state the service keeps in memory: the live
// cart, the selected client, and invoices parked on hold.
type register struct {
	session domain.CashSession
	cart    *cart.Cart
	client  *domain.Client
	held    map[string]domain.Invoice
}

type Service struct {
	catalog store.CatalogStore
	ledger  store.LedgerStore
	cache   cache.ProductCache
	log     *zap.Logger

	warehouseID    string
	oversellPolicy string
	cacheTTL       time.Duration

	mu        sync.Mutex
	registers map[string]*register

	// newInvoiceNumber is swappable in tests to force number collisions.
	newInvoiceNumber func(time.Time) string
	now              func() time.Time
}

func New(catalog store.CatalogStore, ledger store.LedgerStore, productCache cache.ProductCache, log *zap.Logger, cfg config.Config) *Service {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalog:          catalog,
		ledger:           ledger,
		cache:            productCache,
		log:              log,
		warehouseID:      cfg.DefaultWarehouseID,
		oversellPolicy:   cfg.OversellPolicy,
		cacheTTL:         cfg.CatalogCacheTTL,
		registers:        make(map[string]*register),
		newInvoiceNumber: xid.InvoiceNumber,
		now:              time.Now,
	}
}

// --- cash sessions ---

func (s *Service) OpenCashSession(ctx context.Context, req domain.OpenSessionRequest) (*domain.CashSession, error) {
	if req.EmployeeID == "" {
		return nil, fmt.Errorf("employee_id required: %w", store.ErrValidation)
	}
	if req.WarehouseID == "" {
		req.WarehouseID = s.warehouseID
	}
	if req.OpeningCashCents < 0 {
		return nil, fmt.Errorf("opening cash must not be negative: %w", store.ErrValidation)
	}

	sess, err := s.ledger.CreateCashSession(ctx, domain.CashSession{
		EmployeeID:       req.EmployeeID,
		WarehouseID:      req.WarehouseID,
		OpeningCashCents: req.OpeningCashCents,
		OpenedAt:         s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.registers[sess.ID] = &register{
		session: *sess,
		cart:    cart.New(sess.ID, sess.EmployeeID, sess.WarehouseID),
		held:    make(map[string]domain.Invoice),
	}
	s.mu.Unlock()

	metrics.SessionsOpenedTotal.Inc()
	s.log.Info("cash session opened",
		zap.String("session_id", sess.ID),
		zap.String("employee_id", sess.EmployeeID),
		zap.String("warehouse_id", sess.WarehouseID),
		zap.Int64("opening_cash_cents", sess.OpeningCashCents))
	return sess, nil
}

// register looks up the open session's state. Callers hold s.mu for the
// whole operation, so cart edits are serialized per service.
func (s *Service) register(sessionID string) (*register, error) {
	reg, ok := s.registers[sessionID]
	if !ok {
		return nil, fmt.Errorf("open session %s: %w", sessionID, store.ErrNotFound)
	}
	return reg, nil
}

// --- cart editing ---

func (s *Service) AddLine(ctx context.Context, req domain.AddLineRequest) (*domain.Invoice, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", store.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(req.SessionID)
	if err != nil {
		return nil, err
	}

	snap, err := s.productSnapshot(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !snap.Product.Active {
		// Stop serving the retired snapshot; a reactivation should be
		// visible on the next scan, not after the TTL.
		if err := s.cache.Invalidate(ctx, productCacheKey(req.ProductID)); err != nil {
			s.log.Warn("product cache invalidate failed", zap.String("product_id", req.ProductID), zap.Error(err))
		}
		return nil, fmt.Errorf("product %s is inactive: %w", req.ProductID, store.ErrValidation)
	}

	tier := clientTier(reg.client)
	line := domain.InvoiceLine{
		ProductID:      snap.Product.ID,
		NameAR:         snap.Product.NameAR,
		UnitType:       domain.UnitPiece,
		Quantity:       req.Quantity,
		UnitPriceCents: pricing.ForProduct(snap.Product, tier),
	}

	if variant := pickVariant(snap.Variants, req.VariantID); variant != nil {
		line.VariantID = variant.ID
		line.UnitType = variant.UnitType
		line.UnitPriceCents = pricing.ForVariant(*variant, snap.Product, tier)
		if variant.Name != "" {
			line.NameAR = snap.Product.NameAR + " - " + variant.Name
		}
	} else if req.VariantID != "" {
		return nil, fmt.Errorf("variant %s: %w", req.VariantID, store.ErrNotFound)
	}

	reg.cart.AddLine(line)
	s.refreshPromotions(ctx, reg)
	inv := reg.cart.Snapshot()
	return &inv, nil
}

func (s *Service) SetLineQuantity(ctx context.Context, sessionID, lineID string, qty float64) (*domain.Invoice, error) {
	return s.editLine(ctx, sessionID, lineID, func(c *cart.Cart) bool { return c.SetLineQuantity(lineID, qty) })
}

func (s *Service) RemoveLine(ctx context.Context, sessionID, lineID string) (*domain.Invoice, error) {
	return s.editLine(ctx, sessionID, lineID, func(c *cart.Cart) bool { return c.RemoveLine(lineID) })
}

func (s *Service) RestoreLine(ctx context.Context, sessionID, lineID string) (*domain.Invoice, error) {
	return s.editLine(ctx, sessionID, lineID, func(c *cart.Cart) bool { return c.RestoreLine(lineID) })
}

func (s *Service) ToggleGift(ctx context.Context, sessionID, lineID string) (*domain.Invoice, error) {
	return s.editLine(ctx, sessionID, lineID, func(c *cart.Cart) bool { return c.ToggleGift(lineID) })
}

func (s *Service) SetLineDiscount(ctx context.Context, sessionID, lineID string, percent float64) (*domain.Invoice, error) {
	return s.editLine(ctx, sessionID, lineID, func(c *cart.Cart) bool { return c.SetLineDiscount(lineID, percent) })
}

func (s *Service) editLine(ctx context.Context, sessionID, lineID string, edit func(*cart.Cart) bool) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(sessionID)
	if err != nil {
		return nil, err
	}
	if !edit(reg.cart) {
		return nil, fmt.Errorf("line %s: %w", lineID, store.ErrNotFound)
	}
	s.refreshPromotions(ctx, reg)
	inv := reg.cart.Snapshot()
	return &inv, nil
}

func (s *Service) SetInvoiceDiscount(ctx context.Context, sessionID string, percent float64) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(sessionID)
	if err != nil {
		return nil, err
	}
	reg.cart.SetInvoiceDiscount(percent)
	inv := reg.cart.Snapshot()
	return &inv, nil
}

// SetClient attaches a client to the running sale and reprices every line
// at the client's tier. An empty clientID detaches back to walk-in pricing.
func (s *Service) SetClient(ctx context.Context, sessionID, clientID string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(sessionID)
	if err != nil {
		return nil, err
	}

	var client *domain.Client
	if clientID != "" {
		client, err = s.ledger.GetClient(ctx, clientID)
		if err != nil {
			return nil, err
		}
	}
	reg.client = client

	tier := clientTier(client)
	reg.cart.SetClient(client, func(l domain.InvoiceLine) int64 {
		snap, err := s.productSnapshot(ctx, l.ProductID)
		if err != nil {
			s.log.Warn("reprice lookup failed, keeping old price",
				zap.String("product_id", l.ProductID), zap.Error(err))
			return l.UnitPriceCents
		}
		if v := pickVariant(snap.Variants, l.VariantID); v != nil {
			return pricing.ForVariant(*v, snap.Product, tier)
		}
		return pricing.ForProduct(snap.Product, tier)
	})
	s.refreshPromotions(ctx, reg)
	inv := reg.cart.Snapshot()
	return &inv, nil
}

func (s *Service) Cart(sessionID string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(sessionID)
	if err != nil {
		return nil, err
	}
	inv := reg.cart.Snapshot()
	return &inv, nil
}

// --- hold / resume ---

// HoldCart parks the current draft and starts a fresh one. Held drafts
// live in process memory only, like a drawer of pinned tickets.
func (s *Service) HoldCart(ctx context.Context, sessionID string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(sessionID)
	if err != nil {
		return nil, err
	}
	if reg.cart.Empty() {
		return nil, ErrEmptyCart
	}
	inv := reg.cart.Snapshot()
	inv.Status = domain.InvoiceOnHold
	reg.held[inv.ID] = inv
	reg.cart = cart.New(sessionID, reg.session.EmployeeID, reg.session.WarehouseID)
	reg.client = nil
	s.log.Info("cart held", zap.String("session_id", sessionID), zap.String("invoice_id", inv.ID))
	return &inv, nil
}

func (s *Service) ListHeld(sessionID string) ([]domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(reg.held))
	for _, inv := range reg.held {
		out = append(out, inv)
	}
	return out, nil
}

// ResumeHeld swaps a held draft back into the register. The current cart
// must be empty; hold it first if not.
func (s *Service) ResumeHeld(ctx context.Context, sessionID, invoiceID string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(sessionID)
	if err != nil {
		return nil, err
	}
	held, ok := reg.held[invoiceID]
	if !ok {
		return nil, fmt.Errorf("held invoice %s: %w", invoiceID, store.ErrNotFound)
	}
	if !reg.cart.Empty() {
		return nil, ErrCartNotEmpty
	}
	delete(reg.held, invoiceID)
	reg.cart = cart.Restore(held)
	reg.client = nil
	if held.ClientID != "" {
		if client, err := s.ledger.GetClient(ctx, held.ClientID); err == nil {
			reg.client = client
		}
	}
	s.refreshPromotions(ctx, reg)
	inv := reg.cart.Snapshot()
	return &inv, nil
}

// --- checkout ---

// Checkout settles the running cart. Step 1, writing the invoice, is the
// commit point: once the invoice exists the sale has happened, and the
// payment record and stock deductions that follow are best-effort. A
// failure there is logged for reconciliation, never surfaced as a failed
// sale.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(req.SessionID)
	if err != nil {
		return nil, err
	}
	if reg.cart.Empty() {
		return nil, ErrEmptyCart
	}

	method := domain.NormalizePaymentMethod(string(req.PaymentMethod))
	paid := req.PaidCents
	if method == domain.PaymentCredit {
		paid = 0
	}
	reg.cart.SetPaidAmount(paid)

	if err := s.checkStock(ctx, reg); err != nil {
		return nil, err
	}

	clientID, clientName, err := s.resolveClient(ctx, reg)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	inv := reg.cart.Snapshot()
	inv.Status = reg.cart.SettledStatus()
	inv.ClientID = clientID
	inv.ClientNameAR = clientName
	inv.CreatedAt = now
	inv.Number = s.newInvoiceNumber(now)

	created, err := s.ledger.CreateInvoice(ctx, inv)
	if errors.Is(err, store.ErrConflict) {
		// Second-level timestamps can collide across terminals; one
		// regenerate is enough to disambiguate.
		inv.Number = s.newInvoiceNumber(s.now().UTC())
		s.log.Warn("invoice number collision, regenerated",
			zap.String("session_id", req.SessionID), zap.String("invoice_number", inv.Number))
		created, err = s.ledger.CreateInvoice(ctx, inv)
	}
	if err != nil {
		return nil, err
	}

	s.recordPayment(ctx, reg, created, method, now)
	s.deductStock(ctx, reg, created)

	metrics.CheckoutsTotal.WithLabelValues(string(method)).Inc()
	metrics.CheckoutAmountCents.WithLabelValues(string(method)).Add(float64(created.TotalCents))
	if created.DiscountCents > 0 {
		metrics.PromoDiscountCents.Add(float64(created.DiscountCents))
	}
	s.log.Info("checkout settled",
		zap.String("session_id", req.SessionID),
		zap.String("invoice_id", created.ID),
		zap.String("invoice_number", created.Number),
		zap.String("status", string(created.Status)),
		zap.Int64("total_cents", created.TotalCents),
		zap.Int64("paid_cents", created.PaidCents))

	reg.cart = cart.New(req.SessionID, reg.session.EmployeeID, reg.session.WarehouseID)
	reg.client = nil
	return created, nil
}

// checkStock aggregates the required base units per product and compares
// against the warehouse. Under the "allow" policy a shortfall is flagged
// and the sale proceeds; under "reject" it fails the checkout.
func (s *Service) checkStock(ctx context.Context, reg *register) error {
	required := make(map[string]float64)
	for _, l := range reg.cart.Lines() {
		if l.Deleted || l.IsGift {
			continue
		}
		units, err := s.baseUnits(ctx, l)
		if err != nil {
			return err
		}
		required[l.ProductID] += units
	}

	for productID, need := range required {
		have, err := s.catalog.GetStock(ctx, productID, reg.session.WarehouseID)
		if err != nil {
			return err
		}
		if have >= need {
			continue
		}
		if s.oversellPolicy == config.OversellReject {
			return fmt.Errorf("product %s: need %v, have %v: %w", productID, need, have, ErrOversell)
		}
		metrics.OversellFlagsTotal.Inc()
		flag := domain.OversellFlag{
			ProductID:   productID,
			WarehouseID: reg.session.WarehouseID,
			Requested:   need,
			Available:   have,
			FlaggedAt:   s.now().UTC(),
		}
		s.log.Warn("oversell flagged",
			zap.String("product_id", flag.ProductID),
			zap.String("warehouse_id", flag.WarehouseID),
			zap.Float64("requested", flag.Requested),
			zap.Float64("available", flag.Available))
	}
	return nil
}

func (s *Service) baseUnits(ctx context.Context, l domain.InvoiceLine) (float64, error) {
	if l.VariantID == "" {
		return l.Quantity, nil
	}
	snap, err := s.productSnapshot(ctx, l.ProductID)
	if err != nil {
		return 0, err
	}
	if v := pickVariant(snap.Variants, l.VariantID); v != nil && v.UnitType.IsContainer() && v.QuantityContained > 0 {
		return l.Quantity * v.QuantityContained, nil
	}
	return l.Quantity, nil
}

// resolveClient returns the invoice's client, lazily materializing the
// walk-in "general client" record on first use.
func (s *Service) resolveClient(ctx context.Context, reg *register) (string, string, error) {
	if reg.client != nil {
		return reg.client.ID, reg.client.CompanyNameAR, nil
	}
	found, err := s.ledger.FindClientByName(ctx, domain.GeneralClientNameAR)
	if err == nil {
		return found.ID, found.CompanyNameAR, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", "", err
	}
	created, err := s.ledger.CreateClient(ctx, domain.Client{
		CompanyNameAR:    domain.GeneralClientNameAR,
		CompanyNameEN:    domain.GeneralClientNameEN,
		SubscriptionTier: domain.TierDefault,
	})
	if err != nil {
		return "", "", err
	}
	return created.ID, created.CompanyNameAR, nil
}

func (s *Service) recordPayment(ctx context.Context, reg *register, inv *domain.Invoice, method domain.PaymentMethod, now time.Time) {
	amount := inv.PaidCents
	if amount <= 0 {
		return
	}
	if amount > inv.TotalCents {
		amount = inv.TotalCents
	}
	payment := domain.Payment{
		ID:          uuid.NewString(),
		Number:      xid.PaymentNumber(now),
		InvoiceID:   inv.ID,
		ClientID:    inv.ClientID,
		AmountCents: amount,
		Method:      method,
		SessionID:   reg.session.ID,
		CollectedBy: reg.session.EmployeeID,
		Status:      domain.PaymentCompleted,
		RecordedAt:  now,
	}
	if err := s.ledger.CreatePayment(ctx, payment); err != nil {
		s.log.Error("payment record failed after invoice commit",
			zap.String("invoice_id", inv.ID), zap.Error(err))
	}
}

// deductStock removes sold quantities from inventory. Only sold lines
// consume tracked stock; gift lines are excluded.
func (s *Service) deductStock(ctx context.Context, reg *register, inv *domain.Invoice) {
	for _, l := range inv.Lines {
		if l.Deleted || l.IsGift {
			continue
		}
		err := s.catalog.ApplyStockDelta(ctx, l.ProductID, l.VariantID, reg.session.WarehouseID, -l.Quantity)
		if err != nil {
			s.log.Error("stock deduction failed after invoice commit",
				zap.String("invoice_id", inv.ID),
				zap.String("product_id", l.ProductID),
				zap.Error(err))
		}
	}
}

// --- session summary / close ---

// SessionSummary derives the running totals of a session from its recorded
// invoices and payments. Nothing is read from stored aggregates, so the
// summary is always consistent with the ledger.
func (s *Service) SessionSummary(ctx context.Context, sessionID string) (*domain.SessionSummary, error) {
	sess, err := s.ledger.GetCashSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.ledger.ListInvoices(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	payments, err := s.ledger.ListPayments(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sum := &domain.SessionSummary{
		SessionID:        sessionID,
		OpeningCashCents: sess.OpeningCashCents,
		TotalByMethod:    make(map[domain.PaymentMethod]int64),
	}
	for _, inv := range invoices {
		sum.TotalSalesCents += inv.TotalCents
		sum.TotalCreditCents += inv.RemainingCents
	}
	for _, p := range payments {
		if p.Status != domain.PaymentCompleted {
			continue
		}
		sum.TotalByMethod[p.Method] += p.AmountCents
	}
	sum.ExpectedCashCents = sess.OpeningCashCents + sum.TotalByMethod[domain.PaymentCash]
	return sum, nil
}

// CloseCashSession reconciles and closes a session. A declared drawer that
// differs from the expected cash requires a note explaining the variance.
func (s *Service) CloseCashSession(ctx context.Context, req domain.CloseSessionRequest) (*domain.ReconciliationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.register(req.SessionID)
	if err != nil {
		return nil, err
	}
	if !reg.cart.Empty() {
		return nil, ErrCartNotEmpty
	}

	sum, err := s.SessionSummary(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	diff := req.DeclaredCashCents - sum.ExpectedCashCents
	if diff != 0 && req.Note == "" {
		return nil, fmt.Errorf("declared %d vs expected %d: %w",
			req.DeclaredCashCents, sum.ExpectedCashCents, ErrVarianceNote)
	}

	closedAt := s.now().UTC()
	if _, err := s.ledger.CloseCashSession(ctx, req.SessionID, req.DeclaredCashCents, req.Note, closedAt); err != nil {
		return nil, err
	}

	report := domain.ReconciliationReport{
		SessionID:          req.SessionID,
		TotalSalesCents:    sum.TotalSalesCents,
		TotalCashCents:     sum.TotalByMethod[domain.PaymentCash],
		TotalCheckCents:    sum.TotalByMethod[domain.PaymentCheck],
		TotalCardCents:     sum.TotalByMethod[domain.PaymentCard],
		TotalTransferCents: sum.TotalByMethod[domain.PaymentBankTransfer],
		TotalCreditCents:   sum.TotalCreditCents,
		ExpectedCashCents:  sum.ExpectedCashCents,
		DeclaredCashCents:  req.DeclaredCashCents,
		DifferenceCents:    diff,
		Note:               req.Note,
		ClosedAt:           closedAt,
	}
	if err := s.ledger.CreateSessionReport(ctx, report); err != nil {
		s.log.Error("session report write failed after close",
			zap.String("session_id", req.SessionID), zap.Error(err))
	}

	delete(s.registers, req.SessionID)

	metrics.SessionsClosedTotal.Inc()
	s.log.Info("cash session closed",
		zap.String("session_id", req.SessionID),
		zap.Int64("expected_cash_cents", report.ExpectedCashCents),
		zap.Int64("declared_cash_cents", report.DeclaredCashCents),
		zap.Int64("difference_cents", report.DifferenceCents))
	return &report, nil
}

// --- helpers ---

func productCacheKey(productID string) string {
	return "product:" + productID
}

func (s *Service) productSnapshot(ctx context.Context, productID string) (*cache.ProductSnapshot, error) {
	key := productCacheKey(productID)
	if snap, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return snap, nil
	} else if err != nil {
		s.log.Warn("product cache read failed", zap.String("product_id", productID), zap.Error(err))
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	variants, err := s.catalog.GetVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	snap := &cache.ProductSnapshot{Product: *product, Variants: variants}
	if err := s.cache.Set(ctx, key, snap, s.cacheTTL); err != nil {
		s.log.Warn("product cache write failed", zap.String("product_id", productID), zap.Error(err))
	}
	return snap, nil
}

func (s *Service) refreshPromotions(ctx context.Context, reg *register) {
	promos, err := s.catalog.ListPromotions(ctx)
	if err != nil {
		s.log.Warn("promotion list failed, keeping previous result", zap.Error(err))
		return
	}
	res := promo.Apply(reg.cart.Lines(), promos, s.now())
	reg.cart.ApplyPromoResult(res, func(productID string) string {
		snap, err := s.productSnapshot(ctx, productID)
		if err != nil {
			return ""
		}
		return snap.Product.NameAR
	})
}

// pickVariant selects by ID, or the default variant when no ID was given.
func pickVariant(variants []domain.ProductVariant, variantID string) *domain.ProductVariant {
	for i := range variants {
		v := &variants[i]
		if variantID != "" {
			if v.ID == variantID && v.Active {
				return v
			}
			continue
		}
		if v.IsDefault && v.Active {
			return v
		}
	}
	return nil
}

func clientTier(c *domain.Client) domain.Tier {
	if c == nil || c.SubscriptionTier == "" {
		return domain.TierDefault
	}
	return c.SubscriptionTier
}
