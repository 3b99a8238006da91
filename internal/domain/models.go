package domain

import "time"

// Tier is the client pricing category. Each product carries one price
// column per tier; TierDefault is used for walk-in sales with no client.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
	TierE Tier = "E"

	TierDefault = TierE
)

// UnitType is the unit a variant is sold in. Container units carry a
// conversion factor to the base unit in QuantityContained.
type UnitType string

const (
	UnitPiece  UnitType = "unit"
	UnitCarton UnitType = "carton"
	UnitKilo   UnitType = "kilo"
	UnitLitre  UnitType = "litre"
)

func (u UnitType) IsContainer() bool {
	return u == UnitCarton
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCheck        PaymentMethod = "check"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCredit       PaymentMethod = "credit"
)

// NormalizePaymentMethod maps any recognized method onto the closed enum
// and everything else onto cash, matching the settlement normalization of
// the checkout path.
func NormalizePaymentMethod(raw string) PaymentMethod {
	if method := PaymentMethod(raw); IsSupportedPaymentMethod(method) {
		return method
	}
	return PaymentCash
}

func IsSupportedPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentCash, PaymentCheck, PaymentCard, PaymentBankTransfer, PaymentCredit:
		return true
	default:
		return false
	}
}

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceOnHold  InvoiceStatus = "on_hold"
	InvoicePaid    InvoiceStatus = "paid"
	InvoicePartial InvoiceStatus = "partial"
	InvoiceCredit  InvoiceStatus = "credit"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// TierPrices holds the five tier price columns of a product or variant,
// in centimes. A zero value means "no price set for this tier".
type TierPrices struct {
	A int64 `json:"price_a"`
	B int64 `json:"price_b"`
	C int64 `json:"price_c"`
	D int64 `json:"price_d"`
	E int64 `json:"price_e"`
}

func (p TierPrices) ForTier(tier Tier) int64 {
	switch tier {
	case TierA:
		return p.A
	case TierB:
		return p.B
	case TierC:
		return p.C
	case TierD:
		return p.D
	case TierE:
		return p.E
	default:
		return 0
	}
}

type Product struct {
	ID             string     `json:"id"`
	SKU            string     `json:"sku"`
	NameAR         string     `json:"name_ar"`
	CategoryID     string     `json:"category_id,omitempty"`
	BasePriceCents int64      `json:"base_price_cents"`
	Prices         TierPrices `json:"prices"`
	Active         bool       `json:"active"`
}

// ProductVariant is one sale unit of a product (piece, carton of 12, ...).
// QuantityContained is the number of base units one sale unit contains;
// it is 1 for the base unit itself.
type ProductVariant struct {
	ID                string     `json:"id"`
	ProductID         string     `json:"product_id"`
	Name              string     `json:"name"`
	UnitType          UnitType   `json:"unit_type"`
	QuantityContained float64    `json:"quantity_contained"`
	Prices            TierPrices `json:"prices"`
	Barcode           string     `json:"barcode,omitempty"`
	IsDefault         bool       `json:"is_default"`
	Active            bool       `json:"active"`
}

type Client struct {
	ID               string `json:"id"`
	CompanyNameAR    string `json:"company_name_ar"`
	CompanyNameEN    string `json:"company_name_en,omitempty"`
	SubscriptionTier Tier   `json:"subscription_tier,omitempty"`
}

// GeneralClientNameAR is the walk-in client materialized lazily the first
// time a sale settles without a selected client.
const (
	GeneralClientNameAR = "عميل عام"
	GeneralClientNameEN = "General Client"
)

type InvoiceLine struct {
	ID              string   `json:"id"`
	ProductID       string   `json:"product_id"`
	VariantID       string   `json:"variant_id,omitempty"`
	NameAR          string   `json:"name_ar"`
	UnitType        UnitType `json:"unit_type"`
	Quantity        float64  `json:"quantity"`
	UnitPriceCents  int64    `json:"unit_price_cents"`
	DiscountPercent float64  `json:"discount_percent"`
	IsGift          bool     `json:"is_gift"`
	Deleted         bool     `json:"deleted"`
	PromotionID     string   `json:"promotion_id,omitempty"`
	LineTotalCents  int64    `json:"line_total_cents"`
}

type Invoice struct {
	ID              string        `json:"id"`
	Number          string        `json:"invoice_number"`
	Status          InvoiceStatus `json:"status"`
	ClientID        string        `json:"client_id,omitempty"`
	ClientNameAR    string        `json:"client_name_ar,omitempty"`
	CashSessionID   string        `json:"cash_session_id,omitempty"`
	EmployeeID      string        `json:"employee_id,omitempty"`
	WarehouseID     string        `json:"warehouse_id,omitempty"`
	Lines           []InvoiceLine `json:"lines"`
	DiscountPercent float64       `json:"discount_percent"`
	SubtotalCents   int64         `json:"subtotal_cents"`
	DiscountCents   int64         `json:"discount_cents"`
	TotalCents      int64         `json:"total_cents"`
	PaidCents       int64         `json:"paid_cents"`
	RemainingCents  int64         `json:"remaining_cents"`
	CreatedAt       time.Time     `json:"created_at"`
}

type PromotionType string

const (
	PromotionGift     PromotionType = "gift"
	PromotionDiscount PromotionType = "discount"
)

type PromotionScope string

const (
	ScopeGlobal  PromotionScope = "global"
	ScopeProduct PromotionScope = "product"
)

type Promotion struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Type            PromotionType  `json:"type"`
	Scope           PromotionScope `json:"scope"`
	ProductID       string         `json:"product_id,omitempty"`
	MinQuantity     float64        `json:"min_quantity"`
	UnitType        UnitType       `json:"unit_type,omitempty"`
	DiscountPercent float64        `json:"discount_percent,omitempty"`
	GiftProductID   string         `json:"gift_product_id,omitempty"`
	GiftQuantity    float64        `json:"gift_quantity,omitempty"`
	StartsAt        *time.Time     `json:"starts_at,omitempty"`
	EndsAt          *time.Time     `json:"ends_at,omitempty"`
	Active          bool           `json:"is_active"`
}

// ActiveAt reports whether the promotion window contains now. Nil bounds
// are open-ended.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && p.StartsAt.After(now) {
		return false
	}
	if p.EndsAt != nil && p.EndsAt.Before(now) {
		return false
	}
	return true
}

type CashSession struct {
	ID                       string     `json:"id"`
	EmployeeID               string     `json:"employee_id"`
	WarehouseID              string     `json:"warehouse_id"`
	OpeningCashCents         int64      `json:"opening_cash_cents"`
	OpenedAt                 time.Time  `json:"opened_at"`
	ClosedAt                 *time.Time `json:"closed_at,omitempty"`
	ClosingCashDeclaredCents int64      `json:"closing_cash_declared_cents,omitempty"`
	ClosingNote              string     `json:"closing_note,omitempty"`
}

func (s CashSession) Open() bool {
	return s.ClosedAt == nil
}

type Payment struct {
	ID          string        `json:"id"`
	Number      string        `json:"payment_number"`
	InvoiceID   string        `json:"invoice_id"`
	ClientID    string        `json:"client_id,omitempty"`
	AmountCents int64         `json:"amount_cents"`
	Method      PaymentMethod `json:"payment_method"`
	SessionID   string        `json:"cash_session_id"`
	CollectedBy string        `json:"collected_by,omitempty"`
	Status      PaymentStatus `json:"status"`
	RecordedAt  time.Time     `json:"recorded_at"`
}

// SessionSummary is derived from the payments and invoices recorded
// against a session; it is never stored while the session is open.
type SessionSummary struct {
	SessionID         string                  `json:"session_id"`
	OpeningCashCents  int64                   `json:"opening_cash_cents"`
	TotalSalesCents   int64                   `json:"total_sales_cents"`
	TotalByMethod     map[PaymentMethod]int64 `json:"total_by_method"`
	TotalCreditCents  int64                   `json:"total_credit_cents"`
	ExpectedCashCents int64                   `json:"expected_cash_cents"`
}

type ReconciliationReport struct {
	SessionID          string    `json:"session_id"`
	TotalSalesCents    int64     `json:"total_sales_cents"`
	TotalCashCents     int64     `json:"total_cash_cents"`
	TotalCheckCents    int64     `json:"total_check_cents"`
	TotalCardCents     int64     `json:"total_card_cents"`
	TotalTransferCents int64     `json:"total_transfer_cents"`
	TotalCreditCents   int64     `json:"total_credit_cents"`
	ExpectedCashCents  int64     `json:"expected_cash_cents"`
	DeclaredCashCents  int64     `json:"declared_cash_cents"`
	DifferenceCents    int64     `json:"difference_cents"`
	Note               string    `json:"note,omitempty"`
	ClosedAt           time.Time `json:"closed_at"`
}

type OpenSessionRequest struct {
	EmployeeID       string `json:"employee_id"`
	WarehouseID      string `json:"warehouse_id"`
	OpeningCashCents int64  `json:"opening_cash_cents"`
}

type CloseSessionRequest struct {
	SessionID         string `json:"session_id"`
	DeclaredCashCents int64  `json:"declared_cash_cents"`
	Note              string `json:"note"`
}

type AddLineRequest struct {
	SessionID string  `json:"session_id"`
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Quantity  float64 `json:"quantity"`
}

type CheckoutRequest struct {
	SessionID     string        `json:"session_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaidCents     int64         `json:"paid_cents"`
}

// OversellFlag records a deduction that was clamped at zero stock; the
// sale completed anyway and the gap is left for reconciliation.
type OversellFlag struct {
	ProductID   string    `json:"product_id"`
	VariantID   string    `json:"variant_id,omitempty"`
	WarehouseID string    `json:"warehouse_id"`
	Requested   float64   `json:"requested"`
	Available   float64   `json:"available"`
	FlaggedAt   time.Time `json:"flagged_at"`
}
