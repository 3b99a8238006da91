// Package cart holds the in-progress invoice of an open cash session. All
// mutations run a full recompute of the derived totals, so the aggregate is
// always internally consistent: callers never patch totals by hand.
//
// A Cart is not safe for concurrent use; the owning service serializes
// access per session.
package cart

import (
	"math"
	"time"

	"ba9alino/backend/internal/domain"
	"ba9alino/backend/internal/promo"
	"ba9alino/backend/internal/xid"
)

type Cart struct {
	inv                domain.Invoice
	promoDiscountCents int64
}

// New starts an empty draft for the given session.
func New(sessionID, employeeID, warehouseID string) *Cart {
	return &Cart{inv: domain.Invoice{
		ID:            xid.New("inv"),
		Status:        domain.InvoiceDraft,
		CashSessionID: sessionID,
		EmployeeID:    employeeID,
		WarehouseID:   warehouseID,
		CreatedAt:     time.Now(),
	}}
}

// Restore rebuilds a cart from a previously held invoice snapshot.
func Restore(inv domain.Invoice) *Cart {
	c := &Cart{inv: inv}
	c.inv.Status = domain.InvoiceDraft
	c.recompute()
	return c
}

// AddLine merges the given line into the cart. A live line for the same
// product and variant has its quantity incremented; a soft-deleted match is
// revived with the incoming quantity. Gift lines are never merged into.
func (c *Cart) AddLine(line domain.InvoiceLine) string {
	for i := range c.inv.Lines {
		l := &c.inv.Lines[i]
		if l.IsGift || l.ProductID != line.ProductID || l.VariantID != line.VariantID {
			continue
		}
		if l.Deleted {
			l.Deleted = false
			l.Quantity = line.Quantity
		} else {
			l.Quantity += line.Quantity
		}
		c.recompute()
		return l.ID
	}
	line.ID = xid.New("line")
	c.inv.Lines = append(c.inv.Lines, line)
	c.recompute()
	return line.ID
}

// SetLineQuantity changes a line's quantity; zero or negative soft-deletes
// the line instead of removing it, so it can be restored.
func (c *Cart) SetLineQuantity(lineID string, qty float64) bool {
	l := c.find(lineID)
	if l == nil {
		return false
	}
	if qty <= 0 {
		l.Deleted = true
	} else {
		l.Quantity = qty
		l.Deleted = false
	}
	c.recompute()
	return true
}

// RemoveLine soft-deletes the line.
func (c *Cart) RemoveLine(lineID string) bool {
	l := c.find(lineID)
	if l == nil {
		return false
	}
	l.Deleted = true
	c.recompute()
	return true
}

// RestoreLine undoes a soft delete. The restored line comes back with
// quantity 1; the cashier re-enters the amount rather than inheriting a
// stale count.
func (c *Cart) RestoreLine(lineID string) bool {
	l := c.find(lineID)
	if l == nil {
		return false
	}
	l.Deleted = false
	l.Quantity = 1
	c.recompute()
	return true
}

// ToggleGift flips a line between sold and free. A gift line keeps its
// unit price for display but contributes nothing to the subtotal.
func (c *Cart) ToggleGift(lineID string) bool {
	l := c.find(lineID)
	if l == nil {
		return false
	}
	l.IsGift = !l.IsGift
	c.recompute()
	return true
}

// SetLineDiscount sets a per-line percentage discount, clamped to [0,100].
func (c *Cart) SetLineDiscount(lineID string, percent float64) bool {
	l := c.find(lineID)
	if l == nil {
		return false
	}
	l.DiscountPercent = clampPercent(percent)
	c.recompute()
	return true
}

// SetInvoiceDiscount sets the whole-invoice percentage discount.
func (c *Cart) SetInvoiceDiscount(percent float64) {
	c.inv.DiscountPercent = clampPercent(percent)
	c.recompute()
}

// SetPaidAmount records the amount the customer is paying. Negative input
// is treated as zero.
func (c *Cart) SetPaidAmount(cents int64) {
	if cents < 0 {
		cents = 0
	}
	c.inv.PaidCents = cents
	c.recompute()
}

// SetClient attaches (or detaches, with nil) a client and reprices every
// live line through priceFor, since tier pricing depends on the client.
func (c *Cart) SetClient(client *domain.Client, priceFor func(l domain.InvoiceLine) int64) {
	if client == nil {
		c.inv.ClientID = ""
		c.inv.ClientNameAR = ""
	} else {
		c.inv.ClientID = client.ID
		c.inv.ClientNameAR = client.CompanyNameAR
	}
	if priceFor != nil {
		for i := range c.inv.Lines {
			l := &c.inv.Lines[i]
			if l.Deleted {
				continue
			}
			l.UnitPriceCents = priceFor(*l)
		}
	}
	c.recompute()
}

// ApplyPromoResult reconciles the cart with a fresh promotion evaluation:
// the promo discount is replaced, stale promo gifts are dropped, and newly
// earned gifts are added. nameFor supplies the display name of a gift
// product; unit type defaults to piece.
func (c *Cart) ApplyPromoResult(res promo.Result, nameFor func(productID string) string) {
	c.promoDiscountCents = res.DiscountCents

	earned := make(map[string]promo.Gift, len(res.Gifts))
	for _, g := range res.Gifts {
		earned[g.PromotionID] = g
	}

	kept := c.inv.Lines[:0]
	for _, l := range c.inv.Lines {
		if l.IsGift && l.PromotionID != "" {
			if _, ok := earned[l.PromotionID]; !ok {
				continue
			}
			delete(earned, l.PromotionID)
		}
		kept = append(kept, l)
	}
	c.inv.Lines = kept

	for _, g := range res.Gifts {
		if _, pending := earned[g.PromotionID]; !pending {
			continue
		}
		name := g.ProductID
		if nameFor != nil {
			if n := nameFor(g.ProductID); n != "" {
				name = n
			}
		}
		c.inv.Lines = append(c.inv.Lines, domain.InvoiceLine{
			ID:          xid.New("line"),
			ProductID:   g.ProductID,
			NameAR:      name,
			UnitType:    domain.UnitPiece,
			Quantity:    g.Quantity,
			IsGift:      true,
			PromotionID: g.PromotionID,
		})
	}
	c.recompute()
}

// Lines returns a copy of every line, deleted ones included.
func (c *Cart) Lines() []domain.InvoiceLine {
	out := make([]domain.InvoiceLine, len(c.inv.Lines))
	copy(out, c.inv.Lines)
	return out
}

// Empty reports whether the cart has no live sellable line.
func (c *Cart) Empty() bool {
	for _, l := range c.inv.Lines {
		if !l.Deleted && !l.IsGift {
			return false
		}
	}
	return true
}

// Snapshot returns the invoice as it stands, with the payment status
// derived from the paid amount: nothing paid is a credit sale, a partial
// amount is partial, covering the total is paid.
func (c *Cart) Snapshot() domain.Invoice {
	inv := c.inv
	inv.Lines = make([]domain.InvoiceLine, len(c.inv.Lines))
	copy(inv.Lines, c.inv.Lines)
	return inv
}

// SettledStatus derives the invoice status for settlement from the paid
// amount against the total.
func (c *Cart) SettledStatus() domain.InvoiceStatus {
	switch {
	case c.inv.PaidCents <= 0 && c.inv.TotalCents > 0:
		return domain.InvoiceCredit
	case c.inv.PaidCents < c.inv.TotalCents:
		return domain.InvoicePartial
	default:
		return domain.InvoicePaid
	}
}

func (c *Cart) find(lineID string) *domain.InvoiceLine {
	for i := range c.inv.Lines {
		if c.inv.Lines[i].ID == lineID {
			return &c.inv.Lines[i]
		}
	}
	return nil
}

// recompute rebuilds every derived figure from the lines. Gift and deleted
// lines total zero; the combined discount never exceeds the subtotal.
func (c *Cart) recompute() {
	var subtotal int64
	for i := range c.inv.Lines {
		l := &c.inv.Lines[i]
		if l.Deleted || l.IsGift {
			l.LineTotalCents = 0
			continue
		}
		gross := float64(l.UnitPriceCents) * l.Quantity
		l.LineTotalCents = int64(math.Round(gross * (1 - l.DiscountPercent/100)))
		subtotal += l.LineTotalCents
	}

	discount := int64(math.Round(float64(subtotal)*c.inv.DiscountPercent/100)) + c.promoDiscountCents
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}

	c.inv.SubtotalCents = subtotal
	c.inv.DiscountCents = discount
	c.inv.TotalCents = subtotal - discount

	remaining := c.inv.TotalCents - c.inv.PaidCents
	if remaining < 0 {
		remaining = 0
	}
	c.inv.RemainingCents = remaining
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
