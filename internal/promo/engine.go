// Package promo evaluates active promotions against a set of invoice
// lines. Evaluation is pure and idempotent: it never mutates the lines it
// is given, and running it twice over the same input yields the same
// discounts and the same gifts.
package promo

import (
	"math"
	"time"

	"ba9alino/backend/internal/domain"
)

// Gift is a free line a promotion grants. The caller materializes it as an
// invoice line priced at zero and tagged with the promotion ID.
type Gift struct {
	PromotionID string
	ProductID   string
	Quantity    float64
}

// Result is the combined effect of every promotion that matched. Discounts
// are additive across promotions; gifts are deduplicated per promotion.
type Result struct {
	DiscountCents int64
	Gifts         []Gift
}

// Apply evaluates promos against lines at the given instant. Deleted lines
// and gift lines never count toward thresholds or discount bases.
func Apply(lines []domain.InvoiceLine, promos []domain.Promotion, now time.Time) Result {
	var res Result
	granted := make(map[string]bool)

	for _, p := range promos {
		if !p.ActiveAt(now) {
			continue
		}
		qty, valueCents := matchedTotals(lines, p)
		if p.MinQuantity > 0 && qty < p.MinQuantity {
			continue
		}
		if qty == 0 {
			continue
		}

		switch p.Type {
		case domain.PromotionDiscount:
			if p.DiscountPercent > 0 {
				res.DiscountCents += percentOf(valueCents, p.DiscountPercent)
			}
		case domain.PromotionGift:
			if p.GiftProductID == "" || granted[p.ID] {
				continue
			}
			giftQty := p.GiftQuantity
			if giftQty <= 0 {
				// Unset gift quantity means one free item.
				giftQty = 1
			}
			granted[p.ID] = true
			res.Gifts = append(res.Gifts, Gift{
				PromotionID: p.ID,
				ProductID:   p.GiftProductID,
				Quantity:    giftQty,
			})
		}
	}
	return res
}

// matchedTotals sums the quantity and line value the promotion applies to.
// Global promotions match the whole sellable cart; product promotions match
// lines of that product, optionally narrowed to one unit type.
func matchedTotals(lines []domain.InvoiceLine, p domain.Promotion) (float64, int64) {
	var qty float64
	var cents int64
	for _, line := range lines {
		if line.Deleted || line.IsGift {
			continue
		}
		if p.Scope == domain.ScopeProduct {
			if line.ProductID != p.ProductID {
				continue
			}
			if p.UnitType != "" && line.UnitType != p.UnitType {
				continue
			}
		}
		qty += line.Quantity
		cents += line.LineTotalCents
	}
	return qty, cents
}

func percentOf(cents int64, percent float64) int64 {
	return int64(math.Round(float64(cents) * percent / 100))
}
