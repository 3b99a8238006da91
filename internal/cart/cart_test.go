package cart

import (
	"math"
	"math/rand"
	"testing"

	"ba9alino/backend/internal/domain"
	"ba9alino/backend/internal/promo"
)

func newLine(productID, variantID string, qty float64, unitCents int64) domain.InvoiceLine {
	return domain.InvoiceLine{
		ProductID:      productID,
		VariantID:      variantID,
		NameAR:         productID,
		UnitType:       domain.UnitPiece,
		Quantity:       qty,
		UnitPriceCents: unitCents,
	}
}

func TestAddLineMergesSameProductVariant(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	id1 := c.AddLine(newLine("prod-1", "var-1", 1, 500))
	id2 := c.AddLine(newLine("prod-1", "var-1", 2, 500))

	if id1 != id2 {
		t.Fatalf("expected merge into one line, got %s and %s", id1, id2)
	}
	inv := c.Snapshot()
	if len(inv.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(inv.Lines))
	}
	if inv.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %v", inv.Lines[0].Quantity)
	}
	if inv.SubtotalCents != 1500 {
		t.Fatalf("expected subtotal 1500, got %d", inv.SubtotalCents)
	}
}

func TestAddLineRevivesDeletedLine(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	id := c.AddLine(newLine("prod-1", "", 5, 1000))
	if !c.RemoveLine(id) {
		t.Fatal("remove failed")
	}
	if c.Snapshot().SubtotalCents != 0 {
		t.Fatal("deleted line still counted")
	}

	again := c.AddLine(newLine("prod-1", "", 1, 1000))
	if again != id {
		t.Fatalf("expected revival of %s, got new line %s", id, again)
	}
	inv := c.Snapshot()
	if inv.Lines[0].Deleted {
		t.Fatal("line still marked deleted")
	}
	if inv.Lines[0].Quantity != 1 {
		t.Fatalf("revived line should take the new quantity, got %v", inv.Lines[0].Quantity)
	}
}

func TestSetLineQuantityZeroSoftDeletes(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	id := c.AddLine(newLine("prod-1", "", 2, 750))

	c.SetLineQuantity(id, 0)
	inv := c.Snapshot()
	if !inv.Lines[0].Deleted {
		t.Fatal("expected soft delete at quantity 0")
	}
	if inv.SubtotalCents != 0 {
		t.Fatalf("expected subtotal 0, got %d", inv.SubtotalCents)
	}

	c.RestoreLine(id)
	if got := c.Snapshot().SubtotalCents; got != 750 {
		t.Fatalf("expected subtotal 750 after restore, got %d", got)
	}
}

func TestRestoreLineResetsQuantity(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	id := c.AddLine(newLine("prod-1", "", 5, 1000))

	c.RemoveLine(id)
	c.RestoreLine(id)

	inv := c.Snapshot()
	if inv.Lines[0].Deleted {
		t.Fatal("line still marked deleted")
	}
	if inv.Lines[0].Quantity != 1 {
		t.Fatalf("restored line must reset to quantity 1, got %v", inv.Lines[0].Quantity)
	}
	if inv.SubtotalCents != 1000 {
		t.Fatalf("expected subtotal 1000, got %d", inv.SubtotalCents)
	}
}

func TestToggleGiftZeroesLineTotal(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	id := c.AddLine(newLine("prod-1", "", 2, 1000))

	c.ToggleGift(id)
	inv := c.Snapshot()
	if inv.SubtotalCents != 0 || inv.Lines[0].LineTotalCents != 0 {
		t.Fatalf("gift line must total 0, got subtotal %d", inv.SubtotalCents)
	}

	c.ToggleGift(id)
	if got := c.Snapshot().SubtotalCents; got != 2000 {
		t.Fatalf("expected subtotal 2000 after toggling back, got %d", got)
	}
}

func TestInvoiceDiscountAndStatus(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	c.AddLine(newLine("prod-1", "", 4, 2000))
	c.SetInvoiceDiscount(10)
	c.SetPaidAmount(7200)

	inv := c.Snapshot()
	if inv.SubtotalCents != 8000 {
		t.Fatalf("expected subtotal 8000, got %d", inv.SubtotalCents)
	}
	if inv.DiscountCents != 800 {
		t.Fatalf("expected discount 800, got %d", inv.DiscountCents)
	}
	if inv.TotalCents != 7200 {
		t.Fatalf("expected total 7200, got %d", inv.TotalCents)
	}
	if inv.RemainingCents != 0 {
		t.Fatalf("expected remaining 0, got %d", inv.RemainingCents)
	}
	if got := c.SettledStatus(); got != domain.InvoicePaid {
		t.Fatalf("expected status paid, got %s", got)
	}
}

func TestSettledStatusPartialAndCredit(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	c.AddLine(newLine("prod-1", "", 1, 5000))

	c.SetPaidAmount(0)
	if got := c.SettledStatus(); got != domain.InvoiceCredit {
		t.Fatalf("expected credit, got %s", got)
	}

	c.SetPaidAmount(2000)
	if got := c.SettledStatus(); got != domain.InvoicePartial {
		t.Fatalf("expected partial, got %s", got)
	}
	if got := c.Snapshot().RemainingCents; got != 3000 {
		t.Fatalf("expected remaining 3000, got %d", got)
	}

	c.SetPaidAmount(5000)
	if got := c.SettledStatus(); got != domain.InvoicePaid {
		t.Fatalf("expected paid, got %s", got)
	}
}

func TestSetClientReprices(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	c.AddLine(newLine("prod-1", "", 2, 1000))

	client := &domain.Client{ID: "cl-1", CompanyNameAR: "شركة النور", SubscriptionTier: domain.TierA}
	c.SetClient(client, func(l domain.InvoiceLine) int64 { return 900 })

	inv := c.Snapshot()
	if inv.ClientID != "cl-1" || inv.ClientNameAR != "شركة النور" {
		t.Fatalf("client not attached: %+v", inv)
	}
	if inv.SubtotalCents != 1800 {
		t.Fatalf("expected repriced subtotal 1800, got %d", inv.SubtotalCents)
	}

	c.SetClient(nil, func(l domain.InvoiceLine) int64 { return 1000 })
	inv = c.Snapshot()
	if inv.ClientID != "" || inv.SubtotalCents != 2000 {
		t.Fatalf("expected detached walk-in pricing, got %+v", inv)
	}
}

func TestApplyPromoResultReconcilesGifts(t *testing.T) {
	c := New("sess-1", "emp-1", "wh-1")
	c.AddLine(newLine("prod-1", "", 10, 1000))

	res := promo.Result{
		DiscountCents: 500,
		Gifts:         []promo.Gift{{PromotionID: "promo-g", ProductID: "prod-9", Quantity: 1}},
	}
	nameFor := func(id string) string { return "هدية" }

	c.ApplyPromoResult(res, nameFor)
	inv := c.Snapshot()
	if inv.DiscountCents != 500 {
		t.Fatalf("expected promo discount 500, got %d", inv.DiscountCents)
	}
	gifts := 0
	for _, l := range inv.Lines {
		if l.IsGift && l.PromotionID == "promo-g" {
			gifts++
		}
	}
	if gifts != 1 {
		t.Fatalf("expected 1 gift line, got %d", gifts)
	}

	// Re-applying the same result must not duplicate the gift.
	c.ApplyPromoResult(res, nameFor)
	gifts = 0
	for _, l := range c.Snapshot().Lines {
		if l.IsGift && l.PromotionID == "promo-g" {
			gifts++
		}
	}
	if gifts != 1 {
		t.Fatalf("expected gift to stay deduplicated, got %d", gifts)
	}

	// A result without the gift drops the stale gift line.
	c.ApplyPromoResult(promo.Result{}, nameFor)
	inv = c.Snapshot()
	if inv.DiscountCents != 0 {
		t.Fatalf("expected promo discount cleared, got %d", inv.DiscountCents)
	}
	for _, l := range inv.Lines {
		if l.IsGift && l.PromotionID == "promo-g" {
			t.Fatal("stale gift line survived")
		}
	}
}

// TestRandomMutationsKeepTotalsConsistent hammers the cart with arbitrary
// edits and checks the derived figures after every step.
func TestRandomMutationsKeepTotalsConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := New("sess-1", "emp-1", "wh-1")
	var ids []string

	check := func() {
		inv := c.Snapshot()
		var want int64
		for _, l := range inv.Lines {
			if l.Deleted || l.IsGift {
				if l.LineTotalCents != 0 {
					t.Fatalf("inert line with nonzero total: %+v", l)
				}
				continue
			}
			gross := float64(l.UnitPriceCents) * l.Quantity
			expect := int64(math.Round(gross * (1 - l.DiscountPercent/100)))
			if l.LineTotalCents != expect {
				t.Fatalf("line total %d, expected %d: %+v", l.LineTotalCents, expect, l)
			}
			want += l.LineTotalCents
		}
		if inv.SubtotalCents != want {
			t.Fatalf("subtotal %d, expected %d", inv.SubtotalCents, want)
		}
		if inv.TotalCents != inv.SubtotalCents-inv.DiscountCents {
			t.Fatalf("total %d != subtotal %d - discount %d", inv.TotalCents, inv.SubtotalCents, inv.DiscountCents)
		}
		if inv.DiscountCents < 0 || inv.DiscountCents > inv.SubtotalCents {
			t.Fatalf("discount out of range: %d of %d", inv.DiscountCents, inv.SubtotalCents)
		}
		if inv.RemainingCents < 0 {
			t.Fatalf("negative remaining: %d", inv.RemainingCents)
		}
	}

	for i := 0; i < 500; i++ {
		switch rng.Intn(7) {
		case 0:
			product := []string{"p1", "p2", "p3"}[rng.Intn(3)]
			id := c.AddLine(newLine(product, "", float64(1+rng.Intn(5)), int64(100+rng.Intn(5000))))
			ids = append(ids, id)
		case 1:
			if len(ids) > 0 {
				c.SetLineQuantity(ids[rng.Intn(len(ids))], float64(rng.Intn(10)))
			}
		case 2:
			if len(ids) > 0 {
				c.RemoveLine(ids[rng.Intn(len(ids))])
			}
		case 3:
			if len(ids) > 0 {
				c.RestoreLine(ids[rng.Intn(len(ids))])
			}
		case 4:
			if len(ids) > 0 {
				c.ToggleGift(ids[rng.Intn(len(ids))])
			}
		case 5:
			if len(ids) > 0 {
				c.SetLineDiscount(ids[rng.Intn(len(ids))], float64(rng.Intn(120)-10))
			}
		case 6:
			c.SetInvoiceDiscount(float64(rng.Intn(120) - 10))
		}
		check()
	}
}
