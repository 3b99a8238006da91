// Package pricing resolves the unit price of a product or variant for a
// client tier. Resolution is pure: the same inputs always produce the same
// price, and a sale is never priced at zero.
package pricing

import "ba9alino/backend/internal/domain"

// DefaultPriceCents is the last-resort unit price when every tier price
// and the base price are zero (10.00 MAD).
const DefaultPriceCents int64 = 1000

// fallbackChains holds, per tier, the order in which tier columns are
// probed. Each chain starts with the requested tier; the remainder is the
// fixed priority order anchored at tier A, except for the walk-in chain
// which is anchored at E.
var fallbackChains = map[domain.Tier][]domain.Tier{
	domain.TierA: {domain.TierA, domain.TierB, domain.TierC, domain.TierD, domain.TierE},
	domain.TierB: {domain.TierB, domain.TierA, domain.TierC, domain.TierD, domain.TierE},
	domain.TierC: {domain.TierC, domain.TierA, domain.TierB, domain.TierD, domain.TierE},
	domain.TierD: {domain.TierD, domain.TierA, domain.TierB, domain.TierC, domain.TierE},
	domain.TierE: {domain.TierE, domain.TierA, domain.TierB, domain.TierC, domain.TierD},
}

// Resolve walks the tier fallback chain over prices, then falls back to
// basePriceCents, then to DefaultPriceCents. An unknown or empty tier
// resolves like tier E (walk-in).
func Resolve(prices domain.TierPrices, basePriceCents int64, tier domain.Tier) int64 {
	chain, ok := fallbackChains[tier]
	if !ok {
		chain = fallbackChains[domain.TierDefault]
	}
	for _, t := range chain {
		if p := prices.ForTier(t); p > 0 {
			return p
		}
	}
	if basePriceCents > 0 {
		return basePriceCents
	}
	return DefaultPriceCents
}

// ForProduct resolves against the product's own tier prices.
func ForProduct(p domain.Product, tier domain.Tier) int64 {
	return Resolve(p.Prices, p.BasePriceCents, tier)
}

// ForVariant resolves against the variant's tier prices, falling back to
// the owning product's prices and base price when the variant has none.
func ForVariant(v domain.ProductVariant, p domain.Product, tier domain.Tier) int64 {
	chain, ok := fallbackChains[tier]
	if !ok {
		chain = fallbackChains[domain.TierDefault]
	}
	for _, t := range chain {
		if price := v.Prices.ForTier(t); price > 0 {
			return price
		}
	}
	return Resolve(p.Prices, p.BasePriceCents, tier)
}
