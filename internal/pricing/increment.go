// Package pricing holds the bid increment policy. The minimum step and the
// ceiling of a bid grow with the magnitude of the auction's current price.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Tier is one band of the increment table. A tier applies while the base
// price is below UpperBound; the last tier has a zero UpperBound.
type Tier struct {
	UpperBound   decimal.Decimal
	MinIncrement decimal.Decimal
	Range        decimal.Decimal
}

// Bounds is the accepted window for the next bid, inclusive on both ends
type Bounds struct {
	Base decimal.Decimal
	Min  decimal.Decimal
	Max  decimal.Decimal
}

// Policy computes bid bounds from a tier table
type Policy struct {
	tiers []Tier
}

// DefaultTiers is the marketplace increment table
func DefaultTiers() []Tier {
	return []Tier{
		{UpperBound: decimal.NewFromInt(100_000), MinIncrement: decimal.NewFromInt(10_000), Range: decimal.NewFromInt(50_000)},
		{UpperBound: decimal.NewFromInt(1_000_000), MinIncrement: decimal.NewFromInt(100_000), Range: decimal.NewFromInt(500_000)},
		{UpperBound: decimal.NewFromInt(10_000_000), MinIncrement: decimal.NewFromInt(200_000), Range: decimal.NewFromInt(1_000_000)},
		{MinIncrement: decimal.NewFromInt(1_000_000), Range: decimal.NewFromInt(10_000_000)},
	}
}

// NewPolicy creates a Policy. An empty table falls back to DefaultTiers.
func NewPolicy(tiers []Tier) *Policy {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	return &Policy{tiers: tiers}
}

// BoundsFor returns the bid window given the auction's current and starting
// prices. The base is whichever of the two is larger.
func (p *Policy) BoundsFor(currentPrice, startingPrice float64) Bounds {
	base := decimal.NewFromFloat(currentPrice)
	if starting := decimal.NewFromFloat(startingPrice); starting.GreaterThan(base) {
		base = starting
	}

	tier := p.tiers[len(p.tiers)-1]
	for _, t := range p.tiers {
		if t.UpperBound.IsPositive() && base.LessThan(t.UpperBound) {
			tier = t
			break
		}
	}

	minBid := base.Add(tier.MinIncrement)
	return Bounds{
		Base: base,
		Min:  minBid,
		Max:  minBid.Add(tier.Range),
	}
}

// Check reports whether amount is under, above or inside the window
func (b Bounds) Check(amount float64) Placement {
	a := decimal.NewFromFloat(amount)
	switch {
	case a.LessThan(b.Min):
		return BelowMinimum
	case a.GreaterThan(b.Max):
		return AboveMaximum
	default:
		return Within
	}
}

// MinFloat and MaxFloat expose the bounds for wire payloads
func (b Bounds) MinFloat() float64 { return b.Min.InexactFloat64() }
func (b Bounds) MaxFloat() float64 { return b.Max.InexactFloat64() }

// Placement is the outcome of Bounds.Check
type Placement int

const (
	Within Placement = iota
	BelowMinimum
	AboveMaximum
)
