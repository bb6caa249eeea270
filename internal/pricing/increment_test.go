package pricing

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestBoundsFor_Tiers(t *testing.T) {
	policy := NewPolicy(nil)

	tests := []struct {
		name     string
		current  float64
		starting float64
		wantMin  float64
		wantMax  float64
	}{
		{name: "under_100k", current: 80_000, starting: 50_000, wantMin: 90_000, wantMax: 140_000},
		{name: "exactly_100k", current: 100_000, starting: 0, wantMin: 200_000, wantMax: 700_000},
		{name: "under_1m", current: 999_999, starting: 0, wantMin: 1_099_999, wantMax: 1_599_999},
		{name: "exactly_1m", current: 1_000_000, starting: 0, wantMin: 1_200_000, wantMax: 2_200_000},
		{name: "at_10m", current: 10_000_000, starting: 0, wantMin: 11_000_000, wantMax: 21_000_000},
		{name: "starting_price_dominates", current: 0, starting: 100_000, wantMin: 200_000, wantMax: 700_000},
		{name: "no_price_yet", current: 0, starting: 0, wantMin: 10_000, wantMax: 60_000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := policy.BoundsFor(tc.current, tc.starting)
			check.Equal(t, tc.wantMin, b.MinFloat())
			check.Equal(t, tc.wantMax, b.MaxFloat())
		})
	}
}

func TestBounds_Check(t *testing.T) {
	b := NewPolicy(nil).BoundsFor(80_000, 0)

	check.Equal(t, BelowMinimum, b.Check(89_999))
	check.Equal(t, Within, b.Check(90_000))
	check.Equal(t, Within, b.Check(140_000))
	check.Equal(t, AboveMaximum, b.Check(140_001))
}

func TestNewPolicy_CustomTiers(t *testing.T) {
	policy := NewPolicy([]Tier{
		{MinIncrement: DefaultTiers()[0].MinIncrement, Range: DefaultTiers()[0].Range},
	})

	b := policy.BoundsFor(5_000_000, 0)
	check.Equal(t, 5_010_000.0, b.MinFloat())
	check.Equal(t, 5_060_000.0, b.MaxFloat())
}
