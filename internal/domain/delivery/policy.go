// Package delivery computes the delivery charge for a basket amount.
package delivery

import (
	"sort"

	"github.com/xenking/acme-basket/internal/domain/money"
)

// Tier charges Cost for any amount at or above Threshold.
type Tier struct {
	Threshold money.Money
	Cost      money.Money
}

// Policy is a set of tiers plus a fallback charge for amounts below every
// threshold. It is read-only after construction.
type Policy struct {
	tiers    []Tier
	fallback money.Money
}

// NewPolicy copies tiers and orders them from the highest threshold down.
func NewPolicy(tiers []Tier, fallback money.Money) *Policy {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].Threshold.LessThan(sorted[i].Threshold)
	})

	return &Policy{tiers: sorted, fallback: fallback}
}

// DefaultPolicy is the standard Acme schedule:
// under $50 costs $4.95, under $90 costs $2.95, $90 and above ships free.
func DefaultPolicy() *Policy {
	return NewPolicy([]Tier{
		{Threshold: money.MustParse("50"), Cost: money.MustParse("2.95")},
		{Threshold: money.MustParse("90"), Cost: money.Zero},
	}, money.MustParse("4.95"))
}

// Cost returns the charge for amount. Thresholds are inclusive.
func (p *Policy) Cost(amount money.Money) money.Money {
	for _, t := range p.tiers {
		if amount.GreaterThanOrEqual(t.Threshold) {
			return t.Cost
		}
	}
	return p.fallback
}

// Tiers returns the tiers, highest threshold first.
func (p *Policy) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// Fallback returns the charge applied below the lowest threshold.
func (p *Policy) Fallback() money.Money {
	return p.fallback
}
