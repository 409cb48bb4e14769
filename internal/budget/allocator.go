// Package budget turns a single budget figure into the price band used to
// filter the catalog and the split suggested to the model.
package budget

import (
	"math"

	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// Policy holds the hand-tuned ratios. They are a replaceable heuristic.
type Policy struct {
	MinRatio       float64
	MaxRatio       float64
	EssentialShare float64
	ComfortShare   float64
	DecorShare     float64
}

// DefaultPolicy is 30%–120% of the budget, split 40/30/30.
func DefaultPolicy() Policy {
	return Policy{
		MinRatio:       0.3,
		MaxRatio:       1.2,
		EssentialShare: 0.4,
		ComfortShare:   0.3,
		DecorShare:     0.3,
	}
}

// PriceRange is an inclusive price band.
type PriceRange struct {
	Min float64
	Max float64
}

func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// PriceRange returns the band for a budget; false when no budget was given.
func (p Policy) PriceRange(budget float64) (PriceRange, bool) {
	if !usable(budget) {
		return PriceRange{}, false
	}
	return PriceRange{
		Min: round2(budget * p.MinRatio),
		Max: round2(budget * p.MaxRatio),
	}, true
}

// Allocate returns the split suggested to the model, nil without a budget.
func (p Policy) Allocate(budget float64) *models.Allocation {
	if !usable(budget) {
		return nil
	}
	return &models.Allocation{
		Budget:     budget,
		Essentials: round2(budget * p.EssentialShare),
		Comfort:    round2(budget * p.ComfortShare),
		Decorative: round2(budget * p.DecorShare),
	}
}

// Valid reports whether the ratios make sense.
func (p Policy) Valid() bool {
	if p.MinRatio < 0 || p.MaxRatio <= 0 || p.MinRatio > p.MaxRatio {
		return false
	}
	sum := p.EssentialShare + p.ComfortShare + p.DecorShare
	return math.Abs(sum-1) < 0.001
}

// usable is false for a missing, negative or non-finite budget.
func usable(budget float64) bool {
	return budget > 0 && !math.IsInf(budget, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
