package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/budget"
	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
	"github.com/moonback/Esil-events-v1-sub001/internal/taxonomy"
)

// Query is the structured input of a candidate lookup.
type Query struct {
	EventType string
	Guests    int
	Budget    float64
}

// Result is the candidate set plus how it was obtained.
type Result struct {
	Candidates []models.Candidate
	Profile    taxonomy.Profile
	Filter     Filter
	Fallback   bool
}

// Gateway narrows the catalog to the products relevant for an event.
type Gateway struct {
	store   Store
	policy  budget.Policy
	log     *zap.Logger
	metrics *metrics.AssistantMetrics
}

func NewGateway(store Store, policy budget.Policy, log *zap.Logger, m *metrics.AssistantMetrics) *Gateway {
	return &Gateway{
		store:   store,
		policy:  policy,
		log:     logger.OrNop(log).Named("catalog"),
		metrics: m,
	}
}

// CapacityFloor maps a guest count to the minimum-capacity tier.
func CapacityFloor(guests int) int {
	switch {
	case guests > 100:
		return 100
	case guests > 50:
		return 50
	case guests > 20:
		return 20
	default:
		return 0
	}
}

// FilterFor builds the narrowed filter for a query and profile.
func (g *Gateway) FilterFor(q Query, profile taxonomy.Profile) Filter {
	f := Filter{
		Categories:    profile.Categories,
		Subcategories: profile.Subcategories,
		CapacityFloor: CapacityFloor(q.Guests),
	}
	if r, ok := g.policy.PriceRange(q.Budget); ok {
		f.Price = &r
	}
	return f
}

// Candidates runs the narrowed query and, when it comes back empty, the
// availability-only fallback. Only an empty fallback is an error.
func (g *Gateway) Candidates(ctx context.Context, q Query) (*Result, error) {
	profile, known := taxonomy.Lookup(q.EventType)
	if !known {
		g.log.Info("unknown event type, no category narrowing", zap.String("event_type", q.EventType))
	}

	filter := g.FilterFor(q, profile)
	products, err := g.store.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("catalog query: %w", errors.Join(models.ErrNetworkFailure, err))
	}

	fallback := false
	if len(products) == 0 {
		g.log.Info("narrowed query returned nothing, falling back to availability only",
			zap.String("event_type", q.EventType),
			zap.Int("guests", q.Guests),
			zap.Float64("budget", q.Budget),
		)
		g.metrics.ObserveFallback()
		fallback = true
		filter = AvailabilityOnly()
		products, err = g.store.Query(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("catalog fallback query: %w", errors.Join(models.ErrNetworkFailure, err))
		}
		if len(products) == 0 {
			return nil, models.ErrEmptyCatalog
		}
	}

	candidates := make([]models.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, models.Candidate{
			CatalogProduct: p,
			IsEssential:    profile.IsEssential(p.Name),
		})
	}
	g.metrics.ObserveCandidates(len(candidates))

	return &Result{
		Candidates: candidates,
		Profile:    profile,
		Filter:     filter,
		Fallback:   fallback,
	}, nil
}
