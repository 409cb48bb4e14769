package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/moonback/Esil-events-v1-sub001/internal/budget"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// Filter narrows a catalog query. Only available products are ever returned.
// Empty slices and zero values mean no constraint.
type Filter struct {
	Categories    []string
	Subcategories []string
	Price         *budget.PriceRange
	// CapacityFloor keeps products with MinCapacity <= floor whose MaxCapacity,
	// when set, reaches the floor.
	CapacityFloor int
}

// AvailabilityOnly is the broadened fallback filter.
func AvailabilityOnly() Filter {
	return Filter{}
}

// Narrowed reports whether the filter constrains anything besides availability.
func (f Filter) Narrowed() bool {
	return len(f.Categories) > 0 || len(f.Subcategories) > 0 || f.Price != nil || f.CapacityFloor > 0
}

// Matches applies the filter to one product.
func (f Filter) Matches(p models.CatalogProduct) bool {
	if !p.Available {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Subcategories) > 0 && !contains(f.Subcategories, p.Subcategory) {
		return false
	}
	if f.Price != nil && !f.Price.Contains(p.Price) {
		return false
	}
	if f.CapacityFloor > 0 {
		if p.MinCapacity > f.CapacityFloor {
			return false
		}
		if p.MaxCapacity > 0 && p.MaxCapacity < f.CapacityFloor {
			return false
		}
	}
	return true
}

// Store is the read-only catalog the gateway queries.
type Store interface {
	Query(ctx context.Context, filter Filter) ([]models.CatalogProduct, error)
}

// MemoryStore serves a fixed product list.
type MemoryStore struct {
	mu       sync.RWMutex
	products []models.CatalogProduct
	queries  []Filter
}

func NewMemoryStore(products []models.CatalogProduct) *MemoryStore {
	return &MemoryStore{products: append([]models.CatalogProduct(nil), products...)}
}

func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]models.CatalogProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.queries = append(s.queries, filter)
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CatalogProduct, 0)
	for _, p := range s.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Replace swaps the product list, e.g. after a stock change.
func (s *MemoryStore) Replace(products []models.CatalogProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]models.CatalogProduct(nil), products...)
}

// Queries returns the filters received so far.
func (s *MemoryStore) Queries() []Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Filter(nil), s.queries...)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
