package cart

import (
	"context"
	"fmt"

	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// Item is what the assistant hands to the storefront cart. Quantity
// aggregation and persistence belong to the cart.
type Item struct {
	SessionID string   `json:"session_id"`
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Kind      string   `json:"type"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Includes  []string `json:"includes,omitempty"`
}

// Sink receives items selected by the customer.
type Sink interface {
	AddItem(ctx context.Context, item Item) error
}

// ItemFromSuggestion prices a product at its unit price and a package at its bundle total.
func ItemFromSuggestion(sessionID string, s models.ProductSuggestion) Item {
	item := Item{
		SessionID: sessionID,
		ProductID: s.ID,
		Name:      s.Name,
		Kind:      s.Kind,
		Price:     s.Price,
		Quantity:  1,
	}
	if s.Kind == models.KindPackage {
		item.Price = s.TotalPrice
		item.Includes = append([]string(nil), s.Items...)
	}
	return item
}

// FromResult builds the cart item for a suggestion of a completed result.
// Ids outside the result are refused with models.ErrUnknownSuggestion.
func FromResult(sessionID string, result *models.RecommendationResult, suggestionID string) (Item, error) {
	s, ok := result.Find(suggestionID)
	if !ok {
		return Item{}, fmt.Errorf("suggestion %q: %w", suggestionID, models.ErrUnknownSuggestion)
	}
	return ItemFromSuggestion(sessionID, s), nil
}
