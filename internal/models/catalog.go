package models

import "time"

// CatalogProduct is a read-only projection of a store product.
type CatalogProduct struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	Subcategory    string         `json:"subcategory"`
	Description    string         `json:"description"`
	Price          float64        `json:"price"` // tax included, euros
	TechnicalSpecs map[string]any `json:"technical_specs,omitempty"`
	Colors         []string       `json:"colors,omitempty"`
	Stock          int            `json:"stock"`
	MinCapacity    int            `json:"min_capacity"`
	MaxCapacity    int            `json:"max_capacity"` // 0 means no upper bound
	Available      bool           `json:"available"`
}

// Candidate is a catalog product that survived filtering.
type Candidate struct {
	CatalogProduct
	IsEssential bool `json:"is_essential"`
}

// Allocation is the budget split handed to the model as guidance.
type Allocation struct {
	Budget     float64 `json:"budget"`
	Essentials float64 `json:"essentials"`
	Comfort    float64 `json:"comfort"`
	Decorative float64 `json:"decorative"`
}

// RecommendationRequest is everything the model sees for one run.
type RecommendationRequest struct {
	Answers    AnswerSet
	EventType  string
	Essentials []string
	Candidates []Candidate
	Allocation *Allocation
	Fallback   bool
}

// Suggestion kinds
const (
	KindProduct = "product"
	KindPackage = "package"
)

// ProductSuggestion is one recommended line as returned by the model.
type ProductSuggestion struct {
	Kind       string   `json:"type" validate:"oneof=product package"`
	ID         string   `json:"id" validate:"required"`
	Name       string   `json:"name" validate:"required"`
	Reason     string   `json:"reason"`
	Price      float64  `json:"price,omitempty" validate:"gte=0"`
	TotalPrice float64  `json:"total_price,omitempty" validate:"gte=0"`
	Items      []string `json:"items,omitempty"`
}

// ModelReply is the JSON document the model must produce.
type ModelReply struct {
	Suggestions    []ProductSuggestion `json:"suggestions" validate:"required"`
	AdditionalTips string              `json:"additional_tips"`
}

// RecommendationResult is the validated outcome handed to the presentation layer.
type RecommendationResult struct {
	Suggestions    []ProductSuggestion `json:"suggestions"`
	AdditionalTips string              `json:"additional_tips"`
	CandidateCount int                 `json:"candidate_count"`
	DroppedCount   int                 `json:"dropped_count"`
	Fallback       bool                `json:"fallback"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// Find returns the suggestion with the given catalog id.
func (r *RecommendationResult) Find(id string) (ProductSuggestion, bool) {
	if r == nil {
		return ProductSuggestion{}, false
	}
	for _, s := range r.Suggestions {
		if s.ID == id {
			return s, true
		}
	}
	return ProductSuggestion{}, false
}
