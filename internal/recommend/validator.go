package recommend

import (
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
	"github.com/moonback/Esil-events-v1-sub001/internal/prompts"
)

// Drop reasons
const (
	DropUnknownID = "unknown_id"
	DropInvalid   = "invalid_shape"
)

// ValidateSuggestions keeps only the suggestions whose id belongs to the
// candidate set of this request and whose structure is a product or package.
// Dropped suggestions are logged and counted, never returned as errors.
// Kept suggestions are passed through untouched.
func ValidateSuggestions(suggestions []models.ProductSuggestion, candidates []models.Candidate, log *zap.Logger, m *metrics.AssistantMetrics) (kept []models.ProductSuggestion, dropped int) {
	log = logger.OrNop(log)

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}

	kept = make([]models.ProductSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if err := prompts.ValidateSuggestion(s); err != nil {
			log.Warn("dropping malformed suggestion", zap.String("id", s.ID), zap.Error(err))
			m.ObserveDropped(DropInvalid)
			dropped++
			continue
		}
		if _, ok := known[s.ID]; !ok {
			log.Warn("dropping suggestion with unknown catalog id", zap.String("id", s.ID), zap.String("name", s.Name))
			m.ObserveDropped(DropUnknownID)
			dropped++
			continue
		}
		kept = append(kept, s)
	}
	return kept, dropped
}
