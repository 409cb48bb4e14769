package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

func TestItemFromSuggestionProductUsesUnitPrice(t *testing.T) {
	item := ItemFromSuggestion("s1", models.ProductSuggestion{
		Kind: models.KindProduct, ID: "son-micro-hf", Name: "Micro HF", Price: 60, TotalPrice: 999,
	})

	assert.Equal(t, Item{SessionID: "s1", ProductID: "son-micro-hf", Name: "Micro HF", Kind: models.KindProduct, Price: 60, Quantity: 1}, item)
}

func TestItemFromSuggestionPackageUsesBundleTotal(t *testing.T) {
	s := models.ProductSuggestion{
		Kind: models.KindPackage, ID: "deco-arche-florale", Name: "Pack cérémonie",
		Price: 950, TotalPrice: 1430, Items: []string{"Arche florale", "Centres de table"},
	}
	item := ItemFromSuggestion("s1", s)

	assert.Equal(t, 1430.0, item.Price)
	assert.Equal(t, []string{"Arche florale", "Centres de table"}, item.Includes)

	s.Items[0] = "changed"
	assert.Equal(t, "Arche florale", item.Includes[0])
}

func TestFromResult(t *testing.T) {
	result := &models.RecommendationResult{Suggestions: []models.ProductSuggestion{
		{Kind: models.KindProduct, ID: "a", Name: "A", Price: 10},
	}}

	item, err := FromResult("s1", result, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", item.ProductID)

	_, err = FromResult("s1", result, "ghost")
	assert.ErrorIs(t, err, models.ErrUnknownSuggestion)

	_, err = FromResult("s1", nil, "a")
	assert.ErrorIs(t, err, models.ErrUnknownSuggestion)
}
