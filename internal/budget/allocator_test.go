package budget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRange(t *testing.T) {
	p := DefaultPolicy()

	r, ok := p.PriceRange(3000)
	require.True(t, ok)
	assert.Equal(t, 900.0, r.Min)
	assert.Equal(t, 3600.0, r.Max)
	assert.True(t, r.Contains(900))
	assert.True(t, r.Contains(3600))
	assert.False(t, r.Contains(899.99))
	assert.False(t, r.Contains(3600.01))
}

func TestPriceRangeWithoutBudget(t *testing.T) {
	p := DefaultPolicy()
	for _, b := range []float64{0, -10, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, ok := p.PriceRange(b)
		assert.False(t, ok)
		assert.Nil(t, p.Allocate(b))
	}
}

func TestAllocate(t *testing.T) {
	a := DefaultPolicy().Allocate(3000)
	require.NotNil(t, a)
	assert.Equal(t, 3000.0, a.Budget)
	assert.Equal(t, 1200.0, a.Essentials)
	assert.Equal(t, 900.0, a.Comfort)
	assert.Equal(t, 900.0, a.Decorative)
}

func TestPolicyValid(t *testing.T) {
	assert.True(t, DefaultPolicy().Valid())

	bad := DefaultPolicy()
	bad.MinRatio = 2
	assert.False(t, bad.Valid())

	bad = DefaultPolicy()
	bad.DecorShare = 0.5
	assert.False(t, bad.Valid())
}
