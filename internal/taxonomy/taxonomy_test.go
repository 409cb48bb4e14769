package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownLabel(t *testing.T) {
	p, ok := Lookup("Mariage")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"Mobilier", "Décoration", "Éclairage", "Sonorisation"}, p.Categories)
	assert.NotEmpty(t, p.Essentials)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	p, ok := Lookup("  mariage ")
	require.True(t, ok)
	assert.Contains(t, p.Categories, "Mobilier")
}

func TestLookupUnknownLabelReturnsEmptyProfile(t *testing.T) {
	for _, label := range []string{"Bar Mitzvah", OtherLabel, ""} {
		p, ok := Lookup(label)
		assert.False(t, ok, label)
		assert.True(t, p.Empty(), label)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	p, _ := Lookup("Mariage")
	p.Categories[0] = "Mutated"

	again, _ := Lookup("Mariage")
	assert.NotEqual(t, "Mutated", again.Categories[0])
}

func TestIsEssential(t *testing.T) {
	p, _ := Lookup("Mariage")

	assert.True(t, p.IsEssential("Arche florale blanche"))
	assert.True(t, p.IsEssential("CHAISE Napoléon III"))
	assert.False(t, p.IsEssential("Machine à fumée"))
	assert.False(t, Profile{}.IsEssential("Table ronde"))
}

func TestLabelsSorted(t *testing.T) {
	labels := Labels()
	require.NotEmpty(t, labels)
	assert.IsNonDecreasing(t, labels)
	assert.Contains(t, labels, "Mariage")
	assert.NotContains(t, labels, OtherLabel)
}
