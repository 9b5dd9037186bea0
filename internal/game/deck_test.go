package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSizes(t *testing.T) {
	assert.Len(t, GreenCatalog(), 20)
	assert.Len(t, RedCatalog(), 20)
}

func TestCatalogIDsStableAndUnique(t *testing.T) {
	greens := GreenCatalog()
	reds := RedCatalog()

	ids := make(map[string]bool)
	for _, c := range greens {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
		assert.NotEmpty(t, c.Text)
	}
	for _, c := range reds {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
		assert.NotEmpty(t, c.Text)
	}

	// Catalogs are materialized fresh per call with stable ids.
	again := GreenCatalog()
	require.Equal(t, greens, again)
}

func TestShufflePreservesSet(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	cards := GreenCatalog()
	shuffle(r, cards)

	require.Len(t, cards, 20)
	seen := make(map[string]bool)
	for _, c := range cards {
		seen[c.ID] = true
	}
	assert.Len(t, seen, 20, "shuffle must permute, not duplicate or drop")
}
