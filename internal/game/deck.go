package game

import (
	"fmt"
	"math/rand"

	"github.com/roompitch/server/internal/models"
)

// Per-deal allotment for each applicant.
const (
	GreenCardsPerApplicant = 2
	RedCardsPerApplicant   = 1
)

var greenTexts = []string{
	"Always pays rent on time",
	"Excellent cook who shares meals",
	"Super organized and clean",
	"Great at fixing things around the house",
	"Quiet and respectful",
	"Social butterfly who brings friends over",
	"Has a car and gives rides",
	"Works from home and provides security",
	"Loves to host dinner parties",
	"Has streaming subscriptions to share",
	"Great with plants and gardening",
	"Professional cleaner by trade",
	"Never hoards the bathroom",
	"Always replaces the toilet paper",
	"Excellent at conflict resolution",
	"Has connections for cheap furniture",
	"Morning person who can receive deliveries",
	"Night owl perfect for late shift coverage",
	"Minimalist with very few belongings",
	"Has a well-trained, friendly pet",
}

var redTexts = []string{
	"Plays music loudly at 3 AM",
	"Never does dishes",
	"Brings dates over every night",
	"Constantly 'borrows' food without asking",
	"Leaves wet towels everywhere",
	"Has 7 cats (didn't mention this before)",
	"Sleepwalks and rearranges furniture",
	"Only communicates through passive-aggressive notes",
	"Collects vintage mannequins as a hobby",
	"Burns everything they attempt to cook",
	"Takes 2-hour showers daily",
	"Practices interpretive dance at dawn",
	"Paranoid about government surveillance",
	"Talks to houseplants (very loudly)",
	"Leaves hair clogs in every drain",
	"Uses communal areas as personal art studio",
	"Throws parties when you're trying to study",
	"Never closes cabinet doors or drawers",
	"Obsessed with conspiracy theories",
	"Leaves dirty clothes in common areas",
}

// GreenCatalog materializes a fresh positive-trait catalog. Card IDs are
// stable within one deal; a deal never hands out the same entry twice.
func GreenCatalog() []models.Card {
	return catalog("green", greenTexts)
}

// RedCatalog materializes a fresh flaw catalog.
func RedCatalog() []models.Card {
	return catalog("red", redTexts)
}

func catalog(prefix string, texts []string) []models.Card {
	cards := make([]models.Card, len(texts))
	for i, text := range texts {
		cards[i] = models.Card{ID: fmt.Sprintf("%s_%d", prefix, i), Text: text}
	}
	return cards
}

// shuffle permutes cards in place with an unbiased Fisher-Yates.
func shuffle(r *rand.Rand, cards []models.Card) {
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
