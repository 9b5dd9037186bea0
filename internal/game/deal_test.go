package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roompitch/server/internal/models"
)

// buildRoom assembles a room with a host plus n applicants, bypassing the
// registry so deal logic can be exercised in isolation.
func buildRoom(n int) *models.Room {
	host := &models.Player{ID: uuid.New(), Name: "host", IsHost: true, IsInHouse: true}
	r := &models.Room{
		Code:          "A2B3",
		HostID:        host.ID,
		HouseCapacity: 2,
		Players:       []*models.Player{host},
		State:         models.StateWaiting,
		Round:         1,
	}
	for i := 0; i < n; i++ {
		r.Players = append(r.Players, &models.Player{
			ID:   uuid.New(),
			Name: fmt.Sprintf("applicant%d", i),
		})
	}
	return r
}

func TestDealHandSizes(t *testing.T) {
	r := buildRoom(3)
	require.NoError(t, Deal(rand.New(rand.NewSource(1)), r))

	for _, p := range r.Applicants() {
		assert.Len(t, p.GreenCards, GreenCardsPerApplicant)
		assert.Len(t, p.RedCards, RedCardsPerApplicant)
	}

	host, _ := r.Host()
	assert.Empty(t, host.GreenCards, "the host is never dealt cards")
	assert.Empty(t, host.RedCards)
}

func TestDealExhaustiveAndDisjoint(t *testing.T) {
	r := buildRoom(8)
	require.NoError(t, Deal(rand.New(rand.NewSource(7)), r))

	greenSeen := make(map[string]string)
	redSeen := make(map[string]string)
	for _, p := range r.Applicants() {
		for _, c := range p.GreenCards {
			holder, dup := greenSeen[c.ID]
			assert.False(t, dup, "green card %s dealt to both %s and %s", c.ID, holder, p.Name)
			greenSeen[c.ID] = p.Name
		}
		for _, c := range p.RedCards {
			holder, dup := redSeen[c.ID]
			assert.False(t, dup, "red card %s dealt to both %s and %s", c.ID, holder, p.Name)
			redSeen[c.ID] = p.Name
		}
	}
	assert.Len(t, greenSeen, 8*GreenCardsPerApplicant)
	assert.Len(t, redSeen, 8*RedCardsPerApplicant)
}

func TestDealClearsPreviousRound(t *testing.T) {
	r := buildRoom(2)
	rng := rand.New(rand.NewSource(3))
	require.NoError(t, Deal(rng, r))

	a := r.Applicants()[0]
	a.Submission = models.Submission{GreenCardIDs: []string{a.GreenCards[0].ID}, RedCardID: a.RedCards[0].ID, Submitted: true}

	require.NoError(t, Deal(rng, r))
	assert.False(t, a.HasSubmitted(), "a fresh deal resets submissions")
	assert.Len(t, a.GreenCards, GreenCardsPerApplicant)
}

func TestSabotageAssignmentIsCircular(t *testing.T) {
	r := buildRoom(3)
	applicants := r.Applicants()
	a, b, c := applicants[0], applicants[1], applicants[2]

	require.NoError(t, Deal(rand.New(rand.NewSource(5)), r))

	assert.Equal(t, b.Name, a.SabotageTarget)
	assert.Equal(t, c.Name, b.SabotageTarget)
	assert.Equal(t, a.Name, c.SabotageTarget)
}

func TestSabotageAssignmentIsDerangement(t *testing.T) {
	for n := 2; n <= 8; n++ {
		r := buildRoom(n)
		require.NoError(t, Deal(rand.New(rand.NewSource(int64(n))), r))

		targeted := make(map[string]int)
		for _, p := range r.Applicants() {
			require.NotEmpty(t, p.SabotageTarget)
			assert.NotEqual(t, p.Name, p.SabotageTarget, "no self-targeting with %d applicants", n)
			targeted[p.SabotageTarget]++
		}
		for _, p := range r.Applicants() {
			assert.Equal(t, 1, targeted[p.Name], "every applicant is targeted exactly once (n=%d)", n)
		}
	}
}

func TestSabotageLoneApplicantHasNoTarget(t *testing.T) {
	r := buildRoom(1)
	require.NoError(t, Deal(rand.New(rand.NewSource(9)), r))
	assert.Empty(t, r.Applicants()[0].SabotageTarget)
}

func TestDealDeckExhausted(t *testing.T) {
	// 11 applicants x 2 green cards exceeds the 20-card catalog. The room
	// hard cap makes this unreachable through the registry, but the dealing
	// boundary is guarded on its own.
	r := buildRoom(11)
	err := Deal(rand.New(rand.NewSource(2)), r)
	assert.ErrorIs(t, err, ErrDeckExhausted)
}
