package game

import (
	"math/rand"

	"github.com/roompitch/server/internal/models"
)

// Deal distributes fresh hands to every applicant in the room: a contiguous
// disjoint block of the shuffled green catalog plus a disjoint slice of the
// shuffled red catalog, then recomputes sabotage targets. Assumes the room's
// mutex is held by the caller.
func Deal(r *rand.Rand, room *models.Room) error {
	applicants := room.Applicants()

	greens := GreenCatalog()
	reds := RedCatalog()
	if len(applicants)*GreenCardsPerApplicant > len(greens) {
		return ErrDeckExhausted
	}
	if len(applicants)*RedCardsPerApplicant > len(reds) {
		return ErrDeckExhausted
	}

	shuffle(r, greens)
	shuffle(r, reds)

	for i, p := range applicants {
		p.ClearHand()
		p.GreenCards = append(p.GreenCards, greens[i*GreenCardsPerApplicant:(i+1)*GreenCardsPerApplicant]...)
		p.RedCards = append(p.RedCards, reds[i*RedCardsPerApplicant:(i+1)*RedCardsPerApplicant]...)
	}

	assignSabotageTargets(applicants)
	return nil
}

// assignSabotageTargets gives applicant i the display name of applicant
// (i+1) mod n. Every applicant targets exactly one other and is targeted by
// exactly one other; nobody targets themselves. A lone applicant gets no
// target. Recomputed on every deal, so it is not stable across membership
// changes.
func assignSabotageTargets(applicants []*models.Player) {
	n := len(applicants)
	if n < 2 {
		return
	}
	for i, p := range applicants {
		p.SabotageTarget = applicants[(i+1)%n].Name
	}
}
