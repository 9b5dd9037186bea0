package game

import "errors"

// Session error taxonomy. Precondition failures are reported back to the
// originating participant for acked intents; fire-and-forget intents turn
// them into a room-wide error broadcast instead.
var (
	// ErrNotEnoughPlayers means the room has fewer than houseCapacity+1
	// participants, so no "not enough seats" dynamic can exist yet.
	ErrNotEnoughPlayers = errors.New("not enough players to start pitching")

	// ErrPreconditionNotMet covers role and phase violations, e.g. the host
	// submitting an application.
	ErrPreconditionNotMet = errors.New("precondition not met")

	// ErrBadSelection means the submission shape is wrong: anything other
	// than exactly two green cards and one red card.
	ErrBadSelection = errors.New("submission must be exactly 2 green cards and 1 red card")

	// ErrCardNotInHand means a selected card id was not dealt to that player.
	ErrCardNotInHand = errors.New("selected card is not in your hand")

	// ErrPitchesOutstanding means the host tried to start a round before
	// every applicant submitted.
	ErrPitchesOutstanding = errors.New("not all applicants have submitted a pitch")

	// ErrDeckExhausted means a catalog is too small for the applicant count
	// times the per-applicant allotment.
	ErrDeckExhausted = errors.New("card catalog too small for applicant count")
)
