package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one durable identity inside a Room. The ID survives
// reconnection; Conn is the current transport handle and is rebound
// whenever the client reconnects.
type Player struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	IsHost bool      `json:"isHost"`

	// IsInHouse is true for residents (the host starts as the lease
	// holder); applicants join with it false and are only promoted by
	// round resolution.
	IsInHouse bool `json:"isInHouse"`

	GreenCards []Card `json:"greenCards"`
	RedCards   []Card `json:"redCards"`

	// SabotageTarget is the display name of the applicant this player's
	// flaw card is meant to disadvantage. Empty outside a deal.
	SabotageTarget string `json:"sabotageTarget,omitempty"`

	Submission Submission `json:"submission"`

	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
}

// HasSubmitted reports whether the player has recorded a pitch this round.
func (p *Player) HasSubmitted() bool {
	return p.Submission.Submitted
}

// HoldsGreen reports whether cardID is in the player's dealt green hand.
func (p *Player) HoldsGreen(cardID string) bool {
	for _, c := range p.GreenCards {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// HoldsRed reports whether cardID is in the player's dealt red hand.
func (p *Player) HoldsRed(cardID string) bool {
	for _, c := range p.RedCards {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// ClearHand resets cards, sabotage target and submission ahead of a deal.
func (p *Player) ClearHand() {
	p.GreenCards = nil
	p.RedCards = nil
	p.SabotageTarget = ""
	p.Submission = Submission{}
}
