package models

// Card is an immutable trait card. Green cards carry a positive trait,
// red cards a flaw. IDs are stable within a single deal ("green_3", "red_7").
type Card struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Submission is a player's selected subset of their dealt hand for the
// current round. It is always present on a Player; Submitted distinguishes
// an empty submission from a recorded one.
type Submission struct {
	GreenCardIDs []string `json:"greenCardIds"`
	RedCardID    string   `json:"redCardId"`
	Submitted    bool     `json:"submitted"`
}

// Pitch is a fully-resolved submission, broadcast when a round starts.
type Pitch struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	GreenCards []Card `json:"greenCards"`
	RedCard    Card   `json:"redCard"`
}
