package models

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MaxPlayers is the hard cap on participants per room, regardless of the
// configured house capacity.
const MaxPlayers = 10

// Room is the unit of isolation for one game instance. All mutation runs
// under Mu: an intent is processed to completion, broadcasts included,
// before the next one touches the room.
type Room struct {
	Code          string    `json:"code"`
	HostID        uuid.UUID `json:"hostId"`
	HouseCapacity int       `json:"houseCapacity"`

	// Players is in join order; the host is always element 0.
	Players []*Player `json:"players"`

	State            GameState `json:"gameState"`
	Round            int       `json:"currentRound"`
	CurrentPlayerIdx int       `json:"currentPlayerIdx"`

	Mu sync.Mutex `json:"-"`
}

// Player returns the participant with the given durable id.
func (r *Room) Player(id uuid.UUID) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// HasName reports whether any participant already uses name,
// case-insensitively.
func (r *Room) HasName(name string) bool {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// Applicants returns the non-resident participants in join order. During
// the phases this coordinator implements that is every non-host player.
func (r *Room) Applicants() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if !p.IsInHouse {
			out = append(out, p)
		}
	}
	return out
}

// ConnectedPlayers returns the participants that currently hold a live
// transport handle.
func (r *Room) ConnectedPlayers() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.Connected && p.Conn != nil {
			out = append(out, p)
		}
	}
	return out
}

// SubmittedCount returns how many applicants have recorded a pitch.
func (r *Room) SubmittedCount() int {
	n := 0
	for _, p := range r.Applicants() {
		if p.HasSubmitted() {
			n++
		}
	}
	return n
}

// Host returns the privileged participant. A room without its host cannot
// exist, so the second return is false only on a corrupted room.
func (r *Room) Host() (*Player, bool) {
	return r.Player(r.HostID)
}
