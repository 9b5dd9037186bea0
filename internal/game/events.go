package game

import (
	"github.com/google/uuid"

	"github.com/roompitch/server/internal/models"
)

// EventType is the discriminator for outbound notifications.
type EventType string

const (
	EventAllPlayers       EventType = "emit_all_players"
	EventPitchingState    EventType = "pitching_state"
	EventVotingState      EventType = "voting_state"
	EventRoundStarted     EventType = "round_started"
	EventApplicationCount EventType = "application_count_update"
	EventAllPitchesIn     EventType = "all_applications_submitted"
	EventFinishedState    EventType = "finished_state"
	EventServerError      EventType = "server_error"
)

// Event is one outbound notification produced by a session transition.
// To == uuid.Nil means room-wide; otherwise it is addressed to a single
// participant. Payload marshals directly onto the wire message.
type Event struct {
	Type    EventType
	To      uuid.UUID
	Payload map[string]interface{}
}

// broadcast builds a room-wide event.
func broadcast(t EventType, payload map[string]interface{}) Event {
	return Event{Type: t, Payload: payload}
}

// direct builds an event addressed to a single participant.
func direct(to uuid.UUID, t EventType, payload map[string]interface{}) Event {
	return Event{Type: t, To: to, Payload: payload}
}

// playersPayload is the emit_all_players body.
func playersPayload(room *models.Room) map[string]interface{} {
	return map[string]interface{}{"players": room.Players}
}

// roomPayload is the body for phase snapshots that carry the whole room.
func roomPayload(room *models.Room) map[string]interface{} {
	return map[string]interface{}{"room": room}
}
