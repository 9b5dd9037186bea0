package room

import "errors"

// Registry error taxonomy. Callers distinguish these with errors.Is; anything
// else escalates the room to the error state.
var (
	// ErrRoomNotFound is a normal, expected outcome for lookups with a
	// stale or mistyped code. It never escalates a room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrPlayerNotFound means the durable id is not a member of the room.
	ErrPlayerNotFound = errors.New("player not found in room")

	// ErrRoomFull means the room is at the MaxPlayers hard cap.
	ErrRoomFull = errors.New("room is full")

	// ErrDuplicateName means the display name collides case-insensitively
	// with an existing participant.
	ErrDuplicateName = errors.New("player name already taken in room")

	// ErrGameInProgress means the room already left the waiting state.
	ErrGameInProgress = errors.New("room is currently playing a game")

	// ErrNoApplicantSlots means the house size leaves no room for another
	// applicant even though the hard cap is not reached.
	ErrNoApplicantSlots = errors.New("too many applicants for this house size")

	// ErrCodeSpaceExhausted is practically unreachable with a 4-character
	// code space; it exists so code generation cannot loop forever.
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")
)
