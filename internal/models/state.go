package models

// GameState is the current phase of a room's game session.
type GameState string

const (
	StateWaiting  GameState = "waiting"  // lobby: players joining
	StatePitching GameState = "pitching" // applicants hold cards and pitch
	StateVoting   GameState = "voting"   // residents vote on an applicant
	StateFinished GameState = "finished" // game over
	StateError    GameState = "error"    // unrecoverable failure, terminal
)

func (s GameState) String() string {
	return string(s)
}

// Terminal reports whether no further transitions are legal out of s.
func (s GameState) Terminal() bool {
	return s == StateFinished || s == StateError
}

// CanTransitionTo reports whether moving from s to target is a legal
// transition. StateError is absorbing and reachable from anywhere.
func (s GameState) CanTransitionTo(target GameState) bool {
	if target == StateError {
		return true
	}
	validTransitions := map[GameState][]GameState{
		StateWaiting:  {StatePitching},
		StatePitching: {StateVoting},
		StateVoting:   {StateFinished},
	}
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}
