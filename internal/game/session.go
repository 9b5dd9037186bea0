package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roompitch/server/internal/models"
	"github.com/roompitch/server/internal/room"
)

// Session is the per-process game state machine. Every operation takes a
// room whose mutex the caller already holds, mutates it legally, and
// returns the outbound notifications the transition produced. Delivery is
// the dispatcher's job; keeping transitions free of transport makes them
// directly unit-testable.
//
// Room mutexes only serialize intents within one room; operations on
// distinct rooms run concurrently, so the shared random source needs its
// own lock.
type Session struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewSession builds a session with a time-seeded random source.
func NewSession() *Session {
	return &Session{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSessionWithSeed builds a session with a fixed source, for tests that
// need reproducible deals and round selection.
func NewSessionWithSeed(seed int64) *Session {
	return &Session{rand: rand.New(rand.NewSource(seed))}
}

// StartPitching handles the host's start_pitching intent: deal to every
// applicant and move the room into the pitching phase.
//
// A duplicate intent while already pitching is a no-op rather than an
// error, so a retried or double-clicked start never re-deals hands.
func (s *Session) StartPitching(r *models.Room) ([]Event, error) {
	if r.State == models.StatePitching {
		return nil, nil
	}
	if !r.State.CanTransitionTo(models.StatePitching) {
		return nil, ErrPreconditionNotMet
	}

	// At least one applicant beyond house capacity, or the game cannot
	// produce a "no seat for everyone" dynamic.
	if len(r.Players) < r.HouseCapacity+1 {
		return nil, ErrNotEnoughPlayers
	}

	s.mu.Lock()
	err := Deal(s.rand, r)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r.State = models.StatePitching

	return []Event{broadcast(EventPitchingState, roomPayload(r))}, nil
}

// SubmitApplication records an applicant's selected cards for the round.
// Repeat submissions are benign no-ops: the first recorded pitch stands and
// the count is unchanged. The room-wide count update always goes out; when
// this submission completes the set, the host additionally gets a private
// all_applications_submitted notice.
func (s *Session) SubmitApplication(r *models.Room, playerID uuid.UUID, greenIDs []string, redID string) ([]Event, error) {
	p, ok := r.Player(playerID)
	if !ok {
		return nil, room.ErrPlayerNotFound
	}
	if p.IsHost {
		return nil, ErrPreconditionNotMet
	}
	if r.State != models.StatePitching {
		return nil, ErrPreconditionNotMet
	}
	if p.HasSubmitted() {
		// Idempotent under retry; not surfaced as an error.
		return nil, nil
	}

	if len(greenIDs) != GreenCardsPerApplicant || redID == "" {
		return nil, ErrBadSelection
	}
	seen := make(map[string]bool, len(greenIDs))
	for _, id := range greenIDs {
		if seen[id] {
			return nil, ErrBadSelection
		}
		seen[id] = true
		if !p.HoldsGreen(id) {
			return nil, ErrCardNotInHand
		}
	}
	if !p.HoldsRed(redID) {
		return nil, ErrCardNotInHand
	}

	p.Submission = models.Submission{
		GreenCardIDs: append([]string(nil), greenIDs...),
		RedCardID:    redID,
		Submitted:    true,
	}

	applicants := r.Applicants()
	submitted := r.SubmittedCount()

	events := []Event{broadcast(EventApplicationCount, map[string]interface{}{
		"submittedCount": submitted,
		"totalPlayers":   len(applicants),
	})}
	if submitted == len(applicants) {
		events = append(events, direct(r.HostID, EventAllPitchesIn, map[string]interface{}{}))
	}
	return events, nil
}

// StartRound handles the host's start_round intent once every applicant has
// submitted: pick the first pitching applicant uniformly at random, resolve
// their submission to full cards and advance the round counter.
func (s *Session) StartRound(r *models.Room) ([]Event, error) {
	if r.State != models.StatePitching {
		return nil, ErrPreconditionNotMet
	}
	applicants := r.Applicants()
	if len(applicants) == 0 || r.SubmittedCount() != len(applicants) {
		return nil, ErrPitchesOutstanding
	}

	s.mu.Lock()
	idx := s.rand.Intn(len(applicants))
	s.mu.Unlock()
	chosen := applicants[idx]
	pitch, err := resolvePitch(chosen)
	if err != nil {
		return nil, err
	}

	for i, p := range r.Players {
		if p.ID == chosen.ID {
			r.CurrentPlayerIdx = i
			break
		}
	}
	r.Round++

	payload := roomPayload(r)
	payload["currentPitchingPlayer"] = pitch
	return []Event{broadcast(EventRoundStarted, payload)}, nil
}

// resolvePitch expands a submission's card ids into the full card objects
// from the player's dealt hand.
func resolvePitch(p *models.Player) (models.Pitch, error) {
	pitch := models.Pitch{
		PlayerID:   p.ID.String(),
		PlayerName: p.Name,
	}
	for _, id := range p.Submission.GreenCardIDs {
		found := false
		for _, c := range p.GreenCards {
			if c.ID == id {
				pitch.GreenCards = append(pitch.GreenCards, c)
				found = true
				break
			}
		}
		if !found {
			return models.Pitch{}, ErrCardNotInHand
		}
	}
	for _, c := range p.RedCards {
		if c.ID == p.Submission.RedCardID {
			pitch.RedCard = c
			return pitch, nil
		}
	}
	return models.Pitch{}, ErrCardNotInHand
}

// Fail moves the room into the absorbing error state and tells every
// participant to surface a terminal failure screen. There is no automatic
// exit; participants must leave and form a new room.
func (s *Session) Fail(r *models.Room) []Event {
	r.State = models.StateError
	return []Event{broadcast(EventServerError, map[string]interface{}{
		"gameState": models.StateError,
	})}
}

// PlayerList answers a get_current_players intent with a room-wide roster
// push.
func (s *Session) PlayerList(r *models.Room) []Event {
	return []Event{broadcast(EventAllPlayers, playersPayload(r))}
}

// RejoinSnapshot produces the full resynchronization push for a client that
// rebound its connection to an existing participant id: the roster first,
// then a phase-specific payload matching the room's current state. Repeat
// rejoins simply produce the same snapshot again.
func (s *Session) RejoinSnapshot(r *models.Room, playerID uuid.UUID) ([]Event, error) {
	p, ok := r.Player(playerID)
	if !ok {
		return nil, room.ErrPlayerNotFound
	}

	events := []Event{direct(p.ID, EventAllPlayers, playersPayload(r))}
	switch r.State {
	case models.StateWaiting:
		// The roster push alone resynchronizes the lobby screen.
	case models.StatePitching:
		events = append(events, direct(p.ID, EventPitchingState, roomPayload(r)))
	case models.StateVoting:
		events = append(events, direct(p.ID, EventVotingState, roomPayload(r)))
	case models.StateFinished:
		events = append(events, direct(p.ID, EventFinishedState, map[string]interface{}{
			"gameState": r.State,
		}))
	case models.StateError:
		events = append(events, direct(p.ID, EventServerError, map[string]interface{}{
			"gameState": r.State,
		}))
	}
	return events, nil
}
