package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/roompitch/server/internal/models"
)

// Store owns the code -> Room mapping for every live room in this process.
// It is the only shared mutable structure across rooms; each Room's own
// state is guarded by the room's mutex, not the store's.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*models.Room
	rand  *rand.Rand
}

// NewStore initializes an empty registry.
func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*models.Room),
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// generateCode returns a code that is collision-free against all live rooms.
// Assumes s.mu is held.
func (s *Store) generateCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := randomCode(s.rand)
		if _, exists := s.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// CreateRoom allocates a fresh room with exactly one resident participant,
// the host. The host's durable id is generated here and never reassigned.
func (s *Store) CreateRoom(hostName string, houseCapacity int) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}

	host := &models.Player{
		ID:        uuid.New(),
		Name:      hostName,
		IsHost:    true,
		IsInHouse: true, // the host starts as the lease holder
		Connected: true,
	}
	r := &models.Room{
		Code:          code,
		HostID:        host.ID,
		HouseCapacity: houseCapacity,
		Players:       []*models.Player{host},
		State:         models.StateWaiting,
		Round:         1,
	}
	s.rooms[code] = r
	return r, nil
}

// GetRoom is a pure lookup; a missing room is a recoverable condition for
// the caller, not a failure of the registry.
func (s *Store) GetRoom(code string) (*models.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// AddPlayer appends a new applicant to the room. Beyond the hard cap and
// name checks, joining is refused once a game is underway and when the
// house size leaves no applicant slot open.
func (s *Store) AddPlayer(code, name string) (*models.Player, error) {
	r, ok := s.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if len(r.Players) >= models.MaxPlayers {
		return nil, ErrRoomFull
	}
	if r.State != models.StateWaiting {
		return nil, ErrGameInProgress
	}
	if r.HasName(name) {
		return nil, ErrDuplicateName
	}
	if len(r.Applicants()) >= models.MaxPlayers-r.HouseCapacity {
		return nil, ErrNoApplicantSlots
	}

	p := &models.Player{
		ID:        uuid.New(),
		Name:      name,
		Connected: true,
	}
	r.Players = append(r.Players, p)
	return p, nil
}

// RemovePlayer drops the participant from the room. The room itself is
// deleted when it becomes empty or when the departing participant is the
// host; a room without its privileged participant cannot continue.
func (s *Store) RemovePlayer(code string, id uuid.UUID) {
	r, ok := s.GetRoom(code)
	if !ok {
		return
	}

	r.Mu.Lock()
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.Players = kept
	empty := len(r.Players) == 0
	hostLeft := id == r.HostID
	r.Mu.Unlock()

	if empty || hostLeft {
		s.DeleteRoom(code)
	}
}

// DeleteRoom removes the room from the registry.
func (s *Store) DeleteRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[code]; exists {
		delete(s.rooms, code)
		log.Infof("deleted room %s", code)
	}
}

// Rooms returns a copy of the live room map, for listing and debugging.
func (s *Store) Rooms() map[string]*models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.Room, len(s.rooms))
	for k, v := range s.rooms {
		out[k] = v
	}
	return out
}

// Len reports the number of live rooms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
