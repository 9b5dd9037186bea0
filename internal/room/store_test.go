package room

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roompitch/server/internal/models"
)

func TestCreateRoomCodeFormat(t *testing.T) {
	s := NewStore()

	for i := 0; i < 50; i++ {
		r, err := s.CreateRoom(fmt.Sprintf("host%d", i), 2)
		require.NoError(t, err)

		require.Len(t, r.Code, CodeLength)
		for pos, ch := range r.Code {
			if pos%2 == 0 {
				assert.Contains(t, codeLetters, string(ch), "even positions must be letters")
			} else {
				assert.Contains(t, codeDigits, string(ch), "odd positions must be digits")
			}
		}
	}
}

func TestCreateRoomCodesUnique(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		r, err := s.CreateRoom("host", 2)
		require.NoError(t, err)
		assert.False(t, seen[r.Code], "code %s issued twice among live rooms", r.Code)
		seen[r.Code] = true
	}
}

func TestCreateRoomInitialState(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom("Alice", 3)
	require.NoError(t, err)

	assert.Equal(t, models.StateWaiting, r.State)
	assert.Equal(t, 1, r.Round)
	assert.Equal(t, 3, r.HouseCapacity)
	require.Len(t, r.Players, 1)

	host := r.Players[0]
	assert.Equal(t, r.HostID, host.ID)
	assert.True(t, host.IsHost)
	assert.True(t, host.IsInHouse, "host starts as the lease holder")
	assert.Equal(t, "Alice", host.Name)
}

func TestAddPlayer(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom("Alice", 2)
	require.NoError(t, err)

	p, err := s.AddPlayer(r.Code, "Bob")
	require.NoError(t, err)
	assert.False(t, p.IsHost)
	assert.False(t, p.IsInHouse, "new players start as applicants")
	assert.NotEqual(t, r.HostID, p.ID)
	assert.Len(t, r.Players, 2)
}

func TestAddPlayerRoomNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.AddPlayer("Z9Z9", "Bob")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAddPlayerDuplicateName(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom("Alice", 2)
	require.NoError(t, err)

	_, err = s.AddPlayer(r.Code, "alice")
	assert.ErrorIs(t, err, ErrDuplicateName, "names collide case-insensitively")

	_, err = s.AddPlayer(r.Code, "Bob")
	require.NoError(t, err)
	_, err = s.AddPlayer(r.Code, "BOB")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestAddPlayerRoomFull(t *testing.T) {
	s := NewStore()
	// Capacity 1 leaves nine applicant slots, so the hard cap is what
	// finally refuses the eleventh participant.
	r, err := s.CreateRoom("host", 1)
	require.NoError(t, err)

	for i := 1; i < models.MaxPlayers; i++ {
		_, err := s.AddPlayer(r.Code, fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}
	require.Len(t, r.Players, models.MaxPlayers)

	_, err = s.AddPlayer(r.Code, "overflow")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAddPlayerNoApplicantSlots(t *testing.T) {
	s := NewStore()
	// House capacity 8 leaves 10-8 = 2 applicant slots.
	r, err := s.CreateRoom("host", 8)
	require.NoError(t, err)

	_, err = s.AddPlayer(r.Code, "a1")
	require.NoError(t, err)
	_, err = s.AddPlayer(r.Code, "a2")
	require.NoError(t, err)

	_, err = s.AddPlayer(r.Code, "a3")
	assert.ErrorIs(t, err, ErrNoApplicantSlots)
}

func TestAddPlayerGameInProgress(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom("host", 2)
	require.NoError(t, err)
	r.State = models.StatePitching

	_, err = s.AddPlayer(r.Code, "late")
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestRemovePlayerDeletesEmptyRoom(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom("host", 2)
	require.NoError(t, err)

	s.RemovePlayer(r.Code, r.HostID)
	_, ok := s.GetRoom(r.Code)
	assert.False(t, ok, "room without its host cannot continue to exist")
}

func TestRemovePlayerHostLeavesDeletesRoom(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom("host", 2)
	require.NoError(t, err)
	_, err = s.AddPlayer(r.Code, "Bob")
	require.NoError(t, err)

	s.RemovePlayer(r.Code, r.HostID)
	_, ok := s.GetRoom(r.Code)
	assert.False(t, ok)
}

func TestRemovePlayerApplicantLeavesRoomSurvives(t *testing.T) {
	s := NewStore()
	r, err := s.CreateRoom("host", 2)
	require.NoError(t, err)
	p, err := s.AddPlayer(r.Code, "Bob")
	require.NoError(t, err)

	s.RemovePlayer(r.Code, p.ID)
	got, ok := s.GetRoom(r.Code)
	require.True(t, ok)
	assert.Len(t, got.Players, 1)
}

func TestGetRoomAbsent(t *testing.T) {
	s := NewStore()
	_, ok := s.GetRoom("A2B3")
	assert.False(t, ok, "missing room is a normal outcome, not an error")
}

func TestCodeAlphabetExcludesConfusables(t *testing.T) {
	assert.False(t, strings.ContainsAny(codeLetters, "IO"))
	assert.False(t, strings.ContainsAny(codeDigits, "01"))
}
