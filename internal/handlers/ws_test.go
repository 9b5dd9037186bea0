package handlers

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestIntentMessageDecode(t *testing.T) {
	// The envelope is a single flat object; intents only populate the
	// fields they need and decoding must tolerate the rest being absent.
	raw := `{
		"type": "submit_application",
		"roomCode": "A2B3",
		"playerId": "8b7d0f3e-9c3b-4f2a-8e6d-1a2b3c4d5e6f",
		"selectedGreenCards": ["green_4", "green_17"],
		"selectedRedCard": "red_9"
	}`

	var msg IntentMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	assert.Equal(t, "submit_application", msg.Type)
	assert.Equal(t, "A2B3", msg.RoomCode)
	assert.Equal(t, "8b7d0f3e-9c3b-4f2a-8e6d-1a2b3c4d5e6f", msg.PlayerID)
	assert.Equal(t, []string{"green_4", "green_17"}, msg.SelectedGreenCards)
	assert.Equal(t, "red_9", msg.SelectedRedCard)
	assert.Empty(t, msg.PlayerName)
	assert.Zero(t, msg.HouseCapacity)
}

func TestIntentMessageDecodeCreateRoom(t *testing.T) {
	raw := `{"type":"create_room","playerName":"ana","houseCapacity":3}`

	var msg IntentMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	assert.Equal(t, "create_room", msg.Type)
	assert.Equal(t, "ana", msg.PlayerName)
	assert.Equal(t, 3, msg.HouseCapacity)
	assert.Empty(t, msg.RoomCode)
}

func TestRejoinUnknownRoomLeavesConnectionUnbound(t *testing.T) {
	s := NewCoordinatorServer(nil)
	logger := quietLogger()

	// The failure is terminal for this connection alone: nothing is bound,
	// no room comes into existence, nobody else hears about it.
	state := &clientState{}
	s.handleRejoinRoom(nil, state, IntentMessage{
		Type:     "rejoin_room",
		RoomCode: "Z9Z9",
		PlayerID: uuid.NewString(),
	}, logger)

	assert.Empty(t, state.roomCode)
	assert.Equal(t, uuid.Nil, state.playerID)
	assert.Zero(t, s.Rooms.Len())
}

func TestRejoinUnknownPlayerLeavesRoomUntouched(t *testing.T) {
	s := NewCoordinatorServer(nil)
	logger := quietLogger()

	r, err := s.Rooms.CreateRoom("host", 2)
	require.NoError(t, err)

	state := &clientState{}
	s.handleRejoinRoom(nil, state, IntentMessage{
		Type:     "rejoin_room",
		RoomCode: r.Code,
		PlayerID: uuid.NewString(),
	}, logger)

	assert.Empty(t, state.roomCode)
	assert.Equal(t, uuid.Nil, state.playerID)
	require.Len(t, r.Players, 1, "a failed rejoin never adds a participant")
}

func TestRejoinMalformedPlayerID(t *testing.T) {
	s := NewCoordinatorServer(nil)
	logger := quietLogger()

	state := &clientState{}
	s.handleRejoinRoom(nil, state, IntentMessage{
		Type:     "rejoin_room",
		RoomCode: "A2B3",
		PlayerID: "not-a-uuid",
	}, logger)

	assert.Empty(t, state.roomCode)
	assert.Equal(t, uuid.Nil, state.playerID)
}
