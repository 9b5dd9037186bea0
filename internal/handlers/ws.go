package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/roompitch/server/internal/middleware"
	"github.com/roompitch/server/internal/models"
	"github.com/roompitch/server/internal/room"
)

// IntentMessage is the envelope for every client-issued intent. Only the
// fields relevant to the intent's type are populated.
type IntentMessage struct {
	Type string `json:"type"`

	PlayerName    string `json:"playerName,omitempty"`
	HouseCapacity int    `json:"houseCapacity,omitempty"`
	RoomCode      string `json:"roomCode,omitempty"`
	PlayerID      string `json:"playerId,omitempty"`

	SelectedGreenCards []string `json:"selectedGreenCards,omitempty"`
	SelectedRedCard    string   `json:"selectedRedCard,omitempty"`
}

// clientState tracks what a single connection has resolved to. A fresh
// connection knows nothing; create_room, join_room and rejoin_room bind it
// to a durable participant identity.
type clientState struct {
	roomCode string
	playerID uuid.UUID
}

// RoomWSHandler upgrades the HTTP connection to WebSocket and runs the
// intent read loop until the client goes away. All room and game intents
// arrive as JSON text messages on this single connection.
func RoomWSHandler(logger *logrus.Logger, s *CoordinatorServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"roompitch"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "roompitch" {
			c.Close(BadSubprotocolError, "client must speak the roompitch subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		state := &clientState{}
		readIntents(ctx, c, s, state, logger)

		// The read loop exited: the transport handle is dead. The durable
		// participant record stays in the room so the client can rejoin;
		// only the binding from handle to identity is severed.
		s.handleDisconnect(state, logger)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readIntents loops over inbound messages and routes each intent. Intents
// run to completion, broadcasts included, before the next message is read,
// so transitions are serialized per connection; the room mutex serializes
// across connections.
func readIntents(ctx context.Context, c *websocket.Conn, s *CoordinatorServer, state *clientState, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for player %s.", state.playerID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for player %s.", state.playerID)
			} else {
				logger.Warnf("error reading from WebSocket for player %s: %v (status: %d)", state.playerID, err, status)
			}
			return
		}
		if msgType != websocket.MessageText {
			logger.Warnf("received non-text message type %d; ignoring", msgType)
			continue
		}

		var msg IntentMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid JSON from player %s: %v", state.playerID, err)
			sendDirect(logger, c, map[string]interface{}{"type": "error", "message": "Invalid JSON format."})
			continue
		}

		logger.Debugf("received intent '%s' (room %q, player %s)", msg.Type, msg.RoomCode, state.playerID)

		switch msg.Type {
		case "create_room":
			s.handleCreateRoom(c, state, msg, logger)
		case "join_room":
			s.handleJoinRoom(c, state, msg, logger)
		case "rejoin_room":
			s.handleRejoinRoom(c, state, msg, logger)
		case "host_start_pitching_state":
			s.handleStartPitching(c, state, msg, logger)
		case "host_start_round":
			s.handleStartRound(c, state, msg, logger)
		case "submit_application":
			s.handleSubmitApplication(c, state, msg, logger)
		case "get_current_players":
			s.handleGetCurrentPlayers(c, state, msg, logger)
		case "leave_room":
			s.handleLeaveRoom(state, logger)
		case "ping":
			sendDirect(logger, c, map[string]string{"type": "pong"})
		default:
			logger.Warnf("unknown intent type '%s'", msg.Type)
			sendDirect(logger, c, map[string]interface{}{"type": "error", "message": "Unknown intent type: " + msg.Type})
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// ack sends a direct acknowledgment for request/response-style intents.
func ack(logger *logrus.Logger, c *websocket.Conn, intent string, body map[string]interface{}) {
	msg := map[string]interface{}{
		"type":    intent + "_ack",
		"success": true,
	}
	for k, v := range body {
		msg[k] = v
	}
	sendDirect(logger, c, msg)
}

// nack sends a direct failure acknowledgment. Precondition violations on
// acked intents go only to the originating participant.
func nack(logger *logrus.Logger, c *websocket.Conn, intent string, err error) {
	sendDirect(logger, c, map[string]interface{}{
		"type":    intent + "_ack",
		"success": false,
		"error":   err.Error(),
	})
}

func (s *CoordinatorServer) handleCreateRoom(c *websocket.Conn, state *clientState, msg IntentMessage, logger *logrus.Logger) {
	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		nack(logger, c, "create_room", errors.New("player name is required"))
		return
	}
	if msg.HouseCapacity < 1 || msg.HouseCapacity >= models.MaxPlayers {
		nack(logger, c, "create_room", errors.New("house capacity must be between 1 and 9"))
		return
	}

	r, err := s.Rooms.CreateRoom(name, msg.HouseCapacity)
	if err != nil {
		nack(logger, c, "create_room", err)
		return
	}

	r.Mu.Lock()
	host, _ := r.Host()
	host.Conn = c
	state.roomCode = r.Code
	state.playerID = host.ID
	ack(logger, c, "create_room", map[string]interface{}{"room": r})
	dispatchEvents(logger, r, s.Session.PlayerList(r))
	r.Mu.Unlock()

	logger.Infof("room %s created by %s", r.Code, name)
	s.logAction(r.Code, host.ID, "room_created", map[string]interface{}{"houseCapacity": r.HouseCapacity})
}

func (s *CoordinatorServer) handleJoinRoom(c *websocket.Conn, state *clientState, msg IntentMessage, logger *logrus.Logger) {
	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		nack(logger, c, "join_room", errors.New("player name is required"))
		return
	}

	p, err := s.Rooms.AddPlayer(msg.RoomCode, name)
	if err != nil {
		nack(logger, c, "join_room", err)
		return
	}
	r, ok := s.Rooms.GetRoom(msg.RoomCode)
	if !ok {
		// The room vanished between the append and the lookup; treat it as
		// the lookup failure it is.
		nack(logger, c, "join_room", room.ErrRoomNotFound)
		return
	}

	r.Mu.Lock()
	p.Conn = c
	state.roomCode = r.Code
	state.playerID = p.ID
	ack(logger, c, "join_room", map[string]interface{}{"room": r, "player": p})
	dispatchEvents(logger, r, s.Session.PlayerList(r))
	r.Mu.Unlock()

	logger.Infof("player %s joined room %s", name, r.Code)
	s.logAction(r.Code, p.ID, "player_joined", map[string]interface{}{"name": name})
}

// handleRejoinRoom re-associates a reconnecting client's transport handle
// with its existing participant record and pushes a full resynchronization
// snapshot. Lookup failures are terminal for this connection alone; no room
// is mutated or broadcast to.
func (s *CoordinatorServer) handleRejoinRoom(c *websocket.Conn, state *clientState, msg IntentMessage, logger *logrus.Logger) {
	playerID, err := uuid.Parse(msg.PlayerID)
	if err != nil {
		sendDirect(logger, c, map[string]interface{}{"type": "server_error", "gameState": models.StateError})
		return
	}
	r, ok := s.Rooms.GetRoom(msg.RoomCode)
	if !ok {
		logger.Infof("rejoin to unknown room %q", msg.RoomCode)
		sendDirect(logger, c, map[string]interface{}{"type": "server_error", "gameState": models.StateError})
		return
	}

	r.Mu.Lock()
	events, err := s.Session.RejoinSnapshot(r, playerID)
	if err != nil {
		r.Mu.Unlock()
		logger.Infof("rejoin to room %s with unknown player %s", r.Code, playerID)
		sendDirect(logger, c, map[string]interface{}{"type": "server_error", "gameState": models.StateError})
		return
	}
	p, _ := r.Player(playerID)
	p.Conn = c
	p.Connected = true
	state.roomCode = r.Code
	state.playerID = playerID
	dispatchEvents(logger, r, events)
	r.Mu.Unlock()

	logger.Infof("player %s rejoined room %s", playerID, r.Code)
	s.logAction(r.Code, playerID, "player_rejoined", nil)
}

// handleStartPitching is fire-and-forget: failures become a room-wide error
// state rather than a reply, except when no valid room exists to broadcast
// through.
func (s *CoordinatorServer) handleStartPitching(c *websocket.Conn, state *clientState, msg IntentMessage, logger *logrus.Logger) {
	r, ok := s.Rooms.GetRoom(msg.RoomCode)
	if !ok {
		sendDirect(logger, c, map[string]interface{}{"type": "server_error", "gameState": models.StateError})
		return
	}

	r.Mu.Lock()
	events, err := s.Session.StartPitching(r)
	if err != nil {
		logger.Warnf("start_pitching failed in room %s: %v", r.Code, err)
		events = s.Session.Fail(r)
		dispatchEvents(logger, r, events)
		r.Mu.Unlock()
		return
	}
	if len(events) == 0 {
		// Already pitching; duplicate host clicks are a no-op.
		logger.Infof("room %s is already in pitching state", r.Code)
		r.Mu.Unlock()
		return
	}
	dispatchEvents(logger, r, events)
	r.Mu.Unlock()

	logger.Infof("room %s entered pitching state", r.Code)
	s.logAction(r.Code, state.playerID, "cards_dealt", nil)
}

func (s *CoordinatorServer) handleStartRound(c *websocket.Conn, state *clientState, msg IntentMessage, logger *logrus.Logger) {
	r, ok := s.Rooms.GetRoom(msg.RoomCode)
	if !ok {
		sendDirect(logger, c, map[string]interface{}{"type": "server_error", "gameState": models.StateError})
		return
	}

	r.Mu.Lock()
	events, err := s.Session.StartRound(r)
	if err != nil {
		logger.Warnf("start_round failed in room %s: %v", r.Code, err)
		dispatchEvents(logger, r, s.Session.Fail(r))
		r.Mu.Unlock()
		return
	}
	round := r.Round
	dispatchEvents(logger, r, events)
	r.Mu.Unlock()

	logger.Infof("room %s started round %d", r.Code, round)
	s.logAction(r.Code, state.playerID, "round_started", map[string]interface{}{"round": round})
}

func (s *CoordinatorServer) handleSubmitApplication(c *websocket.Conn, state *clientState, msg IntentMessage, logger *logrus.Logger) {
	playerID, err := uuid.Parse(msg.PlayerID)
	if err != nil {
		nack(logger, c, "submit_application", errors.New("invalid player id"))
		return
	}
	r, ok := s.Rooms.GetRoom(msg.RoomCode)
	if !ok {
		nack(logger, c, "submit_application", room.ErrRoomNotFound)
		return
	}

	r.Mu.Lock()
	events, err := s.Session.SubmitApplication(r, playerID, msg.SelectedGreenCards, msg.SelectedRedCard)
	if err != nil {
		r.Mu.Unlock()
		nack(logger, c, "submit_application", err)
		return
	}
	submitted := r.SubmittedCount()
	ack(logger, c, "submit_application", map[string]interface{}{"submittedCount": submitted})
	dispatchEvents(logger, r, events)
	r.Mu.Unlock()

	s.logAction(r.Code, playerID, "application_submitted", map[string]interface{}{"submittedCount": submitted})
}

func (s *CoordinatorServer) handleGetCurrentPlayers(c *websocket.Conn, state *clientState, msg IntentMessage, logger *logrus.Logger) {
	r, ok := s.Rooms.GetRoom(msg.RoomCode)
	if !ok {
		sendDirect(logger, c, map[string]interface{}{"type": "server_error", "gameState": models.StateError})
		return
	}
	r.Mu.Lock()
	dispatchEvents(logger, r, s.Session.PlayerList(r))
	r.Mu.Unlock()
}

// handleLeaveRoom removes the bound participant from their room. If the
// departing participant is the host, or the room empties, the registry
// deletes the room; remaining participants just see an updated roster.
func (s *CoordinatorServer) handleLeaveRoom(state *clientState, logger *logrus.Logger) {
	if state.roomCode == "" || state.playerID == uuid.Nil {
		return
	}
	code, playerID := state.roomCode, state.playerID

	// If the host is leaving, the room is about to be deleted; grab the
	// other live connections first so they can be told the room is gone.
	var orphaned []*websocket.Conn
	if r, ok := s.Rooms.GetRoom(code); ok && playerID == r.HostID {
		r.Mu.Lock()
		for _, p := range r.Players {
			if p.ID != playerID && p.Connected && p.Conn != nil {
				orphaned = append(orphaned, p.Conn)
			}
		}
		r.Mu.Unlock()
	}

	s.Rooms.RemovePlayer(code, playerID)
	state.roomCode = ""
	state.playerID = uuid.Nil

	if r, ok := s.Rooms.GetRoom(code); ok {
		r.Mu.Lock()
		dispatchEvents(logger, r, s.Session.PlayerList(r))
		r.Mu.Unlock()
	} else {
		for _, oc := range orphaned {
			oc.Close(RoomGoneError, "the host closed the room")
		}
	}
	logger.Infof("player %s left room %s", playerID, code)
	s.logAction(code, playerID, "player_left", nil)
}

// handleDisconnect severs the transport binding on a dropped connection.
// The participant record survives so the client can rejoin with its durable
// id; rooms are only cleaned up on explicit leave or host departure.
func (s *CoordinatorServer) handleDisconnect(state *clientState, logger *logrus.Logger) {
	if state.roomCode == "" || state.playerID == uuid.Nil {
		return
	}
	r, ok := s.Rooms.GetRoom(state.roomCode)
	if !ok {
		return
	}
	r.Mu.Lock()
	if p, found := r.Player(state.playerID); found {
		p.Connected = false
		p.Conn = nil
	}
	r.Mu.Unlock()
	logger.Infof("player %s disconnected from room %s", state.playerID, state.roomCode)
}
