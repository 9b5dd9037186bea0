package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/roompitch/server/internal/game"
	"github.com/roompitch/server/internal/models"
)

// dispatchEvents fans out the notifications a transition produced. It must
// be called with the room's mutex held: payloads are marshaled synchronously
// against the locked room so concurrent intents can never tear a snapshot,
// then the actual writes happen asynchronously. Broadcasts are
// fire-and-forget; delivery is never acknowledged.
func dispatchEvents(logger *logrus.Logger, r *models.Room, events []game.Event) {
	for _, ev := range events {
		msg := make(map[string]interface{}, len(ev.Payload)+1)
		msg["type"] = ev.Type
		for k, v := range ev.Payload {
			msg[k] = v
		}
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Errorf("failed to marshal event %s for room %s: %v", ev.Type, r.Code, err)
			continue
		}

		if ev.To == uuid.Nil {
			peers := r.ConnectedPlayers()
			conns := make([]*websocket.Conn, 0, len(peers))
			for _, p := range peers {
				conns = append(conns, p.Conn)
			}
			go writeAll(logger, conns, data, r.Code, ev.Type)
			continue
		}

		if p, ok := r.Player(ev.To); ok && p.Connected && p.Conn != nil {
			go writeOne(logger, p.Conn, data, r.Code, ev.Type)
		}
	}
}

// writeAll sends one marshaled event to every connection with a write
// timeout per peer.
func writeAll(logger *logrus.Logger, conns []*websocket.Conn, data []byte, roomCode string, t game.EventType) {
	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			logger.Warnf("failed to write %s broadcast in room %s: %v", t, roomCode, err)
		}
	}
}

// writeOne sends one marshaled event to a single connection.
func writeOne(logger *logrus.Logger, c *websocket.Conn, data []byte, roomCode string, t game.EventType) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		logger.Warnf("failed to write %s message in room %s: %v", t, roomCode, err)
	}
}

// sendDirect writes an arbitrary message to one connection, used for ack
// replies and connection-scoped errors that have no room to broadcast
// through.
func sendDirect(logger *logrus.Logger, c *websocket.Conn, message interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("failed to marshal direct message: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		logger.Warnf("failed to write direct message: %v", err)
	}
}
