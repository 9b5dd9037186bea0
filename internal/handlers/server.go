package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/roompitch/server/internal/game"
	"github.com/roompitch/server/internal/journal"
	"github.com/roompitch/server/internal/room"
)

// CoordinatorServer ties the room registry, the game session state machine
// and the action journal together. It is constructed once by the process
// entry point and passed by reference; there is no ambient global registry.
type CoordinatorServer struct {
	Rooms   *room.Store
	Session *game.Session
	Journal *journal.Journal

	actionIndex atomic.Int64
}

// NewCoordinatorServer builds a server with an empty registry. The journal
// may be nil, in which case intent journaling is a no-op.
func NewCoordinatorServer(j *journal.Journal) *CoordinatorServer {
	return &CoordinatorServer{
		Rooms:   room.NewStore(),
		Session: game.NewSession(),
		Journal: j,
	}
}

// logAction journals one processed intent. Failures are logged and
// swallowed; the journal is an observation stream, never a dependency of
// room mutation.
func (s *CoordinatorServer) logAction(roomCode string, actor uuid.UUID, actionType string, payload map[string]interface{}) {
	rec := journal.ActionRecord{
		RoomCode:      roomCode,
		ActionIndex:   int(s.actionIndex.Add(1)),
		ActorID:       actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Journal.Publish(ctx, rec); err != nil {
		log.Warnf("journal publish failed for room %s action %s: %v", roomCode, actionType, err)
	}
}
