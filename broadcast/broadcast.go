package broadcast

import (
	"errors"

	"github.com/coopgaem/server/room"
	"github.com/coopgaem/server/session"
)

var ErrRoomNotFound = errors.New("room not found")

// Broadcaster fans messages out to sets of connected players.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	BroadcastToRoomExcept(roomID, exceptSessionID string, msgID uint16, data []byte) error
}

// RoomBroadcaster resolves a room's roster through the registry and sends
// through the session manager. A failed send is skipped; the read loop of
// the dead connection handles the cleanup.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	return b.BroadcastToRoomExcept(roomID, "", msgID, data)
}

// BroadcastToRoomExcept sends to every player in the room but the named
// session; peers-only events (player connected/disconnected) use it.
func (b *RoomBroadcaster) BroadcastToRoomExcept(roomID, exceptSessionID string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, sid := range r.SessionIDs() {
		if sid == exceptSessionID {
			continue
		}
		s, ok := b.sessionManager.Get(sid)
		if !ok {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
