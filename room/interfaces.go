package room

import "github.com/coopgaem/server/models"

// Broadcaster delivers a message to every player in a room. Defined here to
// break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}

// CompletionSink receives the record of a room that finished all levels.
// Implementations must not block the tick; failures are theirs to log.
type CompletionSink interface {
	RecordCompletion(rec *models.CompletionRecord)
}
