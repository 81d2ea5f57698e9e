package persistence

import (
	"github.com/coopgaem/server/models"
)

// RecordStore persists game-completion records. Nothing is ever read back
// into the simulation; room state does not survive a restart.
type RecordStore interface {
	SaveCompletion(rec *models.CompletionRecord) error
	Close() error
}
