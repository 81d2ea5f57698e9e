package services

import (
	"github.com/coopgaem/server/logger"
	"github.com/coopgaem/server/models"
	"github.com/coopgaem/server/persistence"
)

// CompletionService writes completion records to the configured store. The
// write runs off the tick goroutine and errors are logged, never surfaced:
// a dead database must not affect a running room.
type CompletionService struct {
	store persistence.RecordStore
}

func NewCompletionService(store persistence.RecordStore) *CompletionService {
	return &CompletionService{store: store}
}

// RecordCompletion implements room.CompletionSink.
func (s *CompletionService) RecordCompletion(rec *models.CompletionRecord) {
	if s.store == nil {
		return
	}
	go func() {
		if err := s.store.SaveCompletion(rec); err != nil {
			logger.Log.Errorf("save completion for room %s: %v", rec.RoomID, err)
			return
		}
		logger.Log.Infof("recorded completion for room %s (%v)", rec.RoomID, rec.TotalTime)
	}()
}
