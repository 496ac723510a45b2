package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

const (
	historyWriteTimeout = 5 * time.Second
	historyListLimit    = 100
)

// HistoryService appends immutable audit entries. Audit unavailability
// must never block authentication, so Record logs and swallows write
// failures. Writes run on a background context: a client disconnect
// mid-request does not cancel an in-flight history write.
type HistoryService struct {
	repo ports.HistoryRepository
	log  zerolog.Logger
}

func NewHistoryService(repo ports.HistoryRepository, log zerolog.Logger) *HistoryService {
	return &HistoryService{repo: repo, log: log}
}

func (s *HistoryService) Record(entry domain.HistoryEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	if err := s.repo.Append(ctx, &entry); err != nil {
		s.log.Error().Err(err).
			Str("user_id", entry.UserID).
			Str("event_kind", entry.EventKind).
			Bool("success", entry.Success).
			Msg("history write failed")
	}
}

func (s *HistoryService) List(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	return s.repo.ListByUser(ctx, userID, historyListLimit)
}
