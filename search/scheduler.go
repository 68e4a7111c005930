package search

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"blockpress/models"
	"blockpress/storage"
)

const (
	DefaultReindexSchedule = "@every 1h"
	reindexBatch           = 100
	reindexTimeout         = 10 * time.Minute
)

// PostIndexer is the write side of the index.
type PostIndexer interface {
	IndexPost(ctx context.Context, post *models.Post) error
}

// Scheduler periodically rebuilds the index from the post store.
type Scheduler struct {
	store   storage.PostStore
	indexer PostIndexer
	cron    *cron.Cron
	logger  arbor.ILogger
}

func NewScheduler(store storage.PostStore, indexer PostIndexer, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		store:   store,
		indexer: indexer,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the reindex job and starts the cron runner.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultReindexSchedule
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("invalid reindex schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Search reindex scheduler started")
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Search reindex scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.Reindex(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int("indexed", n).Msg("Search reindex failed")
		return
	}
	s.logger.Info().
		Int("indexed", n).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Search reindex completed")
}

// Reindex walks every post in batches and pushes it into the index. Posts
// that fail to index are logged and skipped.
func (s *Scheduler) Reindex(ctx context.Context) (int, error) {
	indexed := 0
	for offset := 0; ; offset += reindexBatch {
		batch, total, err := s.store.ListPosts(ctx, storage.PostQuery{Offset: offset, Limit: reindexBatch})
		if err != nil {
			return indexed, fmt.Errorf("failed to list posts at offset %d: %w", offset, err)
		}

		for i := range batch {
			if err := s.indexer.IndexPost(ctx, &batch[i]); err != nil {
				s.logger.Warn().Err(err).Str("post_id", batch[i].ID).Msg("Failed to index post")
				continue
			}
			indexed++
		}

		if len(batch) == 0 || offset+len(batch) >= total {
			return indexed, nil
		}
	}
}
