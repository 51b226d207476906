// Package mirror keeps a local store in step with the Jobo job feed.
//
// A sync drains the whole feed into the store in batches, then deletes the
// jobs the API reports as expired since the previous sync, and finally
// records the time the sync started as the next checkpoint.
package mirror

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobo-ai/jobo-go/jobo"
)

const (
	// DefaultUpsertBatch is the number of jobs written per transaction
	DefaultUpsertBatch = 500
	// MaxExpiredLookback is the furthest back the expired ids endpoint accepts
	MaxExpiredLookback = 7 * 24 * time.Hour
	// ExpiredLookbackMargin keeps a clamped lower bound inside the accepted
	// window while the request is in flight
	ExpiredLookbackMargin = time.Minute
	// CheckpointExpired names the checkpoint holding the last sync start
	CheckpointExpired = "expired_since"
)

// Feed is the part of jobo.FeedClient a sync needs
type Feed interface {
	EnumerateJobs(ctx context.Context, req jobo.JobFeedRequest) iter.Seq2[jobo.Job, error]
	EnumerateExpiredJobIDs(ctx context.Context, req jobo.ExpiredJobIDsRequest) iter.Seq2[uuid.UUID, error]
}

// Store is the part of store.Store a sync needs
type Store interface {
	UpsertJobs(ctx context.Context, jobs []jobo.Job) error
	DeleteJobs(ctx context.Context, ids []uuid.UUID) (int64, error)
	Checkpoint(ctx context.Context, name string) (time.Time, bool, error)
	SetCheckpoint(ctx context.Context, name string, t time.Time) error
}

// Stats summarizes one sync
type Stats struct {
	Upserted int
	Deleted  int64
	// ExpiredSince is the lower bound used for the expired ids query
	ExpiredSince time.Time
	Duration     time.Duration
}

// Syncer mirrors the feed into a Store
type Syncer struct {
	feed      Feed
	store     Store
	request   jobo.JobFeedRequest
	batchSize int
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Syncer
type Option func(*Syncer)

// WithRequest narrows the mirrored feed (sources, locations, remote)
func WithRequest(req jobo.JobFeedRequest) Option {
	return func(s *Syncer) {
		s.request = req
	}
}

// WithUpsertBatch sets how many jobs are written per transaction
func WithUpsertBatch(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the logger for progress messages
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// NewSyncer creates a Syncer
func NewSyncer(feed Feed, store Store, opts ...Option) *Syncer {
	s := &Syncer{
		feed:      feed,
		store:     store,
		batchSize: DefaultUpsertBatch,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one sync. On error the returned Stats still count the work
// that was written; the checkpoint only advances after a complete sync.
func (s *Syncer) Run(ctx context.Context) (Stats, error) {
	started := s.now()
	var stats Stats

	checkpoint, ok, err := s.store.Checkpoint(ctx, CheckpointExpired)
	if err != nil {
		return stats, fmt.Errorf("read checkpoint: %w", err)
	}

	upserted, err := s.syncJobs(ctx)
	stats.Upserted = upserted
	if err != nil {
		return stats, fmt.Errorf("sync jobs: %w", err)
	}

	// The lookback window is relative to the expired ids request
	since := s.expiredSince(checkpoint, ok, s.now())
	stats.ExpiredSince = since

	deleted, err := s.pruneExpired(ctx, since)
	stats.Deleted = deleted
	if err != nil {
		return stats, fmt.Errorf("prune expired jobs: %w", err)
	}

	if err := s.store.SetCheckpoint(ctx, CheckpointExpired, started); err != nil {
		return stats, fmt.Errorf("record checkpoint: %w", err)
	}

	stats.Duration = s.now().Sub(started)
	s.logger.Info().
		Int("upserted", stats.Upserted).
		Int64("deleted", stats.Deleted).
		Time("expired_since", since).
		Dur("duration", stats.Duration).
		Msg("Mirror sync complete")

	return stats, nil
}

// expiredSince returns the previous checkpoint, clamped to the lookback the
// API accepts at now
func (s *Syncer) expiredSince(checkpoint time.Time, ok bool, now time.Time) time.Time {
	oldest := now.Add(-MaxExpiredLookback + ExpiredLookbackMargin)
	if !ok || checkpoint.Before(oldest) {
		s.logger.Debug().Time("since", oldest).Msg("Using maximum expired lookback")
		return oldest
	}
	return checkpoint
}

// syncJobs streams the feed into the store. A partial batch is flushed before
// a feed error is returned.
func (s *Syncer) syncJobs(ctx context.Context) (int, error) {
	batch := make([]jobo.Job, 0, s.batchSize)
	upserted := 0

	flush := func(ctx context.Context) error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.store.UpsertJobs(ctx, batch); err != nil {
			return err
		}
		upserted += len(batch)
		s.logger.Debug().Int("batch", len(batch)).Int("total", upserted).Msg("Upserted jobs")
		batch = batch[:0]
		return nil
	}

	for job, err := range s.feed.EnumerateJobs(ctx, s.request) {
		if err != nil {
			// Keep what was received even when ctx is what failed
			if flushErr := flush(context.WithoutCancel(ctx)); flushErr != nil {
				s.logger.Error().Err(flushErr).Msg("Failed to flush partial batch")
			}
			return upserted, err
		}
		batch = append(batch, job)
		if len(batch) == s.batchSize {
			if err := flush(ctx); err != nil {
				return upserted, err
			}
		}
	}

	return upserted, flush(ctx)
}

func (s *Syncer) pruneExpired(ctx context.Context, since time.Time) (int64, error) {
	req := jobo.ExpiredJobIDsRequest{ExpiredSince: since}
	batch := make([]uuid.UUID, 0, s.batchSize)
	var deleted int64

	flush := func(ctx context.Context) error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.store.DeleteJobs(ctx, batch)
		if err != nil {
			return err
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	for id, err := range s.feed.EnumerateExpiredJobIDs(ctx, req) {
		if err != nil {
			// Keep what was received even when ctx is what failed
			if flushErr := flush(context.WithoutCancel(ctx)); flushErr != nil {
				s.logger.Error().Err(flushErr).Msg("Failed to flush partial batch")
			}
			return deleted, err
		}
		batch = append(batch, id)
		if len(batch) == s.batchSize {
			if err := flush(ctx); err != nil {
				return deleted, err
			}
		}
	}

	return deleted, flush(ctx)
}
