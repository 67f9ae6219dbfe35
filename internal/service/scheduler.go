package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/kickboard/internal/domain"
)

// SchedulerConfig controls batching and backpressure
type SchedulerConfig struct {
	BatchSize     int
	BatchDelay    time.Duration // After a clean group
	ErrorDelay    time.Duration // After a group with at least one failed fetch
	Attempts      int           // Fetches per streamer before giving up (1 = no retry)
	RetryDelay    time.Duration
	FetchDeadline time.Duration // Upper bound per streamer, all paths included
}

// BatchReport summarizes one scheduler run
type BatchReport struct {
	Groups  int
	Fetched int
	Failed  int
}

// BatchScheduler fetches streamers in small sequential groups and merges
// each result into the roster as soon as it arrives.
type BatchScheduler struct {
	fetcher domain.ChannelFetcher
	roster  *RosterStore
	cfg     SchedulerConfig
	logger  *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewBatchScheduler creates a scheduler. Zero config values fall back to defaults.
func NewBatchScheduler(fetcher domain.ChannelFetcher, roster *RosterStore, cfg SchedulerConfig, logger *slog.Logger) *BatchScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 2
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	return &BatchScheduler{
		fetcher: fetcher,
		roster:  roster,
		cfg:     cfg,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// Run fetches streamers group by group. Members of a group are fetched
// concurrently; the next group starts after BatchDelay, or ErrorDelay when
// the group saw a failure. Cancelling ctx stops the run between fetches
// and drops results that were cut short.
func (s *BatchScheduler) Run(ctx context.Context, streamers []domain.Streamer) BatchReport {
	var report BatchReport
	start := time.Now()

	for offset := 0; offset < len(streamers); offset += s.cfg.BatchSize {
		end := min(offset+s.cfg.BatchSize, len(streamers))
		group := streamers[offset:end]
		report.Groups++

		fetched, failed := s.runGroup(ctx, group)
		report.Fetched += fetched
		report.Failed += failed

		if ctx.Err() != nil {
			s.logger.Debug("batch run cancelled", "groups", report.Groups)
			break
		}
		if end >= len(streamers) {
			break
		}

		delay := s.cfg.BatchDelay
		if failed > 0 {
			delay = s.cfg.ErrorDelay
		}
		if err := s.sleep(ctx, delay); err != nil {
			break
		}
	}

	s.logger.Info("batch run complete",
		"streamers", len(streamers),
		"groups", report.Groups,
		"fetched", report.Fetched,
		"failed", report.Failed,
		"duration", time.Since(start))
	return report
}

// runGroup fetches one group concurrently. One failure never cancels siblings.
func (s *BatchScheduler) runGroup(ctx context.Context, group []domain.Streamer) (fetched, failed int) {
	var nFetched, nFailed atomic.Int32
	var g errgroup.Group

	for _, st := range group {
		g.Go(func() error {
			ch := s.fetch(ctx, st.Username)
			if ctx.Err() != nil {
				return nil
			}
			s.roster.MergeFetchResult(st.ID, ch)
			nFetched.Add(1)
			if ch.Error {
				nFailed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(nFetched.Load()), int(nFailed.Load())
}

// fetch calls the fetcher up to Attempts times while it reports an error
func (s *BatchScheduler) fetch(ctx context.Context, username string) domain.Channel {
	var ch domain.Channel
	for attempt := 1; ; attempt++ {
		ch = s.fetchOnce(ctx, username)
		if !ch.Error || attempt >= s.cfg.Attempts {
			return ch
		}
		s.logger.Debug("retrying fetch", "id", username, "attempt", attempt)
		if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
			return ch
		}
	}
}

func (s *BatchScheduler) fetchOnce(ctx context.Context, username string) domain.Channel {
	if s.cfg.FetchDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchDeadline)
		defer cancel()
	}
	return s.fetcher.FetchChannel(ctx, username)
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
