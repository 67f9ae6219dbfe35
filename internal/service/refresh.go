package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
)

// RefreshConfig controls the periodic refresh
type RefreshConfig struct {
	Interval      time.Duration
	FetchDeadline time.Duration // Bound for direct single-streamer fetches
}

// RefreshService drives the refresh lifecycle: the startup load, the
// periodic full refresh and the manual retries.
type RefreshService struct {
	roster    *RosterStore
	scheduler *BatchScheduler
	fetcher   domain.ChannelFetcher
	notifier  domain.Notifier
	cfg       RefreshConfig
	logger    *slog.Logger

	mu      sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewRefreshService creates a refresh service. notifier may be nil.
func NewRefreshService(
	roster *RosterStore,
	scheduler *BatchScheduler,
	fetcher domain.ChannelFetcher,
	notifier domain.Notifier,
	cfg RefreshConfig,
	logger *slog.Logger,
) *RefreshService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &RefreshService{
		roster:    roster,
		scheduler: scheduler,
		fetcher:   fetcher,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// BuildRoster turns configured roster entries (usernames or channel URLs)
// into streamers. Invalid and duplicate entries are skipped.
func BuildRoster(entries []string, logger *slog.Logger) []domain.Streamer {
	if logger == nil {
		logger = slog.Default()
	}
	seen := make(map[string]bool, len(entries))
	streamers := make([]domain.Streamer, 0, len(entries))
	for _, entry := range entries {
		username, err := domain.ExtractUsername(entry)
		if err != nil {
			logger.Warn("skipping roster entry", "entry", entry, "error", err)
			continue
		}
		key := strings.ToLower(username)
		if seen[key] {
			continue
		}
		seen[key] = true
		streamers = append(streamers, domain.Streamer{
			ID:       username,
			Username: username,
			IsSystem: true,
			Links:    map[string]string{"kick": "https://kick.com/" + username},
		})
	}
	return streamers
}

// Start publishes the skeleton roster, then launches the first refresh and
// the periodic ticker in the background. It returns immediately.
func (s *RefreshService) Start(ctx context.Context, streamers []domain.Streamer) error {
	s.mu.Lock()
	if s.runCtx != nil {
		s.mu.Unlock()
		return fmt.Errorf("refresh service already started")
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.roster.Load(streamers)
	s.logger.Info("roster loaded", "count", len(streamers), "interval", s.cfg.Interval)

	s.spawn(func(ctx context.Context) {
		s.RefreshAll(ctx)
	})
	s.spawn(s.tickLoop)
	return nil
}

// Stop cancels background work and waits for it to finish
func (s *RefreshService) Stop() {
	s.mu.Lock()
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *RefreshService) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Runs may overlap when a pass outlasts the interval
			s.spawn(func(ctx context.Context) {
				s.RefreshAll(ctx)
			})
		}
	}
}

// spawn runs fn in the background under the service lifecycle
func (s *RefreshService) spawn(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

// RefreshAll runs the scheduler over the current roster
func (s *RefreshService) RefreshAll(ctx context.Context) BatchReport {
	s.roster.BeginLoading()
	defer s.roster.EndLoading()

	return s.scheduler.Run(ctx, s.roster.Snapshot().Streamers)
}

// RetryOne clears one streamer's status and fetches it directly, skipping
// batching and any shared cache
func (s *RefreshService) RetryOne(ctx context.Context, id string) error {
	st, ok := s.roster.Get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrStreamerNotFound)
	}
	s.roster.ClearStatus(id)

	ch := s.fetchDirect(ctx, st.Username, true)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.roster.MergeFetchResult(id, ch)
	s.logger.Info("retried streamer", "id", id, "error", ch.Error)
	return nil
}

// RetryFailed clears every failed streamer and refetches exactly that set
// through the scheduler. When ctx is cancelled mid-run, members without a
// result are marked failed again.
func (s *RefreshService) RetryFailed(ctx context.Context) BatchReport {
	failed := s.roster.ClearFailed()
	if len(failed) == 0 {
		return BatchReport{}
	}

	s.logger.Info("retrying failed streamers", "count", len(failed))
	s.roster.BeginLoading()
	defer s.roster.EndLoading()

	report := s.scheduler.Run(ctx, failed)
	if ctx.Err() != nil {
		// Members the cancelled run never reached go back to failed
		if n := s.roster.RestoreFailed(failed); n > 0 {
			s.logger.Info("retry cancelled, streamers still failed", "count", n)
		}
	}
	return report
}

// ToggleFavorite flips a streamer's favorite flag
func (s *RefreshService) ToggleFavorite(id string) (bool, error) {
	return s.roster.ToggleFavorite(id)
}

// ToggleNotify flips a streamer's alert flag. Enabling asks for notification
// permission first; a refusal leaves the flag off and returns
// domain.ErrNotificationsDenied.
func (s *RefreshService) ToggleNotify(ctx context.Context, id string) (bool, error) {
	st, ok := s.roster.Get(id)
	if !ok {
		return false, fmt.Errorf("%s: %w", id, domain.ErrStreamerNotFound)
	}

	if !st.NotificationsEnabled && s.notifier != nil {
		perm := s.notifier.Permission()
		if perm == domain.PermissionDefault {
			var err error
			perm, err = s.notifier.RequestPermission(ctx)
			if err != nil {
				return false, fmt.Errorf("request notification permission: %w", err)
			}
		}
		if perm != domain.PermissionGranted {
			return false, domain.ErrNotificationsDenied
		}
	}

	return s.roster.ToggleNotify(id)
}

// Append adds a streamer to the top of the roster and fetches it in the background
func (s *RefreshService) Append(ctx context.Context, st domain.Streamer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.roster.Append(st); err != nil {
		return err
	}
	s.spawn(func(runCtx context.Context) {
		ch := s.fetchDirect(runCtx, st.Username, false)
		if runCtx.Err() != nil {
			return
		}
		s.roster.MergeFetchResult(st.ID, ch)
	})
	s.logger.Info("streamer added", "id", st.ID)
	return nil
}

// fetchDirect fetches one streamer outside the scheduler
func (s *RefreshService) fetchDirect(ctx context.Context, username string, fresh bool) domain.Channel {
	if s.cfg.FetchDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchDeadline)
		defer cancel()
	}
	if ff, ok := s.fetcher.(domain.FreshFetcher); ok && fresh {
		return ff.FetchFresh(ctx, username)
	}
	return s.fetcher.FetchChannel(ctx, username)
}
