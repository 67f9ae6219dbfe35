package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/kickboard/internal/adapter"
	"github.com/mmcdole/kickboard/internal/adapter/source"
	"github.com/mmcdole/kickboard/internal/cache"
	"github.com/mmcdole/kickboard/internal/domain"
	"github.com/mmcdole/kickboard/internal/service"
	"github.com/mmcdole/kickboard/internal/store"
	"github.com/mmcdole/kickboard/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		configPath  string
		once        bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&once, "once", false, "refresh once, print the roster and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("kickboard %s\n", Version)
		return
	}

	// Without a terminal there is nobody to draw the dashboard for
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		once = true
	}

	if err := run(configPath, once); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired services
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	store    *store.BoltStore
	redis    *cache.Redis
	roster   *service.RosterStore
	refresh  *service.RefreshService
	requests *service.RequestService
	alerts   chan adapter.Notification
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
}

func run(configPath string, once bool) error {
	cfg, err := adapter.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logger *slog.Logger
	if once {
		logger = adapter.NewTextLogger(os.Stderr, cfg.Logging.Level)
	} else {
		var closer io.Closer
		logger, closer, err = adapter.SetupLogger(&cfg.Logging)
		if err != nil {
			// Fall back to null logger if file logging fails
			logger = adapter.NullLogger()
		} else {
			defer closer.Close()
		}
	}
	slog.SetDefault(logger)
	logger.Info("starting kickboard", "version", Version, "once", once)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := wire(ctx, cfg, logger, !once)
	if err != nil {
		return err
	}
	defer a.Close()

	streamers := service.BuildRoster(cfg.Roster, logger)
	if once {
		return runOnce(ctx, a, streamers, os.Stdout)
	}
	return runTUI(ctx, a, streamers)
}

// wire builds every service from configuration
func wire(ctx context.Context, cfg *adapter.Config, logger *slog.Logger, interactive bool) (*app, error) {
	st, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		logger.Warn("failed to open store, preferences will not persist", "path", cfg.Store.Path, "error", err)
		st, err = store.NewBoltStore("")
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
	}

	a := &app{cfg: cfg, logger: logger, store: st}
	var requestRepo domain.RequestRepository = st

	if cfg.Redis.URL != "" {
		rds, err := connectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without shared cache", "error", err)
		} else {
			logger.Info("shared cache enabled", "ttl", cfg.Redis.StatusTTL)
			a.redis = rds
			requestRepo = cache.NewRequestRepository(rds)
		}
	}

	fetcher, err := source.NewFetcher(cfg, a.redis, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	var sink chan<- adapter.Notification
	if interactive {
		a.alerts = make(chan adapter.Notification, 16)
		sink = a.alerts
	}
	notifier := adapter.NewTerminalNotifier(cfg.Notifications, sink, logger)

	a.roster = service.NewRosterStore(st, logger)
	scheduler := service.NewBatchScheduler(fetcher, a.roster, service.SchedulerConfig{
		BatchSize:     cfg.Refresh.BatchSize,
		BatchDelay:    cfg.Refresh.BatchDelay,
		ErrorDelay:    cfg.Refresh.ErrorDelay,
		Attempts:      cfg.Refresh.Attempts,
		RetryDelay:    cfg.Refresh.RetryDelay,
		FetchDeadline: cfg.Refresh.FetchDeadline,
	}, logger)
	a.refresh = service.NewRefreshService(a.roster, scheduler, fetcher, notifier, service.RefreshConfig{
		Interval:      cfg.Refresh.Interval,
		FetchDeadline: cfg.Refresh.FetchDeadline,
	}, logger)
	a.roster.Subscribe(service.NewAlertObserver(notifier, logger))
	a.requests = service.NewRequestService(requestRepo, a.refresh, a.roster, logger)

	return a, nil
}

func connectRedis(ctx context.Context, url string) (*cache.Redis, error) {
	rds, err := cache.New(url)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rds.Ping(pingCtx); err != nil {
		rds.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return rds, nil
}

func runTUI(ctx context.Context, a *app, streamers []domain.Streamer) error {
	observer := tui.NewChannelObserver()
	a.roster.Subscribe(observer)

	if err := a.refresh.Start(ctx, streamers); err != nil {
		return err
	}
	defer a.refresh.Stop()

	launcher := adapter.NewLauncher(a.cfg.Player, a.logger)
	model := tui.NewModel(ctx, a.refresh, a.requests, launcher, observer.Updates(), a.alerts, a.cfg.UI.ShowOffline)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

// runOnce refreshes the roster a single time and prints it
func runOnce(ctx context.Context, a *app, streamers []domain.Streamer, w io.Writer) error {
	a.roster.Load(streamers)
	report := a.refresh.RefreshAll(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	a.logger.Info("refresh finished", "fetched", report.Fetched, "failed", report.Failed)

	return printRoster(w, a.roster.Snapshot(), a.cfg.UI.ShowOffline, time.Now())
}

func printRoster(w io.Writer, snapshot domain.RosterSnapshot, showOffline bool, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSTREAMER\tVIEWERS\tUPTIME\tCATEGORY\tTITLE")
	for _, st := range snapshot.Streamers {
		status, viewers, uptime, category, title := "offline", "", "", "", ""
		switch {
		case st.Error:
			status = "error"
		case st.Channel == nil:
			status = "pending"
		case st.Channel.NotFound:
			status = "missing"
		case st.Channel.IsLive:
			status = "LIVE"
			viewers = domain.FormatViewers(st.Channel.ViewerCount)
			uptime = domain.FormatDuration(st.Channel.Uptime(now))
			category = st.Channel.LiveCategory
			title = st.Channel.LiveTitle
		default:
			if !showOffline {
				continue
			}
		}

		name := st.DisplayName()
		if st.IsFavorite {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", status, name, viewers, uptime, category, title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d live, %d/%d loaded, %d unreachable\n",
		snapshot.LiveCount(), snapshot.LoadedCount(), len(snapshot.Streamers), snapshot.FailedCount())
	return err
}
