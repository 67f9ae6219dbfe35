package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/kickboard/internal/adapter"
	"github.com/mmcdole/kickboard/internal/adapter/source/kick"
	"github.com/mmcdole/kickboard/internal/cache"
	"github.com/mmcdole/kickboard/internal/domain"
)

// PathsFromConfig converts configured paths to fetcher path strategies
func PathsFromConfig(cfgs []adapter.PathConfig) ([]kick.Path, error) {
	paths := make([]kick.Path, 0, len(cfgs))
	for i, pc := range cfgs {
		name := pc.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", pc.Kind, i)
		}
		switch pc.Kind {
		case adapter.PathKindDirect:
			p := kick.Direct()
			p.Name = name
			paths = append(paths, p)
		case adapter.PathKindPrefix:
			paths = append(paths, kick.Prefix(name, pc.Proxy))
		case adapter.PathKindTemplate:
			paths = append(paths, kick.Template(name, pc.Proxy))
		default:
			return nil, fmt.Errorf("unknown path kind: %s", pc.Kind)
		}
	}
	return paths, nil
}

// NewFetcher builds the Kick fetcher from the application config.
// When rds is non-nil the fetcher is wrapped in a shared status cache.
func NewFetcher(cfg *adapter.Config, rds *cache.Redis, logger *slog.Logger) (domain.ChannelFetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	paths, err := PathsFromConfig(cfg.Upstream.Paths)
	if err != nil {
		return nil, err
	}

	client := kick.NewClient(kick.Config{
		ChannelURL:     cfg.Upstream.ChannelURL,
		VideosURL:      cfg.Upstream.VideosURL,
		Paths:          paths,
		PathTimeout:    cfg.Upstream.PathTimeout,
		HistoryTimeout: cfg.Upstream.HistoryTimeout,
		UserAgent:      cfg.Upstream.UserAgent,
	}, logger)

	if rds == nil {
		return client, nil
	}
	return cache.NewStatusCache(client, rds, cfg.Redis.StatusTTL, logger), nil
}
