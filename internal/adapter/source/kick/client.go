package kick

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
)

const (
	defaultPathTimeout    = 5 * time.Second
	defaultHistoryTimeout = 3 * time.Second
	defaultUserAgent      = "Kickboard/1.0"
	maxBodyBytes          = 4 << 20
)

// errNotFound marks a definitive 404 from the upstream
var errNotFound = errors.New("channel not found upstream")

// Config configures a Client
type Config struct {
	ChannelURL     string // {id} is replaced by the escaped username
	VideosURL      string // {id} is replaced by the escaped username; empty disables the history lookup
	Paths          []Path
	PathTimeout    time.Duration
	HistoryTimeout time.Duration
	UserAgent      string
	HTTPClient     *http.Client
}

// Client fetches channel status from the public Kick API.
// Implements domain.ChannelFetcher.
type Client struct {
	channelURL     string
	videosURL      string
	paths          []Path
	pathTimeout    time.Duration
	historyTimeout time.Duration
	userAgent      string
	httpClient     *http.Client
	logger         *slog.Logger
	now            func() time.Time
}

// NewClient creates a new Kick API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		channelURL:     cfg.ChannelURL,
		videosURL:      cfg.VideosURL,
		paths:          cfg.Paths,
		pathTimeout:    cfg.PathTimeout,
		historyTimeout: cfg.HistoryTimeout,
		userAgent:      cfg.UserAgent,
		httpClient:     cfg.HTTPClient,
		logger:         logger,
		now:            time.Now,
	}
	if len(c.paths) == 0 {
		c.paths = []Path{Direct()}
	}
	if c.pathTimeout <= 0 {
		c.pathTimeout = defaultPathTimeout
	}
	if c.historyTimeout <= 0 {
		c.historyTimeout = defaultHistoryTimeout
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.httpClient == nil {
		// Per-request deadlines come from the context
		c.httpClient = &http.Client{}
	}
	return c
}

// FetchChannel returns the normalized status of username.
// It never fails: a definitive 404 yields a non-error NotFound record and
// exhausting every path yields a record with Error set.
func (c *Client) FetchChannel(ctx context.Context, username string) domain.Channel {
	target := c.buildURL(c.channelURL, username)

	var resp ChannelResponse
	err := c.tryPaths(ctx, target, c.pathTimeout, func(body []byte) error {
		var r ChannelResponse
		if err := json.Unmarshal(body, &r); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if r.User == nil {
			return fmt.Errorf("response has no user object")
		}
		resp = r
		return nil
	})

	switch {
	case errors.Is(err, errNotFound):
		c.logger.Info("channel not found", "id", username)
		return NotFoundChannel(username, c.now())
	case err != nil:
		c.logger.Warn("channel fetch failed on every path", "id", username, "error", err)
		return ErrorChannel(username, c.now())
	}

	var lastSeen *time.Time
	if resp.Livestream == nil {
		lastSeen = c.lastSeen(ctx, username, &resp)
	}
	return MapChannel(username, &resp, lastSeen, c.now())
}

// lastSeen finds the start of the most recent past session: the inline
// previous_livestreams field first, then the videos endpoint. Failures only
// leave the value empty.
func (c *Client) lastSeen(ctx context.Context, username string, resp *ChannelResponse) *time.Time {
	for _, s := range resp.PreviousLivestreams {
		if t := sessionStart(s); t != nil {
			return t
		}
	}

	if c.videosURL == "" {
		return nil
	}

	var videos []PastSession
	err := c.tryPaths(ctx, c.buildURL(c.videosURL, username), c.historyTimeout, func(body []byte) error {
		var v []PastSession
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("failed to parse videos: %w", err)
		}
		videos = v
		return nil
	})
	if err != nil {
		c.logger.Debug("history lookup failed", "id", username, "error", err)
		return nil
	}
	for _, v := range videos {
		if t := sessionStart(v); t != nil {
			return t
		}
	}
	return nil
}

// tryPaths requests target through each path in order until decode accepts a body.
// A 404 stops the iteration with errNotFound.
func (c *Client) tryPaths(ctx context.Context, target string, timeout time.Duration, decode func([]byte) error) error {
	var errs []error
	for _, p := range c.paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		reqURL := p.URL(target)
		status, body, err := c.get(ctx, reqURL, timeout)
		if err != nil {
			c.logger.Debug("path failed", "path", p.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		if status == http.StatusNotFound {
			return errNotFound
		}
		if status < 200 || status > 299 {
			c.logger.Debug("path returned error status", "path", p.Name, "status", status)
			errs = append(errs, fmt.Errorf("%s: unexpected status code: %d", p.Name, status))
			continue
		}
		if err := decode(body); err != nil {
			c.logger.Debug("path returned unusable payload", "path", p.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("no paths configured")
	}
	return errors.Join(errs...)
}

// get performs a single GET bounded by timeout
func (c *Client) get(ctx context.Context, reqURL string, timeout time.Duration) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// buildURL fills {id} and appends a cache-busting timestamp
func (c *Client) buildURL(tmpl, username string) string {
	u := strings.ReplaceAll(tmpl, "{id}", url.PathEscape(username))
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "_=" + strconv.FormatInt(c.now().UnixMilli(), 10)
}
