package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/kickboard/internal/domain"
)

// maxSimilarDistance is the edit distance under which two usernames are
// reported as possibly the same channel
const maxSimilarDistance = 2

// SubmitResult describes the outcome of a streamer request
type SubmitResult struct {
	Request domain.StreamerRequest
	Voted   bool     // An identical pending request existed and received a vote
	Similar []string // Tracked or requested usernames that look alike
}

// RequestService manages suggestions to add streamers to the roster
type RequestService struct {
	repo    domain.RequestRepository
	refresh *RefreshService
	roster  *RosterStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewRequestService creates a request service. Accepted requests are
// appended through refresh.
func NewRequestService(repo domain.RequestRepository, refresh *RefreshService, roster *RosterStore, logger *slog.Logger) *RequestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestService{
		repo:    repo,
		refresh: refresh,
		roster:  roster,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit records a request for input (a username or channel URL).
// tags and characters are comma separated. A request for a tracked
// streamer fails with domain.ErrDuplicateStreamer; a repeat of a pending
// request adds a vote instead of a new entry.
func (s *RequestService) Submit(ctx context.Context, input, tags, characters string) (SubmitResult, error) {
	username, err := domain.ExtractUsername(input)
	if err != nil {
		return SubmitResult{}, err
	}

	snapshot := s.roster.Snapshot()
	for _, st := range snapshot.Streamers {
		if strings.EqualFold(st.Username, username) {
			return SubmitResult{}, fmt.Errorf("%s: %w", username, domain.ErrDuplicateStreamer)
		}
	}

	pending, err := s.repo.ListRequests(ctx)
	if err != nil {
		return SubmitResult{}, err
	}

	for _, req := range pending {
		if !strings.EqualFold(req.Username, username) {
			continue
		}
		req.Votes++
		req.Tags = mergeValues(req.Tags, splitList(tags))
		req.Characters = mergeValues(req.Characters, splitList(characters))
		if err := s.repo.SaveRequest(ctx, req); err != nil {
			return SubmitResult{}, fmt.Errorf("save request: %w", err)
		}
		s.logger.Info("request voted", "id", req.ID, "username", username, "votes", req.Votes)
		return SubmitResult{Request: req, Voted: true}, nil
	}

	known := make([]string, 0, len(snapshot.Streamers)+len(pending))
	for _, st := range snapshot.Streamers {
		known = append(known, st.Username)
	}
	for _, req := range pending {
		known = append(known, req.Username)
	}

	req := domain.StreamerRequest{
		ID:         uuid.NewString(),
		Username:   username,
		Tags:       splitList(tags),
		Characters: splitList(characters),
		Votes:      1,
		CreatedAt:  s.now(),
	}
	if err := s.repo.SaveRequest(ctx, req); err != nil {
		return SubmitResult{}, fmt.Errorf("save request: %w", err)
	}

	s.logger.Info("request submitted", "id", req.ID, "username", username)
	return SubmitResult{Request: req, Similar: similarNames(username, known)}, nil
}

// List returns the pending requests
func (s *RequestService) List(ctx context.Context) ([]domain.StreamerRequest, error) {
	return s.repo.ListRequests(ctx)
}

// Accept turns a request into a tracked streamer and removes the request
func (s *RequestService) Accept(ctx context.Context, id string) (domain.Streamer, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return domain.Streamer{}, err
	}

	st := domain.Streamer{
		ID:         req.Username,
		Username:   req.Username,
		Tags:       req.Tags,
		Characters: req.Characters,
		IsSystem:   false,
		Links:      map[string]string{"kick": "https://kick.com/" + req.Username},
		AddedAt:    s.now(),
	}
	if err := s.refresh.Append(ctx, st); err != nil {
		return domain.Streamer{}, err
	}

	if err := s.repo.DeleteRequest(ctx, id); err != nil && !errors.Is(err, domain.ErrRequestNotFound) {
		s.logger.Error("failed to delete accepted request", "id", id, "error", err)
	}
	s.logger.Info("request accepted", "id", id, "username", req.Username)
	return st, nil
}

// Delete rejects a request
func (s *RequestService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteRequest(ctx, id); err != nil {
		return err
	}
	s.logger.Info("request deleted", "id", id)
	return nil
}

// similarNames returns the entries of known within a small edit distance of
// username, closest first. Exact (case-insensitive) matches are excluded.
func similarNames(username string, known []string) []string {
	target := strings.ToLower(username)

	type candidate struct {
		name     string
		distance int
	}
	var found []candidate
	seen := make(map[string]bool)
	for _, name := range known {
		lower := strings.ToLower(name)
		if lower == target || seen[lower] {
			continue
		}
		seen[lower] = true

		d := fuzzy.LevenshteinDistance(target, lower)
		if d <= maxSimilarDistance || (len(target) >= 4 && fuzzy.MatchFold(target, lower)) {
			found = append(found, candidate{name: name, distance: d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})
	names := make([]string, len(found))
	for i, c := range found {
		names[i] = c.name
	}
	return names
}

// splitList splits a comma separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// mergeValues appends values missing from existing (case-insensitive)
func mergeValues(existing, values []string) []string {
	out := append([]string(nil), existing...)
	for _, v := range values {
		dup := false
		for _, e := range out {
			if strings.EqualFold(e, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
