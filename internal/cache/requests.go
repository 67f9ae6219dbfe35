package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/mmcdole/kickboard/internal/domain"
)

// requestsKey is the hash holding every pending request, keyed by request ID
const requestsKey = keyPrefix + ":requests"

// hashBackend is the subset of Redis used by RequestRepository
type hashBackend interface {
	hGetAll(ctx context.Context, key string) (map[string]string, error)
	hGet(ctx context.Context, key, field string) (string, error)
	hSet(ctx context.Context, key, field string, value []byte) error
	hDel(ctx context.Context, key, field string) (int64, error)
}

// RequestRepository stores streamer requests in a Redis hash so they are
// shared between dashboards. Implements domain.RequestRepository.
type RequestRepository struct {
	hash hashBackend
}

var _ domain.RequestRepository = (*RequestRepository)(nil)

// NewRequestRepository creates a repository on top of r
func NewRequestRepository(r *Redis) *RequestRepository {
	return &RequestRepository{hash: r}
}

// ListRequests returns requests sorted by votes, then oldest first
func (r *RequestRepository) ListRequests(ctx context.Context) ([]domain.StreamerRequest, error) {
	values, err := r.hash.hGetAll(ctx, requestsKey)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	reqs := make([]domain.StreamerRequest, 0, len(values))
	for id, raw := range values {
		var req domain.StreamerRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return nil, fmt.Errorf("decode request %s: %w", id, err)
		}
		reqs = append(reqs, req)
	}
	sortRequests(reqs)
	return reqs, nil
}

func (r *RequestRepository) GetRequest(ctx context.Context, id string) (domain.StreamerRequest, error) {
	raw, err := r.hash.hGet(ctx, requestsKey, id)
	if errors.Is(err, redis.Nil) {
		return domain.StreamerRequest{}, domain.ErrRequestNotFound
	}
	if err != nil {
		return domain.StreamerRequest{}, fmt.Errorf("get request: %w", err)
	}
	var req domain.StreamerRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return domain.StreamerRequest{}, fmt.Errorf("decode request %s: %w", id, err)
	}
	return req, nil
}

func (r *RequestRepository) SaveRequest(ctx context.Context, req domain.StreamerRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := r.hash.hSet(ctx, requestsKey, req.ID, data); err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	return nil
}

func (r *RequestRepository) DeleteRequest(ctx context.Context, id string) error {
	n, err := r.hash.hDel(ctx, requestsKey, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if n == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// sortRequests orders by votes descending, then creation time ascending
func sortRequests(reqs []domain.StreamerRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].Votes != reqs[j].Votes {
			return reqs[i].Votes > reqs[j].Votes
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}
