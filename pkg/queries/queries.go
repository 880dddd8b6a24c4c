// Package queries combines the service facade with the query cache. Each
// operation reads through a semantic cache key, and each mutation
// invalidates the keys it affects.
package queries

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/rpc"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// UserStaleTime is how long profile data is served without refetching.
const UserStaleTime = 10 * time.Minute

// Queries runs cached data operations.
type Queries struct {
	svc    *service.Service
	qc     *cache.Client
	logger zerolog.Logger
}

// New creates Queries on top of svc, caching in qc.
func New(svc *service.Service, qc *cache.Client) *Queries {
	if svc == nil || qc == nil {
		panic("service and query cache cannot be nil")
	}
	return &Queries{
		svc:    svc,
		qc:     qc,
		logger: log.With().Str("component", "queries").Logger(),
	}
}

// Cache returns the underlying query cache.
func (q *Queries) Cache() *cache.Client {
	return q.qc
}

// Service returns the underlying facade.
func (q *Queries) Service() *service.Service {
	return q.svc
}

// User returns the full profile of userID.
func (q *Queries) User(ctx context.Context, userID int64) (service.User, error) {
	return cache.Fetch(ctx, q.qc, UserKey(userID), func(ctx context.Context) (service.User, error) {
		return q.svc.API.GetUser(ctx, strconv.FormatInt(userID, 10))
	}, cache.WithStaleTime(UserStaleTime))
}

// LiteUser returns the compact profile of userID. A zero id disables the
// query. NOT_FOUND is not retried.
func (q *Queries) LiteUser(ctx context.Context, userID int64) (service.LiteUser, error) {
	return cache.Fetch(ctx, q.qc, LiteUserKey(userID), func(ctx context.Context) (service.LiteUser, error) {
		return q.svc.User.GetLiteUser(ctx, strconv.FormatInt(userID, 10))
	},
		cache.WithStaleTime(UserStaleTime),
		cache.WithEnabled(userID != 0),
		cache.WithShouldRetry(func(attempt int, err error) bool {
			return !rpc.IsNotFound(err)
		}),
	)
}

// UniqueIDs drops zero ids and duplicates, keeping first-seen order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// LiteUsers returns the compact profiles of ids keyed by user id. Zero and
// duplicate ids are ignored; when none remain the query is disabled and the
// result is nil. Users the backend could not find are absent from the map.
func (q *Queries) LiteUsers(ctx context.Context, ids []int64) (map[int64]service.LiteUser, error) {
	unique := UniqueIDs(ids)
	if len(unique) == 0 {
		return nil, nil
	}
	return cache.Fetch(ctx, q.qc, LiteUsersKey(unique), func(ctx context.Context) (map[int64]service.LiteUser, error) {
		responses, err := q.svc.User.GetLiteUsers(ctx, unique)
		if err != nil {
			return nil, err
		}
		users := make(map[int64]service.LiteUser, len(responses))
		for _, r := range responses {
			if r.NotFound || r.User == nil {
				continue
			}
			users[r.User.UserID] = *r.User
		}
		return users, nil
	}, cache.WithStaleTime(UserStaleTime))
}

// LiteUsersList is LiteUsers with the result laid out like ids: same length,
// same order, nil where an id is zero or unknown.
func (q *Queries) LiteUsersList(ctx context.Context, ids []int64) ([]*service.LiteUser, error) {
	byID, err := q.LiteUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*service.LiteUser, len(ids))
	for i, id := range ids {
		if u, ok := byID[id]; ok {
			out[i] = &u
		}
	}
	return out, nil
}
