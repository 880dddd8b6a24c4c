package queries

import (
	"context"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// FriendRequestWithUser is a friend request joined with the other party's
// compact profile. Friend is nil when the profile could not be found.
type FriendRequestWithUser struct {
	service.FriendRequest
	Friend *service.LiteUser `json:"friend,omitempty"`
}

// FriendIDs returns the user ids of the caller's friends.
func (q *Queries) FriendIDs(ctx context.Context) ([]int64, error) {
	return cache.Fetch(ctx, q.qc, FriendIDsKey, q.svc.API.ListFriends)
}

// Friends returns the caller's friends as compact profiles, in the order the
// backend lists them.
func (q *Queries) Friends(ctx context.Context) ([]service.LiteUser, error) {
	ids, err := q.FriendIDs(ctx)
	if err != nil {
		return nil, err
	}
	users, err := q.LiteUsersList(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]service.LiteUser, 0, len(users))
	for _, u := range users {
		if u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

// FriendRequests returns the caller's sent or received friend requests,
// each joined with the other party's profile.
func (q *Queries) FriendRequests(ctx context.Context, t FriendRequestType) ([]FriendRequestWithUser, error) {
	requests, err := cache.Fetch(ctx, q.qc, FriendRequestKey(t), func(ctx context.Context) ([]service.FriendRequest, error) {
		all, err := q.svc.API.ListFriendRequests(ctx)
		if err != nil {
			return nil, err
		}
		if t == FriendRequestsSent {
			return all.Sent, nil
		}
		return all.Received, nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.UserID
	}
	users, err := q.LiteUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]FriendRequestWithUser, len(requests))
	for i, r := range requests {
		out[i] = FriendRequestWithUser{FriendRequest: r}
		if u, ok := users[r.UserID]; ok {
			out[i].Friend = &u
		}
	}
	return out, nil
}

// SendFriendRequest asks userID to become a friend. The cached profile of
// userID shows a pending request while the call is in flight and reverts if
// the backend rejects it.
func (q *Queries) SendFriendRequest(ctx context.Context, userID int64) error {
	key := UserKey(userID)
	_, err := cache.Mutate(ctx, q.qc, userID, func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, q.svc.API.SendFriendRequest(ctx, id)
	}, cache.MutationOptions[int64, struct{}]{
		OnMutate: cache.Optimistic(q.qc, key, func(u service.User, _ int64) service.User {
			u.Friends = service.FriendPending
			return u
		}),
		OnError: func(ctx context.Context, id int64, err error) {
			q.logger.Warn().Err(err).Int64("user_id", id).Msg("Friend request failed")
		},
		Invalidate: []cache.Key{key, FriendRequestKey(FriendRequestsSent)},
	})
	return err
}

// RespondFriendRequest accepts or rejects a received request.
func (q *Queries) RespondFriendRequest(ctx context.Context, friendRequestID int64, accept bool) error {
	_, err := cache.Mutate(ctx, q.qc, friendRequestID, func(ctx context.Context, id int64) (struct{}, error) {
		return struct{}{}, q.svc.API.RespondFriendRequest(ctx, id, accept)
	}, cache.MutationOptions[int64, struct{}]{
		Invalidate: []cache.Key{FriendRequestKey(FriendRequestsReceived), FriendIDsKey, UserBaseKey},
	})
	return err
}
