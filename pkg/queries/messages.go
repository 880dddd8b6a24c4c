package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/pagination"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// ErrUnknownConversationKind is returned for a kind other than chats,
// hosting or surfing.
var ErrUnknownConversationKind = errors.New("unknown conversation kind")

// ConversationKind selects the inbox mark-all-read works on.
type ConversationKind string

const (
	KindChats   ConversationKind = "chats"
	KindHosting ConversationKind = "hosting"
	KindSurfing ConversationKind = "surfing"
)

func allGroupChats(ctx context.Context, svc *service.Service) ([]service.GroupChat, error) {
	return pagination.FetchAll(ctx, func(ctx context.Context, after int64) (pagination.Page[service.GroupChat, int64], error) {
		res, err := svc.Conversations.ListGroupChats(ctx, after)
		if err != nil {
			return pagination.Page[service.GroupChat, int64]{}, err
		}
		return res.Page(), nil
	})
}

func allHostRequests(ctx context.Context, svc *service.Service, role service.HostRequestRole, onlyActive bool) ([]service.HostRequest, error) {
	return pagination.FetchAll(ctx, func(ctx context.Context, after int64) (pagination.Page[service.HostRequest, int64], error) {
		res, err := svc.Requests.ListHostRequests(ctx, service.ListHostRequestsReq{
			LastRequestID: after,
			Role:          role,
			OnlyActive:    onlyActive,
		})
		if err != nil {
			return pagination.Page[service.HostRequest, int64]{}, err
		}
		return res.Page(), nil
	})
}

// GroupChats returns every conversation of the caller, newest first.
func (q *Queries) GroupChats(ctx context.Context) ([]service.GroupChat, error) {
	return cache.Fetch(ctx, q.qc, GroupChatsListKey, func(ctx context.Context) ([]service.GroupChat, error) {
		return allGroupChats(ctx, q.svc)
	})
}

// HostRequests returns every host request of the caller in role.
func (q *Queries) HostRequests(ctx context.Context, role service.HostRequestRole, onlyActive bool) ([]service.HostRequest, error) {
	return cache.Fetch(ctx, q.qc, HostRequestsListKey(onlyActive, string(role)), func(ctx context.Context) ([]service.HostRequest, error) {
		return allHostRequests(ctx, q.svc, role, onlyActive)
	})
}

// MarkAllRead marks every conversation of kind whose latest message is
// newer than the last one seen. All pages are fetched first; the marks are
// sent concurrently. On success both inbox lists are invalidated. It
// returns the number of conversations marked.
func (q *Queries) MarkAllRead(ctx context.Context, kind ConversationKind) (int, error) {
	return cache.Mutate(ctx, q.qc, kind, q.markAllRead, cache.MutationOptions[ConversationKind, int]{
		OnSuccess: func(ctx context.Context, kind ConversationKind, n int) {
			q.logger.Info().Str("kind", string(kind)).Int("marked", n).Msg("Marked all read")
		},
		Invalidate: []cache.Key{HostRequestsBaseKey, GroupChatsListKey},
	})
}

func (q *Queries) markAllRead(ctx context.Context, kind ConversationKind) (int, error) {
	switch kind {
	case KindChats:
		chats, err := allGroupChats(ctx, q.svc)
		if err != nil {
			return 0, fmt.Errorf("list group chats: %w", err)
		}
		var unseen []service.GroupChat
		for _, c := range chats {
			if c.HasUnseen() {
				unseen = append(unseen, c)
			}
		}
		err = pagination.ForEach(ctx, unseen, pagination.DefaultConcurrency, func(ctx context.Context, c service.GroupChat) error {
			return q.svc.Conversations.MarkLastSeenGroupChat(ctx, c.GroupChatID, c.LatestMessage.MessageID)
		})
		return len(unseen), err

	case KindHosting, KindSurfing:
		requests, err := allHostRequests(ctx, q.svc, service.HostRequestRole(kind), false)
		if err != nil {
			return 0, fmt.Errorf("list host requests: %w", err)
		}
		var unseen []service.HostRequest
		for _, r := range requests {
			if r.HasUnseen() {
				unseen = append(unseen, r)
			}
		}
		err = pagination.ForEach(ctx, unseen, pagination.DefaultConcurrency, func(ctx context.Context, r service.HostRequest) error {
			return q.svc.Requests.MarkLastRequestSeen(ctx, r.HostRequestID, r.LatestMessage.MessageID)
		})
		return len(unseen), err
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownConversationKind, kind)
}
