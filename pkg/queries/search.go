package queries

import (
	"context"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// SearchUsers returns one page of users matching filters.
func (q *Queries) SearchUsers(ctx context.Context, filters service.UserSearchFilters, pageToken string) (service.UserSearchRes, error) {
	return cache.Fetch(ctx, q.qc, SearchKey(filters, pageToken), func(ctx context.Context) (service.UserSearchRes, error) {
		return q.svc.Search.UserSearch(ctx, filters, pageToken)
	})
}

// Page returns a community page.
func (q *Queries) Page(ctx context.Context, pageID int64) (service.CommunityPage, error) {
	return cache.Fetch(ctx, q.qc, PageKey(pageID), func(ctx context.Context) (service.CommunityPage, error) {
		return q.svc.Pages.GetPage(ctx, pageID)
	})
}

// UpdatePage changes a page and caches the updated version.
func (q *Queries) UpdatePage(ctx context.Context, in service.UpdatePageInput) (service.CommunityPage, error) {
	return cache.Mutate(ctx, q.qc, in, q.svc.Pages.UpdatePage, cache.MutationOptions[service.UpdatePageInput, service.CommunityPage]{
		OnSuccess: func(ctx context.Context, in service.UpdatePageInput, page service.CommunityPage) {
			q.qc.Set(PageKey(in.PageID), page)
		},
	})
}
