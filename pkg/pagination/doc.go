// Package pagination aggregates cursor-paginated backend lists.
//
// Backend list methods return one page of items plus an opaque continuation
// cursor. An empty (zero) cursor marks the final page. FetchAll walks the
// list from the first page to the last and concatenates the items in
// response order:
//
//	chats, err := pagination.FetchAll(ctx, func(ctx context.Context, after int64) (pagination.Page[service.GroupChat, int64], error) {
//		res, err := svc.Conversations.ListGroupChats(ctx, after)
//		if err != nil {
//			return pagination.Page[service.GroupChat, int64]{}, err
//		}
//		return res.Page(), nil
//	})
//
// Any page failure aborts the walk and no partial results are returned.
// Retrying is left to the caller.
//
// Iterator exposes the same walk lazily, one page per Next call, and
// ForEach fans work out over the aggregated items with bounded concurrency.
package pagination
