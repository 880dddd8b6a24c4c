// Package cache provides the query cache shared by every data access in the
// client.
//
// The cache implements query semantics with the following features:
//
// - Structural keys with prefix matching (Key{"user", 42})
// - Deduplication of concurrent fetches for the same key
// - Staleness tracking with per-query StaleTime
// - Retry of failed fetches (one retry, no delay by default)
// - Invalidation that marks entries stale without dropping their data
// - Cancellation of in-flight fetches whose results are then discarded
// - Mutations with optimistic updates and rollback on failure
// - Snapshot persistence to a storage.KV with max age and buster
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	qc := cache.New(cache.DefaultConfig())
//
//	user, err := cache.Fetch(ctx, qc, cache.Key{"user", userID},
//		func(ctx context.Context) (service.User, error) {
//			return svc.API.GetUser(ctx, userID)
//		})
//
// # Invalidation
//
//	// Every referencesReceived query, whatever its filters
//	qc.Invalidate(cache.Key{"referencesReceived"})
//
// # Optimistic Mutations
//
//	_, err := cache.Mutate(ctx, qc, userID, svc.API.SendFriendRequest,
//		cache.MutationOptions[int64, struct{}]{
//			OnMutate: cache.Optimistic(qc, key, func(u service.User, _ int64) service.User {
//				u.Friends = service.FriendPending
//				return u
//			}),
//			Invalidate: []cache.Key{key},
//		})
//
// On failure the entry under key is restored exactly as it was before
// OnMutate ran. A mutation without Optimistic never rolls anything back.
//
// # Persistence
//
//	n, err := qc.Restore(ctx, kv, cache.PersistOptions{})
//	defer qc.Persist(ctx, kv, cache.PersistOptions{})
//
// Restored values are kept as raw JSON and decoded on first typed read.
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - couchers_query_cache_hits_total - Fresh reads
//   - couchers_query_cache_misses_total{reason} - Reads that fetched
//   - couchers_query_fetches_total{result} - Completed fetches
//   - couchers_query_invalidations_total - Entries invalidated
//   - couchers_query_rollbacks_total - Optimistic updates reverted
//   - couchers_query_cache_entries - Current entry count
//   - couchers_query_retries_total - Fetch retries
//   - couchers_query_persist_errors_total{operation} - Snapshot errors
package cache
