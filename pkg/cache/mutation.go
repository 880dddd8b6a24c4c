package cache

import (
	"context"
	"fmt"
)

// MutationOptions holds the lifecycle hooks of a mutation. All hooks are
// optional.
type MutationOptions[V, R any] struct {
	// OnMutate runs before the mutation. A returned rollback is called if
	// the mutation fails. An error aborts the mutation.
	OnMutate func(ctx context.Context, vars V) (rollback func(), err error)

	// OnError runs after a failed mutation, once any rollback completed.
	OnError func(ctx context.Context, vars V, err error)

	// OnSuccess runs after a successful mutation, once Invalidate was applied.
	OnSuccess func(ctx context.Context, vars V, res R)

	// OnSettled runs last, whatever the outcome.
	OnSettled func(ctx context.Context, vars V, res R, err error)

	// Invalidate lists key prefixes invalidated after success.
	Invalidate []Key
}

// Mutate runs fn with the given hooks. A plain mutation never touches the
// cache on failure; use Optimistic as OnMutate for speculative updates that
// roll back.
func Mutate[V, R any](ctx context.Context, c *Client, vars V, fn func(context.Context, V) (R, error), opts MutationOptions[V, R]) (R, error) {
	var rollback func()
	if opts.OnMutate != nil {
		rb, err := opts.OnMutate(ctx, vars)
		if err != nil {
			var zero R
			return zero, fmt.Errorf("prepare mutation: %w", err)
		}
		rollback = rb
	}

	res, err := fn(ctx, vars)
	if err != nil {
		if rollback != nil {
			rollback()
		}
		if opts.OnError != nil {
			opts.OnError(ctx, vars, err)
		}
	} else {
		for _, key := range opts.Invalidate {
			c.Invalidate(key)
		}
		if opts.OnSuccess != nil {
			opts.OnSuccess(ctx, vars, res)
		}
	}

	if opts.OnSettled != nil {
		opts.OnSettled(ctx, vars, res, err)
	}
	return res, err
}

// Optimistic returns an OnMutate hook that cancels in-flight fetches of key
// and, when key holds a value, replaces it with update(prev, vars). The
// rollback it returns restores the entry exactly as it was. update must not
// modify prev in place.
func Optimistic[T, V any](c *Client, key Key, update func(prev T, vars V) T) func(context.Context, V) (func(), error) {
	return func(ctx context.Context, vars V) (func(), error) {
		c.Cancel(key)

		snapshot, ok := c.Get(key)
		if !ok || !snapshot.HasData {
			return nil, nil
		}
		prev, err := decode[T](c, key, snapshot.Value)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Skipping optimistic update")
			return nil, nil
		}
		snapshot.Value = prev

		c.Set(key, update(prev, vars))

		return func() {
			c.restore(snapshot)
			Rollbacks.Inc()
			c.logger.Debug().Str("key", key.String()).Msg("Rolled back optimistic update")
		}, nil
	}
}
