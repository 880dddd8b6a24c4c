package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/storage"
)

// DefaultPersistMaxAge is how long a persisted snapshot stays restorable.
const DefaultPersistMaxAge = 14 * 24 * time.Hour

// DefaultPersistKey is the storage key snapshots are written under.
var DefaultPersistKey = storage.Key("query-cache")

// PersistOptions controls Persist and Restore.
type PersistOptions struct {
	// Key is the storage key. Empty uses DefaultPersistKey.
	Key string

	// MaxAge discards older snapshots on Restore. Zero uses DefaultPersistMaxAge.
	MaxAge time.Duration

	// Buster discards snapshots written with a different value, e.g. after
	// an upgrade that changes cached shapes.
	Buster string
}

func (o PersistOptions) withDefaults() PersistOptions {
	if o.Key == "" {
		o.Key = DefaultPersistKey
	}
	if o.MaxAge <= 0 {
		o.MaxAge = DefaultPersistMaxAge
	}
	return o
}

type snapshot struct {
	Timestamp time.Time        `json:"timestamp"`
	Buster    string           `json:"buster"`
	Queries   []persistedQuery `json:"queries"`
}

type persistedQuery struct {
	Key       json.RawMessage `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Persist writes every successfully fetched entry to kv. Values that cannot
// be encoded as JSON are skipped.
func (c *Client) Persist(ctx context.Context, kv storage.KV, opts PersistOptions) error {
	opts = opts.withDefaults()

	c.mu.Lock()
	snap := snapshot{
		Timestamp: c.now(),
		Buster:    opts.Buster,
		Queries:   make([]persistedQuery, 0, len(c.records)),
	}
	for k, rec := range c.records {
		if !rec.entry.HasData || rec.entry.Status != StatusSuccess || !json.Valid([]byte(k)) {
			continue
		}
		value, err := json.Marshal(rec.entry.Value)
		if err != nil {
			c.logger.Debug().Err(err).Str("key", k).Msg("Skipping unencodable query value")
			continue
		}
		snap.Queries = append(snap.Queries, persistedQuery{
			Key:       json.RawMessage(k),
			Value:     value,
			UpdatedAt: rec.entry.UpdatedAt,
		})
	}
	c.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		PersistErrors.WithLabelValues("persist").Inc()
		return fmt.Errorf("encode query snapshot: %w", err)
	}
	if err := kv.Set(ctx, opts.Key, data, opts.MaxAge); err != nil {
		PersistErrors.WithLabelValues("persist").Inc()
		return fmt.Errorf("persist query snapshot: %w", err)
	}

	c.logger.Debug().Int("queries", len(snap.Queries)).Msg("Persisted query cache")
	return nil
}

// Restore loads a snapshot written by Persist. Snapshots older than MaxAge
// or carrying a different Buster are deleted instead. Entries already in
// memory with newer data win. It returns the number of entries restored.
func (c *Client) Restore(ctx context.Context, kv storage.KV, opts PersistOptions) (int, error) {
	opts = opts.withDefaults()

	data, err := kv.Get(ctx, opts.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		PersistErrors.WithLabelValues("restore").Inc()
		return 0, fmt.Errorf("load query snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		PersistErrors.WithLabelValues("restore").Inc()
		c.logger.Warn().Err(err).Msg("Discarding corrupt query snapshot")
		return 0, kv.Delete(ctx, opts.Key)
	}

	now := c.now()
	if snap.Buster != opts.Buster || now.Sub(snap.Timestamp) > opts.MaxAge {
		c.logger.Debug().
			Time("timestamp", snap.Timestamp).
			Str("buster", snap.Buster).
			Msg("Discarding outdated query snapshot")
		return 0, kv.Delete(ctx, opts.Key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, q := range snap.Queries {
		key, err := parseKey(q.Key)
		if err != nil {
			c.logger.Debug().Err(err).Msg("Skipping persisted query")
			continue
		}
		rec := c.recordLocked(key.String(), key)
		if rec.entry.HasData && !rec.entry.UpdatedAt.Before(q.UpdatedAt) {
			continue
		}
		rec.entry.Value = q.Value
		rec.entry.HasData = true
		rec.entry.Status = StatusSuccess
		rec.entry.Err = nil
		rec.entry.Invalidated = false
		rec.entry.UpdatedAt = q.UpdatedAt
		rec.touched = now
		n++
	}

	c.logger.Debug().Int("queries", n).Msg("Restored query cache")
	return n, nil
}
