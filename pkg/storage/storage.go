// Package storage provides the small key-value store the client keeps its
// persisted UI state in: message drafts, dismissed banners and the query
// cache snapshot. Memory keeps values in-process, File keeps them on local
// disk between runs and Redis shares them across machines.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key has no (unexpired) value.
var ErrNotFound = errors.New("storage: key not found")

// KV is an opaque key-value store. A zero ttl stores the value without
// expiry.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// KeyPrefix namespaces every key written by this module.
const KeyPrefix = "couchers:"

// Key joins parts into a namespaced key, e.g. Key("draft", "12") is
// "couchers:draft:12".
func Key(parts ...string) string {
	key := KeyPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

var (
	_ KV = (*Memory)(nil)
	_ KV = (*File)(nil)
	_ KV = (*Redis)(nil)
)
