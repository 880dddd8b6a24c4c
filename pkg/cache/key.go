package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached result set as an ordered tuple of parts, e.g.
//
//	cache.Key{"user", 42}
//	cache.Key{"referencesReceived", map[string]any{"userId": 42, "type": "all"}}
//
// Keys compare structurally: two keys are equal when their canonical
// encodings are equal, so int and int64 parts with the same value match and
// map parts ignore insertion order.
type Key []any

// String returns the canonical encoding of the key.
//
// Example:
//
//	["referencesReceived",{"type":"all","userId":42}]
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = encodePart(p)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Equal reports whether k and other identify the same result set.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether the leading parts of k equal prefix. An empty
// prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if encodePart(p) != encodePart(k[i]) {
			return false
		}
	}
	return true
}

// encodePart renders one key part. encoding/json sorts map keys, which makes
// map parts order independent.
func encodePart(p any) string {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(p))
	}
	return string(data)
}

// parseKey decodes a canonical encoding back into a Key. Numbers stay
// json.Number so ids beyond float64 precision encode unchanged.
func parseKey(data []byte) (Key, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var parts []any
	if err := dec.Decode(&parts); err != nil {
		return nil, fmt.Errorf("parse cache key: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse cache key: trailing data after %s", Key(parts))
	}
	return Key(parts), nil
}
