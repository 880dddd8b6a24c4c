package cache

import (
	"time"
)

// Status is the lifecycle state of a cached query.
type Status string

const (
	// StatusIdle means no fetch has completed and none is running.
	StatusIdle Status = "idle"
	// StatusLoading means the first fetch is in flight and no data exists yet.
	StatusLoading Status = "loading"
	// StatusSuccess means Value holds the last successful result.
	StatusSuccess Status = "success"
	// StatusError means the last fetch failed. Value may still hold older data.
	StatusError Status = "error"
)

// Entry is a snapshot of one cached query.
type Entry struct {
	Key Key

	// Value is the last successful result. Values restored from a persisted
	// snapshot are held as json.RawMessage until first read through GetData.
	Value any

	Status Status

	// Err is the error of the last failed fetch.
	Err error

	// HasData reports whether Value was ever set.
	HasData bool

	// Fetching reports whether a fetch is currently in flight.
	Fetching bool

	// Invalidated is set by Invalidate and cleared by the next successful
	// fetch or Set.
	Invalidated bool

	// UpdatedAt is when Value was last written.
	UpdatedAt time.Time

	// ErrorAt is when the last fetch failed.
	ErrorAt time.Time
}

// IsStale reports whether the entry must be refetched before being served.
// A zero staleTime makes every entry stale as soon as it is written.
func (e *Entry) IsStale(now time.Time, staleTime time.Duration) bool {
	if !e.HasData || e.Invalidated {
		return true
	}
	return now.Sub(e.UpdatedAt) >= staleTime
}

// Age returns how long ago Value was written.
// Returns 0 if the entry has no data.
func (e *Entry) Age(now time.Time) time.Duration {
	if !e.HasData {
		return 0
	}
	age := now.Sub(e.UpdatedAt)
	if age < 0 {
		return 0
	}
	return age
}
