package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		parts    []string
		expected string
	}{
		{[]string{"draft", "12"}, "couchers:draft:12"},
		{[]string{"banner"}, "couchers:banner"},
		{nil, "couchers:"},
	}

	for _, tt := range tests {
		if got := Key(tt.parts...); got != tt.expected {
			t.Errorf("Key(%q) = %q, want %q", tt.parts, got, tt.expected)
		}
	}
}

func TestMemory_SetGetDelete(t *testing.T) {
	m, err := NewMemory(100)
	if err != nil {
		t.Fatalf("NewMemory failed: %v", err)
	}
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "k", []byte("hello"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get = %q, want hello", got)
	}

	// Returned slices are copies.
	got[0] = 'j'
	again, _ := m.Get(ctx, "k")
	if string(again) != "hello" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after Delete, got %v", err)
	}
}

func TestMemory_TTL(t *testing.T) {
	m, err := NewMemory(0)
	if err != nil {
		t.Fatalf("NewMemory failed: %v", err)
	}
	ctx := context.Background()

	if err := m.Set(ctx, "short", []byte("x"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := m.Get(ctx, "short"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after expiry, got %v", err)
	}
}

func TestNewRedis_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedis should panic with nil redis client")
		}
	}()
	NewRedis(nil)
}
