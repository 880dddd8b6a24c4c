// Package prefs persists small UI preferences in a storage.KV: unsent
// message drafts per conversation and the banners a user dismissed.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/storage"
)

// DefaultDraftTTL bounds how long an unsent draft is kept.
const DefaultDraftTTL = 24 * time.Hour

// ErrEmptyBannerName is returned for a blank banner name.
var ErrEmptyBannerName = errors.New("banner name cannot be empty")

const seenValue = "1"

// Store reads and writes preferences.
type Store struct {
	kv       storage.KV
	draftTTL time.Duration
	logger   zerolog.Logger
}

// New creates a Store on kv. A draftTTL of zero uses DefaultDraftTTL.
func New(kv storage.KV, draftTTL time.Duration) *Store {
	if kv == nil {
		panic("kv store cannot be nil")
	}
	if draftTTL <= 0 {
		draftTTL = DefaultDraftTTL
	}
	return &Store{
		kv:       kv,
		draftTTL: draftTTL,
		logger:   log.With().Str("component", "prefs").Logger(),
	}
}

// DraftKey is the storage key of the draft for chatID.
func DraftKey(chatID int64) string {
	return storage.Key("draft", strconv.FormatInt(chatID, 10))
}

// BannerKey is the storage key recording that banner was seen.
func BannerKey(name string) string {
	return storage.Key("banner", name)
}

// Draft returns the unsent text for chatID, or "" when there is none.
func (s *Store) Draft(ctx context.Context, chatID int64) (string, error) {
	data, err := s.kv.Get(ctx, DraftKey(chatID))
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load draft: %w", err)
	}
	return string(data), nil
}

// SetDraft stores text as the draft for chatID. Blank text clears it.
func (s *Store) SetDraft(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return s.ClearDraft(ctx, chatID)
	}
	if err := s.kv.Set(ctx, DraftKey(chatID), []byte(text), s.draftTTL); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	s.logger.Debug().Int64("chat_id", chatID).Int("length", len(text)).Msg("Saved draft")
	return nil
}

// ClearDraft removes the draft for chatID, typically after sending it.
func (s *Store) ClearDraft(ctx context.Context, chatID int64) error {
	if err := s.kv.Delete(ctx, DraftKey(chatID)); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// HasSeenBanner reports whether the banner name was dismissed.
func (s *Store) HasSeenBanner(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, ErrEmptyBannerName
	}
	data, err := s.kv.Get(ctx, BannerKey(name))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load banner state: %w", err)
	}
	return string(data) == seenValue, nil
}

// MarkBannerSeen records that the banner name was dismissed. It never expires.
func (s *Store) MarkBannerSeen(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyBannerName
	}
	if err := s.kv.Set(ctx, BannerKey(name), []byte(seenValue), 0); err != nil {
		return fmt.Errorf("save banner state: %w", err)
	}
	return nil
}
