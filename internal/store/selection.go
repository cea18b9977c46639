package store

import (
	"context"
	"fmt"

	"github.com/pptforge/themesync/internal/mode"
)

// Selection-level accessors used by the sync coordinator. They compose the
// key layout from [mode] with the store's configured prefix so no other
// package needs to know key names.

// Selection returns the persisted theme id for the given mode, or ("", false)
// when no mode-scoped record exists.
func (s *Store) Selection(ctx context.Context, m mode.Mode) (string, bool) {
	return s.Get(ctx, s.prefix, mode.KeyFor(m))
}

// Fallback returns the mode-agnostic persisted theme id, or ("", false).
func (s *Store) Fallback(ctx context.Context) (string, bool) {
	return s.Get(ctx, s.prefix, mode.FallbackKey)
}

// SaveSelection persists a theme selection: the mode-scoped key and the
// generic fallback key are written in a single transaction, so the pair can
// never disagree and one call counts as one storage write.
//
// Unlike [Store.Set] this returns an error: the coordinator's force-sync path
// needs to observe write failures. The debounced path logs and degrades
// instead.
func (s *Store) SaveSelection(ctx context.Context, m mode.Mode, themeID string) error {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return ErrUnavailable
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		s.noteErr(err)
		return fmt.Errorf("beginning selection write: %w", err)
	}
	now := formatTime(nowFunc())

	for _, key := range []string{mode.KeyFor(m), mode.FallbackKey} {
		if _, err := tx.ExecContext(ctx, upsertSQL, s.prefix, key, themeID, now); err != nil {
			_ = tx.Rollback()
			s.noteErr(err)
			return fmt.Errorf("writing selection %s/%s: %w", s.prefix, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.noteErr(err)
		return fmt.Errorf("committing selection write: %w", err)
	}
	s.noteOK()
	return nil
}
