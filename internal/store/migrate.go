package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pptforge/themesync/internal/mode"
)

// Migrate copies legacy un-namespaced keys into their new namespaced
// locations and deletes the legacy records. For each legacy key present, the
// value is copied to build(legacy) only if the destination is absent: when
// both exist the namespaced key wins and the legacy value is discarded.
//
// The whole migration runs in one transaction and is idempotent: after a
// successful run no legacy keys remain, so a second run is a no-op.
func (s *Store) Migrate(ctx context.Context, legacy []string, build func(legacy string) (namespace, key string)) error {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return ErrUnavailable
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(nowFunc())
	for _, old := range legacy {
		var value string
		err := tx.QueryRowContext(ctx,
			`SELECT value FROM kv WHERE namespace = '' AND key = ?`, old,
		).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading legacy key %q: %w", old, err)
		}

		ns, key := build(old)
		// INSERT OR IGNORE: an existing namespaced record wins the conflict.
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)`,
			ns, key, value, now); err != nil {
			return fmt.Errorf("migrating legacy key %q to %s/%s: %w", old, ns, key, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM kv WHERE namespace = '' AND key = ?`, old); err != nil {
			return fmt.Errorf("deleting legacy key %q: %w", old, err)
		}
		s.log.Info("migrated legacy storage key", "from", old, "to", ns+"-"+key)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}
	return nil
}

// MigrateLegacy runs the standard startup migration: every known legacy theme
// key is folded into the generic fallback slot of this store's namespace.
// Precedence between multiple legacy keys follows [mode.LegacyKeys] order;
// once the first one lands, INSERT OR IGNORE keeps later ones out.
func (s *Store) MigrateLegacy(ctx context.Context) error {
	return s.Migrate(ctx, mode.LegacyKeys(), func(string) (string, string) {
		return s.prefix, mode.FallbackKey
	})
}
