// Package sync implements the per-consumer theme sync coordinator. Each UI
// component that needs theme awareness owns one [Coordinator], which
// reconciles the component's desired theme with the canonical in-memory state
// and the durable store.
//
// Writes are debounced twice: a short sync debounce coalesces rapid-fire
// requests (scrubbing a theme carousel) into one canonical update, and a
// longer storage debounce decouples durability from UI responsiveness. Only
// the last request inside a debounce window takes effect; intermediate values
// are discarded, not queued.
package sync

import (
	"context"

	"github.com/pptforge/themesync/internal/mode"
)

// SelectionStore provides durable access to persisted theme selections.
// Implemented by [store.Store].
type SelectionStore interface {
	// Selection returns the mode-scoped persisted theme id, if present.
	Selection(ctx context.Context, m mode.Mode) (string, bool)
	// Fallback returns the mode-agnostic persisted theme id, if present.
	Fallback(ctx context.Context) (string, bool)
	// SaveSelection durably records a selection. One call is one storage
	// write, regardless of how many keys it touches internally.
	SaveSelection(ctx context.Context, m mode.Mode, themeID string) error
}
