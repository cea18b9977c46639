// Package canonical holds the single authoritative in-memory record of the
// currently active theme per mode, shared by every sync coordinator in the
// process.
//
// The state is a pure broadcaster: it validates writes against the theme
// registry and notifies subscribers, but never touches durable storage;
// persistence belongs to the coordinators. Exactly one [*State] exists per
// running application; it is created at startup and passed explicitly to
// every consumer (no package-level globals).
package canonical

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pptforge/themesync/internal/mode"
	"github.com/pptforge/themesync/internal/registry"
)

// ErrInvalidTheme is returned when a theme id does not resolve in the
// registry. The previous value stays active; an unresolved id never becomes
// canonical.
var ErrInvalidTheme = errors.New("invalid theme ID")

// Change describes one accepted theme transition, delivered to subscribers.
type Change struct {
	Mode    mode.Mode
	ThemeID string
	// Source labels what triggered the change ("user", "reset", "restore", ...).
	Source string
}

// State is the canonical per-mode theme record. Safe for concurrent use.
type State struct {
	reg *registry.Registry
	log *slog.Logger

	mu      sync.RWMutex
	current map[mode.Mode]string
	subs    map[int]func(Change)
	nextSub int
}

// New creates an empty State. Modes with no recorded selection report the
// registry default.
func New(reg *registry.Registry, logger *slog.Logger) *State {
	return &State{
		reg:     reg,
		log:     logger,
		current: make(map[mode.Mode]string, 2),
		subs:    make(map[int]func(Change)),
	}
}

// Get returns the canonical theme id for the mode, falling back to the
// registry default when the mode has never been set.
func (s *State) Get(m mode.Mode) string {
	s.mu.RLock()
	id, ok := s.current[m]
	s.mu.RUnlock()
	if !ok {
		return s.reg.Default().ID
	}
	return id
}

// Has reports whether any writer has established a value for the mode.
// Get falls back to the default either way; Has lets an attaching coordinator
// distinguish "defaulted" from "set by a peer".
func (s *State) Has(m mode.Mode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.current[m]
	return ok
}

// Set installs themeID as the canonical value for the mode after validating
// it against the registry. Setting the value a mode already holds is a no-op
// and notifies nobody. Invalid ids are rejected with [ErrInvalidTheme] and
// leave the state untouched.
func (s *State) Set(m mode.Mode, themeID, source string) error {
	if !m.Valid() {
		return fmt.Errorf("setting theme for unknown mode %q", m)
	}
	if _, ok := s.reg.Resolve(themeID); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, themeID)
	}

	s.mu.Lock()
	if s.current[m] == themeID {
		s.mu.Unlock()
		return nil
	}
	s.current[m] = themeID
	// Copy subscribers so callbacks run outside the lock and may themselves
	// call back into the State.
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.log.Debug("canonical theme changed", "mode", m, "theme", themeID, "source", source)

	ch := Change{Mode: m, ThemeID: themeID, Source: source}
	for _, fn := range fns {
		fn(ch)
	}
	return nil
}

// Subscribe registers fn to be called on every accepted change, from any
// writer. The returned cancel function removes the subscription; it is safe
// to call more than once.
func (s *State) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current selection for every mode, defaults included.
func (s *State) Snapshot() map[mode.Mode]string {
	out := make(map[mode.Mode]string, 2)
	for _, m := range mode.All() {
		out[m] = s.Get(m)
	}
	return out
}
