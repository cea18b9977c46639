// Package mode defines the application modes that partition theme storage
// and the storage key layout shared by the store adapter and the sync
// coordinator.
//
// Key names are load-bearing: they must match what earlier releases wrote so
// that existing selections survive an upgrade. Do not rename them.
package mode

import "fmt"

// Mode identifies an editing context with its own remembered theme.
type Mode string

const (
	// Single is the single-slide editing context.
	Single Mode = "single"
	// Presentation is the full-presentation editing context.
	Presentation Mode = "presentation"
)

// All lists every defined mode, in declaration order.
func All() []Mode {
	return []Mode{Single, Presentation}
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	return m == Single || m == Presentation
}

// String returns the mode's wire name.
func (m Mode) String() string { return string(m) }

// Parse converts a string into a Mode, rejecting unknown values.
func Parse(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, Single, Presentation)
	}
	return m, nil
}

// Storage key layout. The full key a browser-era release would have written is
// "{prefix}-{key}"; the store adapter keeps prefix and key in separate columns
// but composes the same names.
const (
	// DefaultPrefix is the namespace prefix used when none is configured.
	DefaultPrefix = "ai-ppt"

	// FallbackKey is the mode-agnostic selection key, read when a mode has no
	// scoped record of its own.
	FallbackKey = "selected-theme"

	keySingle       = "single-mode-theme"
	keyPresentation = "presentation-theme"
)

// KeyFor returns the mode-scoped storage key. Keys are distinct per mode and
// stable across restarts.
func KeyFor(m Mode) string {
	if m == Presentation {
		return keyPresentation
	}
	return keySingle
}

// LegacyKeys lists un-namespaced keys written by earlier releases, in
// precedence order (first present wins during migration). All of them are
// deleted after the one-time startup migration.
func LegacyKeys() []string {
	return []string{"ai-ppt-theme", "theme-selection", "app-theme", "selected-theme"}
}
