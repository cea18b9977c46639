// Package registry holds the static catalog of presentation themes. It is the
// sole validation oracle for theme identifiers: every other package resolves
// ids through a [*Registry] and never invents theme data of its own.
//
// The catalog is fixed at build time. Themes are immutable; callers receive
// pointers into the catalog and must not modify them.
package registry

import "fmt"

// Category groups themes by visual style.
type Category int

const (
	// CategoryMinimal covers restrained, whitespace-heavy designs.
	CategoryMinimal Category = iota
	// CategoryCorporate covers conservative business designs.
	CategoryCorporate
	// CategoryCreative covers expressive, high-contrast designs.
	CategoryCreative
	// CategoryDark covers dark-background designs.
	CategoryDark
	// CategoryAcademic covers lecture and report designs.
	CategoryAcademic
)

// String returns the human-readable label for the category.
func (c Category) String() string {
	switch c {
	case CategoryMinimal:
		return "Minimal"
	case CategoryCorporate:
		return "Corporate"
	case CategoryCreative:
		return "Creative"
	case CategoryDark:
		return "Dark"
	case CategoryAcademic:
		return "Academic"
	default:
		return "Unknown"
	}
}

// Palette holds the theme's color roles as hex strings ("#rrggbb").
type Palette struct {
	Background string
	Surface    string
	Primary    string
	Secondary  string
	Accent     string
	Text       string
	Muted      string
}

// Typography describes the theme's type system.
type Typography struct {
	HeadingFont string
	BodyFont    string
	BaseSizePt  int
	// Scale is the ratio between adjacent heading levels.
	Scale float64
}

// Effects describes decorative treatments applied by the renderer.
type Effects struct {
	CornerRadiusPx int
	Shadow         bool
	Gradient       bool
}

// Theme is one immutable catalog entry.
type Theme struct {
	// ID is the unique identifier other components store and pass around.
	ID string

	// Name is the display name shown in theme galleries.
	Name string

	Category   Category
	Palette    Palette
	Typography Typography
	Effects    Effects
}

// Registry resolves theme ids against the catalog. The zero value is not
// usable; construct one with [New].
type Registry struct {
	themes []Theme
	byID   map[string]*Theme
}

// New returns a Registry over the built-in catalog.
func New() *Registry {
	return newFrom(builtin)
}

func newFrom(themes []Theme) *Registry {
	r := &Registry{
		themes: themes,
		byID:   make(map[string]*Theme, len(themes)),
	}
	for i := range r.themes {
		r.byID[r.themes[i].ID] = &r.themes[i]
	}
	return r
}

// Resolve returns the theme with the given id, or (nil, false) if no such
// theme exists. The returned pointer aliases catalog memory and must be
// treated as read-only.
func (r *Registry) Resolve(id string) (*Theme, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Default returns the canonical default theme: the first catalog entry.
func (r *Registry) Default() *Theme {
	return &r.themes[0]
}

// All returns the catalog in declaration order. The slice is shared; callers
// must not modify it.
func (r *Registry) All() []Theme {
	return r.themes
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int { return len(r.themes) }

// Validate checks that the catalog itself is well-formed: non-empty, unique
// non-empty ids. Run from tests and at startup.
func (r *Registry) Validate() error {
	if len(r.themes) == 0 {
		return fmt.Errorf("theme catalog is empty")
	}
	seen := make(map[string]bool, len(r.themes))
	for _, t := range r.themes {
		if t.ID == "" {
			return fmt.Errorf("theme %q has an empty id", t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate theme id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
