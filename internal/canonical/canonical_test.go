package canonical

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/pptforge/themesync/internal/mode"
	"github.com/pptforge/themesync/internal/registry"
)

var testLogger = slog.Default()

func newState(t *testing.T) (*State, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	return New(reg, testLogger), reg
}

func TestGet_FallsBackToDefault(t *testing.T) {
	s, reg := newState(t)
	if got, want := s.Get(mode.Single), reg.Default().ID; got != want {
		t.Errorf("Get = %q, want default %q", got, want)
	}
	if s.Has(mode.Single) {
		t.Error("Has = true before any Set")
	}
}

func TestSetGet(t *testing.T) {
	s, _ := newState(t)
	if err := s.Set(mode.Single, "neon-noir", "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Get(mode.Single); got != "neon-noir" {
		t.Errorf("Get = %q, want %q", got, "neon-noir")
	}
	if !s.Has(mode.Single) {
		t.Error("Has = false after Set")
	}
}

func TestSet_InvalidThemeRejected(t *testing.T) {
	s, reg := newState(t)
	err := s.Set(mode.Single, "no-such-theme", "test")
	if !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("Set = %v, want ErrInvalidTheme", err)
	}
	// State untouched: still defaulted.
	if got, want := s.Get(mode.Single), reg.Default().ID; got != want {
		t.Errorf("Get after rejection = %q, want %q", got, want)
	}
	if s.Has(mode.Single) {
		t.Error("Has = true after a rejected Set")
	}
}

func TestSet_UnknownModeRejected(t *testing.T) {
	s, _ := newState(t)
	if err := s.Set(mode.Mode("split"), "modern-minimal", "test"); err == nil {
		t.Fatal("Set accepted an unknown mode")
	}
}

func TestModesAreIndependent(t *testing.T) {
	s, _ := newState(t)
	if err := s.Set(mode.Single, "forest-calm", "test"); err != nil {
		t.Fatalf("Set single: %v", err)
	}
	if err := s.Set(mode.Presentation, "corporate-blue", "test"); err != nil {
		t.Fatalf("Set presentation: %v", err)
	}
	if got := s.Get(mode.Single); got != "forest-calm" {
		t.Errorf("single = %q, want %q", got, "forest-calm")
	}
	if got := s.Get(mode.Presentation); got != "corporate-blue" {
		t.Errorf("presentation = %q, want %q", got, "corporate-blue")
	}
}

func TestSubscribe_NotifiesOnChange(t *testing.T) {
	s, _ := newState(t)

	var got []Change
	cancel := s.Subscribe(func(ch Change) { got = append(got, ch) })
	defer cancel()

	if err := s.Set(mode.Single, "neon-noir", "carousel"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	want := Change{Mode: mode.Single, ThemeID: "neon-noir", Source: "carousel"}
	if got[0] != want {
		t.Errorf("change = %+v, want %+v", got[0], want)
	}
}

func TestSubscribe_NoNotifyOnUnchangedValue(t *testing.T) {
	s, _ := newState(t)
	if err := s.Set(mode.Single, "neon-noir", "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	calls := 0
	cancel := s.Subscribe(func(Change) { calls++ })
	defer cancel()

	if err := s.Set(mode.Single, "neon-noir", "test"); err != nil {
		t.Fatalf("repeat Set: %v", err)
	}
	if calls != 0 {
		t.Errorf("notifications for unchanged value = %d, want 0", calls)
	}
}

func TestSubscribe_CancelStopsDelivery(t *testing.T) {
	s, _ := newState(t)

	calls := 0
	cancel := s.Subscribe(func(Change) { calls++ })
	cancel()
	cancel() // second cancel is harmless

	if err := s.Set(mode.Single, "neon-noir", "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 0 {
		t.Errorf("notifications after cancel = %d, want 0", calls)
	}
}

func TestSubscriber_MayReadStateReentrantly(t *testing.T) {
	s, _ := newState(t)

	var seen string
	cancel := s.Subscribe(func(ch Change) { seen = s.Get(ch.Mode) })
	defer cancel()

	if err := s.Set(mode.Presentation, "chalkboard", "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if seen != "chalkboard" {
		t.Errorf("reentrant Get = %q, want %q", seen, "chalkboard")
	}
}

func TestSnapshot(t *testing.T) {
	s, reg := newState(t)
	if err := s.Set(mode.Presentation, "coral-pop", "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	snap := s.Snapshot()
	if got, want := snap[mode.Single], reg.Default().ID; got != want {
		t.Errorf("snapshot single = %q, want default %q", got, want)
	}
	if got := snap[mode.Presentation]; got != "coral-pop" {
		t.Errorf("snapshot presentation = %q, want %q", got, "coral-pop")
	}
}
