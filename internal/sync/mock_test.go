package sync

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pptforge/themesync/internal/mode"
)

// --- Fake clock --------------------------------------------------------------

// fakeClock drives debounce timers deterministically. Advance moves time
// forward, firing due timers in deadline order; a callback that arms a new
// timer inside the advanced window gets fired in the same call.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, running every timer that comes due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		t := c.nextDueLocked(target)
		if t == nil {
			break
		}
		c.now = t.deadline
		t.fired = true
		fn := t.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

func (c *fakeClock) nextDueLocked(target time.Time) *fakeTimer {
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && !t.deadline.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due[0]
}

// --- Mock selection store ----------------------------------------------------

type saveCall struct {
	mode  mode.Mode
	theme string
}

// mockStore implements SelectionStore in memory and records every write so
// tests can assert on coalescing.
type mockStore struct {
	mu          sync.Mutex
	selections  map[mode.Mode]string
	fallback    string
	hasFallback bool
	saves       []saveCall
	failWrites  bool
}

func newMockStore() *mockStore {
	return &mockStore{selections: make(map[mode.Mode]string)}
}

func (m *mockStore) seedSelection(md mode.Mode, themeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections[md] = themeID
}

func (m *mockStore) seedFallback(themeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = themeID
	m.hasFallback = true
}

func (m *mockStore) Selection(_ context.Context, md mode.Mode) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.selections[md]
	return id, ok
}

func (m *mockStore) Fallback(_ context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fallback, m.hasFallback
}

func (m *mockStore) SaveSelection(_ context.Context, md mode.Mode, themeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return fmt.Errorf("disk full")
	}
	m.selections[md] = themeID
	m.fallback = themeID
	m.hasFallback = true
	m.saves = append(m.saves, saveCall{mode: md, theme: themeID})
	return nil
}

func (m *mockStore) setFailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

func (m *mockStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *mockStore) lastSave() (saveCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return saveCall{}, false
	}
	return m.saves[len(m.saves)-1], true
}
