package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/pptforge/themesync/internal/canonical"
	"github.com/pptforge/themesync/internal/mode"
	"github.com/pptforge/themesync/internal/registry"
)

const (
	otelScope         = "themesync/sync"
	spanForce         = "sync.force"
	metricApplied     = "themesync.theme.applied"
	metricRejected    = "themesync.theme.rejected"
	metricWrites      = "themesync.store.writes"
	metricWriteErrors = "themesync.store.write_errors"
)

const (
	// defaultSyncDebounce coalesces rapid theme requests before the canonical
	// state is touched.
	defaultSyncDebounce = 100 * time.Millisecond

	// defaultStoreDebounce delays the durable write after a canonical update.
	defaultStoreDebounce = 300 * time.Millisecond

	// writeTimeout bounds a single debounced storage write.
	writeTimeout = 5 * time.Second
)

// ErrClosed is returned by operations on a coordinator whose owning component
// has already been torn down.
var ErrClosed = errors.New("sync coordinator is closed")

// Options configures a [Coordinator]. The zero value is usable: single mode,
// default debounce windows, auto-persist enabled, real clock.
type Options struct {
	// Mode is the coordinator's active mode. Defaults to [mode.Single].
	Mode mode.Mode

	// InitialTheme, when non-empty, takes precedence over every persisted
	// record during attach. An id that does not resolve in the registry is
	// ignored with a warning.
	InitialTheme string

	// SyncDebounce overrides the canonical-update debounce window.
	SyncDebounce time.Duration

	// StoreDebounce overrides the durable-write debounce window.
	StoreDebounce time.Duration

	// DisableAutoSync turns off the debounced durable write; only
	// [Coordinator.ForceSync] persists. Used by read-mostly consumers.
	DisableAutoSync bool

	// Debug enables per-transition debug logging.
	Debug bool

	// Clock is swapped out by tests. Nil means the real clock.
	Clock Clock
}

// Coordinator reconciles one consumer's desired theme with the canonical
// state and the durable store. Create one per UI component with [New] and
// release it with [Coordinator.Close] when the component unmounts.
type Coordinator struct {
	mode     mode.Mode
	canon    *canonical.State
	store    SelectionStore
	reg      *registry.Registry
	clock    Clock
	log      *slog.Logger
	autoSync bool
	debug    bool

	syncDebounce  time.Duration
	storeDebounce time.Duration

	// OTel instruments, always non-nil (no-op when telemetry is disabled).
	tracer       trace.Tracer
	cntApplied   metric.Int64Counter
	cntRejected  metric.Int64Counter
	cntWrites    metric.Int64Counter
	cntWriteErrs metric.Int64Counter

	mu            sync.Mutex
	st            State
	pending       string
	pendingSource string
	syncTimer     Timer
	storeTimer    Timer
	unsubscribe   func()
	closed        bool
}

// New attaches a coordinator to the shared canonical state and durable store.
//
// The initial theme is decided by a fixed precedence: explicit
// opts.InitialTheme, then the mode-scoped persisted record, then the generic
// persisted fallback, then the registry default. If the canonical state
// already holds a value for the mode (another coordinator attached first) and
// no explicit initial id is given, that live value is adopted instead of
// re-reading disk.
func New(ctx context.Context, canon *canonical.State, sel SelectionStore, reg *registry.Registry, opts Options, logger *slog.Logger) *Coordinator {
	if opts.Mode == "" {
		opts.Mode = mode.Single
	}
	if opts.SyncDebounce <= 0 {
		opts.SyncDebounce = defaultSyncDebounce
	}
	if opts.StoreDebounce <= 0 {
		opts.StoreDebounce = defaultStoreDebounce
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}

	meter := otel.Meter(otelScope)
	mustCounter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Error("creating OTel counter", "name", name, "error", err)
			return noop.Int64Counter{}
		}
		return c
	}

	c := &Coordinator{
		mode:          opts.Mode,
		canon:         canon,
		store:         sel,
		reg:           reg,
		clock:         opts.Clock,
		log:           logger,
		autoSync:      !opts.DisableAutoSync,
		debug:         opts.Debug,
		syncDebounce:  opts.SyncDebounce,
		storeDebounce: opts.StoreDebounce,

		tracer:       otel.Tracer(otelScope),
		cntApplied:   mustCounter(metricApplied, "Theme changes applied to the canonical state"),
		cntRejected:  mustCounter(metricRejected, "Theme change requests rejected as invalid"),
		cntWrites:    mustCounter(metricWrites, "Durable selection writes"),
		cntWriteErrs: mustCounter(metricWriteErrors, "Failed durable selection writes"),
	}

	c.attach(ctx, opts.InitialTheme)

	c.unsubscribe = canon.Subscribe(c.onCanonicalChange)
	return c
}

// attach seeds the canonical state for the coordinator's mode.
func (c *Coordinator) attach(ctx context.Context, initial string) {
	if initial == "" && c.canon.Has(c.mode) {
		// A peer already established the canonical value; mirror it.
		c.st = State{Status: StatusSynced, LastSyncTime: c.clock.Now()}
		return
	}

	id, source := c.resolveInitial(ctx, initial)
	if err := c.canon.Set(c.mode, id, source); err != nil {
		// Candidates were validated; only a registry/catalog bug lands here.
		c.log.Error("seeding canonical theme failed", "mode", c.mode, "theme", id, "error", err)
		c.st = State{Status: StatusError, Err: err.Error()}
		return
	}
	if c.debug {
		c.log.Debug("coordinator attached", "mode", c.mode, "theme", id, "source", source)
	}
	c.st = State{Status: StatusSynced, LastSyncTime: c.clock.Now()}
}

// resolveInitial walks the attach precedence chain and returns the first
// candidate that resolves in the registry, plus a label for logging.
func (c *Coordinator) resolveInitial(ctx context.Context, initial string) (string, string) {
	if initial != "" {
		if _, ok := c.reg.Resolve(initial); ok {
			return initial, "initial"
		}
		c.log.Warn("ignoring invalid initial theme", "mode", c.mode, "theme", initial)
	}
	if id, ok := c.store.Selection(ctx, c.mode); ok {
		if _, valid := c.reg.Resolve(id); valid {
			return id, "restore"
		}
		c.log.Warn("ignoring persisted theme not in catalog", "mode", c.mode, "theme", id)
	}
	if id, ok := c.store.Fallback(ctx); ok {
		if _, valid := c.reg.Resolve(id); valid {
			return id, "restore-fallback"
		}
		c.log.Warn("ignoring persisted fallback theme not in catalog", "theme", id)
	}
	return c.reg.Default().ID, "default"
}

// Mode returns the coordinator's active mode.
func (c *Coordinator) Mode() mode.Mode { return c.mode }

// ThemeID returns the canonical theme id for the coordinator's mode.
func (c *Coordinator) ThemeID() string {
	return c.canon.Get(c.mode)
}

// CurrentTheme returns the full catalog record for the active theme.
func (c *Coordinator) CurrentTheme() *registry.Theme {
	if t, ok := c.reg.Resolve(c.ThemeID()); ok {
		return t
	}
	return c.reg.Default()
}

// IsSyncing reports whether a request is waiting out the sync debounce.
func (c *Coordinator) IsSyncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Status == StatusSyncing
}

// Err returns the current user-presentable error message, or "".
func (c *Coordinator) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Err
}

// SyncState returns a snapshot of the coordinator's sync progress.
func (c *Coordinator) SyncState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// SetTheme requests a theme change for the coordinator's mode. The change is
// applied to the canonical state after the sync debounce settles; repeated
// calls inside the window cancel and re-arm it, so only the last value takes
// effect. An id that does not resolve in the registry is rejected: the
// canonical state is untouched, the previous theme stays active, and the
// rejection is surfaced through [Coordinator.Err].
func (c *Coordinator) SetTheme(themeID, source string) error {
	if source == "" {
		source = "user"
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if _, ok := c.reg.Resolve(themeID); themeID == "" || !ok {
		c.st.Status = StatusError
		c.st.Err = fmt.Sprintf("Invalid theme ID: %q", themeID)
		c.mu.Unlock()
		c.cntRejected.Add(context.Background(), 1)
		c.log.Warn("rejected theme change", "mode", c.mode, "theme", themeID, "source", source)
		return fmt.Errorf("%w: %q", canonical.ErrInvalidTheme, themeID)
	}

	c.pending = themeID
	c.pendingSource = source
	c.st.Status = StatusSyncing
	c.st.Err = ""
	if c.syncTimer != nil {
		c.syncTimer.Stop()
	}
	c.syncTimer = c.clock.AfterFunc(c.syncDebounce, c.applyPending)
	c.mu.Unlock()

	if c.debug {
		c.log.Debug("theme change queued", "mode", c.mode, "theme", themeID, "source", source)
	}
	return nil
}

// ResetTheme requests a change back to the registry default.
func (c *Coordinator) ResetTheme() error {
	return c.SetTheme(c.reg.Default().ID, "reset")
}

// ForceSync re-reads the canonical state and writes it to the store
// immediately, bypassing both debounce tiers and the only-write-if-changed
// optimization. Use it to recover from a detected inconsistency. Unlike the
// debounced path, a storage failure here is surfaced as an error and moves
// the coordinator to the error state.
func (c *Coordinator) ForceSync(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.storeTimer != nil {
		c.storeTimer.Stop()
		c.storeTimer = nil
	}
	c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, spanForce)
	defer span.End()

	id := c.canon.Get(c.mode)
	span.SetAttributes(
		attribute.String("theme.id", id),
		attribute.String("theme.mode", c.mode.String()),
	)

	err := c.store.SaveSelection(ctx, c.mode, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		c.cntWriteErrs.Add(ctx, 1)
		c.st.Status = StatusError
		c.st.Err = fmt.Sprintf("storage unavailable: %v", err)
		return fmt.Errorf("force sync for mode %q: %w", c.mode, err)
	}
	c.cntWrites.Add(ctx, 1)
	c.st.Status = StatusSynced
	c.st.LastSyncTime = c.clock.Now()
	c.st.Err = ""
	return nil
}

// ThemeForMode returns the canonical theme id for an arbitrary mode without
// touching the coordinator's own state.
func (c *Coordinator) ThemeForMode(m mode.Mode) string {
	return c.canon.Get(m)
}

// SetThemeForMode writes a validated selection for another mode, used when a
// presentation-mode view wants to seed the single-mode choice. The
// coordinator's active mode and its sync state machine are not involved; the
// write is persisted immediately (cross-mode seeding is rare, so there is no
// write storm to coalesce). Calls targeting the coordinator's own mode go
// through the normal [Coordinator.SetTheme] path.
func (c *Coordinator) SetThemeForMode(ctx context.Context, m mode.Mode, themeID string) error {
	if m == c.mode {
		return c.SetTheme(themeID, "user")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	if err := c.canon.Set(m, themeID, "seed"); err != nil {
		return fmt.Errorf("seeding theme for mode %q: %w", m, err)
	}
	if err := c.store.SaveSelection(ctx, m, themeID); err != nil {
		c.cntWriteErrs.Add(ctx, 1)
		c.log.Warn("cross-mode selection write failed", "mode", m, "theme", themeID, "error", err)
		return nil // degradation, not an error for the caller
	}
	c.cntWrites.Add(ctx, 1)
	return nil
}

// Close tears the coordinator down: both debounce timers are cancelled so no
// callback fires on a dead consumer, and the canonical subscription is
// removed. A storage write already in flight is allowed to finish; its result
// is discarded. Close is idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.syncTimer != nil {
		c.syncTimer.Stop()
		c.syncTimer = nil
	}
	if c.storeTimer != nil {
		c.storeTimer.Stop()
		c.storeTimer = nil
	}
	unsub := c.unsubscribe
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// applyPending runs when the sync debounce fires: it promotes the last
// requested value into the canonical state and arms the storage debounce.
func (c *Coordinator) applyPending() {
	c.mu.Lock()
	if c.closed || c.pending == "" {
		c.mu.Unlock()
		return
	}
	id, source := c.pending, c.pendingSource
	c.pending, c.pendingSource = "", ""
	c.syncTimer = nil
	c.mu.Unlock()

	// Set is a validated no-op when the value is unchanged; an unchanged
	// value also skips the storage debounce. ForceSync exists to bypass
	// this.
	changed := c.canon.Get(c.mode) != id
	if err := c.canon.Set(c.mode, id, source); err != nil {
		c.mu.Lock()
		c.st.Status = StatusError
		c.st.Err = err.Error()
		c.mu.Unlock()
		return
	}
	c.cntApplied.Add(context.Background(), 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.st.Status = StatusSynced
	c.st.LastSyncTime = c.clock.Now()
	c.st.Err = ""
	if c.autoSync && changed {
		if c.storeTimer != nil {
			c.storeTimer.Stop()
		}
		c.storeTimer = c.clock.AfterFunc(c.storeDebounce, func() { c.persist(id) })
	}
}

// persist runs when the storage debounce fires.
func (c *Coordinator) persist(id string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.storeTimer = nil
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := c.store.SaveSelection(ctx, c.mode, id); err != nil {
		c.cntWriteErrs.Add(ctx, 1)
		// Silent degradation: the selection stays active in memory, it just
		// will not survive a restart.
		c.log.Warn("theme selection write failed, continuing without durability",
			"mode", c.mode, "theme", id, "error", err)
		return
	}
	c.cntWrites.Add(ctx, 1)
	if c.debug {
		c.log.Debug("theme selection persisted", "mode", c.mode, "theme", id)
	}
}

// onCanonicalChange mirrors changes made by any writer. A change to the
// coordinator's own mode made elsewhere means this consumer is now in sync
// with the new canonical winner.
func (c *Coordinator) onCanonicalChange(ch canonical.Change) {
	if ch.Mode != c.mode {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.st.Status == StatusSyncing {
		// A pending local request still owns the state machine; last write
		// wins when its debounce settles.
		return
	}
	c.st.Status = StatusSynced
	c.st.LastSyncTime = c.clock.Now()
	c.st.Err = ""
}
