// Themesync manages the durable theme-selection store used by the deck
// editor: inspecting, setting, and migrating per-mode theme choices.
//
// Usage:
//
//	themesync status                         # show store, config, and selections
//	themesync get [--mode <m>]               # print the effective theme for a mode
//	themesync set [--mode <m>] <theme-id>    # validate and persist a selection
//	themesync reset [--mode <m>]             # persist the catalog default
//	themesync migrate                        # fold legacy keys into the namespace
//	themesync watch [--mode <m>]             # follow selection changes until ^C
//	themesync version                        # print version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pptforge/themesync/internal/canonical"
	"github.com/pptforge/themesync/internal/config"
	"github.com/pptforge/themesync/internal/mode"
	"github.com/pptforge/themesync/internal/registry"
	"github.com/pptforge/themesync/internal/store"
	syncp "github.com/pptforge/themesync/internal/sync"
	"github.com/pptforge/themesync/internal/telemetry"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return printUsage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "status":
		return runStatus(args)
	case "get":
		return runGet(args)
	case "set":
		return runSet(args)
	case "reset":
		return runReset(args)
	case "migrate":
		return runMigrate(args)
	case "watch":
		return runWatch(args)
	case "version":
		fmt.Println("themesync", version)
		return nil
	}

	return fmt.Errorf("unknown command %q, run 'themesync' for usage", cmd)
}

func printUsage() error {
	fmt.Fprintln(os.Stderr, "themesync: theme selection store for the deck editor")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  themesync status                       Show store, config, and selections")
	fmt.Fprintln(os.Stderr, "  themesync get [--mode <m>]             Print the effective theme for a mode")
	fmt.Fprintln(os.Stderr, "  themesync set [--mode <m>] <theme-id>  Validate and persist a selection")
	fmt.Fprintln(os.Stderr, "  themesync reset [--mode <m>]           Persist the catalog default")
	fmt.Fprintln(os.Stderr, "  themesync migrate                      Fold legacy keys into the namespace")
	fmt.Fprintln(os.Stderr, "  themesync watch [--mode <m>]           Follow selection changes until ^C")
	fmt.Fprintln(os.Stderr, "  themesync version                      Print version")
	os.Exit(1)
	return nil // unreachable
}

// app bundles the wired-up components every subcommand needs.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *store.Store
	reg   *registry.Registry
	canon *canonical.State

	shutdownTel telemetry.ShutdownFunc
}

// commonFlags registers the flags shared by all subcommands on fs and returns
// pointers to their values.
func commonFlags(fs *flag.FlagSet) (cfgPath *string, verbose *bool, modeName *string) {
	defaultCfg, _ := config.DefaultPath()
	cfgPath = fs.String("config", defaultCfg, "path to config.yaml")
	verbose = fs.Bool("verbose", false, "enable debug logging")
	modeName = fs.String("mode", "", "application mode (single or presentation)")
	return
}

// newApp loads config, sets up logging and optional telemetry, opens the
// store (degrading gracefully if it cannot be opened), and runs the one-time
// legacy key migration.
func newApp(ctx context.Context, cfgPath string, verbose bool) (*app, error) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		// No config file is the common case; run on defaults.
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &app{cfg: cfg, log: logger, shutdownTel: func(context.Context) error { return nil }}

	if cfg.Telemetry != nil {
		shutdown, err := telemetry.Setup(ctx, telemetry.Config{
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			Insecure:     cfg.Telemetry.Insecure,
			ServiceName:  cfg.Telemetry.ServiceName,
			Headers:      cfg.Telemetry.Headers,
		})
		if err != nil {
			logger.Error("telemetry setup failed, continuing without telemetry", "error", err)
		} else {
			a.shutdownTel = shutdown
		}
	}

	a.reg = registry.New()
	if err := a.reg.Validate(); err != nil {
		return nil, fmt.Errorf("theme catalog: %w", err)
	}

	a.store = store.OpenBestEffort(cfg.StorePath, cfg.KeyPrefix, logger)
	if err := a.store.MigrateLegacy(ctx); err != nil && !errors.Is(err, store.ErrUnavailable) {
		logger.Warn("legacy key migration failed", "error", err)
	}

	a.canon = canonical.New(a.reg, logger)
	return a, nil
}

// close flushes telemetry and releases the store.
func (a *app) close() {
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdownTel(flushCtx); err != nil {
		a.log.Error("telemetry shutdown error", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("closing store", "error", err)
	}
}

// coordinatorOptions maps the configured debounce windows onto coordinator
// options for the given mode.
func (a *app) coordinatorOptions(m mode.Mode) syncp.Options {
	return syncp.Options{
		Mode:          m,
		SyncDebounce:  a.cfg.SyncDebounce,
		StoreDebounce: a.cfg.StoreDebounce,
	}
}

// resolveMode picks the mode from the flag or the configured default.
func (a *app) resolveMode(flagValue string) (mode.Mode, error) {
	if flagValue == "" {
		flagValue = a.cfg.DefaultMode
	}
	return mode.Parse(flagValue)
}

// --- Subcommands -------------------------------------------------------------

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfgPath, verbose, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, *cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("Themesync Status")
	fmt.Println("────────────────")

	if _, err := os.Stat(*cfgPath); err == nil {
		fmt.Printf("  Config:    %s\n", *cfgPath)
	} else {
		fmt.Printf("  Config:    defaults (no file at %s)\n", *cfgPath)
	}

	if info, err := os.Stat(a.cfg.StorePath); err == nil {
		fmt.Printf("  Store:     %s (%s)\n", a.cfg.StorePath, humanSize(info.Size()))
	} else {
		fmt.Printf("  Store:     not found (%s)\n", a.cfg.StorePath)
	}
	if a.store.Degraded() {
		fmt.Printf("  Health:    degraded (%v)\n", a.store.LastErr())
	} else {
		fmt.Println("  Health:    ok")
	}
	fmt.Printf("  Prefix:    %s\n", a.store.Prefix())
	fmt.Printf("  Catalog:   %d themes (default %s)\n", a.reg.Len(), a.reg.Default().ID)

	for _, m := range mode.All() {
		if id, ok := a.store.Selection(ctx, m); ok {
			fmt.Printf("  %-12s %s\n", m.String()+":", id)
		} else {
			fmt.Printf("  %-12s (none, default %s)\n", m.String()+":", a.reg.Default().ID)
		}
	}
	if id, ok := a.store.Fallback(ctx); ok {
		fmt.Printf("  fallback:    %s\n", id)
	}

	return nil
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	cfgPath, verbose, modeName := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, *cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer a.close()

	m, err := a.resolveMode(*modeName)
	if err != nil {
		return err
	}

	// A coordinator resolves the same precedence chain the editor uses:
	// mode-scoped record, then fallback record, then catalog default.
	c := syncp.New(ctx, a.canon, a.store, a.reg, a.coordinatorOptions(m), a.log)
	defer c.Close()

	t := c.CurrentTheme()
	fmt.Printf("%s\t%s\t%s\n", t.ID, t.Name, t.Category)
	return nil
}

func runSet(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	cfgPath, verbose, modeName := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("set: expected exactly one theme id argument")
	}
	themeID := fs.Arg(0)

	ctx := context.Background()
	a, err := newApp(ctx, *cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer a.close()

	m, err := a.resolveMode(*modeName)
	if err != nil {
		return err
	}
	return a.setSelection(ctx, m, themeID)
}

func runReset(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	cfgPath, verbose, modeName := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, *cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer a.close()

	m, err := a.resolveMode(*modeName)
	if err != nil {
		return err
	}
	return a.setSelection(ctx, m, a.reg.Default().ID)
}

// setSelection validates a theme id against the catalog and writes it through
// the canonical state so a watch session in the same process sees it too.
func (a *app) setSelection(ctx context.Context, m mode.Mode, themeID string) error {
	t, ok := a.reg.Resolve(themeID)
	if !ok {
		return fmt.Errorf("%w: %q", canonical.ErrInvalidTheme, themeID)
	}
	if err := a.canon.Set(m, t.ID, "cli"); err != nil {
		return err
	}
	if err := a.store.SaveSelection(ctx, m, t.ID); err != nil {
		return fmt.Errorf("persisting selection: %w", err)
	}
	fmt.Printf("%s: %s (%s)\n", m, t.ID, t.Name)
	return nil
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	cfgPath, verbose, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, *cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer a.close()

	// newApp already ran the migration; report what the namespace holds now.
	keys, err := a.store.Keys(ctx, a.store.Prefix())
	if err != nil {
		return fmt.Errorf("listing migrated keys: %w", err)
	}
	if len(keys) == 0 {
		fmt.Println("no selection keys present")
		return nil
	}
	for _, k := range keys {
		v, _ := a.store.Get(ctx, a.store.Prefix(), k)
		fmt.Printf("%s-%s = %s\n", a.store.Prefix(), k, v)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath, verbose, modeName := commonFlags(fs)
	interval := fs.Duration("interval", time.Second, "store poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, *cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer a.close()

	m, err := a.resolveMode(*modeName)
	if err != nil {
		return err
	}

	opts := a.coordinatorOptions(m)
	opts.DisableAutoSync = true
	c := syncp.New(ctx, a.canon, a.store, a.reg, opts, a.log)
	defer c.Close()

	unsubscribe := a.canon.Subscribe(func(ch canonical.Change) {
		if ch.Mode != m {
			return
		}
		fmt.Printf("%s  %s → %s (%s)\n", time.Now().Format(time.TimeOnly), ch.Mode, ch.ThemeID, ch.Source)
	})
	defer unsubscribe()

	fmt.Printf("watching %s mode (current %s), ^C to stop\n", m, c.ThemeID())

	// Poll the store so selections written by other processes show up too.
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nbye")
			return nil
		case <-ticker.C:
			id, ok := a.store.Selection(ctx, m)
			if !ok || id == c.ThemeID() {
				continue
			}
			if err := a.canon.Set(m, id, "store-poll"); err != nil {
				a.log.Warn("ignoring stored theme not in catalog", "theme", id, "error", err)
			}
		}
	}
}

// humanSize returns a human-readable file size string.
func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
