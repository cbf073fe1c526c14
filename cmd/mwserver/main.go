package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mwhost/server/internal/command"
	"github.com/mwhost/server/internal/config"
	"github.com/mwhost/server/internal/core/event"
	coresys "github.com/mwhost/server/internal/core/system"
	"github.com/mwhost/server/internal/data"
	"github.com/mwhost/server/internal/persist"
	"github.com/mwhost/server/internal/scripting"
	"github.com/mwhost/server/internal/session"
	"github.com/mwhost/server/internal/system"
	"github.com/mwhost/server/internal/transcript"
	"github.com/mwhost/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName, seedName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             mwserver  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       multiworld session host (Go)        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	if seedName == "" {
		seedName = "unseeded"
	}
	fmt.Printf("  \033[1mServer:\033[0m %s \033[90m(seed: %s)\033[0m\n\n", serverName, seedName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load .env and config
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfgPath := "config/server.toml"
	if p := os.Getenv("MWSERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.SeedName)

	// 3. Load generation output
	printSection("Data")

	var universe world.Universe
	if cfg.Data.UniverseJSON != "" {
		universe, err = data.LoadUniverseJSON(cfg.Data.UniverseJSON)
	} else {
		universe, err = data.LoadUniverse(cfg.Data.Universe)
	}
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	var store world.LocationIndex
	var slotCount int
	if cfg.Session.Indexed {
		s, err := world.BuildIndexed(universe)
		if err != nil {
			return fmt.Errorf("build location index: %w", err)
		}
		store, slotCount = s, s.SlotCount()
	} else {
		s, err := world.Build(universe)
		if err != nil {
			return fmt.Errorf("build location store: %w", err)
		}
		store, slotCount = s, s.SlotCount()
	}
	printStat("Slots", slotCount)

	roster, err := data.LoadRoster(cfg.Data.Roster)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	printStat("Roster entries", roster.Count())

	nameTable, err := data.LoadNameTable(cfg.Data.Names)
	if err != nil {
		return fmt.Errorf("load names: %w", err)
	}
	printStat("Named games", nameTable.Count())

	// 4. Lua name resolvers
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK("Lua scripts loaded")

	// 5. Session
	bus := event.NewBus()
	sess := session.New(store, roster, session.Names{nameTable, engine}, bus, session.Options{
		SeedName:  cfg.Server.SeedName,
		Release:   cfg.Session.Release(),
		Collect:   cfg.Session.Collect(),
		Remaining: cfg.Session.Remaining(),
		HintCost:  cfg.Session.HintCost,
		Coster:    engine,
	}, log)
	log.Info("session created",
		zap.String("id", sess.ID),
		zap.Stringer("release", cfg.Session.Release()),
		zap.Stringer("collect", cfg.Session.Collect()),
		zap.Stringer("remaining", cfg.Session.Remaining()),
	)

	// 6. Journal
	printSection("Journal")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	journal, err := openJournal(ctx, cfg.Journal, log)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	var batcher *persist.Batcher
	if journal != nil {
		defer journal.Close()
		stats, err := persist.Replay(ctx, journal, sess.ID, sess)
		if err != nil {
			return fmt.Errorf("replay journal: %w", err)
		}
		printStat("Replayed checks", stats.Checks)
		printStat("Replayed hints", stats.Hints)
		printStat("Replayed slot states", stats.Slots)
		batcher = persist.NewBatcher(journal, log)
		batcher.Attach(bus)
	} else {
		printOK("Journal disabled")
	}

	// 7. Transcript
	if cfg.Transcript.Enabled {
		tw := transcript.NewWriter(cfg.Transcript.Dir, "session")
		defer tw.Close()
		transcript.NewRecorder(tw, sess, log).Attach(bus)
		printOK(fmt.Sprintf("Transcript in %s", cfg.Transcript.Dir))
	}

	// 8. Create systems and register with runner
	console := command.NewConsole(sess, roster, nameTable, os.Stdout, log)
	runner := coresys.NewRunner(log)
	inputSys := system.NewInputSystem(readLines(os.Stdin), console, 16, log)
	runner.Register(inputSys)
	runner.Register(system.NewDispatchSystem(sess, log))
	var persistSys *system.PersistenceSystem
	if batcher != nil {
		persistSys = system.NewPersistenceSystem(batcher, system.IntervalTicks(cfg.Journal.FlushInterval, cfg.Server.TickRate), log)
		runner.Register(persistSys)
	}

	// 9. Start event loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("Event loop running (tick: %s)", cfg.Server.TickRate))
	printReady("Type help for the console command list")
	fmt.Println()

	shutdown := func() {
		runner.TickPhase(coresys.PhaseDispatch, 0)
		if persistSys != nil {
			persistSys.FlushNow()
		}
		log.Info("server stopped", zap.Duration("uptime", time.Since(time.Unix(cfg.Server.StartTime, 0))))
	}

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
			if inputSys.Quit() {
				shutdown()
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			shutdown()
			return nil
		}
	}
}

// openJournal returns the configured journal, or nil when journaling is off.
func openJournal(ctx context.Context, cfg config.JournalConfig, log *zap.Logger) (persist.Journal, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := persist.NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		printOK("PostgreSQL connected")
		j, err := persist.OpenPGJournal(ctx, db, log)
		if err != nil {
			db.Close()
			return nil, err
		}
		printOK("Migrations applied")
		return j, nil
	case "sqlite":
		j, err := persist.OpenSQLiteJournal(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		printOK(fmt.Sprintf("SQLite journal at %s", cfg.SQLitePath))
		return j, nil
	default:
		return nil, nil
	}
}

// readLines feeds console input to the input system, which runs on the
// event loop goroutine that owns the session.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
