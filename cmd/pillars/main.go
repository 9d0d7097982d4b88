package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/Timmith/ld49/internal/config"
	"github.com/Timmith/ld49/internal/core/event"
	coresys "github.com/Timmith/ld49/internal/core/system"
	"github.com/Timmith/ld49/internal/data"
	"github.com/Timmith/ld49/internal/leaderboard"
	gonet "github.com/Timmith/ld49/internal/net"
	"github.com/Timmith/ld49/internal/physics"
	"github.com/Timmith/ld49/internal/piece"
	"github.com/Timmith/ld49/internal/round"
	"github.com/Timmith/ld49/internal/scene"
	"github.com/Timmith/ld49/internal/scripting"
	"github.com/Timmith/ld49/internal/snapshot"
	"github.com/Timmith/ld49/internal/system"
)

func main() {
	replayID := flag.Int64("replay", 0, "watch leaderboard entry `id` instead of playing")
	flag.Parse()
	if err := run(*replayID); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m  %-41s\033[36;1m│\033[0m\n", name)
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
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

func run(replayID int64) error {
	// 1. Load config
	cfgPath := "config/pillars.toml"
	if p := os.Getenv("PILLARS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Static data and scripts
	printSection("Data")

	library, err := data.LoadPieceLibrary(cfg.Assets.LibraryPath)
	if err != nil {
		return fmt.Errorf("load piece library: %w", err)
	}
	printStat("Architecture pieces", library.Count())

	spawns, err := data.LoadSpawnTable(cfg.Assets.SpawnPointsPath)
	if err != nil {
		return fmt.Errorf("load spawn points: %w", err)
	}
	printStat("Spawn points", spawns.Count())

	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua formulas loaded")
	fmt.Println()

	// 4. Physics world and registries
	world := physics.NewWorld(0, cfg.Physics.GravityY)
	reg := physics.NewRegistry(log)
	if err := reg.Init(world); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	bindings := physics.NewBindings(reg)
	sc := scene.New(log)
	bindings.Subscribe(sc)
	queue := physics.NewDestructionQueue(reg, bindings, log)
	contacts := physics.NewContactChain()
	world.SetContactListener(contacts)
	stepper := physics.NewStepper(world, cfg.Physics.FixedStep, cfg.Physics.VelocityIterations, cfg.Physics.PositionIterations)

	resolver := piece.NewCatalogResolver(cfg.Assets.CatalogPath, cfg.Assets.MeshScale)
	factory := piece.NewFactory(ctx, reg, bindings, resolver, cfg.Assets.MeshScale, cfg.Assets.ResolveTimeout, log)

	// 5. Leaderboard (optional)
	var (
		client   *leaderboard.Client
		reporter *leaderboard.Reporter
	)
	if cfg.Leaderboard.Enabled || replayID != 0 {
		client = leaderboard.NewClient(cfg.Leaderboard.URL, nil)
	}
	if cfg.Leaderboard.Enabled {
		reporter = leaderboard.NewReporter(client, cfg.Leaderboard, log)
	}

	// 6. Round
	bus := event.NewBus()
	deps := round.Deps{
		Config:   cfg.Round,
		World:    world,
		Registry: reg,
		Queue:    queue,
		Contacts: contacts,
		Spawner:  factory,
		Library:  library,
		Spawns:   spawns,
		Formulas: luaEngine,
		Slot:     snapshot.NewSlot(cfg.Save.SlotPath),
		Bus:      bus,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Log:      log,
	}
	if reporter != nil {
		deps.Reporter = reporter
	}
	machine := round.New(deps)

	if replayID != 0 {
		s, err := fetchReplay(ctx, client, replayID, cfg.Leaderboard.Timeout)
		if err != nil {
			return err
		}
		machine.Start(true)
		machine.LoadSpectator(s)
		printOK(fmt.Sprintf("Replaying entry %d", replayID))
	} else {
		machine.Start(false)
	}

	// 7. Feed server
	netServer, err := gonet.NewServer(cfg.Network, log)
	if err != nil {
		return fmt.Errorf("feed listen: %w", err)
	}

	// 8. Create systems and register with runner
	store := gonet.NewSessionStore()
	runner := coresys.NewRunner(log)
	runner.Register(system.NewInputSystem(netServer, store, machine, cfg.Network.MaxInPerTick, log))
	runner.Register(system.NewAssetSystem(factory))
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(system.NewSimulationSystem(stepper, machine))
	runner.Register(system.NewDestructionSystem(queue))
	runner.Register(system.NewRoundSystem(machine))
	if reporter != nil {
		runner.Register(system.NewLeaderboardSystem(reporter.Updates(), bus))
	}
	runner.Register(system.NewMeshSyncSystem(bindings))
	runner.Register(system.NewOutputSystem(store, machine, sc, bus, log))

	// 9. Start game loop
	printSection("Ready")
	printReady(fmt.Sprintf("Feed ws://%s%s", netServer.Addr().String(), cfg.Network.FeedPath))
	printReady(fmt.Sprintf("Game loop (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(netServer.Serve)
	if reporter != nil {
		g.Go(func() error { return reporter.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return netServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Network.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runner.Tick(cfg.Network.TickRate)
			case <-gctx.Done():
				log.Info("shutting down")
				return nil
			}
		}
	})

	err = g.Wait()
	total, overran := runner.Ticks()
	log.Info("server stopped", zap.Uint64("ticks", total), zap.Uint64("overran", overran))
	return err
}

// fetchReplay downloads and decodes the replay recorded with a leaderboard
// entry.
func fetchReplay(ctx context.Context, client *leaderboard.Client, id int64, timeout time.Duration) (*snapshot.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	details, err := client.Details(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	s, err := snapshot.Unmarshal([]byte(details))
	if err != nil {
		return nil, fmt.Errorf("replay %d: %w", id, err)
	}
	return s, nil
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
