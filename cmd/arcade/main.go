package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skyfall/arcade/internal/config"
	"github.com/skyfall/arcade/internal/core/ecs"
	"github.com/skyfall/arcade/internal/core/event"
	"github.com/skyfall/arcade/internal/core/sched"
	coresys "github.com/skyfall/arcade/internal/core/system"
	"github.com/skyfall/arcade/internal/data"
	"github.com/skyfall/arcade/internal/effect"
	"github.com/skyfall/arcade/internal/lifecycle"
	"github.com/skyfall/arcade/internal/pool"
	"github.com/skyfall/arcade/internal/scripting"
	"github.com/skyfall/arcade/internal/spawn"
	"github.com/skyfall/arcade/internal/system"
	"github.com/skyfall/arcade/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            skyfall arcade  v0.1.0         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          headless simulation core         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mseed:\033[0m %d\n\n", seed)
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
	fmt.Printf("  \033[32;1m▶\033[0m %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := "config/arcade.toml"
	if p := os.Getenv("ARCADE_CONFIG"); p != "" {
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

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printBanner(seed)

	// 3. Load static data
	printSection("data")
	templates, err := data.LoadTemplateTable(cfg.Data.Templates)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	printStat("entity templates", templates.Count())
	powerUps, err := data.LoadPowerUpTable(cfg.Data.PowerUps)
	if err != nil {
		return fmt.Errorf("powerups: %w", err)
	}
	printStat("power-ups", powerUps.Count())

	catalog := pool.NewCatalog(templates)
	effects, err := effect.NewCatalog(powerUps, catalog)
	if err != nil {
		return fmt.Errorf("powerups: %w", err)
	}

	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK("lua formulas loaded")
	fmt.Println()

	// 4. Build the world and pools
	printSection("world")
	ecsWorld := ecs.NewWorld()
	bounds := world.Bounds{MinX: cfg.Bounds.MinX, MaxX: cfg.Bounds.MaxX, MinY: cfg.Bounds.MinY, MaxY: cfg.Bounds.MaxY}
	worldState := world.NewState(ecsWorld, bounds, log)
	clock := sched.New()
	bus := event.NewBus()

	pools := pool.NewService(worldState, clock, cfg.Pool.DefaultSize, log)
	defer pools.Teardown()
	catalog.Each(func(t *pool.Template) {
		if !t.Poolable {
			return
		}
		if err := pools.CreateDefaultPool(t); err != nil {
			log.Error("create pool", zap.String("template", t.Name), zap.Error(err))
			return
		}
		total, _ := pools.Stats(t)
		printStat("pool "+t.Name, total)
	})

	effectCtl := effect.NewController(clock, pools, log)
	lc := lifecycle.New(lifecycle.Deps{
		State:    worldState,
		Pools:    pools,
		Effects:  effectCtl,
		Formulas: engine,
		PowerUps: effects,
		Sched:    clock,
		Bus:      bus,
		Log:      log,
	})

	playerID, err := lc.AddPlayer(lifecycle.PlayerSetup{
		Template:   catalog.Get(cfg.Player.Template),
		BaseWeapon: catalog.Get(cfg.Player.BaseWeapon),
		MaxHealth:  cfg.Player.MaxHealth,
		MoveSpeed:  cfg.Player.MoveSpeed,
		TiltAngle:  cfg.Player.TiltAngle,
		TiltSpeed:  cfg.Player.TiltSpeed,
		FireRate:   cfg.Player.FireRate,
		FireOffset: cfg.Player.FireOffset,
		Start:      world.Vec2{X: cfg.Player.StartX, Y: cfg.Player.StartY},
	})
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}
	printOK("player ready")

	spawner, err := spawn.New(spawnConfig(cfg.Spawn, catalog, log), spawn.Deps{
		State:     worldState,
		Pools:     pools,
		Lifecycle: lc,
		Sched:     clock,
		Bus:       bus,
		Rand:      rand.New(rand.NewSource(seed)),
		Log:       log,
	})
	if err != nil && !errors.Is(err, spawn.ErrInvalidConfiguration) {
		return fmt.Errorf("spawner: %w", err)
	}
	if err := spawner.Start(); err == nil {
		printOK("spawner running")
	}
	defer spawner.Stop()
	fmt.Println()

	// 5. Create systems and register with runner
	pilot := newAutopilot(worldState, playerID, rand.New(rand.NewSource(seed+1)))
	inputSys := system.NewInputSystem(worldState, playerID, pilot, lc, bus, log)
	runner := coresys.NewRunner()
	runner.Register(inputSys)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewSteerSystem(worldState, playerID, inputSys))
	runner.Register(system.NewMotionSystem(worldState, playerID))
	runner.Register(system.NewContactSystem(worldState, bus))
	runner.Register(system.NewTimerSystem(clock))
	runner.Register(system.NewCleanupSystem(ecsWorld, log))

	score := newScoreboard(log)
	score.subscribe(bus)
	effectCtl.Changed.Connect(func(ev event.EffectChanged) {
		if ev.Name == "" {
			log.Info("weapon back to baseline", zap.Uint64("player", uint64(ev.Subject)))
		}
	})

	// 6. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()
	frames := time.NewTicker(cfg.Simulation.FrameRate)
	defer frames.Stop()

	var deadline <-chan time.Time
	if cfg.Simulation.Duration > 0 {
		deadline = time.After(cfg.Simulation.Duration)
	}

	printSection("running")
	printReady(fmt.Sprintf("tick %s, frame %s", cfg.Simulation.TickRate, cfg.Simulation.FrameRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
			if score.over {
				log.Info("game over", score.fields(runner.Ticks())...)
				return nil
			}
		case <-frames.C:
			runner.TickPhase(coresys.PhaseInput, cfg.Simulation.FrameRate)
		case <-deadline:
			log.Info("run duration reached", score.fields(runner.Ticks())...)
			return nil
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			log.Info("simulation stopped", score.fields(runner.Ticks())...)
			return nil
		}
	}
}

// spawnConfig resolves template names. Unknown names are logged and skipped;
// an empty result leaves the spawner disabled.
func spawnConfig(sc config.SpawnConfig, catalog *pool.Catalog, log *zap.Logger) spawn.Config {
	var ts []*pool.Template
	for _, name := range sc.Templates {
		t := catalog.Get(name)
		if t == nil {
			log.Warn("unknown spawn template", zap.String("template", name))
			continue
		}
		ts = append(ts, t)
	}
	return spawn.Config{
		Templates:  ts,
		Interval:   sc.Interval,
		Region:     &spawn.Region{CenterX: sc.CenterX, HalfWidth: sc.HalfWidth, Height: sc.Height, Depth: sc.Depth},
		Recyclable: sc.Recyclable,
	}
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
