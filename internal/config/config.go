package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Data       DataConfig       `toml:"data"`
	Pool       PoolConfig       `toml:"pool"`
	Spawn      SpawnConfig      `toml:"spawn"`
	Bounds     BoundsConfig     `toml:"bounds"`
	Player     PlayerConfig     `toml:"player"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate  time.Duration `toml:"tick_rate"`  // fixed physics-equivalent step
	FrameRate time.Duration `toml:"frame_rate"` // variable-rate input step
	Duration  time.Duration `toml:"duration"`   // 0 = run until signalled
	Seed      int64         `toml:"seed"`       // 0 = seed from clock
}

type DataConfig struct {
	Templates  string `toml:"templates"`
	PowerUps   string `toml:"powerups"`
	ScriptsDir string `toml:"scripts_dir"`
}

type PoolConfig struct {
	DefaultSize int `toml:"default_size"`
}

type SpawnConfig struct {
	Interval   time.Duration `toml:"interval"`
	Templates  []string      `toml:"templates"`
	Recyclable []string      `toml:"recyclable"` // categories repositioned on boundary exit
	CenterX    float64       `toml:"center_x"`
	HalfWidth  float64       `toml:"half_width"`
	Height     float64       `toml:"height"`
	Depth      float64       `toml:"depth"`
}

// BoundsConfig is the play area. Leaving it below MinY triggers recycling.
type BoundsConfig struct {
	MinX float64 `toml:"min_x"`
	MaxX float64 `toml:"max_x"`
	MinY float64 `toml:"min_y"`
	MaxY float64 `toml:"max_y"`
}

type PlayerConfig struct {
	Template   string        `toml:"template"`
	BaseWeapon string        `toml:"base_weapon"`
	MaxHealth  int           `toml:"max_health"`
	MoveSpeed  float64       `toml:"move_speed"`
	TiltAngle  float64       `toml:"tilt_angle"` // degrees at full horizontal input
	TiltSpeed  float64       `toml:"tilt_speed"` // degrees per second towards the target tilt
	FireRate   time.Duration `toml:"fire_rate"`  // cooldown between shots
	FireOffset float64       `toml:"fire_offset"`
	StartX     float64       `toml:"start_x"`
	StartY     float64       `toml:"start_y"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in error messages.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Validate checks host-level settings. Spawn settings are validated by the
// spawn coordinator itself so a bad spawn table only disables spawning.
func (c *Config) Validate() error {
	var errs []error
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, errors.New("simulation.tick_rate must be positive"))
	}
	if c.Simulation.FrameRate <= 0 {
		errs = append(errs, errors.New("simulation.frame_rate must be positive"))
	}
	if c.Pool.DefaultSize <= 0 {
		errs = append(errs, errors.New("pool.default_size must be positive"))
	}
	if c.Player.MaxHealth <= 0 {
		errs = append(errs, errors.New("player.max_health must be positive"))
	}
	if c.Bounds.MinX >= c.Bounds.MaxX || c.Bounds.MinY >= c.Bounds.MaxY {
		errs = append(errs, errors.New("bounds must have positive area"))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:  20 * time.Millisecond,
			FrameRate: 16 * time.Millisecond,
		},
		Data: DataConfig{
			Templates:  "data/yaml/templates.yaml",
			PowerUps:   "data/yaml/powerups.yaml",
			ScriptsDir: "scripts",
		},
		Pool: PoolConfig{
			DefaultSize: 10,
		},
		Spawn: SpawnConfig{
			Interval:   2 * time.Second,
			Recyclable: []string{"meteorite", "coin", "powerup"},
			HalfWidth:  5,
			Height:     12,
		},
		Bounds: BoundsConfig{
			MinX: -6,
			MaxX: 6,
			MinY: -2,
			MaxY: 14,
		},
		Player: PlayerConfig{
			Template:   "player",
			BaseWeapon: "bullet",
			MaxHealth:  3,
			MoveSpeed:  5,
			TiltAngle:  30,
			TiltSpeed:  180,
			FireRate:   500 * time.Millisecond,
			FireOffset: 0.8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
