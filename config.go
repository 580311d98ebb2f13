package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Zero values are filled from
// DefaultConfig by LoadConfig.
type Config struct {
	Addr      string `yaml:"addr"`
	DBPath    string `yaml:"db_path"`
	ClientDir string `yaml:"client_dir"`
	// PublicURL prefixes join links rendered into QR codes
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`

	Game GameConfig `yaml:"game"`

	MaxSessions int `yaml:"max_sessions"`
}

// GameConfig tunes every session's simulation
type GameConfig struct {
	TickRate      int           `yaml:"tick_rate"`
	BroadcastRate int           `yaml:"broadcast_rate"`
	ArenaWidth    int           `yaml:"arena_width"`
	ArenaHeight   int           `yaml:"arena_height"`
	StartLevel    int           `yaml:"start_level"`
	MaxLevel      int           `yaml:"max_level"` // highest level a client may start at
	Workers       int           `yaml:"workers"`   // 0 = one per CPU
	RestartDelay  time.Duration `yaml:"restart_delay"`
	MaxPlayers    int           `yaml:"max_players"`
}

func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		DBPath:      "arena.db",
		PublicURL:   "http://localhost:8080",
		LogLevel:    "info",
		MaxSessions: 100,
		Game: GameConfig{
			TickRate:      60,
			BroadcastRate: 30,
			ArenaWidth:    10000,
			ArenaHeight:   10000,
			StartLevel:    0,
			MaxLevel:      2,
			RestartDelay:  3 * time.Second,
			MaxPlayers:    20,
		},
	}
}

// LoadConfig reads a YAML file over the defaults
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return decodeConfig(f)
}

func decodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the game loop cannot run with
func (c Config) Validate() error {
	g := c.Game
	switch {
	case g.TickRate <= 0:
		return fmt.Errorf("config: tick_rate must be positive, got %d", g.TickRate)
	case g.BroadcastRate <= 0 || g.BroadcastRate > g.TickRate:
		return fmt.Errorf("config: broadcast_rate must be in 1..%d, got %d", g.TickRate, g.BroadcastRate)
	case g.ArenaWidth <= 0 || g.ArenaHeight <= 0:
		return fmt.Errorf("config: arena must be positive, got %dx%d", g.ArenaWidth, g.ArenaHeight)
	case g.MaxLevel < 0:
		return fmt.Errorf("config: max_level must not be negative, got %d", g.MaxLevel)
	case g.Workers < 0:
		return fmt.Errorf("config: workers must not be negative, got %d", g.Workers)
	case g.MaxPlayers <= 0:
		return fmt.Errorf("config: max_players must be positive, got %d", g.MaxPlayers)
	case c.MaxSessions <= 0:
		return fmt.Errorf("config: max_sessions must be positive, got %d", c.MaxSessions)
	}
	return nil
}

// TickDuration is the wall time between two ticks
func (g GameConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

// BroadcastEvery is how many ticks pass between two state broadcasts
func (g GameConfig) BroadcastEvery() uint64 {
	return uint64(g.TickRate / g.BroadcastRate)
}
