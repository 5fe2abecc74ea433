package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Draw     DrawConfig     `toml:"draw"`
	Roster   RosterConfig   `toml:"roster"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DrawConfig controls the eligibility policy and the timing of the reveal animation.
//
// Durations are written as Go duration strings ("30ms", "5s").
type DrawConfig struct {
	Policy       string        `toml:"policy"`
	TickInterval time.Duration `toml:"tick_interval"`
	Duration     time.Duration `toml:"duration"`
	SettleDelay  time.Duration `toml:"settle_delay"`
}

// RosterConfig holds the seed roster used when no participants are stored yet.
type RosterConfig struct {
	Seed []string `toml:"seed"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports configuration values the draw engine cannot run with.
func (c *Config) Validate() error {
	if c.Draw.TickInterval <= 0 {
		return fmt.Errorf("%w: draw.tick_interval must be positive", ErrInvalidConfig)
	}
	if c.Draw.Duration < 0 {
		return fmt.Errorf("%w: draw.duration must not be negative", ErrInvalidConfig)
	}
	if c.Draw.SettleDelay < 0 {
		return fmt.Errorf("%w: draw.settle_delay must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.Draw.Policy)) {
	case "", "with_replacement", "without_replacement":
	default:
		return fmt.Errorf("%w: unknown draw.policy %q", ErrInvalidConfig, c.Draw.Policy)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
