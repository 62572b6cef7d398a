package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. QUICKREC_OUTPUT_DIRECTORY.
const EnvPrefix = "QUICKREC"

type Config struct {
	Audio    AudioConfig    `mapstructure:"audio" yaml:"audio"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Recorder RecorderConfig `mapstructure:"recorder" yaml:"recorder"`
	Player   PlayerConfig   `mapstructure:"player" yaml:"player"`
}

type AudioConfig struct {
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels   int    `mapstructure:"channels" yaml:"channels"`
	Bits       int    `mapstructure:"bits" yaml:"bits"`
	Encoding   string `mapstructure:"encoding" yaml:"encoding"` // sox encoding name, "signed-integer"
	Type       string `mapstructure:"type" yaml:"type"`         // container, "wav"
}

type OutputConfig struct {
	Directory          string        `mapstructure:"directory" yaml:"directory"`
	FavoritesDirectory string        `mapstructure:"favorites_directory" yaml:"favorites_directory"`
	MinBytes           int64         `mapstructure:"min_bytes" yaml:"min_bytes"`
	DefaultDuration    time.Duration `mapstructure:"default_duration" yaml:"default_duration"`
}

type RecorderConfig struct {
	// Candidates replaces the per-platform probe list when non-empty.
	Candidates   []string      `mapstructure:"candidates" yaml:"candidates"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	StopGrace    time.Duration `mapstructure:"stop_grace" yaml:"stop_grace"`
}

type PlayerConfig struct {
	// Preferred replaces the per-platform player list when non-empty.
	Preferred []string `mapstructure:"preferred" yaml:"preferred"`
}

// MarshalYAML writes durations in the "5s" form the config file is read in.
func (o OutputConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Directory          string `yaml:"directory"`
		FavoritesDirectory string `yaml:"favorites_directory"`
		MinBytes           int64  `yaml:"min_bytes"`
		DefaultDuration    string `yaml:"default_duration"`
	}{o.Directory, o.FavoritesDirectory, o.MinBytes, o.DefaultDuration.String()}, nil
}

func (r RecorderConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Candidates   []string `yaml:"candidates"`
		ProbeTimeout string   `yaml:"probe_timeout"`
		StopGrace    string   `yaml:"stop_grace"`
	}{r.Candidates, r.ProbeTimeout.String(), r.StopGrace.String()}, nil
}

var defaultConfig = Config{
	Audio: AudioConfig{
		SampleRate: 44100,
		Channels:   1,
		Bits:       16,
		Encoding:   "signed-integer",
		Type:       "wav",
	},
	Output: OutputConfig{
		Directory:       "./recordings",
		MinBytes:        100,
		DefaultDuration: 5 * time.Second,
	},
	Recorder: RecorderConfig{
		ProbeTimeout: 3 * time.Second,
		StopGrace:    5 * time.Second,
	},
}

// Default returns a copy of the built-in configuration with derived paths filled in.
func Default() *Config {
	cfg := defaultConfig
	cfg.Recorder.Candidates = nil
	cfg.Player.Preferred = nil
	cfg.resolvePaths()
	return &cfg
}

// DefaultPath returns $HOME/.config/quickrec.yaml.
func DefaultPath() string {
	return os.ExpandEnv("$HOME/.config/quickrec.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("audio.sample_rate", defaultConfig.Audio.SampleRate)
	v.SetDefault("audio.channels", defaultConfig.Audio.Channels)
	v.SetDefault("audio.bits", defaultConfig.Audio.Bits)
	v.SetDefault("audio.encoding", defaultConfig.Audio.Encoding)
	v.SetDefault("audio.type", defaultConfig.Audio.Type)

	v.SetDefault("output.directory", defaultConfig.Output.Directory)
	v.SetDefault("output.favorites_directory", "")
	v.SetDefault("output.min_bytes", defaultConfig.Output.MinBytes)
	v.SetDefault("output.default_duration", defaultConfig.Output.DefaultDuration.String())

	v.SetDefault("recorder.candidates", []string{})
	v.SetDefault("recorder.probe_timeout", defaultConfig.Recorder.ProbeTimeout.String())
	v.SetDefault("recorder.stop_grace", defaultConfig.Recorder.StopGrace.String())

	v.SetDefault("player.preferred", []string{})
}

// Load reads configFile on top of the defaults. A missing file is not an error:
// the defaults (plus QUICKREC_* environment overrides) are used instead.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
			slog.Debug("Loaded config file", "path", configFile)
		} else {
			slog.Debug("Config file not found, using defaults", "path", configFile)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// resolvePaths derives the favorites directory and expands a leading tilde.
func (c *Config) resolvePaths() {
	c.Output.Directory = expandPath(c.Output.Directory)
	if c.Output.FavoritesDirectory == "" {
		c.Output.FavoritesDirectory = filepath.Join(c.Output.Directory, "favorites")
	}
	c.Output.FavoritesDirectory = expandPath(c.Output.FavoritesDirectory)
}

// SetDirectory moves the recordings directory. A favorites directory that was
// derived from the old one follows it.
func (c *Config) SetDirectory(dir string) {
	derived := c.Output.FavoritesDirectory == filepath.Join(c.Output.Directory, "favorites")
	c.Output.Directory = expandPath(dir)
	if derived {
		c.Output.FavoritesDirectory = filepath.Join(c.Output.Directory, "favorites")
	}
}

// Validate checks that every value can be handed to a recorder or player as-is.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	switch c.Audio.Bits {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("audio.bits must be one of 8, 16, 24, 32, got %d", c.Audio.Bits)
	}
	if strings.TrimSpace(c.Audio.Type) == "" {
		return fmt.Errorf("audio.type is required")
	}

	if strings.TrimSpace(c.Output.Directory) == "" {
		return fmt.Errorf("output.directory is required")
	}
	if c.Output.MinBytes < 0 {
		return fmt.Errorf("output.min_bytes cannot be negative, got %d", c.Output.MinBytes)
	}
	if c.Output.DefaultDuration <= 0 {
		return fmt.Errorf("output.default_duration must be positive, got %s", c.Output.DefaultDuration)
	}

	if c.Recorder.ProbeTimeout <= 0 {
		return fmt.Errorf("recorder.probe_timeout must be positive, got %s", c.Recorder.ProbeTimeout)
	}
	if c.Recorder.StopGrace <= 0 {
		return fmt.Errorf("recorder.stop_grace must be positive, got %s", c.Recorder.StopGrace)
	}
	for i, name := range c.Recorder.Candidates {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("recorder.candidates[%d] is empty", i)
		}
	}
	for i, name := range c.Player.Preferred {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("player.preferred[%d] is empty", i)
		}
	}

	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
