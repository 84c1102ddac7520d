package sched

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"
	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	JobFile        string `yaml:"job_file" valid:"required"`
	DependencyFile string `yaml:"dependency_file" valid:"required"`
	ServerFile     string `yaml:"server_file" valid:"required"`

	Repeat       int `yaml:"repeat"`        // instances of every periodic task, 1 (by default)
	PowerCap     int `yaml:"power_cap"`     // advisory global cap, 1000 (by default)
	MaxTimesteps int `yaml:"max_timesteps"` // WaveFront horizon, 100 (by default)
	Frequency    int `yaml:"frequency"`     // 1-based frequency level, 1 (by default)
	MaxTicks     int `yaml:"max_ticks"`     // FIFO safety bound, 100000 (by default)

	ResultsDir string `yaml:"results_dir"`
	EventLog   string `yaml:"event_log"`  // CSV of all events, disabled when empty
	StorePath  string `yaml:"store_path"` // SQLite run store, disabled when empty

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format" valid:"in(text|json)"`
}

// If the config file is not found, we use default values
func DefaultConfig() Config {
	return Config{
		JobFile:        "tasks.txt",
		DependencyFile: "dependencies.txt",
		ServerFile:     "servers.txt",
		Repeat:         1,
		PowerCap:       1000,
		MaxTimesteps:   100,
		Frequency:      1,
		MaxTicks:       100000,
		ResultsDir:     ".",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads YAML and overrides defaults; empty or missing path = defaults only
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.clamp()

	return cfg, nil
}

// sanity clamps
func (c *Config) clamp() {
	if c.Repeat < 1 {
		c.Repeat = 1
	}
	if c.Frequency < 1 {
		c.Frequency = 1
	}
	if c.MaxTimesteps <= 0 {
		c.MaxTimesteps = 100
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = 100000
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

func (c Config) Validate() error {
	if _, errValidation := govalidator.ValidateStruct(c); errValidation != nil {
		return goerrors.ErrServiceValidation{
			ServiceName: "sched",
			Caller:      "Config.Validate",
			Issue:       errValidation,
		}
	}

	if c.PowerCap < 0 {
		return goerrors.ErrValidation{
			Caller: "Config.Validate",
			Issue: goerrors.ErrNegativeInput{
				InputName: "PowerCap",
			},
		}
	}

	// counters the file loader clamps; flag overrides land here unclamped
	positive := []struct {
		name  string
		value int
	}{
		{"Repeat", c.Repeat},
		{"Frequency", c.Frequency},
		{"MaxTimesteps", c.MaxTimesteps},
		{"MaxTicks", c.MaxTicks},
	}

	for _, check := range positive {
		if check.value < 1 {
			return goerrors.ErrValidation{
				Caller: "Config.Validate",
				Issue: goerrors.ErrInvalidInput{
					InputName: check.name,
				},
			}
		}
	}

	return nil
}

// FrequencyLevel is the 0-based index into every server's frequency list.
func (c Config) FrequencyLevel() int {
	return c.Frequency - 1
}
