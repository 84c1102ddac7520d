package sched

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run(
		"1. empty path gives defaults",
		func(t *testing.T) {
			cfg, errLoad := Load("")
			require.NoError(t, errLoad)
			require.Equal(t, DefaultConfig(), cfg)
		},
	)

	t.Run(
		"2. missing file gives defaults",
		func(t *testing.T) {
			cfg, errLoad := Load(filepath.Join(t.TempDir(), "absent.yml"))
			require.NoError(t, errLoad)
			require.Equal(t, DefaultConfig(), cfg)
		},
	)

	t.Run(
		"3. file overrides and clamps",
		func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t,
				os.WriteFile(
					path,
					[]byte(`job_file: jobs.txt
repeat: 3
power_cap: 250
max_timesteps: -4
frequency: 2
log_format: json
`),
					0o600,
				),
			)

			cfg, errLoad := Load(path)
			require.NoError(t, errLoad)

			require.Equal(t, "jobs.txt", cfg.JobFile)
			require.Equal(t, "servers.txt", cfg.ServerFile)
			require.Equal(t, 3, cfg.Repeat)
			require.Equal(t, 250, cfg.PowerCap)
			require.Equal(t, 100, cfg.MaxTimesteps)
			require.Equal(t, 1, cfg.FrequencyLevel())
			require.Equal(t, "json", cfg.LogFormat)
			require.NoError(t, cfg.Validate())
		},
	)

	t.Run(
		"4. malformed yaml",
		func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t,
				os.WriteFile(path, []byte("repeat: [1, 2\n"), 0o600),
			)

			_, errLoad := Load(path)
			require.Error(t, errLoad)
		},
	)
}

func TestValidateConfig(t *testing.T) {
	t.Run(
		"1. empty job file",
		func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.JobFile = ""

			require.Error(t, cfg.Validate())
		},
	)

	t.Run(
		"2. unknown log format",
		func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogFormat = "xml"

			require.Error(t, cfg.Validate())
		},
	)

	t.Run(
		"3. negative power cap",
		func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PowerCap = -1

			require.Error(t, cfg.Validate())
		},
	)

	t.Run(
		"4. counters below one",
		func(t *testing.T) {
			overrides := map[string]func(*Config){
				"repeat":        func(c *Config) { c.Repeat = 0 },
				"frequency":     func(c *Config) { c.Frequency = 0 },
				"max timesteps": func(c *Config) { c.MaxTimesteps = -1 },
				"max ticks":     func(c *Config) { c.MaxTicks = 0 },
			}

			for name, override := range overrides {
				cfg := DefaultConfig()
				override(&cfg)

				require.Error(t, cfg.Validate(), name)
			}

			require.NoError(t, DefaultConfig().Validate())
		},
	)
}

func TestNewServerValidation(t *testing.T) {
	t.Run(
		"1. no frequencies",
		func(t *testing.T) {
			server, errCr := NewServer(
				&ParamsNewServer{
					ID:          1,
					Performance: 1,
				},
			)
			require.Error(t, errCr)
			require.Nil(t, server)
		},
	)

	t.Run(
		"2. zero performance",
		func(t *testing.T) {
			server, errCr := NewServer(
				&ParamsNewServer{
					ID:          1,
					Frequencies: []float64{1},
				},
			)
			require.Error(t, errCr)
			require.Nil(t, server)
		},
	)

	t.Run(
		"3. negative task work",
		func(t *testing.T) {
			task, errCr := NewTask(
				&ParamsNewTask{
					ID:         1,
					UnitOfWork: -1,
				},
			)
			require.Error(t, errCr)
			require.Nil(t, task)
		},
	)
}
