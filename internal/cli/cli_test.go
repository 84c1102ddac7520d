package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()

	files := map[string]string{
		"tasks.txt":        "id arrival uow deadline period power\n1 0 2 10 0 5\n2 0 4 10 0 5\n3 1 1 10 0 5\n",
		"dependencies.txt": "pred-succ\n1-3\n",
		"servers.txt":      "id static perf freq cap\n1 10 1 (1 2) 100\n2 10 2 (1 2) 100\n",
	}

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	config := strings.Join(
		[]string{
			"job_file: " + filepath.Join(dir, "tasks.txt"),
			"dependency_file: " + filepath.Join(dir, "dependencies.txt"),
			"server_file: " + filepath.Join(dir, "servers.txt"),
			"max_timesteps: 20",
			"results_dir: " + dir,
			"log_level: error",
		},
		"\n",
	)

	configPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))

	return dir, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestRun(t *testing.T) {
	t.Run(
		"1. all drivers write results",
		func(t *testing.T) {
			dir, configPath := writeProject(t)

			out, err := execute(t, "run", "--config", configPath)
			require.NoError(t, err)

			for _, name := range []string{"WaveFront", "FIFO", "CPM"} {
				require.Contains(t, out, name)
				require.FileExists(t, filepath.Join(dir, "results_"+name+".txt"))
			}
		},
	)

	t.Run(
		"2. single driver, events and store",
		func(t *testing.T) {
			dir, configPath := writeProject(t)
			events := filepath.Join(dir, "events.csv")
			db := filepath.Join(dir, "runs.db")

			out, err := execute(t,
				"run",
				"--config", configPath,
				"--driver", "fifo",
				"--event-log", events,
				"--store", db,
			)
			require.NoError(t, err)
			require.Contains(t, out, "FIFO")
			require.NoFileExists(t, filepath.Join(dir, "results_CPM.txt"))

			content, errRead := os.ReadFile(events)
			require.NoError(t, errRead)
			require.True(t, strings.HasPrefix(string(content), "driver,time,event,task_id,server_id,value"))

			listing, errList := execute(t, "runs", "--config", configPath, "--store", db)
			require.NoError(t, errList)
			require.Contains(t, listing, "FIFO")
		},
	)

	t.Run(
		"3. unknown driver",
		func(t *testing.T) {
			_, configPath := writeProject(t)

			_, err := execute(t, "run", "--config", configPath, "--driver", "lottery")
			require.Error(t, err)
		},
	)

	t.Run(
		"4. invalid frequency override",
		func(t *testing.T) {
			_, configPath := writeProject(t)

			_, err := execute(t, "run", "--config", configPath, "--frequency", "7")
			require.Error(t, err)
		},
	)

	t.Run(
		"5. counter overrides below one are rejected",
		func(t *testing.T) {
			for _, flag := range [][]string{
				{"--repeat", "0"},
				{"--max-ticks", "0"},
				{"--max-timesteps", "-1"},
			} {
				dir, configPath := writeProject(t)

				_, err := execute(t, append([]string{"run", "--config", configPath, "--driver", "fifo"}, flag...)...)
				require.Error(t, err, flag[0])
				require.NoFileExists(t, filepath.Join(dir, "results_FIFO.txt"))
			}
		},
	)

	t.Run(
		"6. repeat override keeps every row",
		func(t *testing.T) {
			dir, configPath := writeProject(t)

			out, err := execute(t, "run", "--config", configPath, "--driver", "fifo", "--repeat", "3")
			require.NoError(t, err)
			require.Contains(t, out, "assignments=3")

			content, errRead := os.ReadFile(filepath.Join(dir, "results_FIFO.txt"))
			require.NoError(t, errRead)
			require.Len(t, strings.Split(strings.TrimSpace(string(content)), "\n"), 4)
		},
	)
}

func TestUnknownLogLevel(t *testing.T) {
	_, configPath := writeProject(t)

	_, err := execute(t, "paths", "--config", configPath, "--log-level", "verbose")
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	_, configPath := writeProject(t)

	out, err := execute(t, "paths", "--config", configPath)
	require.NoError(t, err)

	require.Contains(t, out, "CRITICAL TIME")
	require.Contains(t, out, "path 1: [2]")
	require.Contains(t, out, "path 2: [1 3]")
}

func TestRunsRequiresStore(t *testing.T) {
	_, configPath := writeProject(t)

	_, err := execute(t, "runs", "--config", configPath)
	require.Error(t, err)
}
