package input

import (
	"fmt"
	"log/slog"
	"os"

	"powersched/internal/sched"
)

// Load reads the three input tables named by cfg and links the dependencies.
// A missing file is an error naming it; malformed lines are skipped.
func Load(cfg sched.Config, logger *slog.Logger) (*sched.Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("component", "input")

	var (
		tasks   []*sched.Task
		edges   []Edge
		servers []*sched.Server
	)

	errTasks := readFile(
		cfg.JobFile,
		func(f *os.File) (err error) {
			tasks, err = ParseTasks(cfg.JobFile, f, cfg.Repeat, logger)

			return
		},
	)
	if errTasks != nil {
		return nil, errTasks
	}

	errEdges := readFile(
		cfg.DependencyFile,
		func(f *os.File) (err error) {
			edges, err = ParseDependencies(cfg.DependencyFile, f, logger)

			return
		},
	)
	if errEdges != nil {
		return nil, errEdges
	}

	errServers := readFile(
		cfg.ServerFile,
		func(f *os.File) (err error) {
			servers, err = ParseServers(cfg.ServerFile, f, logger)

			return
		},
	)
	if errServers != nil {
		return nil, errServers
	}

	registry, errRegistry := sched.NewRegistry(tasks)
	if errRegistry != nil {
		return nil,
			fmt.Errorf("%s: %w", cfg.JobFile, errRegistry)
	}

	Link(registry, edges, logger)

	logger.Info(
		"input loaded",
		"tasks", len(tasks),
		"dependencies", len(edges),
		"servers", len(servers),
	)

	return &sched.Dataset{
			Tasks:   tasks,
			Servers: servers,
		},
		nil
}

// Link applies the edges to the registered tasks.
// Edges naming an unknown task are skipped with a warning.
func Link(registry sched.Registry, edges []Edge, logger *slog.Logger) {
	for _, edge := range edges {
		pred, predKnown := registry[edge.Pred]
		succ, succKnown := registry[edge.Succ]

		if !predKnown || !succKnown {
			logger.Warn(
				"skipping dependency on unknown task",
				"pred", edge.Pred,
				"succ", edge.Succ,
			)

			continue
		}

		if !pred.AddSuccessor(succ.ID) {
			logger.Debug("duplicate dependency", "pred", edge.Pred, "succ", edge.Succ)

			continue
		}

		succ.AddPredecessor(pred.ID)
	}
}

func readFile(path string, read func(f *os.File) error) error {
	f, errOpen := os.Open(path)
	if errOpen != nil {
		return fmt.Errorf("could not open input file %q: %w", path, errOpen)
	}
	defer f.Close()

	return read(f)
}
