package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"powersched/internal/input"
	"powersched/internal/report"
	"powersched/internal/sched"
	"powersched/internal/store"
)

func newRunCmd() *cobra.Command {
	var (
		driver       string
		resultsDir   string
		eventLog     string
		storePath    string
		powerCap     int
		maxTimesteps int
		maxTicks     int
		frequency    int
		repeat       int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build schedules with one or all dispatch policies",
		Long: `Loads the task, dependency and server tables, runs the selected policy
(or all of them, each on its own copy of the input) and writes
results_<policy>.txt for every schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			if flags.Changed("results-dir") {
				cfg.ResultsDir = resultsDir
			}
			if flags.Changed("event-log") {
				cfg.EventLog = eventLog
			}
			if flags.Changed("store") {
				cfg.StorePath = storePath
			}
			if flags.Changed("power-cap") {
				cfg.PowerCap = powerCap
			}
			if flags.Changed("max-timesteps") {
				cfg.MaxTimesteps = maxTimesteps
			}
			if flags.Changed("max-ticks") {
				cfg.MaxTicks = maxTicks
			}
			if flags.Changed("frequency") {
				cfg.Frequency = frequency
			}
			if flags.Changed("repeat") {
				cfg.Repeat = repeat
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			names := sched.DriverNames()
			if !strings.EqualFold(driver, "all") {
				names = []string{driver}
			}

			data, err := input.Load(cfg, logger)
			if err != nil {
				return err
			}

			schedules, errSimulate := sched.Simulate(cmd.Context(), names, data, cfg, logger)

			if err := writeOutputs(cmd, schedules); err != nil {
				return errors.Join(errSimulate, err)
			}

			return errSimulate
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "all", "Policy to run (all, wavefront, fifo, cpm)")
	cmd.Flags().StringVar(&resultsDir, "results-dir", ".", "Directory for results_<policy>.txt files")
	cmd.Flags().StringVar(&eventLog, "event-log", "", "Write all scheduling events to this CSV file")
	cmd.Flags().StringVar(&storePath, "store", "", "Save runs into this SQLite database")
	cmd.Flags().IntVar(&powerCap, "power-cap", 0, "Global power cap (advisory)")
	cmd.Flags().IntVar(&maxTimesteps, "max-timesteps", 0, "WaveFront horizon in ticks")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "FIFO tick ceiling")
	cmd.Flags().IntVar(&frequency, "frequency", 0, "Frequency level, 1-based")
	cmd.Flags().IntVar(&repeat, "repeat", 0, "Instances of every periodic task")

	return cmd
}

func writeOutputs(cmd *cobra.Command, schedules []*sched.Schedule) error {
	out := cmd.OutOrStdout()

	for _, schedule := range schedules {
		path, err := report.WriteResultsFile(cfg.ResultsDir, schedule)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, report.Summary(schedule))
		logger.Debug("results written", "driver", schedule.Driver, "path", path)
	}

	if cfg.EventLog != "" {
		f, err := os.Create(cfg.EventLog)
		if err != nil {
			return fmt.Errorf("create event log: %w", err)
		}

		if err := report.WriteEvents(f, schedules...); err != nil {
			f.Close()

			return fmt.Errorf("write event log: %w", err)
		}

		if err := f.Close(); err != nil {
			return err
		}
	}

	if cfg.StorePath == "" {
		return nil
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, schedule := range schedules {
		run, err := st.SaveRun(cmd.Context(), schedule)
		if err != nil {
			return err
		}

		logger.Info("run saved", "driver", run.Driver, "run_id", run.ID)
	}

	return nil
}

func openStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.StorePath, logger)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(cmd.Context()); err != nil {
		st.Close()

		return nil, err
	}

	return st, nil
}
