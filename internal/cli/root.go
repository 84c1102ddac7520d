package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"powersched/internal/logging"
	"powersched/internal/sched"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg    sched.Config
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the powersched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "powersched",
		Short: "Power-aware DAG scheduling simulator",
		Long: `powersched places dependent, deadline and power constrained tasks on a
pool of heterogeneous servers with the WaveFront, FIFO and CPM policies and
reports the schedules and their energy cost.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := sched.Load(flagConfig)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel = flagLogLevel
			}
			if flagDebug {
				loaded.LogLevel = "debug"
			}
			if cmd.Flags().Changed("log-format") {
				loaded.LogFormat = flagLogFormat
			}

			built, err := logging.FromConfig(loaded)
			if err != nil {
				return err
			}

			cfg = loaded
			logger = built

			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "config.yml", "YAML configuration file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newPathsCmd(),
		newRunsCmd(),
	)

	return root
}
