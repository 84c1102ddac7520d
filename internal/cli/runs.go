package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"powersched/internal/report"
	"powersched/internal/sched"
)

func newRunsCmd() *cobra.Command {
	var (
		storePath string
		runID     string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved runs, or print the schedule of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("store") {
				cfg.StorePath = storePath
			}
			if cfg.StorePath == "" {
				return errors.New("no store configured, set store_path or --store")
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			if runID != "" {
				assignments, err := st.GetAssignments(cmd.Context(), runID)
				if err != nil {
					return err
				}

				return report.WriteResults(
					cmd.OutOrStdout(),
					&sched.Schedule{Assignments: assignments},
				)
			}

			runs, err := st.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDRIVER\tASSIGNMENTS\tENERGY\tWARNINGS\tCREATED")

			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
					run.ID,
					run.Driver,
					run.Assignments,
					humanize.FormatFloat("#,###.##", run.Energy),
					run.Warnings,
					humanize.Time(run.CreatedAt),
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "SQLite database of saved runs")
	cmd.Flags().StringVar(&runID, "run", "", "Print the schedule of this run")

	return cmd
}
