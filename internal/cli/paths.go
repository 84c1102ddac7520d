package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"powersched/internal/input"
	"powersched/internal/sched"
)

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show critical times and the CPM critical paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := input.Load(cfg, logger)
			if err != nil {
				return err
			}

			core, err := sched.NewCore(data, cfg, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tWORK\tCRITICAL TIME\tSUCCESSORS")

			for _, task := range core.Tasks() {
				fmt.Fprintf(w, "%d\t%d\t%d\t%v\n",
					task.ID,
					task.UnitOfWork,
					task.CriticalTime,
					task.Successors,
				)
			}

			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout())

			for i, chain := range sched.NewCPM(core).CriticalPaths() {
				fmt.Fprintf(cmd.OutOrStdout(), "path %d: %v\n", i+1, chain)
			}

			return nil
		},
	}
}
