package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtool/internal/history"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent profile and transform runs",
		Long: `List recorded runs, newest first. History survives between invocations
only when DATABASE_URL points at PostgreSQL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := a.service.History(cmd.Context(), limit)
			if err != nil {
				return reportError(cmd, err)
			}
			writeRuns(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")

	return cmd
}

func writeRuns(cmd *cobra.Command, runs []history.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tCOMMAND\tSTATUS\tSOURCE\tROWS IN\tROWS OUT\tDUPLICATES\tCODE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Format(time.RFC3339),
			r.Command,
			r.Status,
			r.Source,
			r.RowsIn,
			r.RowsOut,
			r.DuplicatesRemoved,
			r.ErrorCode,
		)
	}
	w.Flush()
}
