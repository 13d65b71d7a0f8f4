package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtool/internal/application"
	"github.com/JonMunkholm/csvtool/internal/report"
)

func newProfileCmd(a *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "profile FILE",
		Short: "Profile a data file",
		Long: `Print row and column counts, per-column statistics and, when --key is
given, duplicate values and invalid client matter codes in that column.

Example:
  csvtool profile data.xlsx --key ClientMatterCode`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.service.Profile(cmd.Context(), application.ProfileRequest{
				Input:     application.Input{Path: args[0]},
				KeyColumn: key,
			})
			if err != nil {
				return reportError(cmd, err)
			}

			fmt.Fprint(cmd.ErrOrStderr(), report.FormatWarnings(res.Report.Warnings))
			fmt.Fprint(cmd.OutOrStdout(), report.FormatProfile(res.Report))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key column for duplicate detection and code validation")

	return cmd
}
