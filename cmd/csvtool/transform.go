package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtool/internal/application"
	"github.com/JonMunkholm/csvtool/internal/core"
	"github.com/JonMunkholm/csvtool/internal/report"
)

type transformOptions struct {
	columns    []string
	caseMode   string
	duplicates string
	key        string
	output     string
}

func newTransformCmd(a *app) *cobra.Command {
	var opts transformOptions

	cmd := &cobra.Command{
		Use:   "transform SOURCE",
		Short: "Select, rename and clean columns into a new CSV",
		Long: `Transform a data file: keep the listed columns (renaming "Source:Dest"),
trim whitespace, apply a case conversion, validate the key column as
XXXXX.XXXXX codes and resolve duplicate keys.

Example:
  csvtool transform data.xlsx -c "ID:ClientMatterCode" -c Status --case proper -o clean.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.service.Transform(cmd.Context(), application.TransformRequest{
				Input:      application.Input{Path: args[0]},
				Columns:    opts.columns,
				Case:       opts.caseMode,
				Duplicates: opts.duplicates,
				KeyColumn:  opts.key,
				Output:     opts.output,
			})
			if err != nil {
				return reportError(cmd, err)
			}

			out := cmd.OutOrStdout()
			if res.DuplicatesRemoved > 0 {
				fmt.Fprintf(out, "Removed %d duplicate rows\n", res.DuplicatesRemoved)
			}
			fmt.Fprintf(out, "Successfully wrote %d rows to %s\n", res.Table.NumRows(), res.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.columns, "columns", "c", nil, `Column mapping: "Source:Dest" or "ColumnName" (repeatable)`)
	f.StringVar(&opts.caseMode, "case", "", "Case conversion: lower, upper, proper, none (default from CSVTOOL_DEFAULT_CASE)")
	f.StringVar(&opts.duplicates, "duplicates", "", "Duplicate handling: keep-first, error (default from CSVTOOL_DEFAULT_DUPLICATES)")
	f.StringVar(&opts.key, "key", "", "Key column for code validation and uniqueness (default from CSVTOOL_DEFAULT_KEY)")
	f.StringVarP(&opts.output, "output", "o", "", "Output CSV file path")
	cmd.MarkFlagRequired("columns")
	cmd.MarkFlagRequired("output")

	return cmd
}

// reportError prints err for a terminal user and returns errReported.
//
// Invalid key codes are listed one per line. Other failures print the
// technical message, which names the offending column or value, followed by
// the coded user message.
func reportError(cmd *cobra.Command, err error) error {
	w := cmd.ErrOrStderr()

	var verr *core.ValidationFailedError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(w, "Validation Error:")
		fmt.Fprint(w, report.FormatValidationErrors(verr.Errors))
	case errors.Is(err, core.ErrEmptyInput):
		fmt.Fprintln(w, "Warning: Input file contains no data rows")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		fmt.Fprintf(w, "  %s\n", core.FormatUserError(err))
	}
	return errReported
}
