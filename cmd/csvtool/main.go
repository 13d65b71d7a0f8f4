// Command csvtool profiles and cleans CSV and Excel files.
//
// Usage:
//
//	csvtool profile clients.xlsx --key ClientMatterCode
//	csvtool transform clients.xlsx -c "matter id:ClientMatterCode" -c Name --case proper -o clean.csv
//	csvtool serve --port 8080
//	csvtool runs --limit 20
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		// Command failures have already been printed in a user-facing form.
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
