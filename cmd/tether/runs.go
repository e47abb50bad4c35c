// Runs command: lists recorded stress runs.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/tether/internal/benchstore"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded stress runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveResultsDB()
		if err != nil {
			return err
		}
		store, err := benchstore.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSCENARIO\tGOROUTINES\tOPS\tFAILURES\tDURATION\tRECORDED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
				r.RunID, r.Scenario, r.Goroutines, r.Ops, r.Failures,
				r.Duration.Round(time.Millisecond), r.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}
