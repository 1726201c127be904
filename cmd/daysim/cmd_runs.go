package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/daysim/daysim/internal/runlog"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded simulation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			daysimDir := filepath.Join(root, ".daysim")
			if _, err := os.Stat(daysimDir); os.IsNotExist(err) {
				if jsonOut {
					json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"runs":  []runlog.Run{},
						"count": 0,
					})
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Run 'daysim run' first.")
				}
				return nil
			}

			store, err := runlog.Open(daysimDir)
			if err != nil {
				return fmt.Errorf("failed to open run log: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				if runs == nil {
					runs = []runlog.Run{}
				}
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"runs":  runs,
					"count": len(runs),
				})
				return nil
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded runs (%d):\n\n", len(runs))
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. [%s] %d/%d days, started %s\n",
					r.ID, r.Status, r.DaysCompleted, r.TotalDays,
					r.StartedAt.Format(time.RFC3339))
			}

			return nil
		},
	}

	return cmd
}
