package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daysim/daysim/internal/config"
	"github.com/daysim/daysim/internal/constants"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a daysim project in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			daysimDir := filepath.Join(root, ".daysim")
			if err := os.MkdirAll(daysimDir, 0755); err != nil {
				return fmt.Errorf("failed to create .daysim directory: %w", err)
			}

			configPath := filepath.Join(daysimDir, config.FileName)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				content := fmt.Sprintf(`# daysim configuration
simulation:
  total_days: %d
  days_per_week: %d
  adult_age: %d

logging:
  level: info   # info, debug, or trace

runlog:
  enabled: true
`, constants.DefaultTotalDays, constants.DefaultDaysPerWeek, constants.DefaultAdultAge)
				if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to create %s: %w", config.FileName, err)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "initialized",
					"path":   daysimDir,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized .daysim/ in %s\n", root)
			}

			return nil
		},
	}

	return cmd
}
