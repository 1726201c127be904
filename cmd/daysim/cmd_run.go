package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/daysim/daysim/internal/config"
	"github.com/daysim/daysim/internal/driver"
	"github.com/daysim/daysim/internal/logging"
	"github.com/daysim/daysim/internal/runlog"
	"github.com/daysim/daysim/internal/state"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation for the configured number of days",
		Long: `Run a simulation through its full lifecycle.

The driver initializes the shared registry, performs one-time setup,
runs every simulated day in ascending order, and finishes. The run and
its per-day timings are recorded in .daysim/daysim.db.

Examples:
  daysim run
  daysim run --days 30
  daysim run --config custom.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			days, _ := cmd.Flags().GetInt("days")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := loadRunConfig(root, configPath)
			if err != nil {
				return err
			}
			if days > 0 {
				cfg.Simulation.TotalDays = days
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
			daysimDir := filepath.Join(root, ".daysim")

			trace := logging.NewTraceLogger(daysimDir, cfg.Logging.Level)
			defer trace.Close()

			var store *runlog.Store
			if cfg.RunLog.Enabled {
				store, err = runlog.Open(daysimDir)
				if err != nil {
					return fmt.Errorf("failed to open run log: %w", err)
				}
				defer store.Close()
			}

			reg := state.NewRegistry()
			drv := driver.New(reg, nil, driver.Config{
				Options: cfg.Options(),
				Logger:  logger,
				Trace:   trace,
			})

			ctx := context.Background()
			result, runErr := executeRun(ctx, drv, reg, store)

			if runErr != nil {
				return runErr
			}

			if jsonOut {
				out := map[string]any{
					"status":      "done",
					"days_run":    result.daysRun,
					"current_day": reg.CurrentDay(),
					"total_days":  reg.TotalDays(),
				}
				if result.runID > 0 {
					out["run_id"] = result.runID
				}
				json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Simulation completed: %d days.\n", result.daysRun)
			}

			return nil
		},
	}

	cmd.Flags().Int("days", 0, "Number of days to run (overrides configuration)")
	cmd.Flags().String("config", "", "Path to a config file (overrides .daysim/daysim.yaml)")

	return cmd
}

// loadRunConfig loads configuration from an explicit file or the project
// root's .daysim directory.
func loadRunConfig(root, configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(root)
}

// runResult summarizes a completed run.
type runResult struct {
	runID   int64
	daysRun int
}

// executeRun drives the full lifecycle against drv, recording progress in
// store when it is non-nil. On failure the run is marked errored with the
// number of days that completed, and the phase error is returned.
func executeRun(ctx context.Context, drv *driver.Driver, reg *state.Registry, store *runlog.Store) (runResult, error) {
	var runID int64

	markError := func(phaseErr error) (runResult, error) {
		if store != nil && runID > 0 {
			if err := store.FinishRun(ctx, runID, runlog.StatusError, drv.DaysRun()); err != nil {
				return runResult{}, fmt.Errorf("%w (additionally failed to record error: %v)", phaseErr, err)
			}
		}
		return runResult{runID: runID, daysRun: drv.DaysRun()}, phaseErr
	}

	if err := drv.Initialize(ctx); err != nil {
		return markError(err)
	}

	if store != nil {
		var err error
		runID, err = store.BeginRun(ctx, reg.TotalDays())
		if err != nil {
			return runResult{}, err
		}
	}

	if err := drv.Setup(ctx); err != nil {
		return markError(err)
	}

	for day := 0; day < reg.TotalDays(); day++ {
		start := time.Now()
		if err := drv.RunDay(ctx, day); err != nil {
			return markError(err)
		}
		if store != nil {
			if err := store.RecordDay(ctx, runID, day, time.Since(start)); err != nil {
				return markError(err)
			}
		}
	}

	if err := drv.Finish(ctx); err != nil {
		return markError(err)
	}

	if store != nil {
		if err := store.FinishRun(ctx, runID, runlog.StatusDone, drv.DaysRun()); err != nil {
			return runResult{}, err
		}
	}

	return runResult{runID: runID, daysRun: drv.DaysRun()}, nil
}
