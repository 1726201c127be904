// Package driver sequences the four-phase simulation lifecycle:
// initialize → setup → run day (repeated) → finish. It owns the decision
// of how many days to run and is the only writer of the registry's
// current-day field.
//
// A Driver exists for the duration of one run and is not reusable after
// Finish. All failure modes are caller-sequencing errors (see errors.go);
// there is nothing transient to retry at this layer.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/daysim/daysim/internal/logging"
	"github.com/daysim/daysim/internal/state"
)

// Config carries the collaborating pieces a driver needs. Logger and
// Trace may be nil; a nil Model means NoopModel.
type Config struct {
	// Options are the registry options applied during Initialize.
	Options state.Options

	// Logger receives operational log lines. Nil discards them.
	Logger *slog.Logger

	// Trace receives one structured event per completed day. Nil-safe.
	Trace *logging.TraceLogger
}

// Driver orchestrates one simulation run against a shared registry.
type Driver struct {
	reg     *state.Registry
	model   Model
	opts    state.Options
	log     *slog.Logger
	trace   *logging.TraceLogger
	phase   Phase
	daysRun int
}

// New creates a driver in the Uninitialized phase. The registry must be
// the run's single shared instance; the driver takes over writing its
// current-day field.
func New(reg *state.Registry, model Model, cfg Config) *Driver {
	if model == nil {
		model = NoopModel{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{
		reg:   reg,
		model: model,
		opts:  cfg.Options,
		log:   log,
		trace: cfg.Trace,
	}
}

// Phase returns the driver's current lifecycle phase.
func (d *Driver) Phase() Phase { return d.phase }

// DaysRun returns the number of days completed so far.
func (d *Driver) DaysRun() int { return d.daysRun }

// Initialize derives the run's horizon and resets the registry's current
// day to zero. Calling it twice fails with an ordering violation.
func (d *Driver) Initialize(ctx context.Context) error {
	if d.phase != PhaseUninitialized {
		return &OrderingError{Op: "initialize", Phase: d.phase}
	}

	if err := d.reg.Initialize(d.opts); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	d.phase = PhaseInitialized
	d.log.Info("simulation initialized",
		"total_days", d.reg.TotalDays(),
		"days_per_week", d.reg.DaysPerWeek(),
		"adult_age", d.reg.AdultAge())
	return nil
}

// Setup delegates one-time preparation to the model. It fails with an
// ordering violation unless Initialize has completed.
func (d *Driver) Setup(ctx context.Context) error {
	if d.phase != PhaseInitialized {
		return &OrderingError{Op: "setup", Phase: d.phase}
	}

	if err := d.model.Setup(ctx, d.reg); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	d.phase = PhaseRunning
	d.log.Debug("simulation setup complete")
	return nil
}

// RunDay executes one simulated day. day must equal the registry's
// current day: no skipping, no repeats. On success the model has run to
// completion and the current day has advanced by exactly one. On any
// error the registry is left unchanged.
func (d *Driver) RunDay(ctx context.Context, day int) error {
	if d.phase != PhaseRunning {
		return &OrderingError{Op: "run day", Phase: d.phase}
	}
	if d.daysRun >= d.reg.TotalDays() {
		return &RangeError{Day: day, TotalDays: d.reg.TotalDays()}
	}
	if current := d.reg.CurrentDay(); day != current {
		return &SequenceError{Day: day, CurrentDay: current}
	}

	start := time.Now()
	if err := d.model.RunDay(ctx, day); err != nil {
		return fmt.Errorf("run day %d: %w", day, err)
	}

	if err := d.reg.SetCurrentDay(day + 1); err != nil {
		return fmt.Errorf("run day %d: advance: %w", day, err)
	}
	d.daysRun++

	elapsed := time.Since(start)
	d.log.Debug("day completed", "day", day, "elapsed", elapsed)
	d.trace.Log(map[string]any{
		"event":       "day_completed",
		"day":         day,
		"elapsed_ms":  elapsed.Milliseconds(),
		"current_day": day + 1,
	})
	return nil
}

// Finish releases the model's resources and marks the driver terminal.
// It fails with an ordering violation before Setup has completed.
// Calling Finish again after the driver reached Finished is a no-op;
// the no-op choice keeps shutdown paths caller-friendly.
func (d *Driver) Finish(ctx context.Context) error {
	if d.phase == PhaseFinished {
		return nil
	}
	if d.phase != PhaseRunning {
		return &OrderingError{Op: "finish", Phase: d.phase}
	}

	if err := d.model.Finish(ctx); err != nil {
		return fmt.Errorf("finish: %w", err)
	}

	d.phase = PhaseFinished
	d.log.Info("simulation finished", "days_run", d.daysRun)
	return nil
}

// Run drives a full lifecycle: Initialize, Setup, RunDay for every day in
// [0, TotalDays), then Finish. It stops at the first error.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Initialize(ctx); err != nil {
		return err
	}
	if err := d.Setup(ctx); err != nil {
		return err
	}
	for day := 0; day < d.reg.TotalDays(); day++ {
		if err := d.RunDay(ctx, day); err != nil {
			return err
		}
	}
	return d.Finish(ctx)
}
