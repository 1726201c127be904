package driver

import (
	"context"

	"github.com/daysim/daysim/internal/state"
)

// Model is the external collaborator a driver delegates simulation work
// to. The driver guarantees RunDay is called at most once per day, in
// ascending day order, and that each call completes before the registry's
// day counter advances.
//
// Transient failures inside a model are the model's responsibility; any
// error it returns is propagated unchanged and ends the run.
type Model interface {
	// Setup performs one-time preparation before the first day, e.g.
	// constructing a population. reg is already initialized.
	Setup(ctx context.Context, reg *state.Registry) error

	// RunDay executes one simulated day.
	RunDay(ctx context.Context, day int) error

	// Finish releases any resources the model holds for the run.
	Finish(ctx context.Context) error
}

// NoopModel is a Model that requires nothing at any phase. It is the
// default collaborator for a driver constructed with a nil model.
type NoopModel struct{}

func (NoopModel) Setup(ctx context.Context, reg *state.Registry) error { return nil }
func (NoopModel) RunDay(ctx context.Context, day int) error            { return nil }
func (NoopModel) Finish(ctx context.Context) error                     { return nil }
