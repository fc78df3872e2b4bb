package provisioning

import (
	"fmt"
	"time"
)

// Phase names.
const (
	PhasePreflight = "preflight"
	PhaseCleanup   = "cleanup"
	PhaseMain      = "main"
)

// Run executes the plan in ctx. For a destructive plan the cleanup phase
// runs to completion first; only then is the main phase built and run.
// On failure the returned error is a *StageFailure and the run must be
// restarted from the beginning.
func Run(ctx *Context) error {
	start := time.Now()
	ctx.machine = NewStateMachine(ctx.Plan.Destructive, ctx.Observer)
	if ctx.Results == nil {
		ctx.Results = &Results{}
	}

	mode := "normal"
	if ctx.Plan.Destructive {
		mode = "destructive"
	}
	ctx.Observer.Printf("starting %s run as %s, data dir %s", mode, ctx.Plan.Identity, ctx.Plan.DataDir)

	if ctx.CheckTools != nil {
		if err := ctx.CheckTools(ctx.Config); err != nil {
			return &StageFailure{Phase: PhasePreflight, Stage: "tools", State: ctx.State(), Err: err}
		}
	}

	if ctx.Plan.Destructive {
		if err := runPhase(ctx, PhaseCleanup, CleanupSteps(ctx.Config)); err != nil {
			return err
		}
	}

	if err := ctx.machine.Transition(StateConfiguring); err != nil {
		return &StageFailure{Phase: PhaseMain, Stage: StageConfigure, State: ctx.State(), Err: err}
	}
	if err := runPhase(ctx, PhaseMain, MainSteps(ctx.Config)); err != nil {
		return err
	}
	if err := ctx.machine.Transition(StateConfigured); err != nil {
		return &StageFailure{Phase: PhaseMain, Stage: "finish", State: ctx.State(), Err: err}
	}

	ctx.Observer.Printf("run completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// runPhase executes steps in order and stops at the first failure.
func runPhase(ctx *Context, phase string, steps []Step) error {
	phaseStart := time.Now()
	logPhaseStart(ctx.Observer, phase, len(steps))

	for i, step := range steps {
		name := step.Name()
		fail := func(err error) error {
			ctx.Observer.Event(Event{
				Type:    EventStageFailed,
				Phase:   phase,
				Stage:   name,
				Message: fmt.Sprintf("failed: %v", err),
			})
			return &StageFailure{Phase: phase, Stage: name, State: ctx.State(), Err: err}
		}

		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("run interrupted: %w", err))
		}

		ctx.Observer.Event(Event{
			Type:    EventStageStarted,
			Phase:   phase,
			Stage:   name,
			Message: fmt.Sprintf("starting (%d/%d)", i+1, len(steps)),
		})

		stepStart := time.Now()
		err := step.Run(ctx)
		elapsed := time.Since(stepStart)
		if ctx.Metrics != nil {
			ctx.Metrics.ObserveStage(phase, name, elapsed)
		}
		if err != nil {
			return fail(err)
		}

		if s, ok := step.(stateful); ok {
			if err := ctx.machine.Transition(s.Enters()); err != nil {
				return fail(err)
			}
		}

		ctx.Observer.Event(Event{
			Type:    EventStageCompleted,
			Phase:   phase,
			Stage:   name,
			Message: fmt.Sprintf("completed in %v", elapsed.Round(time.Millisecond)),
		})
	}

	logPhaseComplete(ctx.Observer, phase, time.Since(phaseStart))
	return nil
}
