package provisioning

import (
	"errors"
	"fmt"
)

// StageFailure reports the step a run stopped at. The run made no
// progress past State; it has to be started again from Idle.
type StageFailure struct {
	Phase string
	Stage string
	State State
	Err   error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("%s stage %q failed in state %s: %v", e.Phase, e.Stage, e.State, e.Err)
}

func (e *StageFailure) Unwrap() error {
	return e.Err
}

// IsStageFailure reports whether err wraps a *StageFailure.
func IsStageFailure(err error) bool {
	var sf *StageFailure
	return errors.As(err, &sf)
}
