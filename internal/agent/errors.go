package agent

import (
	"errors"
	"fmt"
)

// ErrStepLimit means the model kept calling tools until the step ceiling
// was reached without giving a final answer.
var ErrStepLimit = errors.New("maximum steps reached without a final answer")

// Error is a failed turn. Step is the model round that failed, starting at 1.
type Error struct {
	Step int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent step %d: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
