package updater

import (
	"context"
	"errors"
	"os/exec"
)

// StepStatus classifies how the batch proceeds after a pipeline step.
type StepStatus int

// Supported step statuses.
const (
	// StepSucceeded indicates the step completed and the pipeline continues.
	StepSucceeded StepStatus = iota
	// StepRecoverable indicates the directory is abandoned but the batch continues.
	StepRecoverable
	// StepFatal indicates the whole run must stop.
	StepFatal
)

// String returns the status label used in logs.
func (status StepStatus) String() string {
	switch status {
	case StepSucceeded:
		return "succeeded"
	case StepRecoverable:
		return "recoverable"
	default:
		return "fatal"
	}
}

// StepResult pairs a step status with its error.
type StepResult struct {
	Status StepStatus
	Err    error
}

// Succeeded returns a successful step result.
func Succeeded() StepResult {
	return StepResult{Status: StepSucceeded}
}

// ClassifyStepError converts a step error into a StepResult.
// A step fails fatally when the run context is done or the executable is missing.
// Deadlines carried only by the step error, such as an HTTP client timeout, are recoverable.
func ClassifyStepError(runContext context.Context, stepError error) StepResult {
	if stepError == nil {
		return Succeeded()
	}
	runInterrupted := runContext != nil && runContext.Err() != nil
	if runInterrupted || errors.Is(stepError, exec.ErrNotFound) {
		return StepResult{Status: StepFatal, Err: stepError}
	}
	return StepResult{Status: StepRecoverable, Err: stepError}
}

// Fatal reports whether the step aborts the run.
func (result StepResult) Fatal() bool {
	return result.Status == StepFatal
}
