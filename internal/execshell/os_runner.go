package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	defaultInterruptGracePeriod            = 10 * time.Second
)

// OSCommandRunner executes commands using the operating system facilities.
//
// On cancellation the child receives an interrupt first so svn can release
// its working copy lock; it is killed once the grace period elapses.
type OSCommandRunner struct {
	interruptGracePeriod time.Duration
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{interruptGracePeriod: defaultInterruptGracePeriod}
}

// Run executes the supplied command. A non-zero exit code is reported through the result;
// errors are reserved for commands that could not run to completion.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)
	executable.Cancel = func() error {
		return executable.Process.Signal(os.Interrupt)
	}
	executable.WaitDelay = runner.interruptGracePeriod

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}
	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = overrideEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	result := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return ExecutionResult{}, runError
}

// overrideEnvironment replaces matching keys of baseEnvironment and appends the rest.
func overrideEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(baseEnvironment)+len(overrides))
	for _, assignment := range baseEnvironment {
		key, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if _, overridden := overrides[key]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}
	for key, value := range overrides {
		merged = append(merged, key+environmentAssignmentSeparatorConstant+value)
	}
	return merged
}
