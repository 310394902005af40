package execshell

// CommandEventObserver receives lifecycle notifications for svn and service-control invocations.
type CommandEventObserver interface {
	// CommandStarted is called before the command is handed to the runner.
	CommandStarted(command ShellCommand)
	// CommandCompleted is called once the runner has produced a result, whatever the exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed is called when the runner could not produce a result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
