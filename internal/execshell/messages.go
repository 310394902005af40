package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
	optionPrefixConstant                    = "-"
)

const (
	svnInfoSubcommandNameConstant     = "info"
	svnListSubcommandNameConstant     = "list"
	svnSwitchSubcommandNameConstant   = "switch"
	svnUpdateSubcommandNameConstant   = "update"
	svnCheckoutSubcommandNameConstant = "checkout"
	svnDepthFlagConstant              = "--depth"
)

const (
	svnInfoStartTemplateConstant                = "Reading Subversion metadata for %s"
	svnInfoSuccessTemplateConstant              = "Read Subversion metadata for %s"
	svnInfoFailureTemplateConstant              = "Failed to read Subversion metadata for %s (exit code %d%s)"
	svnInfoExecutionFailureTemplateConstant     = "Unable to read Subversion metadata for %s: %s"
	svnListStartTemplateConstant                = "Listing %s"
	svnListSuccessTemplateConstant              = "Listed %s"
	svnListFailureTemplateConstant              = "Failed to list %s (exit code %d%s)"
	svnListExecutionFailureTemplateConstant     = "Unable to list %s: %s"
	svnSwitchStartTemplateConstant              = "Switching %s to %s"
	svnSwitchSuccessTemplateConstant            = "%s now tracks %s"
	svnSwitchFailureTemplateConstant            = "Failed to switch %s to %s (exit code %d%s)"
	svnSwitchExecutionFailureTemplateConstant   = "Unable to switch %s to %s: %s"
	svnUpdateStartTemplateConstant              = "Updating %s"
	svnUpdateSuccessTemplateConstant            = "Updated %s"
	svnUpdateFailureTemplateConstant            = "Failed to update %s (exit code %d%s)"
	svnUpdateExecutionFailureTemplateConstant   = "Unable to update %s: %s"
	svnCheckoutStartTemplateConstant            = "Checking out %s into %s (depth %s)"
	svnCheckoutSuccessTemplateConstant          = "Checked out %s into %s"
	svnCheckoutFailureTemplateConstant          = "Failed to check out %s into %s (exit code %d%s)"
	svnCheckoutExecutionFailureTemplateConstant = "Unable to check out %s into %s: %s"
	serviceStartTemplateConstant                = "Requesting %s of service %s"
	serviceSuccessTemplateConstant              = "Service %s accepted %s"
	serviceFailureTemplateConstant              = "Service %s rejected %s (exit code %d%s)"
	serviceExecutionFailureTemplateConstant     = "Unable to request %s of service %s: %s"
	serviceArgumentCountConstant                = 2
	defaultCheckoutDepthLabelConstant           = "infinity"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandSubversion:
		return formatter.describeSubversionMessage(command, result, failure, stage)
	case CommandService:
		return formatter.describeServiceMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeSubversionMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	operands := formatter.positionalArguments(command.Details.Arguments[1:])
	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case svnInfoSubcommandNameConstant:
		target := formatter.ensureValue(formatter.argumentAtIndex(operands, 0))
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(svnInfoStartTemplateConstant, target),
			fmt.Sprintf(svnInfoSuccessTemplateConstant, target),
			svnInfoFailureTemplateConstant, svnInfoExecutionFailureTemplateConstant, target)
	case svnListSubcommandNameConstant:
		target := formatter.ensureValue(formatter.argumentAtIndex(operands, 0))
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(svnListStartTemplateConstant, target),
			fmt.Sprintf(svnListSuccessTemplateConstant, target),
			svnListFailureTemplateConstant, svnListExecutionFailureTemplateConstant, target)
	case svnUpdateSubcommandNameConstant:
		target := formatter.ensureValue(formatter.argumentAtIndex(operands, 0))
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(svnUpdateStartTemplateConstant, target),
			fmt.Sprintf(svnUpdateSuccessTemplateConstant, target),
			svnUpdateFailureTemplateConstant, svnUpdateExecutionFailureTemplateConstant, target)
	case svnSwitchSubcommandNameConstant:
		targetURL := formatter.ensureValue(formatter.argumentAtIndex(operands, 0))
		workingCopy := formatter.ensureValue(formatter.argumentAtIndex(operands, 1))
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(svnSwitchStartTemplateConstant, workingCopy, targetURL),
			fmt.Sprintf(svnSwitchSuccessTemplateConstant, workingCopy, targetURL),
			svnSwitchFailureTemplateConstant, svnSwitchExecutionFailureTemplateConstant, workingCopy, targetURL)
	case svnCheckoutSubcommandNameConstant:
		sourceURL := formatter.ensureValue(formatter.argumentAtIndex(operands, 0))
		destination := formatter.ensureValue(formatter.argumentAtIndex(operands, 1))
		depth := formatter.flagValue(command.Details.Arguments, svnDepthFlagConstant)
		if len(depth) == 0 {
			depth = defaultCheckoutDepthLabelConstant
		}
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(svnCheckoutStartTemplateConstant, sourceURL, destination, depth),
			fmt.Sprintf(svnCheckoutSuccessTemplateConstant, sourceURL, destination),
			svnCheckoutFailureTemplateConstant, svnCheckoutExecutionFailureTemplateConstant, sourceURL, destination)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeServiceMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) < serviceArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	serviceName := strings.TrimSpace(command.Details.Arguments[0])
	action := strings.TrimSpace(command.Details.Arguments[1])
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(serviceStartTemplateConstant, action, serviceName)
	case messageStageSuccess:
		return fmt.Sprintf(serviceSuccessTemplateConstant, serviceName, action)
	case messageStageFailure:
		return fmt.Sprintf(serviceFailureTemplateConstant, serviceName, action, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(serviceExecutionFailureTemplateConstant, action, serviceName, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

// selectTemplate renders the stage-specific message. Failure templates receive the subjects followed by the
// exit code and standard error suffix; execution failure templates receive the subjects followed by the cause.
func (formatter CommandMessageFormatter) selectTemplate(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subjects ...string) string {
	subjectArguments := make([]any, 0, len(subjects)+2)
	for _, subject := range subjects {
		subjectArguments = append(subjectArguments, subject)
	}

	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		failureArguments := append(subjectArguments, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, failureArguments...)
	case messageStageExecutionFailure:
		executionFailureArguments := append(subjectArguments, formatter.describeFailure(failure))
		return fmt.Sprintf(executionFailureTemplate, executionFailureArguments...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// positionalArguments drops option flags and the values of value-taking options.
func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	skipNext := false
	for _, argument := range arguments {
		if skipNext {
			skipNext = false
			continue
		}
		trimmedArgument := strings.TrimSpace(argument)
		if trimmedArgument == svnDepthFlagConstant {
			skipNext = true
			continue
		}
		if strings.HasPrefix(trimmedArgument, optionPrefixConstant) {
			continue
		}
		positional = append(positional, trimmedArgument)
	}
	return positional
}

func (formatter CommandMessageFormatter) flagValue(arguments []string, flagName string) string {
	for index, argument := range arguments {
		if strings.TrimSpace(argument) == flagName && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}
