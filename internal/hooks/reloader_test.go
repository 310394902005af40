package hooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/wpsvn/internal/execshell"
	"github.com/temirov/wpsvn/internal/hooks"
)

type recordedCommand struct {
	name      execshell.CommandName
	arguments []string
}

type recordingCommandExecutor struct {
	failures map[string]error
	commands []recordedCommand
}

func (executor *recordingCommandExecutor) ExecuteCommand(_ context.Context, name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, recordedCommand{name: name, arguments: details.Arguments})
	if failure, found := executor.failures[details.Arguments[0]]; found {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{}, nil
}

func TestReloaderIssuesDefaultServiceCommands(testInstance *testing.T) {
	executor := &recordingCommandExecutor{}
	reloader, creationError := hooks.NewReloader(executor, "", "", zap.NewNop())
	require.NoError(testInstance, creationError)

	result := reloader.Reload(context.Background(), hooks.DefaultServices)

	require.Equal(testInstance, []recordedCommand{
		{name: execshell.CommandService, arguments: []string{"nginx", "reload"}},
		{name: execshell.CommandService, arguments: []string{"php-fpm", "reload"}},
	}, executor.commands)
	require.Equal(testInstance, []string{"nginx", "php-fpm"}, result.ReloadedServices)
	require.Empty(testInstance, result.Failures)
}

func TestReloaderContinuesPastFailures(testInstance *testing.T) {
	reloadFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1}}
	executor := &recordingCommandExecutor{failures: map[string]error{"nginx": reloadFailure}}
	observerCore, observerLogs := observer.New(zap.DebugLevel)

	reloader, creationError := hooks.NewReloader(executor, "systemctl-compat", "restart", zap.New(observerCore))
	require.NoError(testInstance, creationError)

	result := reloader.Reload(context.Background(), []string{"nginx", " ", "php-fpm"})

	require.Len(testInstance, executor.commands, 2)
	require.Equal(testInstance, execshell.CommandName("systemctl-compat"), executor.commands[0].name)
	require.Equal(testInstance, []string{"php-fpm", "restart"}, executor.commands[1].arguments)
	require.Equal(testInstance, []string{"php-fpm"}, result.ReloadedServices)
	require.Len(testInstance, result.Failures, 1)
	require.Equal(testInstance, "nginx", result.Failures[0].Service)
	var failedError execshell.CommandFailedError
	require.True(testInstance, errors.As(result.Errors()[0], &failedError))
	require.Equal(testInstance, 1, failedError.Result.ExitCode)
	require.Len(testInstance, observerLogs.FilterLevelExact(zapcore.WarnLevel).All(), 1)
}

func TestNewReloaderRequiresExecutor(testInstance *testing.T) {
	_, creationError := hooks.NewReloader(nil, "", "", nil)
	require.ErrorIs(testInstance, creationError, hooks.ErrExecutorNotConfigured)
}
