package hooks

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/execshell"
	"github.com/temirov/wpsvn/internal/repos/shared"
)

const (
	DefaultServiceCommandConstant = "service"
	DefaultReloadActionConstant   = "reload"

	executorMissingMessageConstant = "service reloader requires a command executor"
	reloadFailedMessageConstant    = "Service reload failed"
	reloadSucceededMessageConstant = "Service reloaded"
	logFieldServiceConstant        = "service"
	logFieldActionConstant         = "action"
)

// DefaultServices lists the services reloaded after a successful switch.
var DefaultServices = []string{"nginx", "php-fpm"}

// ErrExecutorNotConfigured indicates the reloader was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ServiceFailure pairs a service with the error its reload returned.
type ServiceFailure struct {
	Service string
	Err     error
}

// Result summarizes a batch of reload requests.
type Result struct {
	ReloadedServices []string
	Failures         []ServiceFailure
}

// Errors returns the collected reload errors in request order.
func (result Result) Errors() []error {
	collected := make([]error, 0, len(result.Failures))
	for _, failure := range result.Failures {
		collected = append(collected, failure.Err)
	}
	return collected
}

// Reloader issues "<command> <service> <action>" for each configured service.
type Reloader struct {
	executor shared.CommandExecutor
	command  execshell.CommandName
	action   string
	logger   *zap.Logger
}

// NewReloader constructs a Reloader; empty command and action fall back to "service" and "reload".
func NewReloader(executor shared.CommandExecutor, command string, action string, logger *zap.Logger) (*Reloader, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	trimmedCommand := strings.TrimSpace(command)
	if len(trimmedCommand) == 0 {
		trimmedCommand = DefaultServiceCommandConstant
	}
	trimmedAction := strings.TrimSpace(action)
	if len(trimmedAction) == 0 {
		trimmedAction = DefaultReloadActionConstant
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		executor: executor,
		command:  execshell.CommandName(trimmedCommand),
		action:   trimmedAction,
		logger:   logger,
	}, nil
}

// Reload requests a reload of every service. Failures are logged and collected, never returned as an error.
func (reloader *Reloader) Reload(executionContext context.Context, services []string) Result {
	result := Result{ReloadedServices: make([]string, 0, len(services))}

	for _, service := range services {
		trimmedService := strings.TrimSpace(service)
		if len(trimmedService) == 0 {
			continue
		}

		_, executionError := reloader.executor.ExecuteCommand(
			executionContext,
			reloader.command,
			execshell.CommandDetails{Arguments: []string{trimmedService, reloader.action}},
		)
		if executionError != nil {
			reloader.logger.Warn(
				reloadFailedMessageConstant,
				zap.String(logFieldServiceConstant, trimmedService),
				zap.String(logFieldActionConstant, reloader.action),
				zap.Error(executionError),
			)
			result.Failures = append(result.Failures, ServiceFailure{Service: trimmedService, Err: executionError})
			continue
		}

		reloader.logger.Info(
			reloadSucceededMessageConstant,
			zap.String(logFieldServiceConstant, trimmedService),
			zap.String(logFieldActionConstant, reloader.action),
		)
		result.ReloadedServices = append(result.ReloadedServices, trimmedService)
	}

	return result
}
