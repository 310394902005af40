package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/wpsvn/internal/hooks"
	"github.com/temirov/wpsvn/internal/inspect"
	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/repos/shared"
	"github.com/temirov/wpsvn/internal/resolve"
	"github.com/temirov/wpsvn/internal/version"
)

const (
	discovererMissingMessageConstant = "sync service requires a working copy discoverer"
	inspectorMissingMessageConstant  = "sync service requires a working copy inspector"
	resolverMissingMessageConstant   = "sync service requires a version resolver"
	switcherMissingMessageConstant   = "sync service requires a switcher"
	reloaderMissingMessageConstant   = "sync service requires a service reloader"

	privilegeFailureTemplateConstant   = "privilege check failed: %w"
	discoveryFailureTemplateConstant   = "unable to discover working copies: %w"
	directoryAbortedTemplateConstant   = "sync aborted at %s: %w"
	resolveFailureTemplateConstant     = "unable to resolve latest version: %w"
	switchFailureTemplateConstant      = "switch to %s failed: %w"
	fallbackFailureTemplateConstant    = "switch to %s failed: %v; fallback to %s failed: %w"
	contextInterruptedTemplateConstant = "sync interrupted before %s: %w"

	skipLogMessageConstant           = "Skipping directory"
	resolveFailureLogMessageConstant = "Unable to resolve latest version"
	currentLogMessageConstant        = "Working copy is current"
	plannedLogMessageConstant        = "Planned switch"
	switchingLogMessageConstant      = "Switching working copy"
	switchedLogMessageConstant       = "Switched working copy"
	fallbackLogMessageConstant       = "Switch failed, falling back to trunk"
	fellBackLogMessageConstant       = "Switched working copy to trunk"
	failedLogMessageConstant         = "Switch failed"
	reloadLogMessageConstant         = "Reloading services after update"
	reloadSkippedLogMessageConstant  = "No working copies switched, services not reloaded"
	logFieldPathConstant             = "path"
	logFieldOriginURLConstant        = "origin_url"
	logFieldCurrentTagConstant       = "current_tag"
	logFieldLatestTagConstant        = "latest_tag"
	logFieldTargetURLConstant        = "target_url"
	logFieldDirectionConstant        = "direction"
	logFieldSourceConstant           = "source"
	logFieldOutcomeConstant          = "outcome"
	logFieldReasonConstant           = "reason"
	logFieldServicesConstant         = "services"
)

var (
	// ErrDiscovererNotConfigured indicates the service was constructed without a discoverer.
	ErrDiscovererNotConfigured = errors.New(discovererMissingMessageConstant)
	// ErrInspectorNotConfigured indicates the service was constructed without an inspector.
	ErrInspectorNotConfigured = errors.New(inspectorMissingMessageConstant)
	// ErrResolverNotConfigured indicates the service was constructed without a resolver.
	ErrResolverNotConfigured = errors.New(resolverMissingMessageConstant)
	// ErrSwitcherNotConfigured indicates the service was constructed without a switcher.
	ErrSwitcherNotConfigured = errors.New(switcherMissingMessageConstant)
	// ErrReloaderNotConfigured indicates the service was constructed without a reloader.
	ErrReloaderNotConfigured = errors.New(reloaderMissingMessageConstant)
)

// OutcomeState is the terminal state of a processed directory.
type OutcomeState string

// Terminal directory states.
const (
	OutcomeSkipped  OutcomeState = "skipped"
	OutcomeCurrent  OutcomeState = "current"
	OutcomeSwitched OutcomeState = "switched"
	OutcomeFellBack OutcomeState = "fell-back"
	OutcomeFailed   OutcomeState = "failed"
	OutcomePlanned  OutcomeState = "planned"
)

// WorkingCopyInspector reads and classifies candidate directories.
type WorkingCopyInspector interface {
	Inspect(executionContext context.Context, path string, policy shared.MutationPolicy) (inspect.RepoInfo, error)
}

// Switcher moves a working copy to another repository location.
type Switcher interface {
	Switch(executionContext context.Context, path string, url string) error
}

// ServiceReloader reloads services after a batch switched at least one working copy.
type ServiceReloader interface {
	Reload(executionContext context.Context, services []string) hooks.Result
}

// PrivilegeChecker verifies the process may modify the working copies.
type PrivilegeChecker interface {
	Check() error
}

// Dependencies supplies collaborators for Service.
type Dependencies struct {
	Discoverer       shared.WorkingCopyDiscoverer
	Inspector        WorkingCopyInspector
	Resolver         resolve.Resolver
	Switcher         Switcher
	Reloader         ServiceReloader
	PrivilegeChecker PrivilegeChecker
	Clock            shared.Clock
	Logger           *zap.Logger
}

// Options configure a single sync run.
type Options struct {
	Roots    []string
	Policy   shared.MutationPolicy
	Services []string
}

// DirectoryOutcome records what happened to one candidate directory.
type DirectoryOutcome struct {
	Path       string
	Kind       origin.Kind
	OriginURL  string
	CurrentTag string
	TargetTag  string
	TargetURL  string
	Direction  version.Direction
	Source     resolve.Source
	State      OutcomeState
	Reason     string
}

// Summary accumulates the outcomes of a sync run.
type Summary struct {
	Policy          shared.MutationPolicy
	Outcomes        []DirectoryOutcome
	Updated         bool
	ReloadAttempted bool
	Reload          hooks.Result
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Service runs the scan, resolve and switch pipeline over all working copies.
type Service struct {
	discoverer       shared.WorkingCopyDiscoverer
	inspector        WorkingCopyInspector
	resolver         resolve.Resolver
	switcher         Switcher
	reloader         ServiceReloader
	privilegeChecker PrivilegeChecker
	clock            shared.Clock
	logger           *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if dependencies.Inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	if dependencies.Resolver == nil {
		return nil, ErrResolverNotConfigured
	}
	if dependencies.Switcher == nil {
		return nil, ErrSwitcherNotConfigured
	}
	if dependencies.Reloader == nil {
		return nil, ErrReloaderNotConfigured
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		discoverer:       dependencies.Discoverer,
		inspector:        dependencies.Inspector,
		resolver:         dependencies.Resolver,
		switcher:         dependencies.Switcher,
		reloader:         dependencies.Reloader,
		privilegeChecker: dependencies.PrivilegeChecker,
		clock:            clock,
		logger:           logger,
	}, nil
}

// Run processes every discovered working copy sequentially and reloads services when any was switched.
// The returned error is non-nil only for fatal conditions; the summary holds everything processed so far.
func (service *Service) Run(executionContext context.Context, options Options) (Summary, error) {
	summary := Summary{Policy: options.Policy, StartedAt: service.clock.Now()}

	if service.privilegeChecker != nil {
		if privilegeError := service.privilegeChecker.Check(); privilegeError != nil {
			summary.FinishedAt = service.clock.Now()
			return summary, fmt.Errorf(privilegeFailureTemplateConstant, privilegeError)
		}
	}

	candidates, discoveryError := service.discoverer.DiscoverWorkingCopies(options.Roots)
	if discoveryError != nil {
		summary.FinishedAt = service.clock.Now()
		return summary, fmt.Errorf(discoveryFailureTemplateConstant, discoveryError)
	}

	for _, candidate := range candidates {
		if contextError := executionContext.Err(); contextError != nil {
			summary.FinishedAt = service.clock.Now()
			return summary, fmt.Errorf(contextInterruptedTemplateConstant, candidate, contextError)
		}

		outcome, stepResult := service.processDirectory(executionContext, candidate, options.Policy)
		summary.Outcomes = append(summary.Outcomes, outcome)
		summary.Updated = summary.Updated || outcome.State == OutcomeSwitched || outcome.State == OutcomeFellBack

		if stepResult.Fatal() {
			summary.FinishedAt = service.clock.Now()
			return summary, fmt.Errorf(directoryAbortedTemplateConstant, candidate, stepResult.Err)
		}
	}

	if summary.Updated && options.Policy.AllowsMutation() {
		service.logger.Info(reloadLogMessageConstant, zap.Strings(logFieldServicesConstant, options.Services))
		summary.ReloadAttempted = true
		summary.Reload = service.reloader.Reload(executionContext, options.Services)
	} else {
		service.logger.Debug(reloadSkippedLogMessageConstant)
	}

	summary.FinishedAt = service.clock.Now()
	return summary, nil
}

func (service *Service) processDirectory(executionContext context.Context, path string, policy shared.MutationPolicy) (DirectoryOutcome, StepResult) {
	outcome := DirectoryOutcome{Path: path}

	repoInfo, inspectError := service.inspector.Inspect(executionContext, path, policy)
	if inspectError != nil {
		outcome.State = OutcomeSkipped
		outcome.Reason = inspectError.Error()
		stepResult := ClassifyStepError(executionContext, inspectError)
		if stepResult.Fatal() {
			outcome.State = OutcomeFailed
		}
		service.logOutcome(zap.InfoLevel, skipLogMessageConstant, outcome)
		return outcome, stepResult
	}

	outcome.Kind = repoInfo.Origin.Kind
	outcome.OriginURL = repoInfo.Origin.URL
	outcome.CurrentTag = repoInfo.CurrentTag

	resolved, resolveError := service.resolver.Resolve(executionContext, repoInfo.Origin)
	if resolveError != nil {
		outcome.State = OutcomeSkipped
		outcome.Reason = fmt.Errorf(resolveFailureTemplateConstant, resolveError).Error()
		stepResult := ClassifyStepError(executionContext, resolveError)
		if stepResult.Fatal() {
			outcome.State = OutcomeFailed
		}
		service.logOutcome(zap.WarnLevel, resolveFailureLogMessageConstant, outcome)
		return outcome, stepResult
	}

	outcome.TargetTag = resolved.Tag
	outcome.Source = resolved.Source
	outcome.Direction = version.DirectionOf(repoInfo.CurrentTag, resolved.Tag)

	if resolved.Tag == repoInfo.CurrentTag {
		outcome.State = OutcomeCurrent
		service.logOutcome(zap.InfoLevel, currentLogMessageConstant, outcome)
		return outcome, Succeeded()
	}

	outcome.TargetURL = repoInfo.Origin.TargetURL(resolved.Tag)

	if !policy.AllowsMutation() {
		outcome.State = OutcomePlanned
		service.logOutcome(zap.InfoLevel, plannedLogMessageConstant, outcome)
		return outcome, Succeeded()
	}

	service.logOutcome(zap.DebugLevel, switchingLogMessageConstant, outcome)
	switchError := service.switcher.Switch(executionContext, path, outcome.TargetURL)
	if switchError == nil {
		outcome.State = OutcomeSwitched
		service.logOutcome(zap.InfoLevel, switchedLogMessageConstant, outcome)
		return outcome, Succeeded()
	}

	switchResult := ClassifyStepError(executionContext, switchError)
	if switchResult.Fatal() || repoInfo.Origin.TracksTrunk() || resolved.Tag == origin.TrunkTagConstant {
		outcome.State = OutcomeFailed
		outcome.Reason = fmt.Errorf(switchFailureTemplateConstant, outcome.TargetURL, switchError).Error()
		service.logOutcome(zap.WarnLevel, failedLogMessageConstant, outcome)
		return outcome, switchResult
	}

	trunkURL := repoInfo.Origin.TrunkURL()
	service.logOutcome(zap.WarnLevel, fallbackLogMessageConstant, outcome)
	fallbackError := service.switcher.Switch(executionContext, path, trunkURL)
	if fallbackError != nil {
		outcome.State = OutcomeFailed
		outcome.Reason = fmt.Errorf(fallbackFailureTemplateConstant, outcome.TargetURL, switchError, trunkURL, fallbackError).Error()
		service.logOutcome(zap.WarnLevel, failedLogMessageConstant, outcome)
		return outcome, ClassifyStepError(executionContext, fallbackError)
	}

	outcome.State = OutcomeFellBack
	outcome.Reason = fmt.Errorf(switchFailureTemplateConstant, outcome.TargetURL, switchError).Error()
	outcome.TargetTag = origin.TrunkTagConstant
	outcome.TargetURL = trunkURL
	outcome.Direction = version.DirectionRetarget
	service.logOutcome(zap.InfoLevel, fellBackLogMessageConstant, outcome)
	return outcome, Succeeded()
}

func (service *Service) logOutcome(level zapcore.Level, message string, outcome DirectoryOutcome) {
	fields := []zap.Field{
		zap.String(logFieldPathConstant, outcome.Path),
		zap.String(logFieldOriginURLConstant, outcome.OriginURL),
		zap.String(logFieldCurrentTagConstant, outcome.CurrentTag),
		zap.String(logFieldLatestTagConstant, outcome.TargetTag),
		zap.String(logFieldOutcomeConstant, string(outcome.State)),
	}
	if len(outcome.TargetURL) > 0 {
		fields = append(fields, zap.String(logFieldTargetURLConstant, outcome.TargetURL))
	}
	if len(outcome.Direction) > 0 {
		fields = append(fields, zap.String(logFieldDirectionConstant, string(outcome.Direction)))
	}
	if len(outcome.Source) > 0 {
		fields = append(fields, zap.String(logFieldSourceConstant, string(outcome.Source)))
	}
	if len(outcome.Reason) > 0 {
		fields = append(fields, zap.String(logFieldReasonConstant, outcome.Reason))
	}
	if checkedEntry := service.logger.Check(level, message); checkedEntry != nil {
		checkedEntry.Write(fields...)
	}
}
