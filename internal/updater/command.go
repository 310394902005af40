package updater

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/execshell"
	"github.com/temirov/wpsvn/internal/hooks"
	"github.com/temirov/wpsvn/internal/inspect"
	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/privilege"
	"github.com/temirov/wpsvn/internal/repos/dependencies"
	"github.com/temirov/wpsvn/internal/repos/shared"
	"github.com/temirov/wpsvn/internal/resolve"
	"github.com/temirov/wpsvn/internal/subversion"
	"github.com/temirov/wpsvn/internal/ui"
	"github.com/temirov/wpsvn/internal/utils/flags"
)

const (
	commandUseConstant                      = "sync"
	commandShortDescriptionConstant         = "Switch theme and plugin working copies to their latest release"
	commandLongDescriptionConstant          = "sync inspects every working copy under the plugins and themes roots, resolves the newest published release from wordpress.org, switches working copies that differ, and reloads the web services when anything changed."
	unexpectedArgumentsErrorMessageConstant = "sync does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "sync failed: %w"
	pluginsRootFlagNameConstant             = "plugins-root"
	pluginsRootFlagDescriptionConstant      = "Directory holding plugin working copies"
	themesRootFlagNameConstant              = "themes-root"
	themesRootFlagDescriptionConstant       = "Directory holding theme working copies"
	scratchDirectoryFlagNameConstant        = "scratch-directory"
	scratchDirectoryFlagDescriptionConstant = "Directory used for temporary trunk checkouts"
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagDescriptionConstant           = "Report planned switches without updating, switching, or reloading"
	reportFlagNameConstant                  = "report"
	reportFlagDescriptionConstant           = "Report format written to standard output"
	themeSourceFlagNameConstant             = "theme-source"
	themeSourceFlagDescriptionConstant      = "How the latest theme release is discovered"
	pluginSourceFlagNameConstant            = "plugin-source"
	pluginSourceFlagDescriptionConstant     = "How the latest plugin release is discovered"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current sync configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the sync cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider func() bool
	ShellExecutor                shared.ShellExecutor
	HTTPClient                   resolve.HTTPClient
	FileSystem                   shared.FileSystem
	Discoverer                   shared.WorkingCopyDiscoverer
	PrivilegeChecker             PrivilegeChecker
	Clock                        shared.Clock
}

type commandOptions struct {
	configuration CommandConfiguration
	reportFormat  ReportFormat
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	var dryRun bool
	command.Flags().String(pluginsRootFlagNameConstant, "", pluginsRootFlagDescriptionConstant)
	command.Flags().String(themesRootFlagNameConstant, "", themesRootFlagDescriptionConstant)
	command.Flags().String(scratchDirectoryFlagNameConstant, "", scratchDirectoryFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &dryRun, dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().String(reportFlagNameConstant, "", flags.FormatChoiceUsage(defaults.ReportFormat, []string{string(ReportFormatText), string(ReportFormatYAML)}, reportFlagDescriptionConstant))
	command.Flags().String(themeSourceFlagNameConstant, "", flags.FormatChoiceUsage(defaults.Themes.VersionSource, []string{string(resolve.StrategyListing), string(resolve.StrategyTags)}, themeSourceFlagDescriptionConstant))
	command.Flags().String(pluginSourceFlagNameConstant, "", flags.FormatChoiceUsage(defaults.Plugins.VersionSource, []string{string(resolve.StrategyReadme), string(resolve.StrategyTags)}, pluginSourceFlagDescriptionConstant))

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}
	configuration := options.configuration

	logger := builder.resolveLogger()
	service, serviceError := builder.assembleService(configuration, logger)
	if serviceError != nil {
		return serviceError
	}

	summary, runError := service.Run(command.Context(), Options{
		Roots:    configuration.Roots(),
		Policy:   shared.MutationPolicyFromDryRun(configuration.DryRun),
		Services: configuration.PostUpdate.Services,
	})

	if reportError := builder.writeReport(command, options.reportFormat, summary); reportError != nil {
		return reportError
	}
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) assembleService(configuration CommandConfiguration, logger *zap.Logger) (*Service, error) {
	var observer execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}

	shellExecutor, executorError := dependencies.ResolveShellExecutor(builder.ShellExecutor, logger, observer)
	if executorError != nil {
		return nil, executorError
	}

	subversionClient, clientError := dependencies.ResolveSubversionClient(shellExecutor)
	if clientError != nil {
		return nil, clientError
	}

	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	discoverer, discovererError := dependencies.ResolveWorkingCopyDiscoverer(builder.Discoverer, fileSystem, logger)
	if discovererError != nil {
		return nil, discovererError
	}

	reader, readerError := inspect.NewReader(inspect.Dependencies{
		FileSystem: fileSystem,
		Client:     subversionClient,
		Classifier: origin.NewClassifier(configuration.ThemeHost, configuration.PluginHost),
		Logger:     logger,
	})
	if readerError != nil {
		return nil, readerError
	}

	registry, registryError := builder.assembleResolvers(configuration, subversionClient, fileSystem, logger)
	if registryError != nil {
		return nil, registryError
	}

	reloader, reloaderError := hooks.NewReloader(shellExecutor, configuration.PostUpdate.Command, configuration.PostUpdate.Action, logger)
	if reloaderError != nil {
		return nil, reloaderError
	}

	var privilegeChecker PrivilegeChecker = privilege.NewChecker(nil)
	if builder.PrivilegeChecker != nil {
		privilegeChecker = builder.PrivilegeChecker
	}

	return NewService(Dependencies{
		Discoverer:       discoverer,
		Inspector:        reader,
		Resolver:         registry,
		Switcher:         subversionClient,
		Reloader:         reloader,
		PrivilegeChecker: privilegeChecker,
		Clock:            builder.resolveClock(),
		Logger:           logger,
	})
}

func (builder *CommandBuilder) assembleResolvers(configuration CommandConfiguration, client *subversion.Client, fileSystem shared.FileSystem, logger *zap.Logger) (*resolve.Registry, error) {
	httpClient := builder.HTTPClient
	if httpClient == nil {
		httpClient = resolve.NewDefaultHTTPClient(configuration.Themes.RequestTimeout)
	}

	listingResolver, listingError := resolve.NewListingResolver(httpClient, configuration.Themes.UserAgent, logger)
	if listingError != nil {
		return nil, listingError
	}

	readmeResolver, readmeError := resolve.NewReadmeResolver(resolve.ReadmeResolverDependencies{
		Client:           client,
		FileSystem:       fileSystem,
		ScratchDirectory: configuration.ScratchDirectory,
		ReadmeFileNames:  configuration.Plugins.ReadmeFiles,
		Logger:           logger,
	})
	if readmeError != nil {
		return nil, readmeError
	}

	tagResolver, tagError := resolve.NewTagListResolver(client, logger)
	if tagError != nil {
		return nil, tagError
	}

	return resolve.NewRegistry(
		resolve.Strategy(configuration.Themes.VersionSource),
		resolve.Strategy(configuration.Plugins.VersionSource),
		resolve.Resolvers{Listing: listingResolver, Readme: readmeResolver, Tags: tagResolver},
	)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	stringOverrides := []struct {
		flagName string
		target   *string
	}{
		{flagName: pluginsRootFlagNameConstant, target: &configuration.PluginsRoot},
		{flagName: themesRootFlagNameConstant, target: &configuration.ThemesRoot},
		{flagName: scratchDirectoryFlagNameConstant, target: &configuration.ScratchDirectory},
		{flagName: reportFlagNameConstant, target: &configuration.ReportFormat},
		{flagName: themeSourceFlagNameConstant, target: &configuration.Themes.VersionSource},
		{flagName: pluginSourceFlagNameConstant, target: &configuration.Plugins.VersionSource},
	}
	for _, override := range stringOverrides {
		flagValue, flagError := command.Flags().GetString(override.flagName)
		if flagError != nil {
			return commandOptions{}, flagError
		}
		*override.target = selectStringValue(flagValue, *override.target)
	}

	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunValue, dryRunError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunError != nil {
			return commandOptions{}, dryRunError
		}
		configuration.DryRun = dryRunValue
	}

	configuration = configuration.Sanitize()
	reportFormat, formatError := ParseReportFormat(configuration.ReportFormat)
	if formatError != nil {
		return commandOptions{}, formatError
	}

	return commandOptions{configuration: configuration, reportFormat: reportFormat}, nil
}

func (builder *CommandBuilder) writeReport(command *cobra.Command, format ReportFormat, summary Summary) error {
	if format == ReportFormatYAML {
		return WriteYAMLReport(command.OutOrStdout(), summary, builder.resolveClock().Now())
	}
	return WriteTextReport(shared.NewWriterReporter(command.OutOrStdout()), summary)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveClock() shared.Clock {
	if builder.Clock == nil {
		return shared.SystemClock{}
	}
	return builder.Clock
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}
	return configurationValue
}
