package updater

import (
	"strings"
	"time"

	"github.com/temirov/wpsvn/internal/hooks"
	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/resolve"
	pathutils "github.com/temirov/wpsvn/internal/utils/path"
)

const (
	DefaultPluginsRootConstant      = "/var/www/wordpress/wp-content/plugins"
	DefaultThemesRootConstant       = "/var/www/wordpress/wp-content/themes"
	DefaultScratchDirectoryConstant = "/var/cache/wpsvn/trunk"

	configurationKeySeparatorConstant = "."
	pluginsRootKeyConstant            = "plugins_root"
	themesRootKeyConstant             = "themes_root"
	scratchDirectoryKeyConstant       = "scratch_directory"
	dryRunKeyConstant                 = "dry_run"
	reportFormatKeyConstant           = "report_format"
	themeHostKeyConstant              = "theme_host"
	pluginHostKeyConstant             = "plugin_host"
	themeVersionSourceKeyConstant     = "themes.version_source"
	themeUserAgentKeyConstant         = "themes.user_agent"
	themeRequestTimeoutKeyConstant    = "themes.request_timeout"
	pluginVersionSourceKeyConstant    = "plugins.version_source"
	pluginReadmeFilesKeyConstant      = "plugins.readme_files"
	postUpdateCommandKeyConstant      = "post_update.command"
	postUpdateActionKeyConstant       = "post_update.action"
	postUpdateServicesKeyConstant     = "post_update.services"
)

var configurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures persistent settings for the sync command.
type CommandConfiguration struct {
	PluginsRoot      string                  `mapstructure:"plugins_root"`
	ThemesRoot       string                  `mapstructure:"themes_root"`
	ScratchDirectory string                  `mapstructure:"scratch_directory"`
	DryRun           bool                    `mapstructure:"dry_run"`
	ReportFormat     string                  `mapstructure:"report_format"`
	ThemeHost        string                  `mapstructure:"theme_host"`
	PluginHost       string                  `mapstructure:"plugin_host"`
	Themes           ThemeConfiguration      `mapstructure:"themes"`
	Plugins          PluginConfiguration     `mapstructure:"plugins"`
	PostUpdate       PostUpdateConfiguration `mapstructure:"post_update"`
}

// ThemeConfiguration controls how theme releases are discovered.
type ThemeConfiguration struct {
	VersionSource  string        `mapstructure:"version_source"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PluginConfiguration controls how plugin releases are discovered.
type PluginConfiguration struct {
	VersionSource string   `mapstructure:"version_source"`
	ReadmeFiles   []string `mapstructure:"readme_files"`
}

// PostUpdateConfiguration describes the service reloads issued after a successful switch.
type PostUpdateConfiguration struct {
	Command  string   `mapstructure:"command"`
	Action   string   `mapstructure:"action"`
	Services []string `mapstructure:"services"`
}

// DefaultCommandConfiguration returns baseline configuration values for the sync command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PluginsRoot:      DefaultPluginsRootConstant,
		ThemesRoot:       DefaultThemesRootConstant,
		ScratchDirectory: DefaultScratchDirectoryConstant,
		DryRun:           false,
		ReportFormat:     string(ReportFormatText),
		ThemeHost:        origin.DefaultThemeHostConstant,
		PluginHost:       origin.DefaultPluginHostConstant,
		Themes: ThemeConfiguration{
			VersionSource:  string(resolve.StrategyListing),
			UserAgent:      resolve.DefaultUserAgentConstant,
			RequestTimeout: resolve.DefaultRequestTimeout,
		},
		Plugins: PluginConfiguration{
			VersionSource: string(resolve.StrategyReadme),
			ReadmeFiles:   append([]string{}, resolve.DefaultReadmeFileNames...),
		},
		PostUpdate: PostUpdateConfiguration{
			Command:  hooks.DefaultServiceCommandConstant,
			Action:   hooks.DefaultReloadActionConstant,
			Services: append([]string{}, hooks.DefaultServices...),
		},
	}
}

// DefaultConfigurationValues flattens the defaults under prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		pluginsRootKeyConstant:         defaults.PluginsRoot,
		themesRootKeyConstant:          defaults.ThemesRoot,
		scratchDirectoryKeyConstant:    defaults.ScratchDirectory,
		dryRunKeyConstant:              defaults.DryRun,
		reportFormatKeyConstant:        defaults.ReportFormat,
		themeHostKeyConstant:           defaults.ThemeHost,
		pluginHostKeyConstant:          defaults.PluginHost,
		themeVersionSourceKeyConstant:  defaults.Themes.VersionSource,
		themeUserAgentKeyConstant:      defaults.Themes.UserAgent,
		themeRequestTimeoutKeyConstant: defaults.Themes.RequestTimeout,
		pluginVersionSourceKeyConstant: defaults.Plugins.VersionSource,
		pluginReadmeFilesKeyConstant:   defaults.Plugins.ReadmeFiles,
		postUpdateCommandKeyConstant:   defaults.PostUpdate.Command,
		postUpdateActionKeyConstant:    defaults.PostUpdate.Action,
		postUpdateServicesKeyConstant:  defaults.PostUpdate.Services,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixed := make(map[string]any, len(values))
	for key, value := range values {
		prefixed[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixed
}

// Sanitize trims values, expands home directories, and restores defaults for blank entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.PluginsRoot = sanitizePath(configuration.PluginsRoot, defaults.PluginsRoot)
	sanitized.ThemesRoot = sanitizePath(configuration.ThemesRoot, defaults.ThemesRoot)
	sanitized.ScratchDirectory = sanitizePath(configuration.ScratchDirectory, defaults.ScratchDirectory)
	sanitized.ReportFormat = strings.ToLower(sanitizeValue(configuration.ReportFormat, defaults.ReportFormat))
	sanitized.ThemeHost = strings.ToLower(sanitizeValue(configuration.ThemeHost, defaults.ThemeHost))
	sanitized.PluginHost = strings.ToLower(sanitizeValue(configuration.PluginHost, defaults.PluginHost))

	sanitized.Themes.VersionSource = strings.ToLower(sanitizeValue(configuration.Themes.VersionSource, defaults.Themes.VersionSource))
	sanitized.Themes.UserAgent = sanitizeValue(configuration.Themes.UserAgent, defaults.Themes.UserAgent)
	if configuration.Themes.RequestTimeout <= 0 {
		sanitized.Themes.RequestTimeout = defaults.Themes.RequestTimeout
	}

	sanitized.Plugins.VersionSource = strings.ToLower(sanitizeValue(configuration.Plugins.VersionSource, defaults.Plugins.VersionSource))
	sanitized.Plugins.ReadmeFiles = sanitizeList(configuration.Plugins.ReadmeFiles, defaults.Plugins.ReadmeFiles)

	sanitized.PostUpdate.Command = sanitizeValue(configuration.PostUpdate.Command, defaults.PostUpdate.Command)
	sanitized.PostUpdate.Action = sanitizeValue(configuration.PostUpdate.Action, defaults.PostUpdate.Action)
	sanitized.PostUpdate.Services = sanitizeList(configuration.PostUpdate.Services, nil)

	return sanitized
}

// Roots returns the scan roots in processing order: plugins first, then themes.
func (configuration CommandConfiguration) Roots() []string {
	return []string{configuration.PluginsRoot, configuration.ThemesRoot}
}

func sanitizePath(candidate string, fallback string) string {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) == 0 {
		return fallback
	}
	return configurationHomeDirectoryExpander.Expand(trimmed)
}

func sanitizeValue(candidate string, fallback string) string {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) == 0 {
		return fallback
	}
	return trimmed
}

func sanitizeList(candidates []string, fallback []string) []string {
	sanitized := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	if len(sanitized) == 0 {
		return append([]string{}, fallback...)
	}
	return sanitized
}
