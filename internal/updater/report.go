package updater

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/wpsvn/internal/repos/shared"
)

const (
	skipLineTemplateConstant              = "SYNC-SKIP: %s (%s)\n"
	currentLineTemplateConstant           = "SYNC-CURRENT: %s at %s\n"
	doneLineTemplateConstant              = "SYNC-DONE: %s %s → %s (%s)\n"
	fallbackLineTemplateConstant          = "SYNC-FALLBACK: %s %s → trunk (%s)\n"
	failedLineTemplateConstant            = "SYNC-FAILED: %s %s → %s (%s)\n"
	planLineTemplateConstant              = "PLAN-SWITCH: %s %s → %s (%s)\n"
	reloadLineTemplateConstant            = "SYNC-RELOAD: %s\n"
	reloadFailedLineTemplateConstant      = "SYNC-RELOAD-FAILED: %s (%v)\n"
	unsupportedFormatMessageConstant      = "unsupported report format"
	unsupportedFormatTemplateConstant     = "%w: %s"
	reportEncodingFailureTemplateConstant = "unable to encode sync report: %w"
	reportWriteFailureTemplateConstant    = "unable to write sync report: %w"
	reportTimestampLayoutConstant         = time.RFC3339
	reportDurationPrecisionConstant       = time.Millisecond
)

// ReportFormat selects how a Summary is rendered.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatText ReportFormat = "text"
	ReportFormatYAML ReportFormat = "yaml"
)

// ErrUnsupportedReportFormat indicates an unknown report format was requested.
var ErrUnsupportedReportFormat = errors.New(unsupportedFormatMessageConstant)

// ParseReportFormat validates a user supplied report format.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ReportFormatText, "":
		return ReportFormatText, nil
	case ReportFormatYAML:
		return ReportFormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedReportFormat, raw)
	}
}

// WriteTextReport prints one line per directory followed by the reload results.
func WriteTextReport(reporter shared.Reporter, summary Summary) error {
	for _, outcome := range summary.Outcomes {
		switch outcome.State {
		case OutcomeSkipped:
			reporter.Printf(skipLineTemplateConstant, outcome.Path, outcome.Reason)
		case OutcomeCurrent:
			reporter.Printf(currentLineTemplateConstant, outcome.Path, outcome.CurrentTag)
		case OutcomeSwitched:
			reporter.Printf(doneLineTemplateConstant, outcome.Path, outcome.CurrentTag, outcome.TargetTag, outcome.Direction)
		case OutcomeFellBack:
			reporter.Printf(fallbackLineTemplateConstant, outcome.Path, outcome.CurrentTag, outcome.Reason)
		case OutcomeFailed:
			reporter.Printf(failedLineTemplateConstant, outcome.Path, outcome.CurrentTag, outcome.TargetTag, outcome.Reason)
		case OutcomePlanned:
			reporter.Printf(planLineTemplateConstant, outcome.Path, outcome.CurrentTag, outcome.TargetTag, outcome.Direction)
		}
	}

	for _, service := range summary.Reload.ReloadedServices {
		reporter.Printf(reloadLineTemplateConstant, service)
	}
	for _, failure := range summary.Reload.Failures {
		reporter.Printf(reloadFailedLineTemplateConstant, failure.Service, failure.Err)
	}

	if writeError := reporter.Err(); writeError != nil {
		return fmt.Errorf(reportWriteFailureTemplateConstant, writeError)
	}
	return nil
}

type yamlReport struct {
	GeneratedAt string             `yaml:"generated_at"`
	Mode        string             `yaml:"mode"`
	Duration    string             `yaml:"duration"`
	Updated     bool               `yaml:"updated"`
	Directories []yamlDirectory    `yaml:"directories"`
	Reload      *yamlReloadSection `yaml:"reload,omitempty"`
}

type yamlDirectory struct {
	Path       string `yaml:"path"`
	Outcome    string `yaml:"outcome"`
	Kind       string `yaml:"kind,omitempty"`
	OriginURL  string `yaml:"origin_url,omitempty"`
	CurrentTag string `yaml:"current_tag,omitempty"`
	TargetTag  string `yaml:"target_tag,omitempty"`
	TargetURL  string `yaml:"target_url,omitempty"`
	Direction  string `yaml:"direction,omitempty"`
	Source     string `yaml:"source,omitempty"`
	Reason     string `yaml:"reason,omitempty"`
}

type yamlReloadSection struct {
	Reloaded []string            `yaml:"reloaded"`
	Failures []yamlReloadFailure `yaml:"failures,omitempty"`
}

type yamlReloadFailure struct {
	Service string `yaml:"service"`
	Error   string `yaml:"error"`
}

// WriteYAMLReport encodes summary as a YAML document stamped with generatedAt.
func WriteYAMLReport(writer io.Writer, summary Summary, generatedAt time.Time) error {
	document := yamlReport{
		GeneratedAt: generatedAt.UTC().Format(reportTimestampLayoutConstant),
		Mode:        summary.Policy.String(),
		Duration:    summary.FinishedAt.Sub(summary.StartedAt).Round(reportDurationPrecisionConstant).String(),
		Updated:     summary.Updated,
		Directories: make([]yamlDirectory, 0, len(summary.Outcomes)),
	}

	for _, outcome := range summary.Outcomes {
		document.Directories = append(document.Directories, yamlDirectory{
			Path:       outcome.Path,
			Outcome:    string(outcome.State),
			Kind:       string(outcome.Kind),
			OriginURL:  outcome.OriginURL,
			CurrentTag: outcome.CurrentTag,
			TargetTag:  outcome.TargetTag,
			TargetURL:  outcome.TargetURL,
			Direction:  string(outcome.Direction),
			Source:     string(outcome.Source),
			Reason:     outcome.Reason,
		})
	}

	if summary.ReloadAttempted {
		section := &yamlReloadSection{Reloaded: append([]string{}, summary.Reload.ReloadedServices...)}
		for _, failure := range summary.Reload.Failures {
			section.Failures = append(section.Failures, yamlReloadFailure{Service: failure.Service, Error: failure.Err.Error()})
		}
		document.Reload = section
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return fmt.Errorf(reportEncodingFailureTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(reportEncodingFailureTemplateConstant, closeError)
	}
	return nil
}
