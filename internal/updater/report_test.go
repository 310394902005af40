package updater_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wpsvn/internal/hooks"
	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/repos/shared"
	"github.com/temirov/wpsvn/internal/resolve"
	"github.com/temirov/wpsvn/internal/updater"
	"github.com/temirov/wpsvn/internal/version"
)

func sampleSummary() updater.Summary {
	startedAt := time.Date(2024, time.March, 1, 4, 0, 0, 0, time.UTC)
	return updater.Summary{
		Policy: shared.MutationApply,
		Outcomes: []updater.DirectoryOutcome{
			{Path: "/srv/plugins/index.php", State: updater.OutcomeSkipped, Reason: "not a directory"},
			{Path: "/srv/plugins/hello-dolly", Kind: origin.KindPluginTrunk, CurrentTag: "trunk", TargetTag: "trunk", State: updater.OutcomeCurrent},
			{
				Path:       "/srv/plugins/akismet",
				Kind:       origin.KindPluginTag,
				OriginURL:  "http://plugins.svn.wordpress.org/akismet/tags/1.0",
				CurrentTag: "1.0",
				TargetTag:  "1.2",
				TargetURL:  "http://plugins.svn.wordpress.org/akismet/tags/1.2",
				Direction:  version.DirectionUpgrade,
				Source:     resolve.SourceReadme,
				State:      updater.OutcomeSwitched,
			},
			{Path: "/srv/plugins/wp-syntax", CurrentTag: "1.0", TargetTag: "trunk", State: updater.OutcomeFellBack, Reason: "switch failed"},
			{Path: "/srv/plugins/broken", CurrentTag: "trunk", TargetTag: "3.1", State: updater.OutcomeFailed, Reason: "switch failed"},
			{Path: "/srv/themes/p2", CurrentTag: "1.3.2", TargetTag: "1.4.0", Direction: version.DirectionUpgrade, State: updater.OutcomePlanned},
		},
		Updated:         true,
		ReloadAttempted: true,
		Reload: hooks.Result{
			ReloadedServices: []string{"nginx"},
			Failures:         []hooks.ServiceFailure{{Service: "php-fpm", Err: errors.New("exit 5")}},
		},
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(1500 * time.Millisecond),
	}
}

func TestWriteTextReport(testInstance *testing.T) {
	var output bytes.Buffer
	require.NoError(testInstance, updater.WriteTextReport(shared.NewWriterReporter(&output), sampleSummary()))

	expected := "SYNC-SKIP: /srv/plugins/index.php (not a directory)\n" +
		"SYNC-CURRENT: /srv/plugins/hello-dolly at trunk\n" +
		"SYNC-DONE: /srv/plugins/akismet 1.0 → 1.2 (upgrade)\n" +
		"SYNC-FALLBACK: /srv/plugins/wp-syntax 1.0 → trunk (switch failed)\n" +
		"SYNC-FAILED: /srv/plugins/broken trunk → 3.1 (switch failed)\n" +
		"PLAN-SWITCH: /srv/themes/p2 1.3.2 → 1.4.0 (upgrade)\n" +
		"SYNC-RELOAD: nginx\n" +
		"SYNC-RELOAD-FAILED: php-fpm (exit 5)\n"
	require.Equal(testInstance, expected, output.String())
}

func TestWriteYAMLReport(testInstance *testing.T) {
	var output bytes.Buffer
	generatedAt := time.Date(2024, time.March, 1, 4, 0, 2, 0, time.UTC)
	require.NoError(testInstance, updater.WriteYAMLReport(&output, sampleSummary(), generatedAt))

	var decoded struct {
		GeneratedAt string `yaml:"generated_at"`
		Mode        string `yaml:"mode"`
		Duration    string `yaml:"duration"`
		Updated     bool   `yaml:"updated"`
		Directories []struct {
			Path      string `yaml:"path"`
			Outcome   string `yaml:"outcome"`
			TargetURL string `yaml:"target_url"`
			Source    string `yaml:"source"`
		} `yaml:"directories"`
		Reload struct {
			Reloaded []string `yaml:"reloaded"`
			Failures []struct {
				Service string `yaml:"service"`
				Error   string `yaml:"error"`
			} `yaml:"failures"`
		} `yaml:"reload"`
	}
	require.NoError(testInstance, yaml.Unmarshal(output.Bytes(), &decoded))

	require.Equal(testInstance, "2024-03-01T04:00:02Z", decoded.GeneratedAt)
	require.Equal(testInstance, "apply", decoded.Mode)
	require.Equal(testInstance, "1.5s", decoded.Duration)
	require.True(testInstance, decoded.Updated)
	require.Len(testInstance, decoded.Directories, 6)
	require.Equal(testInstance, "switched", decoded.Directories[2].Outcome)
	require.Equal(testInstance, "http://plugins.svn.wordpress.org/akismet/tags/1.2", decoded.Directories[2].TargetURL)
	require.Equal(testInstance, "readme", decoded.Directories[2].Source)
	require.Equal(testInstance, []string{"nginx"}, decoded.Reload.Reloaded)
	require.Equal(testInstance, "exit 5", decoded.Reload.Failures[0].Error)
}

func TestWriteYAMLReportOmitsReloadWhenNotAttempted(testInstance *testing.T) {
	summary := sampleSummary()
	summary.ReloadAttempted = false
	summary.Policy = shared.MutationPlanOnly

	var output bytes.Buffer
	require.NoError(testInstance, updater.WriteYAMLReport(&output, summary, time.Now()))
	require.NotContains(testInstance, output.String(), "reload:")
	require.Contains(testInstance, output.String(), "mode: plan")
}

func TestParseReportFormat(testInstance *testing.T) {
	testCases := []struct {
		name           string
		raw            string
		expectedFormat updater.ReportFormat
		expectedError  error
	}{
		{name: "empty_defaults_to_text", raw: "", expectedFormat: updater.ReportFormatText},
		{name: "text", raw: "text", expectedFormat: updater.ReportFormatText},
		{name: "yaml_mixed_case", raw: " YAML ", expectedFormat: updater.ReportFormatYAML},
		{name: "unknown", raw: "json", expectedError: updater.ErrUnsupportedReportFormat},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			format, parseError := updater.ParseReportFormat(testCase.raw)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, parseError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedFormat, format)
		})
	}
}
