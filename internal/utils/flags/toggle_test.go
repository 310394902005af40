package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "default", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "bare_flag", arguments: []string{"--dry-run"}, expectedValue: true, expectedChanged: true},
		{name: "separate_yes", arguments: []string{"--dry-run", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "separate_no", arguments: []string{"--dry-run", "NO"}, expectedValue: false, expectedChanged: true},
		{name: "inline_off", arguments: []string{"--dry-run=off"}, expectedValue: false, expectedChanged: true},
		{name: "followed_by_positional", arguments: []string{"--dry-run", "/srv/plugins"}, expectedValue: true, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{}
			var dryRun bool
			AddToggleFlag(command.Flags(), &dryRun, "dry-run", false, "Plan without switching.")

			require.NoError(testInstance, command.ParseFlags(NormalizeToggleArguments(testCase.arguments)))
			require.Equal(testInstance, testCase.expectedValue, dryRun)
			require.Equal(testInstance, testCase.expectedChanged, command.Flags().Lookup("dry-run").Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(testInstance *testing.T) {
	command := &cobra.Command{}
	var dryRun bool
	AddToggleFlag(command.Flags(), &dryRun, "dry-run", false, "Plan without switching.")

	require.Error(testInstance, command.ParseFlags([]string{"--dry-run=maybe"}))
	require.False(testInstance, dryRun)
}

func TestAddToggleFlagUsageShowsDefault(testInstance *testing.T) {
	command := &cobra.Command{}
	var enabled bool
	AddToggleFlag(command.Flags(), &enabled, "reload", true, "Reload services.")

	require.True(testInstance, enabled)
	require.Equal(testInstance, "`<YES|no>` Reload services.", command.Flags().Lookup("reload").Usage)
}

func TestNormalizeToggleArgumentsStopsAtTerminator(testInstance *testing.T) {
	command := &cobra.Command{}
	var dryRun bool
	AddToggleFlag(command.Flags(), &dryRun, "dry-run", false, "")

	normalized := NormalizeToggleArguments([]string{"--dry-run", "no", "--", "--dry-run", "yes"})
	require.Equal(testInstance, []string{"--dry-run=no", "--", "--dry-run", "yes"}, normalized)
}
