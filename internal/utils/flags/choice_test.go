package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first",
			defaultChoice:  "text",
			choices:        []string{"text", "yaml"},
			description:    "Report format.",
			expectedOutput: "`<TEXT|yaml>` Report format.",
		},
		{
			name:           "default_second",
			defaultChoice:  "yaml",
			choices:        []string{"text", "yaml"},
			description:    "Report format.",
			expectedOutput: "`<text|YAML>` Report format.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "listing",
			choices:        []string{"listing", "tags"},
			expectedOutput: "`<LISTING|tags>`",
		},
		{
			name:           "duplicates_and_whitespace",
			defaultChoice:  "readme",
			choices:        []string{" readme ", "readme", "tags", ""},
			description:    "Plugin version source.",
			expectedOutput: "`<README|tags>` Plugin version source.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}
