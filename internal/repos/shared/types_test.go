package shared_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wpsvn/internal/repos/shared"
)

func TestNewWorkingCopyPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		input         string
		expected      string
		expectedError error
	}{
		{name: "valid_path", input: "/var/www/wordpress/wp-content/plugins/akismet", expected: "/var/www/wordpress/wp-content/plugins/akismet"},
		{name: "strips_whitespace", input: "   /tmp/p2  ", expected: "/tmp/p2"},
		{name: "rejects_empty", input: "  ", expectedError: shared.ErrWorkingCopyPathEmpty},
		{name: "rejects_newline", input: "/tmp/p2\n/tmp/other", expectedError: shared.ErrWorkingCopyPathMultiline},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result, err := shared.NewWorkingCopyPath(testCase.input)
			if testCase.expectedError != nil {
				require.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, result.String())
		})
	}
}

func TestMutationPolicyFromDryRun(t *testing.T) {
	t.Parallel()

	require.True(t, shared.MutationPolicyFromDryRun(false).AllowsMutation())
	require.False(t, shared.MutationPolicyFromDryRun(true).AllowsMutation())
	require.Equal(t, "plan", shared.MutationPlanOnly.String())
	require.Equal(t, "apply", shared.MutationApply.String())
}

func TestWriterReporterFormatsLines(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	reporter := shared.NewWriterReporter(&buffer)
	reporter.Printf("SYNC-SKIP: %s (%s)\n", "/tmp/p2", "not a working copy")

	require.Equal(t, "SYNC-SKIP: /tmp/p2 (not a working copy)\n", buffer.String())
	require.NoError(t, reporter.Err())
}

type failingWriter struct {
	writes int
}

func (writer *failingWriter) Write(payload []byte) (int, error) {
	writer.writes++
	return 0, errors.New("disk full")
}

func TestWriterReporterStopsAfterFirstFailure(t *testing.T) {
	t.Parallel()

	writer := &failingWriter{}
	reporter := shared.NewWriterReporter(writer)
	reporter.Printf("SYNC-CURRENT: %s at %s\n", "/tmp/akismet", "5.3")
	reporter.Printf("SYNC-CURRENT: %s at %s\n", "/tmp/p2", "1.4.0")

	require.EqualError(t, reporter.Err(), "disk full")
	require.Equal(t, 1, writer.writes)
}
