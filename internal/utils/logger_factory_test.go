package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/wpsvn/internal/utils"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name          string
		level         utils.LogLevel
		format        utils.LogFormat
		expectError   bool
		expectedLevel zapcore.Level
	}{
		{name: "debug_structured", level: utils.LogLevelDebug, format: utils.LogFormatStructured, expectedLevel: zapcore.DebugLevel},
		{name: "info_console", level: utils.LogLevelInfo, format: utils.LogFormatConsole, expectedLevel: zapcore.InfoLevel},
		{name: "mixed_case", level: utils.LogLevel(" WARN "), format: utils.LogFormat("Console"), expectedLevel: zapcore.WarnLevel},
		{name: "unsupported_level", level: utils.LogLevel("verbose"), format: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_format", level: utils.LogLevelError, format: utils.LogFormat("xml"), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.level, testCase.format)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			require.True(testInstance, logger.Core().Enabled(testCase.expectedLevel))
			if testCase.expectedLevel > zapcore.DebugLevel {
				require.False(testInstance, logger.Core().Enabled(testCase.expectedLevel-1))
			}
		})
	}
}
