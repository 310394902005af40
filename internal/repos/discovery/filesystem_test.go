package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/wpsvn/internal/repos/discovery"
	"github.com/temirov/wpsvn/internal/repos/filesystem"
)

const (
	pluginsDirectoryName          = "plugins"
	themesDirectoryName           = "themes"
	akismetDirectoryName          = "akismet"
	wpSyntaxDirectoryName         = "wp-syntax"
	p2DirectoryName               = "p2"
	indexFileName                 = "index.php"
	hiddenDirectoryName           = ".cache"
	singleRootSubtestTitle        = "listsChildrenOfSingleRoot"
	pluginsThenThemesSubtestTitle = "keepsRootOrder"
	duplicateRootSubtestTitle     = "deduplicatesRepeatedRoots"
	directoryPermissions          = 0o755
	filePermissions               = 0o644
)

func prepareWordPressLayout(testFramework *testing.T) string {
	testFramework.Helper()

	rootDirectory := testFramework.TempDir()
	for _, directorySegments := range [][]string{
		{pluginsDirectoryName, wpSyntaxDirectoryName, ".svn"},
		{pluginsDirectoryName, akismetDirectoryName, ".svn"},
		{pluginsDirectoryName, hiddenDirectoryName},
		{themesDirectoryName, p2DirectoryName, ".svn"},
	} {
		segments := append([]string{rootDirectory}, directorySegments...)
		require.NoError(testFramework, os.MkdirAll(filepath.Join(segments...), directoryPermissions))
	}
	require.NoError(testFramework, os.WriteFile(filepath.Join(rootDirectory, pluginsDirectoryName, indexFileName), []byte("<?php\n"), filePermissions))
	return rootDirectory
}

func TestFilesystemWorkingCopyDiscovererListsImmediateChildren(testFramework *testing.T) {
	rootDirectory := prepareWordPressLayout(testFramework)
	pluginsRoot := filepath.Join(rootDirectory, pluginsDirectoryName)
	themesRoot := filepath.Join(rootDirectory, themesDirectoryName)

	testScenarios := []struct {
		title    string
		roots    []string
		expected []string
	}{
		{
			title: singleRootSubtestTitle,
			roots: []string{pluginsRoot},
			expected: []string{
				filepath.Join(pluginsRoot, akismetDirectoryName),
				filepath.Join(pluginsRoot, indexFileName),
				filepath.Join(pluginsRoot, wpSyntaxDirectoryName),
			},
		},
		{
			title: pluginsThenThemesSubtestTitle,
			roots: []string{pluginsRoot, themesRoot},
			expected: []string{
				filepath.Join(pluginsRoot, akismetDirectoryName),
				filepath.Join(pluginsRoot, indexFileName),
				filepath.Join(pluginsRoot, wpSyntaxDirectoryName),
				filepath.Join(themesRoot, p2DirectoryName),
			},
		},
		{
			title:    duplicateRootSubtestTitle,
			roots:    []string{themesRoot, themesRoot + string(filepath.Separator)},
			expected: []string{filepath.Join(themesRoot, p2DirectoryName)},
		},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.title, func(testFramework *testing.T) {
			discoverer, creationError := discovery.NewFilesystemWorkingCopyDiscoverer(filesystem.OSFileSystem{}, zap.NewNop())
			require.NoError(testFramework, creationError)

			candidates, discoveryError := discoverer.DiscoverWorkingCopies(testScenario.roots)
			require.NoError(testFramework, discoveryError)
			require.Equal(testFramework, testScenario.expected, candidates)
		})
	}
}

func TestFilesystemWorkingCopyDiscovererLogsMissingRoot(testFramework *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	discoverer, creationError := discovery.NewFilesystemWorkingCopyDiscoverer(filesystem.OSFileSystem{}, zap.New(observerCore))
	require.NoError(testFramework, creationError)

	missingRoot := filepath.Join(testFramework.TempDir(), "absent")
	candidates, discoveryError := discoverer.DiscoverWorkingCopies([]string{missingRoot})
	require.NoError(testFramework, discoveryError)
	require.Empty(testFramework, candidates)

	warnings := observerLogs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(testFramework, warnings, 1)
	require.Equal(testFramework, missingRoot, warnings[0].ContextMap()["root"])
}

func TestNewFilesystemWorkingCopyDiscovererRequiresFileSystem(testFramework *testing.T) {
	_, creationError := discovery.NewFilesystemWorkingCopyDiscoverer(nil, zap.NewNop())
	require.ErrorIs(testFramework, creationError, discovery.ErrFileSystemNotConfigured)
}
