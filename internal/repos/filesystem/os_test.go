package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wpsvn/internal/repos/filesystem"
)

func TestOSFileSystemScratchLifecycle(testInstance *testing.T) {
	fileSystem := filesystem.OSFileSystem{}
	scratchDirectory := filepath.Join(testInstance.TempDir(), "scratch", "akismet")

	require.NoError(testInstance, fileSystem.MkdirAll(scratchDirectory, 0o755))
	readmePath := filepath.Join(scratchDirectory, "readme.txt")
	require.NoError(testInstance, os.WriteFile(readmePath, []byte("Stable tag: 5.3\n"), 0o644))

	contents, readError := fileSystem.ReadFile(readmePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "Stable tag: 5.3\n", string(contents))

	entries, listError := fileSystem.ReadDir(scratchDirectory)
	require.NoError(testInstance, listError)
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "readme.txt", entries[0].Name())

	require.NoError(testInstance, fileSystem.RemoveAll(scratchDirectory))
	_, statError := fileSystem.Stat(scratchDirectory)
	require.ErrorIs(testInstance, statError, os.ErrNotExist)
}

func TestOSFileSystemLstatReportsSymlinks(testInstance *testing.T) {
	fileSystem := filesystem.OSFileSystem{}
	targetDirectory := testInstance.TempDir()
	linkPath := filepath.Join(testInstance.TempDir(), "wpsvn-trunk")
	require.NoError(testInstance, os.Symlink(targetDirectory, linkPath))

	linkInfo, lstatError := fileSystem.Lstat(linkPath)
	require.NoError(testInstance, lstatError)
	require.NotZero(testInstance, linkInfo.Mode()&os.ModeSymlink)

	followedInfo, statError := fileSystem.Stat(linkPath)
	require.NoError(testInstance, statError)
	require.True(testInstance, followedInfo.IsDir())
}
