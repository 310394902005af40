package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/execshell"
	"github.com/temirov/wpsvn/internal/repos/discovery"
	"github.com/temirov/wpsvn/internal/repos/filesystem"
	"github.com/temirov/wpsvn/internal/repos/shared"
	"github.com/temirov/wpsvn/internal/subversion"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveWorkingCopyDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveWorkingCopyDiscoverer(existing shared.WorkingCopyDiscoverer, fileSystem shared.FileSystem, logger *zap.Logger) (shared.WorkingCopyDiscoverer, error) {
	if existing != nil {
		return existing, nil
	}
	discoverer, creationError := discovery.NewFilesystemWorkingCopyDiscoverer(ResolveFileSystem(fileSystem), logger)
	if creationError != nil {
		return nil, creationError
	}
	return discoverer, nil
}

// ResolveShellExecutor returns the provided executor or constructs an OS-backed default.
func ResolveShellExecutor(existing shared.ShellExecutor, logger *zap.Logger, observer execshell.CommandEventObserver) (shared.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveSubversionClient constructs a Subversion client over executor.
func ResolveSubversionClient(executor shared.SubversionExecutor) (*subversion.Client, error) {
	return subversion.NewClient(executor)
}
