package shared

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/temirov/wpsvn/internal/execshell"
)

const (
	workingCopyPathEmptyMessageConstant     = "working copy path must not be empty"
	workingCopyPathMultilineMessageConstant = "working copy path must be a single line"
	lineBreakCharactersConstant             = "\r\n"
)

var (
	// ErrWorkingCopyPathEmpty indicates a blank working copy path.
	ErrWorkingCopyPathEmpty = errors.New(workingCopyPathEmptyMessageConstant)
	// ErrWorkingCopyPathMultiline indicates a working copy path containing line breaks.
	ErrWorkingCopyPathMultiline = errors.New(workingCopyPathMultilineMessageConstant)
)

// WorkingCopyPath identifies a candidate Subversion working copy on disk.
type WorkingCopyPath struct {
	value string
}

// NewWorkingCopyPath validates and trims a working copy path.
func NewWorkingCopyPath(raw string) (WorkingCopyPath, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return WorkingCopyPath{}, ErrWorkingCopyPathEmpty
	}
	if strings.ContainsAny(trimmed, lineBreakCharactersConstant) {
		return WorkingCopyPath{}, ErrWorkingCopyPathMultiline
	}
	return WorkingCopyPath{value: trimmed}, nil
}

// String returns the path.
func (path WorkingCopyPath) String() string {
	return path.value
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes filesystem operations required by working copy services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Lstat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	MkdirAll(path string, permissions fs.FileMode) error
	RemoveAll(path string) error
}

// SubversionExecutor exposes the svn subset of shell execution.
type SubversionExecutor interface {
	ExecuteSubversion(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandExecutor runs arbitrary named commands such as service control.
type CommandExecutor interface {
	ExecuteCommand(executionContext context.Context, commandName execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ShellExecutor combines svn and generic command execution.
type ShellExecutor interface {
	SubversionExecutor
	CommandExecutor
}

// WorkingCopyDiscoverer enumerates candidate working copies beneath roots.
type WorkingCopyDiscoverer interface {
	DiscoverWorkingCopies(roots []string) ([]string, error)
}
