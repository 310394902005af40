package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// HomeExpander rewrites "~" and "~/..." paths against the user's home directory.
// The home directory is resolved once, on first use.
type HomeExpander struct {
	provider      HomeDirectoryProvider
	once          sync.Once
	homeDirectory string
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(nil)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider; nil means os.UserHomeDir.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand returns candidatePath with a leading home shortcut resolved.
// Paths such as "~operator/x" and unresolvable home directories are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, homeShortcutConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	expander.once.Do(func() {
		resolved, resolveError := expander.provider()
		if resolveError == nil {
			expander.homeDirectory = resolved
		}
	})
	if len(expander.homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(expander.homeDirectory, remainder)
}
