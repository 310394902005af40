package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/repos/shared"
)

const (
	hiddenEntryPrefixConstant           = "."
	missingRootMessageConstant          = "Working copy root does not exist"
	rootReadErrorTemplateConstant       = "unable to list working copy root %s: %w"
	fileSystemMissingMessageConstant    = "working copy discoverer requires a filesystem"
	logFieldRootConstant                = "root"
	discoveredCandidatesMessageConstant = "Discovered working copy candidates"
	logFieldCandidateCountConstant      = "candidates"
)

// ErrFileSystemNotConfigured indicates the discoverer was constructed without a filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// FilesystemWorkingCopyDiscoverer enumerates the immediate children of each root.
type FilesystemWorkingCopyDiscoverer struct {
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

// NewFilesystemWorkingCopyDiscoverer constructs a discoverer backed by fileSystem.
func NewFilesystemWorkingCopyDiscoverer(fileSystem shared.FileSystem, logger *zap.Logger) (*FilesystemWorkingCopyDiscoverer, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemWorkingCopyDiscoverer{fileSystem: fileSystem, logger: logger}, nil
}

// DiscoverWorkingCopies returns every non-hidden child of each root, sorted within a root and deduplicated across roots.
// Roots are visited in the order given. A missing root contributes no candidates.
func (discoverer *FilesystemWorkingCopyDiscoverer) DiscoverWorkingCopies(roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	candidates := make([]string, 0)

	for _, root := range roots {
		cleanedRoot := filepath.Clean(strings.TrimSpace(root))
		entries, readError := discoverer.fileSystem.ReadDir(cleanedRoot)
		if readError != nil {
			if errors.Is(readError, fs.ErrNotExist) {
				discoverer.logger.Warn(missingRootMessageConstant, zap.String(logFieldRootConstant, cleanedRoot))
				continue
			}
			return nil, fmt.Errorf(rootReadErrorTemplateConstant, cleanedRoot, readError)
		}

		rootCandidates := make([]string, 0, len(entries))
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), hiddenEntryPrefixConstant) {
				continue
			}
			candidatePath := filepath.Join(cleanedRoot, entry.Name())
			if _, alreadySeen := seen[candidatePath]; alreadySeen {
				continue
			}
			seen[candidatePath] = struct{}{}
			rootCandidates = append(rootCandidates, candidatePath)
		}

		sort.Strings(rootCandidates)
		discoverer.logger.Debug(
			discoveredCandidatesMessageConstant,
			zap.String(logFieldRootConstant, cleanedRoot),
			zap.Int(logFieldCandidateCountConstant, len(rootCandidates)),
		)
		candidates = append(candidates, rootCandidates...)
	}

	return candidates, nil
}
