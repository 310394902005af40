package inspect

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/repos/shared"
	"github.com/temirov/wpsvn/internal/subversion"
)

const (
	subversionMetadataDirectoryNameConstant = ".svn"
	notDirectoryMessageConstant             = "not a directory"
	notWorkingCopyMessageConstant           = "not a svn tree"
	fileSystemMissingMessageConstant        = "metadata reader requires a filesystem"
	clientMissingMessageConstant            = "metadata reader requires a subversion client"
	infoFailureTemplateConstant             = "unable to read svn info for %s: %w"
	trunkRefreshFailureTemplateConstant     = "unable to refresh trunk working copy %s: %w"
	trunkRefreshMessageConstant             = "Refreshing trunk working copy"
	trunkRefreshPlannedMessageConstant      = "Skipping trunk refresh in plan mode"
	inspectedMessageConstant                = "Inspected working copy"
	logFieldPathConstant                    = "path"
	logFieldOriginURLConstant               = "origin_url"
	logFieldKindConstant                    = "kind"
	logFieldCurrentTagConstant              = "current_tag"
	logFieldRevisionConstant                = "revision"
)

var (
	// ErrNotDirectory indicates the candidate path is not a directory.
	ErrNotDirectory = errors.New(notDirectoryMessageConstant)
	// ErrNotWorkingCopy indicates the candidate directory carries no .svn metadata.
	ErrNotWorkingCopy = errors.New(notWorkingCopyMessageConstant)
	// ErrFileSystemNotConfigured indicates the reader was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
	// ErrClientNotConfigured indicates the reader was constructed without a subversion client.
	ErrClientNotConfigured = errors.New(clientMissingMessageConstant)
)

// SubversionClient is the subset of subversion.Client used to inspect working copies.
type SubversionClient interface {
	Info(executionContext context.Context, path string) (subversion.Info, error)
	Update(executionContext context.Context, path string) error
}

// RepoInfo captures what the reader learned about a working copy.
type RepoInfo struct {
	Path            string
	Origin          origin.Origin
	CurrentTag      string
	CurrentRevision int64
	Refreshed       bool
}

// Dependencies supplies collaborators for Reader.
type Dependencies struct {
	FileSystem shared.FileSystem
	Client     SubversionClient
	Classifier origin.Classifier
	Logger     *zap.Logger
}

// Reader inspects candidate directories and classifies their origin.
type Reader struct {
	fileSystem shared.FileSystem
	client     SubversionClient
	classifier origin.Classifier
	logger     *zap.Logger
}

// NewReader validates dependencies and constructs a Reader.
func NewReader(dependencies Dependencies) (*Reader, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier := dependencies.Classifier
	if classifier == (origin.Classifier{}) {
		classifier = origin.NewClassifier("", "")
	}
	return &Reader{
		fileSystem: dependencies.FileSystem,
		client:     dependencies.Client,
		classifier: classifier,
		logger:     logger,
	}, nil
}

// Inspect reads the svn metadata of path and classifies its origin.
// Plugin trunk working copies are refreshed in place when policy allows mutation.
func (reader *Reader) Inspect(executionContext context.Context, path string, policy shared.MutationPolicy) (RepoInfo, error) {
	pathInfo, statError := reader.fileSystem.Stat(path)
	if statError != nil || !pathInfo.IsDir() {
		return RepoInfo{}, ErrNotDirectory
	}

	metadataInfo, metadataError := reader.fileSystem.Stat(filepath.Join(path, subversionMetadataDirectoryNameConstant))
	if metadataError != nil || !metadataInfo.IsDir() {
		return RepoInfo{}, ErrNotWorkingCopy
	}

	info, infoError := reader.client.Info(executionContext, path)
	if infoError != nil {
		return RepoInfo{}, fmt.Errorf(infoFailureTemplateConstant, path, infoError)
	}

	classified, classifyError := reader.classifier.Classify(info.URL)
	if classifyError != nil {
		return RepoInfo{}, classifyError
	}

	repoInfo := RepoInfo{
		Path:            path,
		Origin:          classified,
		CurrentTag:      classified.CurrentTag,
		CurrentRevision: info.CommitRevision,
	}

	if classified.Kind == origin.KindPluginTrunk {
		if !policy.AllowsMutation() {
			reader.logger.Info(trunkRefreshPlannedMessageConstant, zap.String(logFieldPathConstant, path))
		} else {
			reader.logger.Info(trunkRefreshMessageConstant, zap.String(logFieldPathConstant, path))
			if updateError := reader.client.Update(executionContext, path); updateError != nil {
				return RepoInfo{}, fmt.Errorf(trunkRefreshFailureTemplateConstant, path, updateError)
			}
			repoInfo.Refreshed = true
		}
	}

	reader.logger.Debug(
		inspectedMessageConstant,
		zap.String(logFieldPathConstant, path),
		zap.String(logFieldOriginURLConstant, classified.URL),
		zap.String(logFieldKindConstant, string(classified.Kind)),
		zap.String(logFieldCurrentTagConstant, repoInfo.CurrentTag),
		zap.Int64(logFieldRevisionConstant, repoInfo.CurrentRevision),
	)

	return repoInfo, nil
}
