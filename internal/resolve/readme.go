package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/repos/shared"
	"github.com/temirov/wpsvn/internal/subversion"
)

const (
	scratchDirectoryPermissionsConstant    = fs.FileMode(0o755)
	readmeCheckoutFailureTemplateConstant  = "unable to check out %s: %w"
	scratchResetFailureTemplateConstant    = "unable to reset scratch directory %s: %w"
	unsafeScratchMessageConstant           = "unsafe scratch directory"
	scratchSymlinkTemplateConstant         = "%w: %s is a symbolic link"
	scratchNotDirectoryTemplateConstant    = "%w: %s is not a directory"
	scratchWritableTemplateConstant        = "%w: %s is writable by group or others (%s)"
	scratchOwnerTemplateConstant           = "%w: %s is owned by uid %d, expected %d"
	scratchSharedPermissionBitsConstant    = fs.FileMode(0o022)
	readmeReadFailureTemplateConstant      = "unable to read %s: %w"
	scratchMissingMessageConstant          = "readme resolver requires a scratch directory"
	checkoutClientMissingMessageConstant   = "readme resolver requires a subversion client"
	readmeFileSystemMissingMessageConstant = "readme resolver requires a filesystem"
	readmeMissingMessageConstant           = "No readme found in trunk; tracking trunk"
	stableTagMissingMessageConstant        = "Readme declares no stable tag; tracking trunk"
	resolvedReadmeMessageConstant          = "Resolved stable tag from readme"
	logFieldReadmeConstant                 = "readme"
	logFieldScratchConstant                = "scratch_directory"
)

var (
	// DefaultReadmeFileNames lists the readme names probed in trunk, in order.
	DefaultReadmeFileNames = []string{"readme.txt", "README.txt"}

	stableTagPattern = regexp.MustCompile(`(?im)^[ \t]*stable tag:[ \t]*(\S+)`)

	// ErrScratchDirectoryNotConfigured indicates the readme resolver was constructed without a scratch directory.
	ErrScratchDirectoryNotConfigured = errors.New(scratchMissingMessageConstant)
	// ErrCheckoutClientNotConfigured indicates the readme resolver was constructed without a subversion client.
	ErrCheckoutClientNotConfigured = errors.New(checkoutClientMissingMessageConstant)
	// ErrReadmeFileSystemNotConfigured indicates the readme resolver was constructed without a filesystem.
	ErrReadmeFileSystemNotConfigured = errors.New(readmeFileSystemMissingMessageConstant)
	// ErrUnsafeScratchDirectory indicates the scratch path could be controlled by another user.
	ErrUnsafeScratchDirectory = errors.New(unsafeScratchMessageConstant)
)

// CheckoutClient is the subset of subversion.Client used for shallow trunk checkouts.
type CheckoutClient interface {
	Checkout(executionContext context.Context, url string, path string, depth subversion.Depth) error
}

// ReadmeResolverDependencies supplies collaborators for ReadmeResolver.
type ReadmeResolverDependencies struct {
	Client           CheckoutClient
	FileSystem       shared.FileSystem
	ScratchDirectory string
	ReadmeFileNames  []string
	// ScratchOwner returns the uid that must own the scratch directory; defaults to os.Geteuid.
	ScratchOwner     func() int
	Logger           *zap.Logger
}

// ReadmeResolver reads the Stable tag declaration from a plugin's trunk readme.
//
// The scratch directory is shared across invocations and reset before every
// checkout, so calls must not run concurrently. After the reset it must be a
// real directory owned by the scratch owner and closed to group and other
// writes; otherwise nothing is checked out into it.
type ReadmeResolver struct {
	client           CheckoutClient
	fileSystem       shared.FileSystem
	scratchDirectory string
	readmeFileNames  []string
	scratchOwner     func() int
	logger           *zap.Logger
}

// NewReadmeResolver validates dependencies and constructs a ReadmeResolver.
func NewReadmeResolver(dependencies ReadmeResolverDependencies) (*ReadmeResolver, error) {
	if dependencies.Client == nil {
		return nil, ErrCheckoutClientNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrReadmeFileSystemNotConfigured
	}
	if len(strings.TrimSpace(dependencies.ScratchDirectory)) == 0 {
		return nil, ErrScratchDirectoryNotConfigured
	}
	readmeFileNames := dependencies.ReadmeFileNames
	if len(readmeFileNames) == 0 {
		readmeFileNames = DefaultReadmeFileNames
	}
	scratchOwner := dependencies.ScratchOwner
	if scratchOwner == nil {
		scratchOwner = os.Geteuid
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadmeResolver{
		client:           dependencies.Client,
		fileSystem:       dependencies.FileSystem,
		scratchDirectory: filepath.Clean(dependencies.ScratchDirectory),
		readmeFileNames:  readmeFileNames,
		scratchOwner:     scratchOwner,
		logger:           logger,
	}, nil
}

// Resolve checks out the trunk files of the origin and extracts the declared stable tag.
// A missing readme, a missing declaration, or a declared trunk all resolve to trunk.
func (resolver *ReadmeResolver) Resolve(executionContext context.Context, repositoryOrigin origin.Origin) (ResolvedVersion, error) {
	if removeError := resolver.fileSystem.RemoveAll(resolver.scratchDirectory); removeError != nil {
		return ResolvedVersion{}, fmt.Errorf(scratchResetFailureTemplateConstant, resolver.scratchDirectory, removeError)
	}
	if createError := resolver.fileSystem.MkdirAll(resolver.scratchDirectory, scratchDirectoryPermissionsConstant); createError != nil {
		return ResolvedVersion{}, fmt.Errorf(scratchResetFailureTemplateConstant, resolver.scratchDirectory, createError)
	}
	if verifyError := resolver.verifyScratchDirectory(); verifyError != nil {
		return ResolvedVersion{}, verifyError
	}

	trunkURL := repositoryOrigin.TrunkURL()
	if checkoutError := resolver.client.Checkout(executionContext, trunkURL, resolver.scratchDirectory, subversion.DepthFiles); checkoutError != nil {
		return ResolvedVersion{}, fmt.Errorf(readmeCheckoutFailureTemplateConstant, trunkURL, checkoutError)
	}

	for _, readmeFileName := range resolver.readmeFileNames {
		readmePath := filepath.Join(resolver.scratchDirectory, readmeFileName)
		contents, readError := resolver.fileSystem.ReadFile(readmePath)
		if readError != nil {
			if errors.Is(readError, fs.ErrNotExist) {
				continue
			}
			return ResolvedVersion{}, fmt.Errorf(readmeReadFailureTemplateConstant, readmePath, readError)
		}

		tag, declared := ParseStableTag(string(contents))
		if !declared {
			resolver.logger.Info(stableTagMissingMessageConstant, zap.String(logFieldReadmeConstant, readmePath))
			return ResolvedVersion{Tag: origin.TrunkTagConstant, Source: SourceReadme}, nil
		}

		resolver.logger.Debug(resolvedReadmeMessageConstant, zap.String(logFieldReadmeConstant, readmePath), zap.String(logFieldTagConstant, tag))
		return ResolvedVersion{Tag: tag, Source: SourceReadme}, nil
	}

	resolver.logger.Info(readmeMissingMessageConstant, zap.String(logFieldScratchConstant, resolver.scratchDirectory))
	return ResolvedVersion{Tag: origin.TrunkTagConstant, Source: SourceReadme}, nil
}

func (resolver *ReadmeResolver) verifyScratchDirectory() error {
	scratchInfo, lstatError := resolver.fileSystem.Lstat(resolver.scratchDirectory)
	if lstatError != nil {
		return fmt.Errorf(scratchResetFailureTemplateConstant, resolver.scratchDirectory, lstatError)
	}
	if scratchInfo.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf(scratchSymlinkTemplateConstant, ErrUnsafeScratchDirectory, resolver.scratchDirectory)
	}
	if !scratchInfo.IsDir() {
		return fmt.Errorf(scratchNotDirectoryTemplateConstant, ErrUnsafeScratchDirectory, resolver.scratchDirectory)
	}
	if scratchInfo.Mode().Perm()&scratchSharedPermissionBitsConstant != 0 {
		return fmt.Errorf(scratchWritableTemplateConstant, ErrUnsafeScratchDirectory, resolver.scratchDirectory, scratchInfo.Mode().Perm())
	}
	expectedOwner := resolver.scratchOwner()
	if owner, known := fileOwner(scratchInfo); known && owner != expectedOwner {
		return fmt.Errorf(scratchOwnerTemplateConstant, ErrUnsafeScratchDirectory, resolver.scratchDirectory, owner, expectedOwner)
	}
	return nil
}

// ParseStableTag extracts the "Stable tag:" value from readme contents.
// A declared "trunk" is normalized to lowercase.
func ParseStableTag(contents string) (string, bool) {
	match := stableTagPattern.FindStringSubmatch(contents)
	if match == nil {
		return "", false
	}
	tag := strings.TrimSpace(match[1])
	if strings.EqualFold(tag, origin.TrunkTagConstant) {
		return origin.TrunkTagConstant, true
	}
	return tag, true
}
