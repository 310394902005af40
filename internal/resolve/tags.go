package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/subversion"
	"github.com/temirov/wpsvn/internal/version"
)

const (
	directoryEntryKindConstant       = "dir"
	pluginTagsURLTemplateConstant    = "%s/tags"
	tagListFailureTemplateConstant   = "unable to list tags at %s: %w"
	noNumericTagsTemplateConstant    = "%w: no numeric tags at %s"
	listClientMissingMessageConstant = "tag list resolver requires a subversion client"
	resolvedTagsMessageConstant      = "Resolved newest numeric tag"
	logFieldCandidatesConstant       = "numeric_tags"
)

// ErrListClientNotConfigured indicates the tag list resolver was constructed without a subversion client.
var ErrListClientNotConfigured = errors.New(listClientMissingMessageConstant)

// ListClient is the subset of subversion.Client used to enumerate remote tags.
type ListClient interface {
	List(executionContext context.Context, url string) ([]subversion.ListEntry, error)
}

// TagListResolver selects the greatest numeric tag from the remote tag directory.
type TagListResolver struct {
	client ListClient
	logger *zap.Logger
}

// NewTagListResolver constructs a TagListResolver.
func NewTagListResolver(client ListClient, logger *zap.Logger) (*TagListResolver, error) {
	if client == nil {
		return nil, ErrListClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagListResolver{client: client, logger: logger}, nil
}

// Resolve lists <base>/tags for plugins or <base> for themes and returns the greatest numeric tag.
func (resolver *TagListResolver) Resolve(executionContext context.Context, repositoryOrigin origin.Origin) (ResolvedVersion, error) {
	tagsURL := repositoryOrigin.RepositoryURL
	if repositoryOrigin.Kind != origin.KindTheme {
		tagsURL = fmt.Sprintf(pluginTagsURLTemplateConstant, repositoryOrigin.RepositoryURL)
	}

	entries, listError := resolver.client.List(executionContext, tagsURL)
	if listError != nil {
		return ResolvedVersion{}, fmt.Errorf(tagListFailureTemplateConstant, tagsURL, listError)
	}

	newestTag := ""
	numericTagCount := 0
	for _, entry := range entries {
		if len(entry.Kind) > 0 && entry.Kind != directoryEntryKindConstant {
			continue
		}
		if !version.IsNumericTag(entry.Name) {
			continue
		}
		numericTagCount++
		if len(newestTag) == 0 || version.Compare(entry.Name, newestTag) > 0 {
			newestTag = entry.Name
		}
	}

	if len(newestTag) == 0 {
		return ResolvedVersion{}, fmt.Errorf(noNumericTagsTemplateConstant, ErrNoVersionFound, tagsURL)
	}

	resolver.logger.Debug(
		resolvedTagsMessageConstant,
		zap.String(logFieldURLConstant, tagsURL),
		zap.Int(logFieldCandidatesConstant, numericTagCount),
		zap.String(logFieldTagConstant, newestTag),
	)
	return ResolvedVersion{Tag: newestTag, Source: SourceTags}, nil
}
