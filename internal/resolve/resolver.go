package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/wpsvn/internal/origin"
)

const (
	noVersionFoundMessageConstant   = "no version found"
	httpStatusErrorTemplateConstant = "unexpected HTTP status %d from %s"
)

// Source identifies which strategy produced a ResolvedVersion.
type Source string

// Supported sources.
const (
	SourceListing Source = "listing"
	SourceReadme  Source = "readme"
	SourceTags    Source = "tags"
)

// ErrNoVersionFound indicates the remote offered no usable version identifier.
var ErrNoVersionFound = errors.New(noVersionFoundMessageConstant)

// ResolvedVersion is the newest release reported by a remote, or trunk.
type ResolvedVersion struct {
	Tag    string
	Source Source
}

// Resolver determines the newest release for a classified origin.
type Resolver interface {
	Resolve(executionContext context.Context, repositoryOrigin origin.Origin) (ResolvedVersion, error)
}

// HTTPStatusError reports a non-200 response from a listing endpoint.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

// Error describes the unexpected status.
func (statusError HTTPStatusError) Error() string {
	return fmt.Sprintf(httpStatusErrorTemplateConstant, statusError.StatusCode, statusError.URL)
}
