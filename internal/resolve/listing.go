package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/temirov/wpsvn/internal/origin"
)

const (
	DefaultUserAgentConstant = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	DefaultRequestTimeout    = 30 * time.Second

	userAgentHeaderConstant          = "User-Agent"
	acceptHeaderConstant             = "Accept"
	acceptHTMLConstant               = "text/html"
	parentEntryConstant              = ".."
	entrySeparatorsConstant          = "/"
	listingPathTemplateConstant      = "%s/"
	maximumListingBytesConstant      = 4 << 20
	requestCreationTemplateConstant  = "unable to build listing request for %s: %w"
	requestFailureTemplateConstant   = "listing request for %s failed: %w"
	parseFailureTemplateConstant     = "unable to parse listing from %s: %w"
	emptyListingTemplateConstant     = "%w: listing at %s has no entries"
	httpClientMissingMessageConstant = "listing resolver requires an HTTP client"
	fetchingListingMessageConstant   = "Fetching theme listing"
	resolvedListingMessageConstant   = "Resolved version from listing"
	logFieldURLConstant              = "url"
	logFieldStatusConstant           = "status"
	logFieldTagConstant              = "tag"
	logFieldEntryCountConstant       = "entries"
)

// ErrHTTPClientNotConfigured indicates the listing resolver was constructed without an HTTP client.
var ErrHTTPClientNotConfigured = errors.New(httpClientMissingMessageConstant)

// HTTPClient issues HTTP requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ListingResolver reads the newest theme release from the repository's HTML directory listing.
//
// The last listed entry wins. The listing service's order, not version
// ordering, decides which entry that is.
type ListingResolver struct {
	client    HTTPClient
	userAgent string
	logger    *zap.Logger
}

// NewListingResolver constructs a ListingResolver.
func NewListingResolver(client HTTPClient, userAgent string, logger *zap.Logger) (*ListingResolver, error) {
	if client == nil {
		return nil, ErrHTTPClientNotConfigured
	}
	if len(strings.TrimSpace(userAgent)) == 0 {
		userAgent = DefaultUserAgentConstant
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingResolver{client: client, userAgent: userAgent, logger: logger}, nil
}

// NewDefaultHTTPClient returns an HTTP client bounded by timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Resolve fetches the listing of the origin's repository and returns its last entry.
func (resolver *ListingResolver) Resolve(executionContext context.Context, repositoryOrigin origin.Origin) (ResolvedVersion, error) {
	listingURL := fmt.Sprintf(listingPathTemplateConstant, strings.TrimRight(repositoryOrigin.RepositoryURL, entrySeparatorsConstant))

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, listingURL, nil)
	if requestError != nil {
		return ResolvedVersion{}, fmt.Errorf(requestCreationTemplateConstant, listingURL, requestError)
	}
	request.Header.Set(userAgentHeaderConstant, resolver.userAgent)
	request.Header.Set(acceptHeaderConstant, acceptHTMLConstant)

	resolver.logger.Debug(fetchingListingMessageConstant, zap.String(logFieldURLConstant, listingURL))

	response, responseError := resolver.client.Do(request)
	if responseError != nil {
		return ResolvedVersion{}, fmt.Errorf(requestFailureTemplateConstant, listingURL, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return ResolvedVersion{}, HTTPStatusError{StatusCode: response.StatusCode, URL: listingURL}
	}

	entries, parseError := parseListingEntries(io.LimitReader(response.Body, maximumListingBytesConstant))
	if parseError != nil {
		return ResolvedVersion{}, fmt.Errorf(parseFailureTemplateConstant, listingURL, parseError)
	}
	if len(entries) == 0 {
		return ResolvedVersion{}, fmt.Errorf(emptyListingTemplateConstant, ErrNoVersionFound, listingURL)
	}

	latest := entries[len(entries)-1]
	resolver.logger.Debug(
		resolvedListingMessageConstant,
		zap.String(logFieldURLConstant, listingURL),
		zap.Int(logFieldStatusConstant, response.StatusCode),
		zap.Int(logFieldEntryCountConstant, len(entries)),
		zap.String(logFieldTagConstant, latest),
	)
	return ResolvedVersion{Tag: latest, Source: SourceListing}, nil
}

// parseListingEntries returns the text of every list item in document order, minus the parent link.
func parseListingEntries(reader io.Reader) ([]string, error) {
	document, parseError := html.Parse(reader)
	if parseError != nil {
		return nil, parseError
	}

	entries := make([]string, 0)
	var visit func(node *html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && node.DataAtom == atom.Li {
			entry := strings.TrimRight(strings.TrimSpace(textContent(node)), entrySeparatorsConstant)
			if len(entry) > 0 && entry != parentEntryConstant {
				entries = append(entries, entry)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(document)

	return entries, nil
}

func textContent(node *html.Node) string {
	var builder strings.Builder
	var collect func(current *html.Node)
	collect = func(current *html.Node) {
		if current.Type == html.TextNode {
			builder.WriteString(current.Data)
		}
		for child := current.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(node)
	return builder.String()
}
