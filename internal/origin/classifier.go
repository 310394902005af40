package origin

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultThemeHostConstant  = "themes.svn.wordpress.org"
	DefaultPluginHostConstant = "plugins.svn.wordpress.org"
	TrunkTagConstant          = "trunk"

	tagsSegmentConstant                 = "tags"
	trunkSegmentConstant                = "trunk"
	pathSeparatorConstant               = "/"
	httpSchemeConstant                  = "http"
	httpsSchemeConstant                 = "https"
	baseURLTemplateConstant             = "%s://%s/%s"
	themeTargetTemplateConstant         = "%s/%s"
	pluginTargetTemplateConstant        = "%s/tags/%s"
	trunkTargetTemplateConstant         = "%s/trunk"
	unrecognizedHostMessageConstant     = "not a wordpress.org plugin or theme repository"
	patternMismatchMessageConstant      = "repository url does not match pattern"
	missingTagMessageConstant           = "could not parse tag"
	classificationErrorTemplateConstant = "%w: %s"
)

// Kind enumerates the recognized working copy origins.
type Kind string

// Supported origin kinds.
const (
	KindTheme       Kind = "theme"
	KindPluginTag   Kind = "plugin-tag"
	KindPluginTrunk Kind = "plugin-trunk"
)

var (
	// ErrUnrecognizedHost indicates the origin URL does not belong to the theme or plugin host.
	ErrUnrecognizedHost = errors.New(unrecognizedHostMessageConstant)
	// ErrPatternMismatch indicates the origin URL belongs to a known host but has an unexpected layout.
	ErrPatternMismatch = errors.New(patternMismatchMessageConstant)
	// ErrMissingTag indicates the origin URL has a tag position without a tag value.
	ErrMissingTag = errors.New(missingTagMessageConstant)
)

// Origin describes a classified working copy origin.
// RepositoryURL keeps the escaping of the origin URL; Slug and CurrentTag are decoded.
type Origin struct {
	Kind          Kind
	URL           string
	RepositoryURL string
	Slug          string
	CurrentTag    string
}

// TargetURL builds the switch target for tag within this origin's repository.
// Each path segment of tag is percent-escaped.
func (origin Origin) TargetURL(tag string) string {
	if tag == TrunkTagConstant {
		return fmt.Sprintf(trunkTargetTemplateConstant, origin.RepositoryURL)
	}
	escapedTag := escapeSegments(tag)
	if origin.Kind == KindTheme {
		return fmt.Sprintf(themeTargetTemplateConstant, origin.RepositoryURL, escapedTag)
	}
	return fmt.Sprintf(pluginTargetTemplateConstant, origin.RepositoryURL, escapedTag)
}

// TrunkURL returns the repository trunk location.
func (origin Origin) TrunkURL() string {
	return fmt.Sprintf(trunkTargetTemplateConstant, origin.RepositoryURL)
}

// TracksTrunk reports whether the working copy currently follows trunk.
func (origin Origin) TracksTrunk() bool {
	return origin.CurrentTag == TrunkTagConstant
}

// Classifier matches origin URLs against the configured theme and plugin hosts.
type Classifier struct {
	themeHost  string
	pluginHost string
}

// NewClassifier constructs a Classifier; empty hosts fall back to the wordpress.org defaults.
func NewClassifier(themeHost string, pluginHost string) Classifier {
	resolvedThemeHost := strings.ToLower(strings.TrimSpace(themeHost))
	if len(resolvedThemeHost) == 0 {
		resolvedThemeHost = DefaultThemeHostConstant
	}
	resolvedPluginHost := strings.ToLower(strings.TrimSpace(pluginHost))
	if len(resolvedPluginHost) == 0 {
		resolvedPluginHost = DefaultPluginHostConstant
	}
	return Classifier{themeHost: resolvedThemeHost, pluginHost: resolvedPluginHost}
}

// Classify parses rawURL and determines its origin kind.
func (classifier Classifier) Classify(rawURL string) (Origin, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil {
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrUnrecognizedHost, trimmedURL)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != httpSchemeConstant && scheme != httpsSchemeConstant {
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrUnrecognizedHost, trimmedURL)
	}

	host := strings.ToLower(parsedURL.Host)
	segments, segmentsError := splitEscapedPath(parsedURL.EscapedPath())
	if segmentsError != nil {
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrPatternMismatch, trimmedURL)
	}

	switch host {
	case classifier.themeHost:
		return classifyTheme(trimmedURL, scheme, host, segments)
	case classifier.pluginHost:
		return classifyPlugin(trimmedURL, scheme, host, segments)
	default:
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrUnrecognizedHost, trimmedURL)
	}
}

func classifyTheme(rawURL string, scheme string, host string, segments []pathSegment) (Origin, error) {
	if len(segments) == 0 {
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrPatternMismatch, rawURL)
	}
	if len(segments) == 1 {
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrMissingTag, rawURL)
	}

	return Origin{
		Kind:          KindTheme,
		URL:           rawURL,
		RepositoryURL: fmt.Sprintf(baseURLTemplateConstant, scheme, host, segments[0].escaped),
		Slug:          segments[0].decoded,
		CurrentTag:    joinDecoded(segments[1:]),
	}, nil
}

func classifyPlugin(rawURL string, scheme string, host string, segments []pathSegment) (Origin, error) {
	if len(segments) < 2 {
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrPatternMismatch, rawURL)
	}

	slug := segments[0].decoded
	repositoryURL := fmt.Sprintf(baseURLTemplateConstant, scheme, host, segments[0].escaped)

	switch segments[1].decoded {
	case tagsSegmentConstant:
		if len(segments) < 3 {
			return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrMissingTag, rawURL)
		}
		return Origin{
			Kind:          KindPluginTag,
			URL:           rawURL,
			RepositoryURL: repositoryURL,
			Slug:          slug,
			CurrentTag:    joinDecoded(segments[2:]),
		}, nil
	case trunkSegmentConstant:
		return Origin{
			Kind:          KindPluginTrunk,
			URL:           rawURL,
			RepositoryURL: repositoryURL,
			Slug:          slug,
			CurrentTag:    TrunkTagConstant,
		}, nil
	default:
		return Origin{}, fmt.Errorf(classificationErrorTemplateConstant, ErrPatternMismatch, rawURL)
	}
}

type pathSegment struct {
	escaped string
	decoded string
}

func splitEscapedPath(escapedPath string) ([]pathSegment, error) {
	segments := make([]pathSegment, 0)
	for _, escapedSegment := range strings.Split(escapedPath, pathSeparatorConstant) {
		if len(escapedSegment) == 0 {
			continue
		}
		decodedSegment, unescapeError := url.PathUnescape(escapedSegment)
		if unescapeError != nil {
			return nil, unescapeError
		}
		segments = append(segments, pathSegment{escaped: escapedSegment, decoded: decodedSegment})
	}
	return segments, nil
}

func joinDecoded(segments []pathSegment) string {
	decodedSegments := make([]string, 0, len(segments))
	for _, segment := range segments {
		decodedSegments = append(decodedSegments, segment.decoded)
	}
	return strings.Join(decodedSegments, pathSeparatorConstant)
}

func escapeSegments(value string) string {
	segments := strings.Split(value, pathSeparatorConstant)
	for index, segment := range segments {
		segments[index] = url.PathEscape(segment)
	}
	return strings.Join(segments, pathSeparatorConstant)
}
