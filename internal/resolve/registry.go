package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/wpsvn/internal/origin"
)

const (
	unsupportedStrategyTemplateConstant = "%w: %q for %s"
	unsupportedStrategyMessageConstant  = "unsupported version source"
	unsupportedKindTemplateConstant     = "%w: origin kind %q"
	missingResolverTemplateConstant     = "%w: %s resolver not available"
	themeLabelConstant                  = "themes"
	pluginLabelConstant                 = "plugins"
)

// Strategy names a configured version source.
type Strategy string

// Supported strategies.
const (
	StrategyListing Strategy = "listing"
	StrategyReadme  Strategy = "readme"
	StrategyTags    Strategy = "tags"
)

// ErrUnsupportedStrategy indicates a version source that does not apply to the origin kind.
var ErrUnsupportedStrategy = errors.New(unsupportedStrategyMessageConstant)

// Resolvers bundles the available strategy implementations.
type Resolvers struct {
	Listing Resolver
	Readme  Resolver
	Tags    Resolver
}

// Registry dispatches resolution to the strategy configured for each origin kind.
type Registry struct {
	themeResolver  Resolver
	pluginResolver Resolver
}

// NewRegistry selects the theme and plugin strategies from resolvers.
// Themes accept listing or tags; plugins accept readme or tags.
func NewRegistry(themeStrategy Strategy, pluginStrategy Strategy, resolvers Resolvers) (*Registry, error) {
	themeResolver, themeError := selectResolver(themeStrategy, themeLabelConstant, map[Strategy]Resolver{
		StrategyListing: resolvers.Listing,
		StrategyTags:    resolvers.Tags,
	})
	if themeError != nil {
		return nil, themeError
	}

	pluginResolver, pluginError := selectResolver(pluginStrategy, pluginLabelConstant, map[Strategy]Resolver{
		StrategyReadme: resolvers.Readme,
		StrategyTags:   resolvers.Tags,
	})
	if pluginError != nil {
		return nil, pluginError
	}

	return &Registry{themeResolver: themeResolver, pluginResolver: pluginResolver}, nil
}

// Resolve dispatches to the resolver configured for the origin kind.
func (registry *Registry) Resolve(executionContext context.Context, repositoryOrigin origin.Origin) (ResolvedVersion, error) {
	switch repositoryOrigin.Kind {
	case origin.KindTheme:
		return registry.themeResolver.Resolve(executionContext, repositoryOrigin)
	case origin.KindPluginTag, origin.KindPluginTrunk:
		return registry.pluginResolver.Resolve(executionContext, repositoryOrigin)
	default:
		return ResolvedVersion{}, fmt.Errorf(unsupportedKindTemplateConstant, ErrUnsupportedStrategy, repositoryOrigin.Kind)
	}
}

func selectResolver(strategy Strategy, label string, candidates map[Strategy]Resolver) (Resolver, error) {
	normalized := Strategy(strings.ToLower(strings.TrimSpace(string(strategy))))
	resolver, supported := candidates[normalized]
	if !supported {
		return nil, fmt.Errorf(unsupportedStrategyTemplateConstant, ErrUnsupportedStrategy, strategy, label)
	}
	if resolver == nil {
		return nil, fmt.Errorf(missingResolverTemplateConstant, ErrUnsupportedStrategy, normalized)
	}
	return resolver, nil
}
