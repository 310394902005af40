package flags

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	longFlagPrefixConstant            = "--"
	flagValueSeparatorConstant        = "="
	argumentTerminatorConstant        = "--"
	toggleTypeNameConstant            = "bool"
	toggleImplicitValueConstant       = "true"
	toggleParseErrorTemplate          = "invalid toggle value %q (expected yes/no, on/off, true/false)"
	toggleEnabledPlaceholderConstant  = "<YES|no>"
	toggleDisabledPlaceholderConstant = "<yes|NO>"
	toggleUsageTemplateConstant       = "`%s` %s"
)

var (
	toggleLiterals = map[string]bool{
		"true": true, "yes": true, "on": true, "y": true, "1": true,
		"false": false, "no": false, "off": false, "n": false, "0": false,
	}

	registeredToggleMutex sync.RWMutex
	registeredToggleNames = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag accepting yes/no style values.
// A bare "--name" enables the toggle; "--name no" requires NormalizeToggleArguments.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}

	*target = defaultValue
	flagSet.Var(&toggleValue{target: target}, name, usage)

	flag := flagSet.Lookup(name)
	flag.NoOptDefVal = toggleImplicitValueConstant
	placeholder := toggleDisabledPlaceholderConstant
	if defaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	flag.Usage = strings.TrimSpace(fmt.Sprintf(toggleUsageTemplateConstant, placeholder, strings.TrimSpace(usage)))

	registeredToggleMutex.Lock()
	registeredToggleNames[name] = struct{}{}
	registeredToggleMutex.Unlock()
}

// NormalizeToggleArguments joins "--toggle value" pairs into "--toggle=value" for registered toggles.
func NormalizeToggleArguments(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}
		if !isRegisteredToggle(current) || index+1 >= len(arguments) {
			normalized = append(normalized, current)
			continue
		}
		candidate := strings.ToLower(strings.TrimSpace(arguments[index+1]))
		if _, isLiteral := toggleLiterals[candidate]; !isLiteral {
			normalized = append(normalized, current)
			continue
		}
		normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
		index++
	}
	return normalized
}

func isRegisteredToggle(argument string) bool {
	if !strings.HasPrefix(argument, longFlagPrefixConstant) || strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}
	registeredToggleMutex.RLock()
	defer registeredToggleMutex.RUnlock()
	_, registered := registeredToggleNames[strings.TrimPrefix(argument, longFlagPrefixConstant)]
	return registered
}

type toggleValue struct {
	target *bool
}

func (value *toggleValue) Set(rawValue string) error {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalized) == 0 {
		normalized = toggleImplicitValueConstant
	}
	parsed, known := toggleLiterals[normalized]
	if !known {
		return fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}
