package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValueConstant       = "true"
	toggleFalseCanonicalValueConstant      = "false"
	toggleValueTypeConstant                = "bool"
	toggleParseErrorTemplateConstant       = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
)

var (
	toggleLiterals = map[string]bool{
		"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
		"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
	}

	toggleRegistryMutex  sync.RWMutex
	toggleFlagNames      = map[string]struct{}{}
	toggleFlagShorthands = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that also accepts yes/no style values,
// so "--dry", "--dry=no" and "--dry no" all parse.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	toggleValue := newToggleFlagValue(defaultValue, target)
	flagSet.VarP(toggleValue, name, shorthand, formatToggleUsage(usage, defaultValue))

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValueConstant

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	toggleFlagNames[name] = struct{}{}
	if len(shorthand) > 0 {
		toggleFlagShorthands[shorthand] = struct{}{}
	}
}

// ResolveToggle returns the flag value when the flag was given on the command
// line and configuredValue otherwise.
func ResolveToggle(flagSet *pflag.FlagSet, name string, configuredValue bool) bool {
	if flagSet == nil {
		return configuredValue
	}
	flag := flagSet.Lookup(name)
	if flag == nil || !flag.Changed {
		return configuredValue
	}
	parsedValue, parseError := parseToggleValue(flag.Value.String())
	if parseError != nil {
		return configuredValue
	}
	return parsedValue
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for
// registered toggles when value is a toggle literal. Any other following
// argument is left alone so positionals such as a version survive.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if isBareToggleArgument(current) && index+1 < len(arguments) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}

		normalized = append(normalized, current)
	}

	return normalized
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}
	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueCanonicalValueConstant
	}
	return toggleFalseCanonicalValueConstant
}

func (value *toggleFlagValue) Type() string {
	return toggleValueTypeConstant
}

func parseToggleValue(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	if parsedValue, known := toggleLiterals[normalizedValue]; known {
		return parsedValue, nil
	}
	return false, fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
}

func isToggleLiteral(value string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(value))]
	return known
}

// isBareToggleArgument reports whether argument names a registered toggle without an inline value.
func isBareToggleArgument(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, registered := toggleFlagNames[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return registered
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand := strings.TrimPrefix(argument, shortFlagPrefixConstant)
		if len(shorthand) != 1 {
			return false
		}
		_, registered := toggleFlagShorthands[shorthand]
		return registered
	}
	return false
}
