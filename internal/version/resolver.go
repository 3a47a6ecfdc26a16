package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	versionPrefixConstant               = "v"
	preReleaseSeparatorConstant         = "."
	unknownBumpKindTemplateConstant     = "unknown bump kind %q"
	invalidVersionTemplateConstant      = "invalid version %q"
	invalidVersionCauseTemplateConstant = "invalid version %q: %s"
)

// InvalidVersionError reports a string that is not a valid semantic version.
type InvalidVersionError struct {
	Value  string
	Reason string
}

// Error describes the invalid version.
func (versionError InvalidVersionError) Error() string {
	if len(versionError.Reason) == 0 {
		return fmt.Sprintf(invalidVersionTemplateConstant, versionError.Value)
	}
	return fmt.Sprintf(invalidVersionCauseTemplateConstant, versionError.Value, versionError.Reason)
}

// Candidate pairs a bump kind with the version it produces.
type Candidate struct {
	Kind    BumpKind
	Version string
}

// Validate strictly parses value, accepting a single leading "v", and returns the normalized form.
func Validate(value string) (string, error) {
	parsed, parseError := parse(value)
	if parseError != nil {
		return "", parseError
	}
	return parsed.String(), nil
}

// Compare orders two valid versions following semantic version precedence.
func Compare(left string, right string) (int, error) {
	leftVersion, leftError := parse(left)
	if leftError != nil {
		return 0, leftError
	}
	rightVersion, rightError := parse(right)
	if rightError != nil {
		return 0, rightError
	}
	return leftVersion.Compare(rightVersion), nil
}

// PreReleaseIdentifier returns the first pre-release identifier of value, or an empty string.
func PreReleaseIdentifier(value string) string {
	parsed, parseError := parse(value)
	if parseError != nil {
		return ""
	}
	identifiers := splitPreRelease(parsed.Prerelease())
	if len(identifiers) == 0 {
		return ""
	}
	return identifiers[0]
}

// Candidates computes the next version for every bump kind available with the identifier.
func Candidates(current string, preReleaseIdentifier string) ([]Candidate, error) {
	kinds := AvailableKinds(preReleaseIdentifier)
	candidates := make([]Candidate, 0, len(kinds))
	for _, kind := range kinds {
		next, resolveError := Resolve(current, kind, preReleaseIdentifier)
		if resolveError != nil {
			return nil, resolveError
		}
		candidates = append(candidates, Candidate{Kind: kind, Version: next})
	}
	return candidates, nil
}

// Resolve increments current according to kind. Build metadata is dropped from the result.
func Resolve(current string, kind BumpKind, preReleaseIdentifier string) (string, error) {
	parsed, parseError := parse(current)
	if parseError != nil {
		return "", parseError
	}

	state := incrementState{
		major:      parsed.Major(),
		minor:      parsed.Minor(),
		patch:      parsed.Patch(),
		preRelease: splitPreRelease(parsed.Prerelease()),
	}
	identifier := strings.TrimSpace(preReleaseIdentifier)

	switch kind {
	case BumpPatch:
		state.incrementPatch()
	case BumpMinor:
		state.incrementMinor()
	case BumpMajor:
		state.incrementMajor()
	case BumpPrePatch:
		state.preRelease = nil
		state.incrementPatch()
		state.incrementPreRelease(identifier)
	case BumpPreMinor:
		state.preRelease = nil
		state.incrementMinor()
		state.incrementPreRelease(identifier)
	case BumpPreMajor:
		state.preRelease = nil
		state.incrementMajor()
		state.incrementPreRelease(identifier)
	case BumpPrerelease:
		if len(state.preRelease) == 0 {
			state.incrementPatch()
		}
		state.incrementPreRelease(identifier)
	default:
		return "", InvalidVersionError{Value: current, Reason: fmt.Sprintf(unknownBumpKindTemplateConstant, kind)}
	}

	next, buildError := semver.NewVersion(state.String())
	if buildError != nil {
		return "", InvalidVersionError{Value: state.String(), Reason: buildError.Error()}
	}
	return next.String(), nil
}

func parse(value string) (*semver.Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), versionPrefixConstant)
	parsed, parseError := semver.StrictNewVersion(trimmed)
	if parseError != nil {
		return nil, InvalidVersionError{Value: value, Reason: parseError.Error()}
	}
	return parsed, nil
}

func splitPreRelease(preRelease string) []string {
	if len(preRelease) == 0 {
		return nil
	}
	return strings.Split(preRelease, preReleaseSeparatorConstant)
}

type incrementState struct {
	major      uint64
	minor      uint64
	patch      uint64
	preRelease []string
}

func (state *incrementState) incrementPatch() {
	if len(state.preRelease) == 0 {
		state.patch++
	}
	state.preRelease = nil
}

func (state *incrementState) incrementMinor() {
	if state.patch != 0 || len(state.preRelease) == 0 {
		state.minor++
	}
	state.patch = 0
	state.preRelease = nil
}

// incrementMajor always advances the major field, so a pre-release of a
// major release such as 1.0.0-alpha.1 moves to 2.0.0.
func (state *incrementState) incrementMajor() {
	state.major++
	state.minor = 0
	state.patch = 0
	state.preRelease = nil
}

// incrementPreRelease bumps the last numeric identifier, or appends 0 when none is numeric.
// A differing identifier restarts the counter under the new identifier.
func (state *incrementState) incrementPreRelease(identifier string) {
	if len(state.preRelease) == 0 {
		state.preRelease = []string{"0"}
	} else {
		incremented := false
		for index := len(state.preRelease) - 1; index >= 0; index-- {
			numericValue, numeric := parseNumericIdentifier(state.preRelease[index])
			if !numeric {
				continue
			}
			state.preRelease[index] = strconv.FormatUint(numericValue+1, 10)
			incremented = true
			break
		}
		if !incremented {
			state.preRelease = append(state.preRelease, "0")
		}
	}

	if len(identifier) == 0 {
		return
	}

	if state.preRelease[0] == identifier {
		if len(state.preRelease) > 1 {
			if _, numeric := parseNumericIdentifier(state.preRelease[1]); numeric {
				return
			}
		}
	}
	state.preRelease = []string{identifier, "0"}
}

func (state *incrementState) String() string {
	base := fmt.Sprintf("%d.%d.%d", state.major, state.minor, state.patch)
	if len(state.preRelease) == 0 {
		return base
	}
	return base + "-" + strings.Join(state.preRelease, preReleaseSeparatorConstant)
}

func parseNumericIdentifier(identifier string) (uint64, bool) {
	if len(identifier) == 0 {
		return 0, false
	}
	for _, character := range identifier {
		if character < '0' || character > '9' {
			return 0, false
		}
	}
	numericValue, parseError := strconv.ParseUint(identifier, 10, 64)
	if parseError != nil {
		return 0, false
	}
	return numericValue, true
}
