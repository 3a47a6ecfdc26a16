package version

import (
	"fmt"
	"strings"
)

// BumpKind enumerates the supported version increments.
type BumpKind string

// Supported bump kinds.
const (
	BumpPatch      BumpKind = "patch"
	BumpMinor      BumpKind = "minor"
	BumpMajor      BumpKind = "major"
	BumpPrePatch   BumpKind = "prepatch"
	BumpPreMinor   BumpKind = "preminor"
	BumpPreMajor   BumpKind = "premajor"
	BumpPrerelease BumpKind = "prerelease"
)

var (
	stableBumpKinds     = []BumpKind{BumpPatch, BumpMinor, BumpMajor}
	preReleaseBumpKinds = []BumpKind{BumpPrePatch, BumpPreMinor, BumpPreMajor, BumpPrerelease}
)

// ParseBumpKind converts user input into a BumpKind.
func ParseBumpKind(value string) (BumpKind, error) {
	normalized := BumpKind(strings.ToLower(strings.TrimSpace(value)))
	for _, kind := range append(append([]BumpKind{}, stableBumpKinds...), preReleaseBumpKinds...) {
		if kind == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf(unknownBumpKindTemplateConstant, value)
}

// AvailableKinds lists the bump kinds offered for the given pre-release identifier.
func AvailableKinds(preReleaseIdentifier string) []BumpKind {
	kinds := append([]BumpKind{}, stableBumpKinds...)
	if len(strings.TrimSpace(preReleaseIdentifier)) > 0 {
		kinds = append(kinds, preReleaseBumpKinds...)
	}
	return kinds
}
