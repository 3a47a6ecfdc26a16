// Package version computes release versions. It validates semantic version
// strings with Masterminds/semver and applies npm-style increment rules
// when bumping a package, including pre-release identifiers and counters.
package version
