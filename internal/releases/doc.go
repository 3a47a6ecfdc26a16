// Package releases orchestrates a package release: it resolves the next
// version, confirms it, runs tests and builds, rewrites manifests, commits,
// publishes and pushes a tag. Stages run strictly in order and the first
// failure stops the run.
package releases
