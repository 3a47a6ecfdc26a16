package releases

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/relkit/internal/gitrepo"
	"github.com/temirov/relkit/internal/manifest"
	"github.com/temirov/relkit/internal/prompt"
	"github.com/temirov/relkit/internal/publish"
)

const (
	stageErrorTemplateConstant             = "release stage %s failed: %v"
	executorNotConfiguredMessageConstant   = "release executor not configured"
	repositoryNotConfiguredMessageConstant = "repository operations not configured"
	manifestsNotConfiguredMessageConstant  = "manifest store not configured"
	publisherNotConfiguredMessageConstant  = "package publisher not configured"
	prompterNotConfiguredMessageConstant   = "no prompter available: supply a version and --yes"
)

// Stage identifies a step of the release pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageResolveVersion  Stage = "resolve_version"
	StageConfirm         Stage = "confirm"
	StageTest            Stage = "test"
	StageMutateManifests Stage = "mutate_manifests"
	StageBuild           Stage = "build"
	StageChangelog       Stage = "changelog"
	StageCommit          Stage = "commit"
	StagePublish         Stage = "publish"
	StageTagAndPush      Stage = "tag_and_push"
)

// Outcome is the terminal state of a release run.
type Outcome string

// Terminal states.
const (
	OutcomeReleased Outcome = "released"
	OutcomeDeclined Outcome = "declined"
	OutcomeFailed   Outcome = "failed"
)

// Commands lists the external command lines run by the pipeline. Each command
// line is split into words; the first word is the executable.
type Commands struct {
	Test      []string
	Build     [][]string
	Changelog []string
}

// Options configures a release run. It is built once and passed by value.
type Options struct {
	RepositoryPath        string
	Manifests             []string
	TargetVersion         string
	PreReleaseIdentifier  string
	DistributionTag       string
	RemoteName            string
	TagPrefix             string
	CommitMessageTemplate string
	Commands              Commands
	DryRun                bool
	SkipTests             bool
	SkipBuild             bool
	SkipChangelog         bool
	AssumeYes             bool
}

// Publication records the publish outcome of one manifest.
type Publication struct {
	PackageName string
	Path        string
	Outcome     publish.Outcome
}

// Result summarizes a release run.
type Result struct {
	Outcome         Outcome
	CurrentVersion  string
	TargetVersion   string
	TagName         string
	DryRun          bool
	Committed       bool
	CompletedStages []Stage
	FailedStage     Stage
	Publications    []Publication
}

// StageError wraps the failure that stopped the pipeline.
type StageError struct {
	Stage Stage
	Cause error
}

// Error describes the failed stage.
func (stageError StageError) Error() string {
	return fmt.Sprintf(stageErrorTemplateConstant, stageError.Stage, stageError.Cause)
}

// Unwrap exposes the underlying cause.
func (stageError StageError) Unwrap() error {
	return stageError.Cause
}

var (
	// ErrExecutorNotConfigured indicates a missing command executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrRepositoryNotConfigured indicates missing git operations.
	ErrRepositoryNotConfigured = errors.New(repositoryNotConfiguredMessageConstant)
	// ErrManifestsNotConfigured indicates a missing manifest store.
	ErrManifestsNotConfigured = errors.New(manifestsNotConfiguredMessageConstant)
	// ErrPublisherNotConfigured indicates a missing publisher.
	ErrPublisherNotConfigured = errors.New(publisherNotConfiguredMessageConstant)
	// ErrPrompterNotConfigured indicates an interactive answer was needed without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterNotConfiguredMessageConstant)
)

// RepositoryOperations performs the git mutations of a release.
type RepositoryOperations interface {
	WorkingTreeDiff(executionContext context.Context) (string, error)
	StageAll(executionContext context.Context) error
	Commit(executionContext context.Context, message string) error
	CreateTag(executionContext context.Context, tagName string) error
	PushTag(executionContext context.Context, remoteName string, tagName string) error
	Push(executionContext context.Context) error
}

// RepositoryInspector answers read-only repository questions.
type RepositoryInspector interface {
	CurrentBranch() (string, error)
	TagExists(tagName string) (bool, error)
	RemoteURL(remoteName string) (gitrepo.RemoteURL, error)
}

// ManifestStore loads manifests and rewrites their version.
type ManifestStore interface {
	Load(path string) (manifest.Manifest, error)
	SetVersion(path string, version string) error
}

// PackagePublisher publishes one manifest.
type PackagePublisher interface {
	Publish(executionContext context.Context, packageManifest manifest.Manifest, version string, explicitTag string) (publish.Outcome, error)
}

// Prompter asks the operator for decisions.
type Prompter interface {
	Select(message string, options []prompt.Option) (string, error)
	Input(message string, initial string) (string, error)
	Confirm(message string) (bool, error)
}

// Reporter renders human-facing progress lines.
type Reporter interface {
	Step(format string, arguments ...any)
	Notice(format string, arguments ...any)
	Success(format string, arguments ...any)
	Warning(format string, arguments ...any)
	DryRun(format string, arguments ...any)
}

type noopReporter struct{}

func (noopReporter) Step(string, ...any) {}
func (noopReporter) Notice(string, ...any) {}
func (noopReporter) Success(string, ...any) {}
func (noopReporter) Warning(string, ...any) {}
func (noopReporter) DryRun(string, ...any) {}
