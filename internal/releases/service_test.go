package releases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/gitrepo"
	"github.com/temirov/relkit/internal/manifest"
	"github.com/temirov/relkit/internal/prompt"
	"github.com/temirov/relkit/internal/publish"
	"github.com/temirov/relkit/internal/version"
)

const (
	testRepositoryPathConstant = "/repo"
	testManifestPathConstant   = "/repo/package.json"
)

type eventLog struct {
	events []string
}

func (log *eventLog) record(format string, arguments ...any) {
	log.events = append(log.events, fmt.Sprintf(format, arguments...))
}

type recordingExecutor struct {
	log      *eventLog
	failures map[string]error
}

func (executor *recordingExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	commandLine := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), " ")
	executor.log.record("exec:%s", commandLine)
	if failure, found := executor.failures[commandLine]; found {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{}, nil
}

type recordingRepository struct {
	log  *eventLog
	diff string
}

func (repository *recordingRepository) WorkingTreeDiff(context.Context) (string, error) {
	repository.log.record("git:diff")
	return repository.diff, nil
}

func (repository *recordingRepository) StageAll(context.Context) error {
	repository.log.record("git:add")
	return nil
}

func (repository *recordingRepository) Commit(_ context.Context, message string) error {
	repository.log.record("git:commit %s", message)
	return nil
}

func (repository *recordingRepository) CreateTag(_ context.Context, tagName string) error {
	repository.log.record("git:tag %s", tagName)
	return nil
}

func (repository *recordingRepository) PushTag(_ context.Context, remoteName string, tagName string) error {
	repository.log.record("git:push-tag %s %s", remoteName, tagName)
	return nil
}

func (repository *recordingRepository) Push(context.Context) error {
	repository.log.record("git:push")
	return nil
}

type stubManifestStore struct {
	log       *eventLog
	manifests map[string]manifest.Manifest
}

func (store *stubManifestStore) Load(path string) (manifest.Manifest, error) {
	loadedManifest, found := store.manifests[path]
	if !found {
		return manifest.Manifest{}, manifest.ReadError{Path: path, Cause: errors.New("not found")}
	}
	return loadedManifest, nil
}

func (store *stubManifestStore) SetVersion(path string, targetVersion string) error {
	store.log.record("set:%s=%s", path, targetVersion)
	return nil
}

type recordingPublisher struct {
	log      *eventLog
	outcomes map[string]publish.Outcome
}

func (publisher *recordingPublisher) Publish(_ context.Context, packageManifest manifest.Manifest, targetVersion string, explicitTag string) (publish.Outcome, error) {
	publisher.log.record("publish:%s@%s tag=%s", packageManifest.Name, targetVersion, explicitTag)
	if outcome, found := publisher.outcomes[packageManifest.Name]; found {
		return outcome, nil
	}
	return publish.OutcomePublished, nil
}

type stubInspector struct {
	existingTags map[string]bool
	lookupError  error
}

func (inspector stubInspector) CurrentBranch() (string, error) {
	return "main", nil
}

func (inspector stubInspector) TagExists(tagName string) (bool, error) {
	if inspector.lookupError != nil {
		return false, inspector.lookupError
	}
	return inspector.existingTags[tagName], nil
}

func (inspector stubInspector) RemoteURL(string) (gitrepo.RemoteURL, error) {
	return gitrepo.RemoteURL{Host: "github.com", Owner: "temirov", Repository: "relkit"}, nil
}

type scriptedPrompter struct {
	selection     string
	input         string
	confirmation  bool
	offered       []prompt.Option
	inputInitial  string
	confirmations []string
}

func (prompter *scriptedPrompter) Select(_ string, options []prompt.Option) (string, error) {
	prompter.offered = options
	return prompter.selection, nil
}

func (prompter *scriptedPrompter) Input(_ string, initial string) (string, error) {
	prompter.inputInitial = initial
	return prompter.input, nil
}

func (prompter *scriptedPrompter) Confirm(message string) (bool, error) {
	prompter.confirmations = append(prompter.confirmations, message)
	return prompter.confirmation, nil
}

type recordingReporter struct {
	lines []string
}

func (reporter *recordingReporter) Step(format string, arguments ...any) {
	reporter.lines = append(reporter.lines, "step: "+fmt.Sprintf(format, arguments...))
}

func (reporter *recordingReporter) Notice(format string, arguments ...any) {
	reporter.lines = append(reporter.lines, "notice: "+fmt.Sprintf(format, arguments...))
}

func (reporter *recordingReporter) Success(format string, arguments ...any) {
	reporter.lines = append(reporter.lines, "success: "+fmt.Sprintf(format, arguments...))
}

func (reporter *recordingReporter) Warning(format string, arguments ...any) {
	reporter.lines = append(reporter.lines, "warning: "+fmt.Sprintf(format, arguments...))
}

func (reporter *recordingReporter) DryRun(format string, arguments ...any) {
	reporter.lines = append(reporter.lines, "dryrun: "+fmt.Sprintf(format, arguments...))
}

func (reporter *recordingReporter) CommandPreviewed(commandLine string) {
	reporter.DryRun("%s", commandLine)
}

type serviceFixture struct {
	log        *eventLog
	executor   *recordingExecutor
	repository *recordingRepository
	manifests  *stubManifestStore
	publisher  *recordingPublisher
	prompter   *scriptedPrompter
	reporter   *recordingReporter
	inspector  RepositoryInspector
}

func newServiceFixture(currentVersion string) *serviceFixture {
	log := &eventLog{}
	return &serviceFixture{
		log:        log,
		executor:   &recordingExecutor{log: log, failures: map[string]error{}},
		repository: &recordingRepository{log: log, diff: "diff --git a/package.json b/package.json\n"},
		manifests: &stubManifestStore{log: log, manifests: map[string]manifest.Manifest{
			testManifestPathConstant: {Name: "demo", Version: currentVersion, Path: testManifestPathConstant, Directory: testRepositoryPathConstant},
		}},
		publisher: &recordingPublisher{log: log, outcomes: map[string]publish.Outcome{}},
		prompter:  &scriptedPrompter{confirmation: true},
		reporter:  &recordingReporter{},
		inspector: stubInspector{},
	}
}

func (fixture *serviceFixture) service(testInstance *testing.T) *Service {
	testInstance.Helper()
	service, serviceError := NewService(ServiceDependencies{
		Executor:   fixture.executor,
		Repository: fixture.repository,
		Inspector:  fixture.inspector,
		Manifests:  fixture.manifests,
		Publisher:  fixture.publisher,
		Prompter:   fixture.prompter,
		Reporter:   fixture.reporter,
		Logger:     zap.NewNop(),
	})
	require.NoError(testInstance, serviceError)
	return service
}

func fullOptions() Options {
	return Options{
		RepositoryPath: testRepositoryPathConstant,
		TargetVersion:  "1.1.0",
		AssumeYes:      true,
		Commands: Commands{
			Test:      []string{"npm", "test"},
			Build:     [][]string{{"npm", "run", "build"}, {"npm", "run", "build:types"}},
			Changelog: []string{"npm", "run", "changelog"},
		},
	}
}

var allStages = []Stage{
	StageResolveVersion,
	StageConfirm,
	StageTest,
	StageMutateManifests,
	StageBuild,
	StageChangelog,
	StageCommit,
	StagePublish,
	StageTagAndPush,
}

func TestReleaseRunsStagesInOrder(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")

	result, releaseError := fixture.service(testInstance).Release(context.Background(), fullOptions())
	require.NoError(testInstance, releaseError)

	require.Equal(testInstance, []string{
		"exec:npm test",
		"set:/repo/package.json=1.1.0",
		"exec:npm run build",
		"exec:npm run build:types",
		"exec:npm run changelog",
		"git:diff",
		"git:add",
		"git:commit release: v1.1.0",
		"publish:demo@1.1.0 tag=",
		"git:tag v1.1.0",
		"git:push-tag origin v1.1.0",
		"git:push",
	}, fixture.log.events)

	require.Equal(testInstance, OutcomeReleased, result.Outcome)
	require.Equal(testInstance, "1.0.0", result.CurrentVersion)
	require.Equal(testInstance, "1.1.0", result.TargetVersion)
	require.Equal(testInstance, "v1.1.0", result.TagName)
	require.True(testInstance, result.Committed)
	require.Equal(testInstance, allStages, result.CompletedStages)
	require.Equal(testInstance, []Publication{{PackageName: "demo", Path: testManifestPathConstant, Outcome: publish.OutcomePublished}}, result.Publications)
	require.Contains(testInstance, fixture.reporter.lines, "success: Released v1.1.0")
	require.Contains(testInstance, fixture.reporter.lines, "notice: Pushing to origin (github.com/temirov/relkit)")
	require.Empty(testInstance, fixture.prompter.confirmations)
}

func TestReleaseDryRunNeverMutatesOrExecutes(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	dryRunExecutor := execshell.NewDryRunExecutor(zap.NewNop(), fixture.reporter)
	repositoryManager, managerError := gitrepo.NewRepositoryManager(dryRunExecutor, testRepositoryPathConstant)
	require.NoError(testInstance, managerError)
	publisher, publisherError := publish.NewPublisher(dryRunExecutor, zap.NewNop(), nil)
	require.NoError(testInstance, publisherError)

	service, serviceError := NewService(ServiceDependencies{
		Executor:   dryRunExecutor,
		Repository: repositoryManager,
		Manifests:  fixture.manifests,
		Publisher:  publisher,
		Reporter:   fixture.reporter,
	})
	require.NoError(testInstance, serviceError)

	options := fullOptions()
	options.DryRun = true
	result, releaseError := service.Release(context.Background(), options)
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, OutcomeReleased, result.Outcome)
	require.True(testInstance, result.DryRun)
	require.False(testInstance, result.Committed)
	require.Equal(testInstance, []Publication{{PackageName: "demo", Path: testManifestPathConstant, Outcome: publish.OutcomePreviewed}}, result.Publications)

	require.Empty(testInstance, fixture.log.events)

	formatter := execshell.CommandMessageFormatter{}
	previewedLines := make([]string, 0)
	for _, command := range dryRunExecutor.RecordedCommands() {
		previewedLines = append(previewedLines, formatter.FormatCommandLine(command))
	}
	require.Equal(testInstance, []string{
		"npm test",
		"npm run build",
		"npm run build:types",
		"npm run changelog",
		"git add -A",
		"git commit -m 'release: v1.1.0'",
		"npm publish --access public",
		"git tag v1.1.0",
		"git push origin refs/tags/v1.1.0",
		"git push",
	}, previewedLines)
	require.Contains(testInstance, fixture.reporter.lines, "dryrun: set version of /repo/package.json from 1.0.0 to 1.1.0")
	require.Contains(testInstance, fixture.reporter.lines, "dryrun: git tag v1.1.0 (in /repo)")
}

func TestReleaseSkipsCommitWhenWorkingTreeIsClean(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	fixture.repository.diff = "  \n"

	result, releaseError := fixture.service(testInstance).Release(context.Background(), fullOptions())
	require.NoError(testInstance, releaseError)
	require.False(testInstance, result.Committed)
	require.NotContains(testInstance, fixture.log.events, "git:add")
	require.NotContains(testInstance, fixture.log.events, "git:commit release: v1.1.0")
	require.Contains(testInstance, fixture.log.events, "git:tag v1.1.0")
	require.Contains(testInstance, fixture.reporter.lines, "notice: No changes to commit")
}

func TestReleaseDeclineLeavesEverythingUnchanged(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	fixture.prompter.confirmation = false

	options := fullOptions()
	options.AssumeYes = false
	result, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, OutcomeDeclined, result.Outcome)
	require.Equal(testInstance, []string{"Releasing v1.1.0. Confirm?"}, fixture.prompter.confirmations)
	require.Empty(testInstance, fixture.log.events)
	require.Equal(testInstance, []Stage{StageResolveVersion}, result.CompletedStages)
}

func TestReleasePromptsForReleaseType(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	fixture.prompter.selection = string(version.BumpMinor)

	options := fullOptions()
	options.TargetVersion = ""
	result, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, "1.1.0", result.TargetVersion)

	require.Equal(testInstance, []prompt.Option{
		{Label: "patch (1.0.1)", Value: "patch"},
		{Label: "minor (1.1.0)", Value: "minor"},
		{Label: "major (2.0.0)", Value: "major"},
		{Label: "custom", Value: "custom"},
	}, fixture.prompter.offered)
}

func TestReleaseAcceptsCustomVersion(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	fixture.prompter.selection = "custom"
	fixture.prompter.input = "v2.0.0-rc.0"

	options := fullOptions()
	options.TargetVersion = ""
	result, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, "1.0.0", fixture.prompter.inputInitial)
	require.Equal(testInstance, "2.0.0-rc.0", result.TargetVersion)
	require.Equal(testInstance, "v2.0.0-rc.0", result.TagName)
}

func TestReleaseDerivesPreReleaseIdentifierFromCurrentVersion(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0-alpha.1")
	fixture.prompter.selection = string(version.BumpPrerelease)

	options := fullOptions()
	options.TargetVersion = ""
	result, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, "1.0.0-alpha.2", result.TargetVersion)
	require.Contains(testInstance, fixture.prompter.offered, prompt.Option{Label: "prerelease (1.0.0-alpha.2)", Value: "prerelease"})
}

func TestReleaseHonorsSkipFlags(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")

	options := fullOptions()
	options.SkipTests = true
	options.SkipBuild = true
	options.SkipChangelog = true
	_, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.NoError(testInstance, releaseError)

	for _, event := range fixture.log.events {
		require.False(testInstance, strings.HasPrefix(event, "exec:"), event)
	}
	require.Contains(testInstance, fixture.reporter.lines, "notice: Skipping tests")
	require.Contains(testInstance, fixture.reporter.lines, "notice: Skipping build")
	require.Contains(testInstance, fixture.reporter.lines, "notice: Skipping changelog")
}

func TestReleaseStopsAtFailedStage(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	buildFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandNPM, Details: execshell.CommandDetails{Arguments: []string{"run", "build:types"}}},
		Result:  execshell.ExecutionResult{ExitCode: 2, StandardError: "tsc: error TS2304"},
	}
	fixture.executor.failures["npm run build:types"] = buildFailure

	result, releaseError := fixture.service(testInstance).Release(context.Background(), fullOptions())
	var stageError StageError
	require.ErrorAs(testInstance, releaseError, &stageError)
	require.Equal(testInstance, StageBuild, stageError.Stage)
	require.ErrorAs(testInstance, releaseError, &buildFailure)
	require.ErrorContains(testInstance, releaseError, "release stage build failed")

	require.Equal(testInstance, OutcomeFailed, result.Outcome)
	require.Equal(testInstance, StageBuild, result.FailedStage)
	require.Equal(testInstance, []Stage{StageResolveVersion, StageConfirm, StageTest, StageMutateManifests}, result.CompletedStages)
	require.Equal(testInstance, "exec:npm run build:types", fixture.log.events[len(fixture.log.events)-1])
}

func TestReleaseRejectsExistingTag(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	fixture.inspector = stubInspector{existingTags: map[string]bool{"v1.1.0": true}}

	result, releaseError := fixture.service(testInstance).Release(context.Background(), fullOptions())
	var existsError gitrepo.TagExistsError
	require.ErrorAs(testInstance, releaseError, &existsError)
	require.Equal(testInstance, "v1.1.0", existsError.Tag)
	require.Equal(testInstance, StageResolveVersion, result.FailedStage)
	require.Empty(testInstance, fixture.log.events)
}

func TestReleaseContinuesWhenTagLookupFails(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	fixture.inspector = stubInspector{lookupError: errors.New("corrupt packed-refs")}

	result, releaseError := fixture.service(testInstance).Release(context.Background(), fullOptions())
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, OutcomeReleased, result.Outcome)
}

func TestReleaseRejectsInvalidTargetVersion(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")

	options := fullOptions()
	options.TargetVersion = "1.2"
	_, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.ErrorAs(testInstance, releaseError, new(version.InvalidVersionError))
	require.Empty(testInstance, fixture.log.events)
}

func TestReleaseReportsMissingManifest(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")

	options := fullOptions()
	options.Manifests = []string{"packages/missing/package.json"}
	_, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	var readError manifest.ReadError
	require.ErrorAs(testInstance, releaseError, &readError)
	require.Equal(testInstance, "/repo/packages/missing/package.json", readError.Path)
}

func TestReleaseWarnsWhenTargetDoesNotExceedCurrent(testInstance *testing.T) {
	fixture := newServiceFixture("1.1.0")

	_, releaseError := fixture.service(testInstance).Release(context.Background(), fullOptions())
	require.NoError(testInstance, releaseError)
	require.Contains(testInstance, fixture.reporter.lines, "warning: target version 1.1.0 does not exceed current version 1.1.0")
}

func TestReleaseRecordsPublishSkips(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	fixture.manifests.manifests["/repo/packages/internal/package.json"] = manifest.Manifest{Name: "internal", Version: "1.0.0", Private: true, Path: "/repo/packages/internal/package.json"}
	fixture.publisher.outcomes["internal"] = publish.OutcomeSkippedPrivate
	fixture.publisher.outcomes["demo"] = publish.OutcomeSkippedAlreadyPublished

	options := fullOptions()
	options.Manifests = []string{"package.json", "packages/internal/package.json", "package.json"}
	options.DistributionTag = "next"
	result, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.NoError(testInstance, releaseError)

	require.Equal(testInstance, []Publication{
		{PackageName: "demo", Path: testManifestPathConstant, Outcome: publish.OutcomeSkippedAlreadyPublished},
		{PackageName: "internal", Path: "/repo/packages/internal/package.json", Outcome: publish.OutcomeSkippedPrivate},
	}, result.Publications)
	require.Contains(testInstance, fixture.log.events, "publish:demo@1.1.0 tag=next")
	require.Contains(testInstance, fixture.log.events, "set:/repo/packages/internal/package.json=1.1.0")
	require.Contains(testInstance, fixture.log.events, "git:tag v1.1.0")
}

func TestReleaseUsesConfiguredTagAndCommitTemplate(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")

	options := fullOptions()
	options.TagPrefix = "release-"
	options.RemoteName = "upstream"
	options.CommitMessageTemplate = "chore: publish {version} as {tag}"
	result, releaseError := fixture.service(testInstance).Release(context.Background(), options)
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, "release-1.1.0", result.TagName)
	require.Contains(testInstance, fixture.log.events, "git:commit chore: publish 1.1.0 as release-1.1.0")
	require.Contains(testInstance, fixture.log.events, "git:push-tag upstream release-1.1.0")
}

func TestReleaseRequiresPrompterForInteractiveDecisions(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	service, serviceError := NewService(ServiceDependencies{
		Executor:   fixture.executor,
		Repository: fixture.repository,
		Manifests:  fixture.manifests,
		Publisher:  fixture.publisher,
	})
	require.NoError(testInstance, serviceError)

	options := fullOptions()
	options.TargetVersion = ""
	_, releaseError := service.Release(context.Background(), options)
	require.ErrorIs(testInstance, releaseError, ErrPrompterNotConfigured)

	options = fullOptions()
	options.AssumeYes = false
	result, confirmError := service.Release(context.Background(), options)
	require.ErrorIs(testInstance, confirmError, ErrPrompterNotConfigured)
	require.Equal(testInstance, StageConfirm, result.FailedStage)
}

func TestReleaseStopsWhenContextIsCancelled(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")
	executionContext, cancel := context.WithCancel(context.Background())
	cancel()

	result, releaseError := fixture.service(testInstance).Release(executionContext, fullOptions())
	require.ErrorIs(testInstance, releaseError, context.Canceled)
	require.Equal(testInstance, StageResolveVersion, result.FailedStage)
	require.Empty(testInstance, fixture.log.events)
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	fixture := newServiceFixture("1.0.0")

	testCases := []struct {
		name          string
		dependencies  ServiceDependencies
		expectedError error
	}{
		{name: "executor", dependencies: ServiceDependencies{Repository: fixture.repository, Manifests: fixture.manifests, Publisher: fixture.publisher}, expectedError: ErrExecutorNotConfigured},
		{name: "repository", dependencies: ServiceDependencies{Executor: fixture.executor, Manifests: fixture.manifests, Publisher: fixture.publisher}, expectedError: ErrRepositoryNotConfigured},
		{name: "manifests", dependencies: ServiceDependencies{Executor: fixture.executor, Repository: fixture.repository, Publisher: fixture.publisher}, expectedError: ErrManifestsNotConfigured},
		{name: "publisher", dependencies: ServiceDependencies{Executor: fixture.executor, Repository: fixture.repository, Manifests: fixture.manifests}, expectedError: ErrPublisherNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, serviceError := NewService(testCase.dependencies)
			require.ErrorIs(testInstance, serviceError, testCase.expectedError)
		})
	}
}
