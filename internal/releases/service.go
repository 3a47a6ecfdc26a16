package releases

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/gitrepo"
	"github.com/temirov/relkit/internal/manifest"
	"github.com/temirov/relkit/internal/prompt"
	"github.com/temirov/relkit/internal/publish"
	"github.com/temirov/relkit/internal/version"
)

const (
	defaultRemoteNameConstant                = "origin"
	defaultTagPrefixConstant                 = "v"
	defaultCommitMessageTemplateConstant     = "release: {tag}"
	commitTemplateTagPlaceholderConstant     = "{tag}"
	commitTemplateVersionPlaceholderConstant = "{version}"
	customVersionOptionValueConstant         = "custom"
	selectReleaseTypeMessageConstant         = "Select release type"
	candidateLabelTemplateConstant           = "%s (%s)"
	customVersionInputMessageConstant        = "Enter version"
	confirmReleaseTemplateConstant           = "Releasing %s. Confirm?"
	logFieldStageConstant                    = "stage"
	logFieldVersionConstant                  = "version"
	logFieldTagConstant                      = "tag"
	logFieldPathConstant                     = "path"
	stageCompletedLogMessageConstant         = "release stage completed"
	stageFailedLogMessageConstant            = "release stage failed"
	inspectionFailedLogMessageConstant       = "repository inspection failed"
	releaseDeclinedLogMessageConstant        = "release declined"
	unknownCandidateTemplateConstant         = "unknown release type %q"
)

var errReleaseDeclined = errors.New(releaseDeclinedLogMessageConstant)

// ServiceDependencies enumerates the collaborators required by Service.
type ServiceDependencies struct {
	Executor   execshell.Executor
	Repository RepositoryOperations
	Inspector  RepositoryInspector
	Manifests  ManifestStore
	Publisher  PackagePublisher
	Prompter   Prompter
	Reporter   Reporter
	Logger     *zap.Logger
}

// Service runs the release pipeline.
type Service struct {
	executor   execshell.Executor
	repository RepositoryOperations
	inspector  RepositoryInspector
	manifests  ManifestStore
	publisher  PackagePublisher
	prompter   Prompter
	reporter   Reporter
	logger     *zap.Logger
}

// NewService validates dependencies and constructs a Service. Inspector,
// Prompter, Reporter and Logger are optional.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.Manifests == nil {
		return nil, ErrManifestsNotConfigured
	}
	if dependencies.Publisher == nil {
		return nil, ErrPublisherNotConfigured
	}

	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = noopReporter{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		executor:   dependencies.Executor,
		repository: dependencies.Repository,
		inspector:  dependencies.Inspector,
		manifests:  dependencies.Manifests,
		publisher:  dependencies.Publisher,
		prompter:   dependencies.Prompter,
		reporter:   reporter,
		logger:     logger,
	}, nil
}

type releaseStage struct {
	stage Stage
	run   func(executionContext context.Context, run *releaseRun) error
}

type releaseRun struct {
	options   Options
	manifests []manifest.Manifest
	result    Result
}

// Release executes every stage in order and stops at the first failure.
// Declining the confirmation ends the run with OutcomeDeclined and no error.
func (service *Service) Release(executionContext context.Context, options Options) (Result, error) {
	run := &releaseRun{options: normalizeOptions(options)}
	run.result.DryRun = run.options.DryRun

	stages := []releaseStage{
		{stage: StageResolveVersion, run: service.resolveVersion},
		{stage: StageConfirm, run: service.confirm},
		{stage: StageTest, run: service.runTests},
		{stage: StageMutateManifests, run: service.mutateManifests},
		{stage: StageBuild, run: service.build},
		{stage: StageChangelog, run: service.generateChangelog},
		{stage: StageCommit, run: service.commitIfDirty},
		{stage: StagePublish, run: service.publishPackages},
		{stage: StageTagAndPush, run: service.tagAndPush},
	}

	for _, pipelineStage := range stages {
		stageError := executionContext.Err()
		if stageError == nil {
			stageError = pipelineStage.run(executionContext, run)
		}
		if errors.Is(stageError, errReleaseDeclined) {
			service.logger.Info(releaseDeclinedLogMessageConstant, zap.String(logFieldTagConstant, run.result.TagName))
			run.result.Outcome = OutcomeDeclined
			return run.result, nil
		}
		if stageError != nil {
			service.logger.Error(stageFailedLogMessageConstant, zap.String(logFieldStageConstant, string(pipelineStage.stage)), zap.Error(stageError))
			run.result.Outcome = OutcomeFailed
			run.result.FailedStage = pipelineStage.stage
			return run.result, StageError{Stage: pipelineStage.stage, Cause: stageError}
		}
		service.logger.Debug(stageCompletedLogMessageConstant, zap.String(logFieldStageConstant, string(pipelineStage.stage)))
		run.result.CompletedStages = append(run.result.CompletedStages, pipelineStage.stage)
	}

	run.result.Outcome = OutcomeReleased
	if run.options.DryRun {
		service.reporter.Success("Dry run of %s complete; nothing was changed", run.result.TagName)
	} else {
		service.reporter.Success("Released %s", run.result.TagName)
	}
	return run.result, nil
}

func (service *Service) resolveVersion(_ context.Context, run *releaseRun) error {
	for _, manifestPath := range run.options.Manifests {
		loadedManifest, loadError := service.manifests.Load(manifestPath)
		if loadError != nil {
			return loadError
		}
		run.manifests = append(run.manifests, loadedManifest)
	}

	currentVersion := run.manifests[0].Version
	run.result.CurrentVersion = currentVersion

	preReleaseIdentifier := run.options.PreReleaseIdentifier
	if len(preReleaseIdentifier) == 0 {
		preReleaseIdentifier = version.PreReleaseIdentifier(currentVersion)
	}

	requestedVersion := run.options.TargetVersion
	if len(requestedVersion) == 0 {
		selectedVersion, selectionError := service.selectVersion(currentVersion, preReleaseIdentifier)
		if selectionError != nil {
			return selectionError
		}
		requestedVersion = selectedVersion
	}

	targetVersion, validationError := version.Validate(requestedVersion)
	if validationError != nil {
		return validationError
	}
	run.result.TargetVersion = targetVersion
	run.result.TagName = run.options.TagPrefix + targetVersion

	if comparison, compareError := version.Compare(targetVersion, currentVersion); compareError == nil && comparison <= 0 {
		service.reporter.Warning("target version %s does not exceed current version %s", targetVersion, currentVersion)
	}

	return service.inspectRepository(run)
}

func (service *Service) selectVersion(currentVersion string, preReleaseIdentifier string) (string, error) {
	if service.prompter == nil {
		return "", ErrPrompterNotConfigured
	}

	candidates, candidatesError := version.Candidates(currentVersion, preReleaseIdentifier)
	if candidatesError != nil {
		return "", candidatesError
	}

	options := make([]prompt.Option, 0, len(candidates)+1)
	for _, candidate := range candidates {
		options = append(options, prompt.Option{
			Label: fmt.Sprintf(candidateLabelTemplateConstant, candidate.Kind, candidate.Version),
			Value: string(candidate.Kind),
		})
	}
	options = append(options, prompt.Option{Label: customVersionOptionValueConstant, Value: customVersionOptionValueConstant})

	selection, selectionError := service.prompter.Select(selectReleaseTypeMessageConstant, options)
	if selectionError != nil {
		return "", selectionError
	}
	if selection == customVersionOptionValueConstant {
		return service.prompter.Input(customVersionInputMessageConstant, currentVersion)
	}
	for _, candidate := range candidates {
		if string(candidate.Kind) == selection {
			return candidate.Version, nil
		}
	}
	return "", fmt.Errorf(unknownCandidateTemplateConstant, selection)
}

func (service *Service) inspectRepository(run *releaseRun) error {
	if service.inspector == nil {
		return nil
	}

	tagExists, tagLookupError := service.inspector.TagExists(run.result.TagName)
	if tagLookupError != nil {
		service.logger.Warn(inspectionFailedLogMessageConstant, zap.String(logFieldTagConstant, run.result.TagName), zap.Error(tagLookupError))
		return nil
	}
	if tagExists {
		return gitrepo.TagExistsError{Tag: run.result.TagName}
	}

	if branch, branchError := service.inspector.CurrentBranch(); branchError == nil && len(branch) > 0 {
		service.reporter.Notice("On branch %s", branch)
	}
	if remote, remoteError := service.inspector.RemoteURL(run.options.RemoteName); remoteError == nil {
		service.reporter.Notice("Pushing to %s (%s)", run.options.RemoteName, remote)
	} else {
		service.logger.Debug(inspectionFailedLogMessageConstant, zap.Error(remoteError))
	}
	return nil
}

func (service *Service) confirm(_ context.Context, run *releaseRun) error {
	if run.options.AssumeYes {
		return nil
	}
	if service.prompter == nil {
		return ErrPrompterNotConfigured
	}

	confirmed, confirmError := service.prompter.Confirm(fmt.Sprintf(confirmReleaseTemplateConstant, run.result.TagName))
	if confirmError != nil {
		return confirmError
	}
	if !confirmed {
		service.reporter.Notice("Release of %s cancelled", run.result.TagName)
		return errReleaseDeclined
	}
	return nil
}

func (service *Service) runTests(executionContext context.Context, run *releaseRun) error {
	if run.options.SkipTests {
		service.reporter.Notice("Skipping tests")
		return nil
	}
	if len(run.options.Commands.Test) == 0 {
		service.reporter.Notice("No test command configured")
		return nil
	}
	service.reporter.Step("Running tests")
	return service.runCommand(executionContext, run, run.options.Commands.Test)
}

func (service *Service) mutateManifests(_ context.Context, run *releaseRun) error {
	service.reporter.Step("Updating version to %s", run.result.TargetVersion)
	for _, packageManifest := range run.manifests {
		if run.options.DryRun {
			service.reporter.DryRun("set version of %s from %s to %s", packageManifest.Path, packageManifest.Version, run.result.TargetVersion)
			continue
		}
		if updateError := service.manifests.SetVersion(packageManifest.Path, run.result.TargetVersion); updateError != nil {
			return updateError
		}
		service.logger.Info("manifest version updated", zap.String(logFieldPathConstant, packageManifest.Path), zap.String(logFieldVersionConstant, run.result.TargetVersion))
	}
	return nil
}

func (service *Service) build(executionContext context.Context, run *releaseRun) error {
	if run.options.SkipBuild {
		service.reporter.Notice("Skipping build")
		return nil
	}
	if len(run.options.Commands.Build) == 0 {
		service.reporter.Notice("No build commands configured")
		return nil
	}
	service.reporter.Step("Building")
	for _, commandLine := range run.options.Commands.Build {
		if commandError := service.runCommand(executionContext, run, commandLine); commandError != nil {
			return commandError
		}
	}
	return nil
}

func (service *Service) generateChangelog(executionContext context.Context, run *releaseRun) error {
	if run.options.SkipChangelog {
		service.reporter.Notice("Skipping changelog")
		return nil
	}
	if len(run.options.Commands.Changelog) == 0 {
		service.reporter.Notice("No changelog command configured")
		return nil
	}
	service.reporter.Step("Generating changelog")
	return service.runCommand(executionContext, run, run.options.Commands.Changelog)
}

func (service *Service) commitIfDirty(executionContext context.Context, run *releaseRun) error {
	commitMessage := formatCommitMessage(run.options.CommitMessageTemplate, run.result.TagName, run.result.TargetVersion)

	if run.options.DryRun {
		service.reporter.DryRun("git diff (commit only when the working tree changed)")
	} else {
		diff, diffError := service.repository.WorkingTreeDiff(executionContext)
		if diffError != nil {
			return diffError
		}
		if len(strings.TrimSpace(diff)) == 0 {
			service.reporter.Notice("No changes to commit")
			return nil
		}
	}

	service.reporter.Step("Committing release changes")
	if stageError := service.repository.StageAll(executionContext); stageError != nil {
		return stageError
	}
	if commitError := service.repository.Commit(executionContext, commitMessage); commitError != nil {
		return commitError
	}
	run.result.Committed = !run.options.DryRun
	return nil
}

func (service *Service) publishPackages(executionContext context.Context, run *releaseRun) error {
	service.reporter.Step("Publishing packages")
	for _, packageManifest := range run.manifests {
		outcome, publishError := service.publisher.Publish(executionContext, packageManifest, run.result.TargetVersion, run.options.DistributionTag)
		if publishError != nil {
			return publishError
		}
		if run.options.DryRun && outcome == publish.OutcomePublished {
			outcome = publish.OutcomePreviewed
		}
		run.result.Publications = append(run.result.Publications, Publication{PackageName: packageManifest.Name, Path: packageManifest.Path, Outcome: outcome})

		switch outcome {
		case publish.OutcomeSkippedPrivate:
			service.reporter.Notice("Skipping private package %s", packageManifest.Name)
		case publish.OutcomeSkippedAlreadyPublished:
			service.reporter.Warning("%s@%s was previously published, skipping", packageManifest.Name, run.result.TargetVersion)
		}
	}
	return nil
}

func (service *Service) tagAndPush(executionContext context.Context, run *releaseRun) error {
	service.reporter.Step("Tagging %s and pushing to %s", run.result.TagName, run.options.RemoteName)
	if tagError := service.repository.CreateTag(executionContext, run.result.TagName); tagError != nil {
		return tagError
	}
	if pushTagError := service.repository.PushTag(executionContext, run.options.RemoteName, run.result.TagName); pushTagError != nil {
		return pushTagError
	}
	return service.repository.Push(executionContext)
}

func (service *Service) runCommand(executionContext context.Context, run *releaseRun, commandLine []string) error {
	command, commandError := execshell.NewShellCommand(commandLine, execshell.CommandDetails{
		WorkingDirectory: run.options.RepositoryPath,
		StreamOutput:     true,
	})
	if commandError != nil {
		return commandError
	}
	_, executionError := service.executor.Execute(executionContext, command)
	return executionError
}

func normalizeOptions(options Options) Options {
	normalized := options
	normalized.RepositoryPath = strings.TrimSpace(options.RepositoryPath)
	normalized.TargetVersion = strings.TrimSpace(options.TargetVersion)
	normalized.PreReleaseIdentifier = strings.TrimSpace(options.PreReleaseIdentifier)
	normalized.DistributionTag = strings.TrimSpace(options.DistributionTag)

	normalized.RemoteName = strings.TrimSpace(options.RemoteName)
	if len(normalized.RemoteName) == 0 {
		normalized.RemoteName = defaultRemoteNameConstant
	}
	if len(options.TagPrefix) == 0 {
		normalized.TagPrefix = defaultTagPrefixConstant
	}
	if len(strings.TrimSpace(options.CommitMessageTemplate)) == 0 {
		normalized.CommitMessageTemplate = defaultCommitMessageTemplateConstant
	}

	manifestPaths := make([]string, 0, len(options.Manifests))
	seenPaths := make(map[string]struct{}, len(options.Manifests))
	for _, manifestPath := range options.Manifests {
		trimmedPath := strings.TrimSpace(manifestPath)
		if len(trimmedPath) == 0 {
			continue
		}
		if !filepath.IsAbs(trimmedPath) && len(normalized.RepositoryPath) > 0 {
			trimmedPath = filepath.Join(normalized.RepositoryPath, trimmedPath)
		}
		if _, seen := seenPaths[trimmedPath]; seen {
			continue
		}
		seenPaths[trimmedPath] = struct{}{}
		manifestPaths = append(manifestPaths, trimmedPath)
	}
	if len(manifestPaths) == 0 {
		manifestPaths = append(manifestPaths, filepath.Join(normalized.RepositoryPath, manifest.DefaultFileName))
	}
	normalized.Manifests = manifestPaths

	return normalized
}

func formatCommitMessage(template string, tagName string, targetVersion string) string {
	message := strings.ReplaceAll(template, commitTemplateTagPlaceholderConstant, tagName)
	return strings.ReplaceAll(message, commitTemplateVersionPlaceholderConstant, targetVersion)
}
