package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/manifest"
)

const (
	distributionTagFlagConstant            = "--tag"
	previouslyPublishedFragmentConstant    = "previously published"
	publishFailedErrorTemplateConstant     = "publishing %s@%s failed: %v"
	executorNotConfiguredMessageConstant   = "publish executor not configured"
	loggerNotConfiguredMessageConstant     = "publish logger not configured"
	emptyPublishCommandMessageConstant     = "publish command is empty"
	skippedPrivateMessageConstant          = "skipping private package"
	skippedAlreadyPublishedMessageConstant = "version already published, skipping"
	publishedMessageConstant               = "package published"
	logFieldPackageConstant                = "package"
	logFieldVersionConstant                = "version"
	logFieldDistributionTagConstant        = "dist_tag"
)

// Outcome classifies the result of publishing one manifest.
type Outcome string

// Publish outcomes.
const (
	OutcomePublished               Outcome = "published"
	OutcomeSkippedPrivate          Outcome = "skipped_private"
	OutcomeSkippedAlreadyPublished Outcome = "skipped_already_published"
	OutcomePreviewed               Outcome = "previewed"
)

var prereleaseDistributionTags = []string{"alpha", "beta", "rc"}

// DefaultCommand is the registry publish invocation used when none is configured.
var DefaultCommand = []string{"npm", "publish", "--access", "public"}

var (
	// ErrExecutorNotConfigured indicates a missing command executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrEmptyPublishCommand indicates a publish command without an executable.
	ErrEmptyPublishCommand = errors.New(emptyPublishCommandMessageConstant)
)

// PublishFailedError reports a registry failure that is not a previously-published rejection.
type PublishFailedError struct {
	PackageName string
	Version     string
	Cause       error
}

// Error describes the publish failure.
func (failedError PublishFailedError) Error() string {
	return fmt.Sprintf(publishFailedErrorTemplateConstant, failedError.PackageName, failedError.Version, failedError.Cause)
}

// Unwrap exposes the underlying command failure.
func (failedError PublishFailedError) Unwrap() error {
	return failedError.Cause
}

// Publisher runs the publish command for package manifests.
type Publisher struct {
	executor execshell.Executor
	logger   *zap.Logger
	command  []string
}

// NewPublisher constructs a Publisher; an empty command falls back to DefaultCommand.
func NewPublisher(executor execshell.Executor, logger *zap.Logger, command []string) (*Publisher, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if len(command) == 0 {
		command = DefaultCommand
	}
	if len(strings.TrimSpace(command[0])) == 0 {
		return nil, ErrEmptyPublishCommand
	}
	return &Publisher{executor: executor, logger: logger, command: append([]string{}, command...)}, nil
}

// Publish publishes the manifest at the given version.
func (publisher *Publisher) Publish(executionContext context.Context, packageManifest manifest.Manifest, version string, explicitTag string) (Outcome, error) {
	logFields := []zap.Field{
		zap.String(logFieldPackageConstant, packageManifest.Name),
		zap.String(logFieldVersionConstant, version),
	}

	if packageManifest.Private {
		publisher.logger.Info(skippedPrivateMessageConstant, logFields...)
		return OutcomeSkippedPrivate, nil
	}

	commandLine := append([]string{}, publisher.command...)
	distributionTag := DistributionTag(version, explicitTag)
	if len(distributionTag) > 0 {
		commandLine = append(commandLine, distributionTagFlagConstant, distributionTag)
		logFields = append(logFields, zap.String(logFieldDistributionTagConstant, distributionTag))
	}

	command, commandError := execshell.NewShellCommand(commandLine, execshell.CommandDetails{WorkingDirectory: packageManifest.Directory})
	if commandError != nil {
		return "", commandError
	}

	_, executionError := publisher.executor.Execute(executionContext, command)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) && isPreviouslyPublishedResult(failedError.Result) {
			publisher.logger.Warn(skippedAlreadyPublishedMessageConstant, logFields...)
			return OutcomeSkippedAlreadyPublished, nil
		}
		return "", PublishFailedError{PackageName: packageManifest.Name, Version: version, Cause: executionError}
	}

	publisher.logger.Info(publishedMessageConstant, logFields...)
	return OutcomePublished, nil
}

// DistributionTag returns the explicit tag when provided, otherwise the first
// of alpha, beta or rc contained in the version, otherwise an empty string.
func DistributionTag(version string, explicitTag string) string {
	trimmedExplicitTag := strings.TrimSpace(explicitTag)
	if len(trimmedExplicitTag) > 0 {
		return trimmedExplicitTag
	}
	for _, candidate := range prereleaseDistributionTags {
		if strings.Contains(version, candidate) {
			return candidate
		}
	}
	return ""
}

// IsPreviouslyPublished reports whether registry diagnostics indicate the version already exists.
func IsPreviouslyPublished(diagnostic string) bool {
	return strings.Contains(strings.ToLower(diagnostic), previouslyPublishedFragmentConstant)
}

func isPreviouslyPublishedResult(result execshell.ExecutionResult) bool {
	return IsPreviouslyPublished(result.StandardError) || IsPreviouslyPublished(result.StandardOutput)
}
