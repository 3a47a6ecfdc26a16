package release

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/gitrepo"
	"github.com/temirov/relkit/internal/manifest"
	"github.com/temirov/relkit/internal/prompt"
	"github.com/temirov/relkit/internal/publish"
	"github.com/temirov/relkit/internal/releases"
	"github.com/temirov/relkit/internal/ui"
	flagutils "github.com/temirov/relkit/internal/utils/flags"
	pathutils "github.com/temirov/relkit/internal/utils/path"
)

const (
	commandUseName          = "release"
	commandUsageTemplate    = commandUseName + " [version]"
	commandExampleTemplate  = "relkit release\nrelkit release 1.4.0 --yes\nrelkit release --preid beta --dry"
	commandShortDescription = "Bump, build, publish, tag and push a package release"
	commandLongDescription  = "release resolves the next version (prompting when none is given), runs the tests, writes the version into every configured manifest, builds, regenerates the changelog, commits, publishes to the registry and finally tags and pushes. Use --dry to preview every mutating step."

	preReleaseIdentifierFlagName  = "preid"
	preReleaseIdentifierFlagUsage = "Pre-release identifier for pre* bumps (alpha, beta, rc)"
	distributionTagFlagName       = "tag"
	distributionTagFlagUsage      = "Registry distribution tag; defaults to the pre-release identifier of the version"
	remoteFlagName                = "remote"
	remoteFlagUsage               = "Git remote receiving the release tag"
	manifestFlagName              = "manifest"
	manifestFlagUsage             = "Package manifest to update and publish (repeatable); replaces configured manifests and workspaces"
	skipTestsFlagName             = "skipTests"
	skipTestsFlagUsage            = "Skip the test command"
	skipBuildFlagName             = "skipBuild"
	skipBuildFlagUsage            = "Skip the build commands"
	skipChangelogFlagName         = "skipChangelog"
	skipChangelogFlagUsage        = "Skip changelog generation"

	inspectorUnavailableMessageConstant = "repository inspection unavailable"
	logFieldRepositoryConstant          = "repository"

	publicationPackageHeaderConstant  = "PACKAGE"
	publicationManifestHeaderConstant = "MANIFEST"
	publicationOutcomeHeaderConstant  = "OUTCOME"
)

// CommandBuilder assembles the release command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration

	// WorkingDirectory anchors relative repository paths; the process directory is used when empty.
	WorkingDirectory string

	// Executor replaces the process executor, including the dry-run executor.
	Executor execshell.Executor
}

// Build constructs the release command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUsageTemplate,
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleTemplate,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	configuration := builder.resolveConfiguration()
	flagSet := command.Flags()
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{})
	flagSet.String(preReleaseIdentifierFlagName, "", preReleaseIdentifierFlagUsage)
	flagSet.String(distributionTagFlagName, "", distributionTagFlagUsage)
	flagSet.String(remoteFlagName, configuration.RemoteName, remoteFlagUsage)
	flagSet.StringArray(manifestFlagName, nil, manifestFlagUsage)
	flagutils.AddToggleFlag(flagSet, nil, skipTestsFlagName, "", false, skipTestsFlagUsage)
	flagutils.AddToggleFlag(flagSet, nil, skipBuildFlagName, "", false, skipBuildFlagUsage)
	flagutils.AddToggleFlag(flagSet, nil, skipChangelogFlagName, "", false, skipChangelogFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := resolveLogger(builder.LoggerProvider)

	options, optionsError := builder.buildOptions(command, arguments, configuration)
	if optionsError != nil {
		return optionsError
	}

	publishCommand, publishCommandError := configuration.PublishCommandLine()
	if publishCommandError != nil {
		return publishCommandError
	}

	output := command.OutOrStdout()
	reporter := ui.NewReporter(output, isTerminalStream(output))

	executor, executorError := builder.resolveExecutor(command, logger, reporter, options.DryRun)
	if executorError != nil {
		return executorError
	}

	repositoryManager, repositoryError := gitrepo.NewRepositoryManager(executor, options.RepositoryPath)
	if repositoryError != nil {
		return repositoryError
	}

	publisher, publisherError := publish.NewPublisher(executor, logger, publishCommand)
	if publisherError != nil {
		return publisherError
	}

	dependencies := releases.ServiceDependencies{
		Executor:   executor,
		Repository: repositoryManager,
		Manifests:  manifest.NewMutator(nil),
		Publisher:  publisher,
		Reporter:   reporter,
		Logger:     logger,
	}

	inspector, inspectorError := gitrepo.OpenInspector(options.RepositoryPath)
	if inspectorError != nil {
		logger.Warn(inspectorUnavailableMessageConstant, zap.String(logFieldRepositoryConstant, options.RepositoryPath), zap.Error(inspectorError))
	} else {
		dependencies.Inspector = inspector
	}

	if prompter := resolvePrompter(command); prompter != nil {
		dependencies.Prompter = prompter
	}

	service, serviceError := releases.NewService(dependencies)
	if serviceError != nil {
		return serviceError
	}

	result, releaseError := service.Release(resolveContext(command.Context()), options)
	if len(result.Publications) > 0 {
		renderPublications(output, result.Publications)
	}
	return releaseError
}

func (builder *CommandBuilder) buildOptions(command *cobra.Command, arguments []string, configuration CommandConfiguration) (releases.Options, error) {
	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return releases.Options{}, workingDirectoryError
	}

	commands, commandsError := configuration.ReleaseCommands()
	if commandsError != nil {
		return releases.Options{}, commandsError
	}

	pathResolver := pathutils.NewResolver()
	repositoryPath := pathResolver.Resolve(workingDirectory, configuration.RepositoryPath)

	flagSet := command.Flags()
	manifestPaths := configuration.Manifests
	if flagSet.Changed(manifestFlagName) {
		if flagValues, flagError := flagSet.GetStringArray(manifestFlagName); flagError == nil {
			manifestPaths = flagValues
		}
	} else {
		workspaceManifests, discoveryError := manifest.DiscoverWorkspaceManifests(nil, pathResolver.ResolveAll(repositoryPath, configuration.Workspaces))
		if discoveryError != nil {
			return releases.Options{}, discoveryError
		}
		manifestPaths = append(append([]string{}, manifestPaths...), workspaceManifests...)
	}

	targetVersion := ""
	if len(arguments) > 0 {
		targetVersion = strings.TrimSpace(arguments[0])
	}

	executionFlags := flagutils.ResolveExecutionFlags(command, flagutils.ExecutionDefaults{
		DryRun:    configuration.DryRun,
		AssumeYes: configuration.AssumeYes,
	})

	return releases.Options{
		RepositoryPath:        repositoryPath,
		Manifests:             pathResolver.ResolveAll(repositoryPath, manifestPaths),
		TargetVersion:         targetVersion,
		PreReleaseIdentifier:  stringFlagOrDefault(command, preReleaseIdentifierFlagName, configuration.PreReleaseIdentifier),
		DistributionTag:       stringFlagOrDefault(command, distributionTagFlagName, configuration.DistributionTag),
		RemoteName:            stringFlagOrDefault(command, remoteFlagName, configuration.RemoteName),
		TagPrefix:             configuration.TagPrefix,
		CommitMessageTemplate: configuration.CommitMessageTemplate,
		Commands:              commands,
		DryRun:                executionFlags.DryRun,
		SkipTests:             flagutils.ResolveToggle(flagSet, skipTestsFlagName, configuration.SkipTests),
		SkipBuild:             flagutils.ResolveToggle(flagSet, skipBuildFlagName, configuration.SkipBuild),
		SkipChangelog:         flagutils.ResolveToggle(flagSet, skipChangelogFlagName, configuration.SkipChangelog),
		AssumeYes:             executionFlags.AssumeYes,
	}, nil
}

func (builder *CommandBuilder) resolveExecutor(command *cobra.Command, logger *zap.Logger, reporter *ui.Reporter, dryRun bool) (execshell.Executor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	if dryRun {
		return execshell.NewDryRunExecutor(logger, reporter), nil
	}

	observers := execshell.CompositeCommandEventObserver{}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}
	if errorFile, isFile := command.ErrOrStderr().(*os.File); isFile && prompt.IsInteractive(errorFile) {
		observers = append(observers, ui.NewProgressObserver(errorFile))
	}

	runner := execshell.NewStreamingOSCommandRunner(command.OutOrStdout(), command.ErrOrStderr())
	shellExecutor, executorError := execshell.NewShellExecutorWithObserver(logger, runner, observers)
	if executorError != nil {
		return nil, executorError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return builder.WorkingDirectory, nil
	}
	return os.Getwd()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

// resolvePrompter returns nil when standard input is a file that is not a terminal,
// so a non-interactive run fails instead of blocking on a prompt.
func resolvePrompter(command *cobra.Command) *prompt.IOPrompter {
	input := command.InOrStdin()
	if inputFile, isFile := input.(*os.File); isFile && !prompt.IsInteractive(inputFile) {
		return nil
	}
	return prompt.NewIOPrompter(input, command.OutOrStdout())
}

func stringFlagOrDefault(command *cobra.Command, flagName string, defaultValue string) string {
	flagSet := command.Flags()
	if !flagSet.Changed(flagName) {
		return defaultValue
	}
	flagValue, flagError := flagSet.GetString(flagName)
	if flagError != nil {
		return defaultValue
	}
	return strings.TrimSpace(flagValue)
}

func renderPublications(writer io.Writer, publications []releases.Publication) {
	rows := make([][]string, 0, len(publications))
	for _, publication := range publications {
		rows = append(rows, []string{publication.PackageName, publication.Path, string(publication.Outcome)})
	}
	ui.RenderTable(writer, []string{publicationPackageHeaderConstant, publicationManifestHeaderConstant, publicationOutcomeHeaderConstant}, rows)
}
