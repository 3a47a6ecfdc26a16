package release

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/temirov/relkit/internal/publish"
	"github.com/temirov/relkit/internal/releases"
)

const (
	defaultRepositoryPathConstant        = "."
	defaultManifestPathConstant          = "package.json"
	defaultRemoteNameConstant            = "origin"
	defaultTagPrefixConstant             = "v"
	defaultCommitMessageTemplateConstant = "release: {tag}"
	defaultTestCommandConstant           = "npm run test"
	defaultBuildCommandConstant          = "npm run build"
	defaultBuildTypesCommandConstant     = "npm run build:types"
	defaultChangelogCommandConstant      = "npm run changelog"

	configurationKeyRepositoryConstant            = "repository"
	configurationKeyManifestsConstant             = "manifests"
	configurationKeyWorkspacesConstant            = "workspaces"
	configurationKeyRemoteConstant                = "remote"
	configurationKeyTagPrefixConstant             = "tag_prefix"
	configurationKeyCommitMessageTemplateConstant = "commit_message_template"
	configurationKeyTestCommandConstant           = "test_command"
	configurationKeyBuildCommandsConstant         = "build_commands"
	configurationKeyChangelogCommandConstant      = "changelog_command"
	configurationKeyPublishCommandConstant        = "publish_command"
	configurationKeyPreReleaseIdentifierConstant  = "preid"
	configurationKeyDistributionTagConstant       = "dist_tag"
	configurationKeyDryRunConstant                = "dry_run"
	configurationKeyAssumeYesConstant             = "assume_yes"
	configurationKeySkipTestsConstant             = "skip_tests"
	configurationKeySkipBuildConstant             = "skip_build"
	configurationKeySkipChangelogConstant         = "skip_changelog"

	invalidCommandLineTemplateConstant = "invalid %s %q: %v"
)

// CommandConfiguration captures the release section of the configuration file.
type CommandConfiguration struct {
	RepositoryPath        string   `mapstructure:"repository"`
	Manifests             []string `mapstructure:"manifests"`
	Workspaces            []string `mapstructure:"workspaces"`
	RemoteName            string   `mapstructure:"remote"`
	TagPrefix             string   `mapstructure:"tag_prefix"`
	CommitMessageTemplate string   `mapstructure:"commit_message_template"`
	TestCommand           string   `mapstructure:"test_command"`
	BuildCommands         []string `mapstructure:"build_commands"`
	ChangelogCommand      string   `mapstructure:"changelog_command"`
	PublishCommand        string   `mapstructure:"publish_command"`
	PreReleaseIdentifier  string   `mapstructure:"preid"`
	DistributionTag       string   `mapstructure:"dist_tag"`
	DryRun                bool     `mapstructure:"dry_run"`
	AssumeYes             bool     `mapstructure:"assume_yes"`
	SkipTests             bool     `mapstructure:"skip_tests"`
	SkipBuild             bool     `mapstructure:"skip_build"`
	SkipChangelog         bool     `mapstructure:"skip_changelog"`
}

// DefaultCommandConfiguration mirrors the scripts of a typical npm package.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath:        defaultRepositoryPathConstant,
		Manifests:             []string{defaultManifestPathConstant},
		Workspaces:            []string{},
		RemoteName:            defaultRemoteNameConstant,
		TagPrefix:             defaultTagPrefixConstant,
		CommitMessageTemplate: defaultCommitMessageTemplateConstant,
		TestCommand:           defaultTestCommandConstant,
		BuildCommands:         []string{defaultBuildCommandConstant, defaultBuildTypesCommandConstant},
		ChangelogCommand:      defaultChangelogCommandConstant,
		PublishCommand:        shellquote.Join(publish.DefaultCommand...),
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	keyPrefix := strings.TrimSpace(prefix)
	if len(keyPrefix) > 0 {
		keyPrefix += "."
	}
	return map[string]any{
		keyPrefix + configurationKeyRepositoryConstant:            defaults.RepositoryPath,
		keyPrefix + configurationKeyManifestsConstant:             defaults.Manifests,
		keyPrefix + configurationKeyWorkspacesConstant:            defaults.Workspaces,
		keyPrefix + configurationKeyRemoteConstant:                defaults.RemoteName,
		keyPrefix + configurationKeyTagPrefixConstant:             defaults.TagPrefix,
		keyPrefix + configurationKeyCommitMessageTemplateConstant: defaults.CommitMessageTemplate,
		keyPrefix + configurationKeyTestCommandConstant:           defaults.TestCommand,
		keyPrefix + configurationKeyBuildCommandsConstant:         defaults.BuildCommands,
		keyPrefix + configurationKeyChangelogCommandConstant:      defaults.ChangelogCommand,
		keyPrefix + configurationKeyPublishCommandConstant:        defaults.PublishCommand,
		keyPrefix + configurationKeyPreReleaseIdentifierConstant:  defaults.PreReleaseIdentifier,
		keyPrefix + configurationKeyDistributionTagConstant:       defaults.DistributionTag,
		keyPrefix + configurationKeyDryRunConstant:                defaults.DryRun,
		keyPrefix + configurationKeyAssumeYesConstant:             defaults.AssumeYes,
		keyPrefix + configurationKeySkipTestsConstant:             defaults.SkipTests,
		keyPrefix + configurationKeySkipBuildConstant:             defaults.SkipBuild,
		keyPrefix + configurationKeySkipChangelogConstant:         defaults.SkipChangelog,
	}
}

// Sanitize trims values and restores defaults for settings that must not be empty.
// Command settings may be blank to disable the corresponding stage.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration
	sanitized.RepositoryPath = valueOrDefault(configuration.RepositoryPath, defaults.RepositoryPath)
	sanitized.Manifests = trimValues(configuration.Manifests)
	if len(sanitized.Manifests) == 0 {
		sanitized.Manifests = defaults.Manifests
	}
	sanitized.Workspaces = trimValues(configuration.Workspaces)
	sanitized.RemoteName = valueOrDefault(configuration.RemoteName, defaults.RemoteName)
	sanitized.TagPrefix = valueOrDefault(configuration.TagPrefix, defaults.TagPrefix)
	sanitized.CommitMessageTemplate = valueOrDefault(configuration.CommitMessageTemplate, defaults.CommitMessageTemplate)
	sanitized.PublishCommand = valueOrDefault(configuration.PublishCommand, defaults.PublishCommand)
	sanitized.TestCommand = strings.TrimSpace(configuration.TestCommand)
	sanitized.BuildCommands = trimValues(configuration.BuildCommands)
	sanitized.ChangelogCommand = strings.TrimSpace(configuration.ChangelogCommand)
	sanitized.PreReleaseIdentifier = strings.TrimSpace(configuration.PreReleaseIdentifier)
	sanitized.DistributionTag = strings.TrimSpace(configuration.DistributionTag)
	return sanitized
}

// ReleaseCommands splits the configured command strings with shell quoting rules.
func (configuration CommandConfiguration) ReleaseCommands() (releases.Commands, error) {
	testCommand, testError := splitCommandLine(configurationKeyTestCommandConstant, configuration.TestCommand)
	if testError != nil {
		return releases.Commands{}, testError
	}

	buildCommands := make([][]string, 0, len(configuration.BuildCommands))
	for _, buildCommandLine := range configuration.BuildCommands {
		buildCommand, buildError := splitCommandLine(configurationKeyBuildCommandsConstant, buildCommandLine)
		if buildError != nil {
			return releases.Commands{}, buildError
		}
		if len(buildCommand) > 0 {
			buildCommands = append(buildCommands, buildCommand)
		}
	}

	changelogCommand, changelogError := splitCommandLine(configurationKeyChangelogCommandConstant, configuration.ChangelogCommand)
	if changelogError != nil {
		return releases.Commands{}, changelogError
	}

	return releases.Commands{Test: testCommand, Build: buildCommands, Changelog: changelogCommand}, nil
}

// PublishCommandLine splits the configured publish command.
func (configuration CommandConfiguration) PublishCommandLine() ([]string, error) {
	return splitCommandLine(configurationKeyPublishCommandConstant, configuration.PublishCommand)
}

func splitCommandLine(settingName string, commandLine string) ([]string, error) {
	trimmedCommandLine := strings.TrimSpace(commandLine)
	if len(trimmedCommandLine) == 0 {
		return nil, nil
	}
	words, splitError := shellquote.Split(trimmedCommandLine)
	if splitError != nil {
		return nil, fmt.Errorf(invalidCommandLineTemplateConstant, settingName, trimmedCommandLine, splitError)
	}
	return words, nil
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}

func trimValues(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, candidate := range values {
		value := strings.TrimSpace(candidate)
		if len(value) == 0 {
			continue
		}
		trimmed = append(trimmed, value)
	}
	return trimmed
}
