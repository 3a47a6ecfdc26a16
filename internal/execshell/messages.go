package execshell

import (
	"fmt"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitDiffSubcommandNameConstant    = "diff"
	gitAddSubcommandNameConstant     = "add"
	gitCommitSubcommandNameConstant  = "commit"
	gitTagSubcommandNameConstant     = "tag"
	gitPushSubcommandNameConstant    = "push"
	gitMessageFlagConstant           = "-m"
	npmRunSubcommandNameConstant     = "run"
	npmPublishSubcommandNameConstant = "publish"
	npmTagFlagConstant               = "--tag"
	npmLatestTagLabelConstant        = "latest"
)

const (
	gitDiffStartTemplateConstant            = "Inspecting working tree changes in %s"
	gitDiffSuccessTemplateConstant          = "Inspected working tree changes in %s"
	gitDiffFailureTemplateConstant          = "Failed to inspect working tree changes in %s (exit code %d%s)"
	gitDiffExecutionFailureTemplateConstant = "Unable to inspect working tree changes in %s: %s"
	gitAddStartTemplateConstant             = "Staging changes in %s"
	gitAddSuccessTemplateConstant           = "Staged changes in %s"
	gitAddFailureTemplateConstant           = "Failed to stage changes in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant  = "Unable to stage changes in %s: %s"
	gitCommitStartTemplateConstant          = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant        = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant        = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplate       = "Unable to create commit in %s with message %q: %s"
	gitTagStartTemplateConstant             = "Creating tag %s in %s"
	gitTagSuccessTemplateConstant           = "Created tag %s in %s"
	gitTagFailureTemplateConstant           = "Failed to create tag %s in %s (exit code %d%s)"
	gitTagExecutionFailureTemplateConstant  = "Unable to create tag %s in %s: %s"
	gitPushStartTemplateConstant            = "Pushing %s from %s"
	gitPushSuccessTemplateConstant          = "Pushed %s from %s"
	gitPushFailureTemplateConstant          = "Failed to push %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant = "Unable to push %s from %s: %s"
	gitPushCurrentBranchLabelConstant       = "current branch"
	npmScriptStartTemplateConstant          = "Running npm script %s in %s"
	npmScriptSuccessTemplateConstant        = "Finished npm script %s in %s"
	npmScriptFailureTemplateConstant        = "npm script %s failed in %s (exit code %d%s)"
	npmScriptExecutionFailureTemplate       = "Unable to run npm script %s in %s: %s"
	npmPublishStartTemplateConstant         = "Publishing %s with dist-tag %s"
	npmPublishSuccessTemplateConstant       = "Published %s with dist-tag %s"
	npmPublishFailureTemplateConstant       = "Failed to publish %s with dist-tag %s (exit code %d%s)"
	npmPublishExecutionFailureTemplate      = "Unable to publish %s with dist-tag %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// FormatCommandLine renders the command as a shell-quoted line.
func (formatter CommandMessageFormatter) FormatCommandLine(command ShellCommand) string {
	words := append([]string{string(command.Name)}, command.Details.Arguments...)
	return shellquote.Join(words...)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandNPM:
		return formatter.describeNPMMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	failureDescription := formatter.describeFailure(failure)

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitDiffSubcommandNameConstant:
		return selectStageMessage(stage,
			fmt.Sprintf(gitDiffStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitDiffSuccessTemplateConstant, workingDirectory),
			fmt.Sprintf(gitDiffFailureTemplateConstant, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitDiffExecutionFailureTemplateConstant, workingDirectory, failureDescription))
	case gitAddSubcommandNameConstant:
		return selectStageMessage(stage,
			fmt.Sprintf(gitAddStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitAddSuccessTemplateConstant, workingDirectory),
			fmt.Sprintf(gitAddFailureTemplateConstant, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitAddExecutionFailureTemplateConstant, workingDirectory, failureDescription))
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.extractFlagValue(command.Details.Arguments, gitMessageFlagConstant)
		return selectStageMessage(stage,
			fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage),
			fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage),
			fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitCommitExecutionFailureTemplate, workingDirectory, commitMessage, failureDescription))
	case gitTagSubcommandNameConstant:
		tagName := formatter.extractPositionalArgument(command.Details.Arguments[1:], fallbackUnknownValueLabelConstant)
		return selectStageMessage(stage,
			fmt.Sprintf(gitTagStartTemplateConstant, tagName, workingDirectory),
			fmt.Sprintf(gitTagSuccessTemplateConstant, tagName, workingDirectory),
			fmt.Sprintf(gitTagFailureTemplateConstant, tagName, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitTagExecutionFailureTemplateConstant, tagName, workingDirectory, failureDescription))
	case gitPushSubcommandNameConstant:
		target := strings.TrimSpace(strings.Join(formatter.positionalArguments(command.Details.Arguments[1:]), " "))
		if len(target) == 0 {
			target = gitPushCurrentBranchLabelConstant
		}
		return selectStageMessage(stage,
			fmt.Sprintf(gitPushStartTemplateConstant, target, workingDirectory),
			fmt.Sprintf(gitPushSuccessTemplateConstant, target, workingDirectory),
			fmt.Sprintf(gitPushFailureTemplateConstant, target, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitPushExecutionFailureTemplateConstant, target, workingDirectory, failureDescription))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeNPMMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	failureDescription := formatter.describeFailure(failure)

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case npmRunSubcommandNameConstant:
		scriptName := formatter.extractPositionalArgument(command.Details.Arguments[1:], fallbackUnknownValueLabelConstant)
		return selectStageMessage(stage,
			fmt.Sprintf(npmScriptStartTemplateConstant, scriptName, workingDirectory),
			fmt.Sprintf(npmScriptSuccessTemplateConstant, scriptName, workingDirectory),
			fmt.Sprintf(npmScriptFailureTemplateConstant, scriptName, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(npmScriptExecutionFailureTemplate, scriptName, workingDirectory, failureDescription))
	case npmPublishSubcommandNameConstant:
		distributionTag := formatter.extractFlagValue(command.Details.Arguments, npmTagFlagConstant)
		if distributionTag == fallbackUnknownValueLabelConstant {
			distributionTag = npmLatestTagLabelConstant
		}
		return selectStageMessage(stage,
			fmt.Sprintf(npmPublishStartTemplateConstant, workingDirectory, distributionTag),
			fmt.Sprintf(npmPublishSuccessTemplateConstant, workingDirectory, distributionTag),
			fmt.Sprintf(npmPublishFailureTemplateConstant, workingDirectory, distributionTag, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(npmPublishExecutionFailureTemplate, workingDirectory, distributionTag, failureDescription))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func selectStageMessage(stage messageStage, startMessage string, successMessage string, failureMessage string, executionFailureMessage string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage
	case messageStageExecutionFailure:
		return executionFailureMessage
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	return selectStageMessage(stage,
		fmt.Sprintf(genericStartTemplateConstant, commandLabel),
		fmt.Sprintf(genericSuccessTemplateConstant, commandLabel),
		fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure)))
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLine := formatter.FormatCommandLine(command)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLine
	}
	return commandLine + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) extractFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) extractPositionalArgument(arguments []string, fallback string) string {
	positional := formatter.positionalArguments(arguments)
	if len(positional) == 0 {
		return fallback
	}
	return positional[0]
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "-") {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}
