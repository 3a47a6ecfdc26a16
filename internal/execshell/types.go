package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	commandFailedErrorTemplateConstant    = "%s failed with exit code %d%s"
	commandExecutionErrorTemplateConstant = "%s failed: %s"
	loggerNotConfiguredMessageConstant    = "logger not configured"
	runnerNotConfiguredMessageConstant    = "command runner not configured"
)

// CommandName identifies an executable resolved through PATH.
type CommandName string

// Executables invoked by the release pipeline.
const (
	CommandGit CommandName = "git"
	CommandNPM CommandName = "npm"
)

// CommandDetails describes the arguments and process options of an invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte

	// StreamOutput mirrors process output to the runner's writers in addition to capturing it.
	StreamOutput bool
}

// ShellCommand combines an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// NewShellCommand builds a ShellCommand from a command line split into words.
func NewShellCommand(commandLine []string, details CommandDetails) (ShellCommand, error) {
	if len(commandLine) == 0 || len(strings.TrimSpace(commandLine[0])) == 0 {
		return ShellCommand{}, ErrEmptyCommandLine
	}
	details.Arguments = append(append([]string{}, commandLine[1:]...), details.Arguments...)
	return ShellCommand{Name: CommandName(strings.TrimSpace(commandLine[0])), Details: details}, nil
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a single process to completion.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Executor runs commands on behalf of the release pipeline.
type Executor interface {
	Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates a missing zap logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates a missing CommandRunner.
	ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
	// ErrEmptyCommandLine indicates a command line without an executable.
	ErrEmptyCommandLine = errors.New("command line is empty")
)

// CommandFailedError reports a command that exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failedError CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, formatter.FormatCommandLine(failedError.Command), failedError.Result.ExitCode, formatter.formatStandardErrorSuffix(failedError.Result.StandardError))
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, formatter.FormatCommandLine(executionError.Command), formatter.describeFailure(executionError.Cause))
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}
