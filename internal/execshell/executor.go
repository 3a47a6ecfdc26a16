package execshell

import (
	"context"

	"go.uber.org/zap"
)

const (
	logFieldCommandConstant          = "command"
	logFieldWorkingDirectoryConstant = "working_directory"
	logFieldExitCodeConstant         = "exit_code"
	dryRunSkippedMessageConstant     = "dry run: command not executed"
)

// ShellExecutor runs commands through a CommandRunner and reports their lifecycle.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor without a lifecycle observer.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs a ShellExecutor that notifies the observer about every command.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, runner: runner, observer: observer, formatter: CommandMessageFormatter{}}, nil
}

// Execute runs the command and converts non-zero exits into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, executor.formatter.FormatCommandLine(command)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), commandFields...)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError), append(commandFields, zap.Error(runError))...)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(executor.formatter.BuildFailureMessage(command, executionResult), append(commandFields, zap.Int(logFieldExitCodeConstant, executionResult.ExitCode))...)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessage(command), commandFields...)
	return executionResult, nil
}

// DryRunExecutor records commands instead of running them.
type DryRunExecutor struct {
	logger           *zap.Logger
	observer         DryRunObserver
	formatter        CommandMessageFormatter
	recordedCommands []ShellCommand
}

// NewDryRunExecutor constructs a DryRunExecutor; a nil logger discards diagnostics.
func NewDryRunExecutor(logger *zap.Logger, observer DryRunObserver) *DryRunExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRunExecutor{logger: logger, observer: observer, formatter: CommandMessageFormatter{}}
}

// Execute reports the command and returns a synthetic success.
func (executor *DryRunExecutor) Execute(_ context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, command)

	commandLabel := executor.formatter.formatCommandLabel(command)
	executor.logger.Info(dryRunSkippedMessageConstant,
		zap.String(logFieldCommandConstant, executor.formatter.FormatCommandLine(command)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	if executor.observer != nil {
		executor.observer.CommandPreviewed(commandLabel)
	}

	return ExecutionResult{}, nil
}

// RecordedCommands returns the commands received so far.
func (executor *DryRunExecutor) RecordedCommands() []ShellCommand {
	return append([]ShellCommand{}, executor.recordedCommands...)
}
