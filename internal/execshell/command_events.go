package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// DryRunObserver receives the invocations a dry-run executor declines to perform.
type DryRunObserver interface {
	CommandPreviewed(commandLine string)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// CompositeCommandEventObserver fans command events out to several observers in order.
type CompositeCommandEventObserver []CommandEventObserver

// CommandStarted forwards the start notification.
func (observers CompositeCommandEventObserver) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandStarted(command)
		}
	}
}

// CommandCompleted forwards the completion notification.
func (observers CompositeCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandCompleted(command, result)
		}
	}
}

// CommandExecutionFailed forwards the execution failure notification.
func (observers CompositeCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		if observer != nil {
			observer.CommandExecutionFailed(command, failure)
		}
	}
}
