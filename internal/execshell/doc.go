// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with logging and lifecycle events,
// OSCommandRunner executes processes through os/exec, and DryRunExecutor
// records the invocations a release would perform without running them. Both
// executors satisfy Executor so callers select the execution mode once.
package execshell
