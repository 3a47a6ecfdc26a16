package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/temirov/relkit/internal/execshell"
)

const (
	spinnerCharacterSetIndexConstant = 11
	spinnerRefreshIntervalConstant   = 100 * time.Millisecond
	spinnerColorConstant             = "cyan"
	spinnerSuffixSeparatorConstant   = " "
)

// ProgressObserver shows a spinner while a captured command runs. Commands
// that stream their output are left alone so the spinner does not interleave
// with process output.
type ProgressObserver struct {
	loader    *spinner.Spinner
	formatter execshell.CommandMessageFormatter
}

// NewProgressObserver constructs a ProgressObserver drawing on the provided file.
func NewProgressObserver(file *os.File) *ProgressObserver {
	if file == nil {
		file = os.Stderr
	}
	loader := spinner.New(spinner.CharSets[spinnerCharacterSetIndexConstant], spinnerRefreshIntervalConstant, spinner.WithWriterFile(file))
	loader.Color(spinnerColorConstant) //nolint:errcheck
	return &ProgressObserver{loader: loader, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted starts the spinner for captured commands.
func (observer *ProgressObserver) CommandStarted(command execshell.ShellCommand) {
	if command.Details.StreamOutput {
		return
	}
	observer.loader.Suffix = spinnerSuffixSeparatorConstant + observer.formatter.BuildStartedMessage(command)
	observer.loader.Start()
}

// CommandCompleted stops the spinner.
func (observer *ProgressObserver) CommandCompleted(execshell.ShellCommand, execshell.ExecutionResult) {
	observer.loader.Stop()
}

// CommandExecutionFailed stops the spinner.
func (observer *ProgressObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	observer.loader.Stop()
}

// Suffix returns the text currently shown next to the spinner.
func (observer *ProgressObserver) Suffix() string {
	return observer.loader.Suffix
}
