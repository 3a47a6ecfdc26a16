package ui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/ui"
)

func TestReporterWritesPlainLinesWithoutColor(testInstance *testing.T) {
	output := &bytes.Buffer{}
	reporter := ui.NewReporter(output, false)

	reporter.Step("Releasing %s", "v1.2.3")
	reporter.Notice("Skipping tests")
	reporter.Warning("target %s does not exceed %s", "1.0.0", "1.0.0")
	reporter.Success("Released v1.2.3")
	reporter.CommandPreviewed("git tag v1.2.3")

	require.Equal(testInstance, "==> Releasing v1.2.3\n"+
		"- Skipping tests\n"+
		"! target 1.0.0 does not exceed 1.0.0\n"+
		"✔ Released v1.2.3\n"+
		"[dryrun] git tag v1.2.3\n", output.String())
}

func TestReporterColorizesPrefixes(testInstance *testing.T) {
	output := &bytes.Buffer{}
	ui.NewReporter(output, true).DryRun("npm publish")

	require.Contains(testInstance, output.String(), "\x1b[")
	require.Contains(testInstance, output.String(), "npm publish\n")
}

func TestReporterSatisfiesDryRunObserver(testInstance *testing.T) {
	var observer execshell.DryRunObserver = ui.NewReporter(nil, false)
	require.NotPanics(testInstance, func() { observer.CommandPreviewed("git push") })
}

func TestProgressObserverTracksCapturedCommands(testInstance *testing.T) {
	spinnerFile, createError := os.Create(filepath.Join(testInstance.TempDir(), "spinner"))
	require.NoError(testInstance, createError)
	defer spinnerFile.Close()

	progress := ui.NewProgressObserver(spinnerFile)
	captured := execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"add", "-A"}, WorkingDirectory: "/repo"}}
	streamed := execshell.ShellCommand{Name: execshell.CommandNPM, Details: execshell.CommandDetails{Arguments: []string{"run", "test"}, StreamOutput: true}}

	progress.CommandStarted(captured)
	require.Equal(testInstance, " Staging changes in /repo", progress.Suffix())
	progress.CommandCompleted(captured, execshell.ExecutionResult{})

	progress.CommandStarted(streamed)
	require.Equal(testInstance, " Staging changes in /repo", progress.Suffix())
	progress.CommandExecutionFailed(streamed, nil)
}

func TestRenderTable(testInstance *testing.T) {
	output := &bytes.Buffer{}
	ui.RenderTable(output, []string{"Kind", "Version"}, [][]string{{"patch", "1.0.1"}, {"minor", "1.1.0"}})

	rendered := output.String()
	require.Contains(testInstance, rendered, "KIND")
	require.Contains(testInstance, rendered, "patch")
	require.Contains(testInstance, rendered, "1.1.0")
	require.Contains(testInstance, rendered, "╭")
}
