package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/temirov/relkit/internal/utils"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	standardOutput io.Writer
	standardError  io.Writer
}

// NewOSCommandRunner constructs a runner backed by os/exec that only captures output.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// NewStreamingOSCommandRunner constructs a runner that mirrors output of streaming commands to the provided writers.
func NewStreamingOSCommandRunner(standardOutput io.Writer, standardError io.Writer) *OSCommandRunner {
	return &OSCommandRunner{
		standardOutput: utils.NewFlushingWriter(standardOutput),
		standardError:  utils.NewFlushingWriter(standardError),
	}
}

// Run executes the supplied command using os/exec.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = runner.outputWriter(&standardOutputBuffer, runner.standardOutput, command.Details.StreamOutput)
	executable.Stderr = runner.outputWriter(&standardErrorBuffer, runner.standardError, command.Details.StreamOutput)

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}

func (runner *OSCommandRunner) outputWriter(buffer *bytes.Buffer, mirror io.Writer, stream bool) io.Writer {
	if !stream || mirror == nil {
		return buffer
	}
	return io.MultiWriter(buffer, mirror)
}
