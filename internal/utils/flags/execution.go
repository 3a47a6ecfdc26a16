// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// DryRunFlagName previews every mutating step without performing it.
	DryRunFlagName = "dry"
	// AssumeYesFlagName skips interactive confirmation.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand is the single-letter form of AssumeYesFlagName.
	AssumeYesFlagShorthand = "y"

	dryRunFlagUsageConstant    = "Preview the release without changing files, git state, or the registry"
	assumeYesFlagUsageConstant = "Skip the release confirmation prompt"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun    bool
	AssumeYes bool
}

// ExecutionFlags holds the parsed execution toggles.
type ExecutionFlags struct {
	DryRun    bool
	AssumeYes bool
}

// BindExecutionFlags attaches the dry-run and assume-yes toggles to the command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults) *ExecutionFlags {
	executionFlags := &ExecutionFlags{}
	if command == nil {
		return executionFlags
	}

	flagSet := command.Flags()
	AddToggleFlag(flagSet, &executionFlags.DryRun, DryRunFlagName, "", defaults.DryRun, dryRunFlagUsageConstant)
	AddToggleFlag(flagSet, &executionFlags.AssumeYes, AssumeYesFlagName, AssumeYesFlagShorthand, defaults.AssumeYes, assumeYesFlagUsageConstant)
	return executionFlags
}

// ResolveExecutionFlags merges configured defaults with flags given on the command line.
func ResolveExecutionFlags(command *cobra.Command, configured ExecutionDefaults) ExecutionFlags {
	if command == nil {
		return ExecutionFlags{DryRun: configured.DryRun, AssumeYes: configured.AssumeYes}
	}
	flagSet := command.Flags()
	return ExecutionFlags{
		DryRun:    ResolveToggle(flagSet, DryRunFlagName, configured.DryRun),
		AssumeYes: ResolveToggle(flagSet, AssumeYesFlagName, configured.AssumeYes),
	}
}
