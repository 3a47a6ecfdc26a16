package release

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/relkit/internal/manifest"
	"github.com/temirov/relkit/internal/publish"
	"github.com/temirov/relkit/internal/ui"
	pathutils "github.com/temirov/relkit/internal/utils/path"
	"github.com/temirov/relkit/internal/version"
)

const (
	versionsCommandUseName          = "versions"
	versionsCommandShortDescription = "List the candidate versions for the next release"
	versionsCommandLongDescription  = "versions reads the primary manifest and prints every bump kind with the version and registry distribution tag it would produce."
	versionsCommandExample          = "relkit versions --preid beta"
	versionsManifestFlagUsage       = "Package manifest to inspect"
	versionsHeadlineTemplate        = "%s %s\n"
	latestDistributionTagConstant   = "latest"
	unnamedPackageConstant          = "(unnamed)"

	kindHeaderConstant            = "KIND"
	versionHeaderConstant         = "VERSION"
	tagHeaderConstant             = "TAG"
	distributionTagHeaderConstant = "DIST-TAG"
)

// VersionsCommandBuilder assembles the versions command.
type VersionsCommandBuilder struct {
	ConfigurationProvider func() CommandConfiguration
	WorkingDirectory      string
}

// Build constructs the versions command.
func (builder *VersionsCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     versionsCommandUseName,
		Short:   versionsCommandShortDescription,
		Long:    versionsCommandLongDescription,
		Example: versionsCommandExample,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().String(preReleaseIdentifierFlagName, "", preReleaseIdentifierFlagUsage)
	command.Flags().String(manifestFlagName, "", versionsManifestFlagUsage)

	return command, nil
}

func (builder *VersionsCommandBuilder) run(command *cobra.Command, _ []string) error {
	releaseBuilder := CommandBuilder{ConfigurationProvider: builder.ConfigurationProvider, WorkingDirectory: builder.WorkingDirectory}
	configuration := releaseBuilder.resolveConfiguration()

	workingDirectory, workingDirectoryError := releaseBuilder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	pathResolver := pathutils.NewResolver()
	repositoryPath := pathResolver.Resolve(workingDirectory, configuration.RepositoryPath)
	manifestPath := pathResolver.Resolve(repositoryPath, stringFlagOrDefault(command, manifestFlagName, configuration.Manifests[0]))

	packageManifest, loadError := manifest.NewMutator(nil).Load(manifestPath)
	if loadError != nil {
		return loadError
	}

	identifier := stringFlagOrDefault(command, preReleaseIdentifierFlagName, configuration.PreReleaseIdentifier)
	if len(identifier) == 0 {
		identifier = version.PreReleaseIdentifier(packageManifest.Version)
	}

	candidates, candidatesError := version.Candidates(packageManifest.Version, identifier)
	if candidatesError != nil {
		return candidatesError
	}

	rows := make([][]string, 0, len(candidates))
	for _, candidate := range candidates {
		distributionTag := publish.DistributionTag(candidate.Version, "")
		if len(distributionTag) == 0 {
			distributionTag = latestDistributionTagConstant
		}
		rows = append(rows, []string{string(candidate.Kind), candidate.Version, configuration.TagPrefix + candidate.Version, distributionTag})
	}

	packageName := packageManifest.Name
	if len(packageName) == 0 {
		packageName = unnamedPackageConstant
	}

	output := command.OutOrStdout()
	fmt.Fprintf(output, versionsHeadlineTemplate, packageName, packageManifest.Version)
	ui.RenderTable(output, []string{kindHeaderConstant, versionHeaderConstant, tagHeaderConstant, distributionTagHeaderConstant}, rows)
	return nil
}
