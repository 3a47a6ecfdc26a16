package release

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionsCommandRendersCandidates(t *testing.T) {
	repositoryPath := t.TempDir()
	writeTestManifest(t, repositoryPath)

	builder := &VersionsCommandBuilder{
		ConfigurationProvider: func() CommandConfiguration { return CommandConfiguration{RepositoryPath: repositoryPath} },
		WorkingDirectory:      repositoryPath,
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)

	output := &bytes.Buffer{}
	command.SetOut(output)
	require.NoError(t, command.RunE(command, nil))

	rendered := output.String()
	require.Contains(t, rendered, "demo 1.1.0")
	require.Contains(t, rendered, "v1.1.1")
	require.Contains(t, rendered, "v1.2.0")
	require.Contains(t, rendered, "v2.0.0")
	require.Contains(t, rendered, "latest")
	require.NotContains(t, rendered, "prerelease")
}

func TestVersionsCommandOffersPreReleaseKinds(t *testing.T) {
	repositoryPath := t.TempDir()
	packageDirectory := filepath.Join(repositoryPath, "packages", "core")
	require.NoError(t, os.MkdirAll(packageDirectory, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(packageDirectory, "package.json"), []byte("{\"name\":\"core\",\"version\":\"1.0.0-beta.2\"}\n"), 0o644))

	builder := &VersionsCommandBuilder{
		ConfigurationProvider: func() CommandConfiguration { return CommandConfiguration{RepositoryPath: repositoryPath} },
		WorkingDirectory:      repositoryPath,
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	require.NoError(t, command.Flags().Set(manifestFlagName, "packages/core"))

	output := &bytes.Buffer{}
	command.SetOut(output)
	require.NoError(t, command.RunE(command, nil))

	rendered := output.String()
	require.Contains(t, rendered, "core 1.0.0-beta.2")
	require.Contains(t, rendered, "prerelease")
	require.Contains(t, rendered, "1.0.0-beta.3")
	require.Contains(t, rendered, "beta")
}

func TestVersionsCommandReportsMissingManifest(t *testing.T) {
	repositoryPath := t.TempDir()
	builder := &VersionsCommandBuilder{
		ConfigurationProvider: func() CommandConfiguration { return CommandConfiguration{RepositoryPath: repositoryPath} },
		WorkingDirectory:      repositoryPath,
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	command.SetOut(&bytes.Buffer{})
	require.Error(t, command.RunE(command, nil))
}
