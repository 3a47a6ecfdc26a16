package release

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/releases"
)

func TestSanitizeRestoresRequiredDefaults(t *testing.T) {
	sanitized := CommandConfiguration{
		Manifests:     []string{" ", " packages/a/package.json "},
		RemoteName:    "  ",
		TestCommand:   "  npm test ",
		BuildCommands: []string{"", " npm run build "},
	}.Sanitize()

	require.Equal(t, ".", sanitized.RepositoryPath)
	require.Equal(t, []string{"packages/a/package.json"}, sanitized.Manifests)
	require.Equal(t, "origin", sanitized.RemoteName)
	require.Equal(t, "v", sanitized.TagPrefix)
	require.Equal(t, "release: {tag}", sanitized.CommitMessageTemplate)
	require.Equal(t, "npm publish --access public", sanitized.PublishCommand)
	require.Equal(t, "npm test", sanitized.TestCommand)
	require.Equal(t, []string{"npm run build"}, sanitized.BuildCommands)
	require.Empty(t, sanitized.ChangelogCommand)

	require.Equal(t, []string{"package.json"}, CommandConfiguration{}.Sanitize().Manifests)
}

func TestReleaseCommandsSplitsShellWords(t *testing.T) {
	commands, commandsError := CommandConfiguration{
		TestCommand:   `npm run "test:unit" -- --reporter=dot`,
		BuildCommands: []string{"npm run build", "node scripts/bundle.js 'dist/my lib'"},
	}.ReleaseCommands()
	require.NoError(t, commandsError)
	require.Equal(t, releases.Commands{
		Test:  []string{"npm", "run", "test:unit", "--", "--reporter=dot"},
		Build: [][]string{{"npm", "run", "build"}, {"node", "scripts/bundle.js", "dist/my lib"}},
	}, commands)

	_, invalidError := CommandConfiguration{ChangelogCommand: `npm run "changelog`}.ReleaseCommands()
	require.Error(t, invalidError)
	require.Contains(t, invalidError.Error(), "changelog_command")
}

func TestPublishCommandLine(t *testing.T) {
	commandLine, commandError := DefaultCommandConfiguration().PublishCommandLine()
	require.NoError(t, commandError)
	require.Equal(t, []string{"npm", "publish", "--access", "public"}, commandLine)

	customLine, customError := CommandConfiguration{PublishCommand: "pnpm publish --no-git-checks"}.PublishCommandLine()
	require.NoError(t, customError)
	require.Equal(t, []string{"pnpm", "publish", "--no-git-checks"}, customLine)
}

func TestDefaultConfigurationValuesUsePrefix(t *testing.T) {
	values := DefaultConfigurationValues("release")
	require.Equal(t, "origin", values["release.remote"])
	require.Equal(t, []string{"package.json"}, values["release.manifests"])
	require.Equal(t, false, values["release.dry_run"])
	require.Contains(t, values, "release.skip_changelog")

	unprefixed := DefaultConfigurationValues("")
	require.Equal(t, "v", unprefixed["tag_prefix"])
}
