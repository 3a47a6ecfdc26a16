package manifest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/relkit/internal/filesystem"
)

const (
	hiddenEntryPrefixConstant   = "."
	dependencyDirectoryConstant = "node_modules"
)

// DiscoverWorkspaceManifests returns the manifests of the packages directly
// below each workspace directory, sorted and without duplicates. Hidden
// directories and node_modules are ignored; missing workspaces yield nothing.
// A nil fileSystem uses the operating system.
func DiscoverWorkspaceManifests(fileSystem filesystem.FileSystem, workspaceDirectories []string) ([]string, error) {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}

	seen := make(map[string]struct{})
	var manifestPaths []string

	for _, workspaceDirectory := range workspaceDirectories {
		root := filepath.Clean(workspaceDirectory)
		directoryEntries, readError := fileSystem.ReadDir(root)
		if readError != nil {
			if errors.Is(readError, fs.ErrNotExist) {
				continue
			}
			return nil, ReadError{Path: root, Cause: readError}
		}

		for _, directoryEntry := range directoryEntries {
			if !directoryEntry.IsDir() {
				continue
			}
			name := directoryEntry.Name()
			if strings.HasPrefix(name, hiddenEntryPrefixConstant) || name == dependencyDirectoryConstant {
				continue
			}

			manifestPath := filepath.Join(root, name, DefaultFileName)
			if _, alreadySeen := seen[manifestPath]; alreadySeen {
				continue
			}
			if fileInfo, statError := fileSystem.Stat(manifestPath); statError == nil && !fileInfo.IsDir() {
				seen[manifestPath] = struct{}{}
				manifestPaths = append(manifestPaths, manifestPath)
			}
		}
	}

	sort.Strings(manifestPaths)
	return manifestPaths, nil
}
