// Package pathutils normalizes user-supplied repository and manifest paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// Resolver expands home shortcuts and anchors relative paths to a base directory.
type Resolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewResolver constructs a Resolver using the operating system home lookup.
func NewResolver() *Resolver {
	return NewResolverWithProvider(os.UserHomeDir)
}

// NewResolverWithProvider constructs a Resolver with a custom home provider.
func NewResolverWithProvider(provider HomeDirectoryProvider) *Resolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &Resolver{homeDirectoryProvider: provider}
}

// ExpandHome resolves a leading tilde to the user's home directory.
func (resolver *Resolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return homeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

// Resolve trims and home-expands candidatePath and joins relative results onto baseDirectory.
// An empty candidate yields an empty string.
func (resolver *Resolver) Resolve(baseDirectory string, candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}
	expandedPath := resolver.ExpandHome(trimmedPath)
	if filepath.IsAbs(expandedPath) || len(baseDirectory) == 0 {
		return filepath.Clean(expandedPath)
	}
	return filepath.Join(baseDirectory, expandedPath)
}

// ResolveAll resolves every candidate, dropping blanks and duplicates while keeping order.
func (resolver *Resolver) ResolveAll(baseDirectory string, candidatePaths []string) []string {
	resolvedPaths := make([]string, 0, len(candidatePaths))
	seenPaths := make(map[string]struct{}, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		resolvedPath := resolver.Resolve(baseDirectory, candidatePath)
		if len(resolvedPath) == 0 {
			continue
		}
		if _, seen := seenPaths[resolvedPath]; seen {
			continue
		}
		seenPaths[resolvedPath] = struct{}{}
		resolvedPaths = append(resolvedPaths, resolvedPath)
	}
	return resolvedPaths
}

func (resolver *Resolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
