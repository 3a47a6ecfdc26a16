// Package manifest reads package manifests and rewrites their version field.
//
// JSON manifests (package.json) keep their key order and are written with
// two-space indentation and a trailing newline. YAML manifests are edited
// through a node tree so key order and comments survive the rewrite.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/relkit/internal/filesystem"
)

const (
	// DefaultFileName is the manifest looked up when a directory is configured.
	DefaultFileName                   = "package.json"
	versionKeyConstant                = "version"
	nameKeyConstant                   = "name"
	privateKeyConstant                = "private"
	yamlExtensionConstant             = ".yaml"
	ymlExtensionConstant              = ".yml"
	defaultManifestPermissionConstant = fs.FileMode(0o644)
	readErrorTemplateConstant         = "unable to read manifest %s: %v"
	parseErrorTemplateConstant        = "malformed manifest %s: %s"
	writeErrorTemplateConstant        = "unable to write manifest %s: %v"
	missingVersionMessageConstant     = "missing version field"
	versionNotStringMessageConstant   = "version field must be a string"
	nameNotStringMessageConstant      = "name field must be a string"
	privateNotBooleanMessageConstant  = "private field must be a boolean"
	notAnObjectMessageConstant        = "top-level value must be an object"
)

// Format identifies the manifest encoding.
type Format string

// Supported manifest formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Manifest captures the release-relevant attributes of a package manifest.
type Manifest struct {
	Name      string
	Version   string
	Private   bool
	Path      string
	Directory string
	Format    Format
}

// ReadError reports a manifest that could not be located or read.
type ReadError struct {
	Path  string
	Cause error
}

// Error describes the read failure.
func (readError ReadError) Error() string {
	return fmt.Sprintf(readErrorTemplateConstant, readError.Path, readError.Cause)
}

// Unwrap exposes the underlying cause.
func (readError ReadError) Unwrap() error {
	return readError.Cause
}

// ParseError reports malformed manifest content.
type ParseError struct {
	Path   string
	Reason string
}

// Error describes the malformed content.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Path, parseError.Reason)
}

// WriteError reports a manifest that could not be written back.
type WriteError struct {
	Path  string
	Cause error
}

// Error describes the write failure.
func (writeError WriteError) Error() string {
	return fmt.Sprintf(writeErrorTemplateConstant, writeError.Path, writeError.Cause)
}

// Unwrap exposes the underlying cause.
func (writeError WriteError) Unwrap() error {
	return writeError.Cause
}

// Mutator loads manifests and rewrites their version.
type Mutator struct {
	fileSystem filesystem.FileSystem
}

// NewMutator constructs a Mutator; a nil file system defaults to the operating system.
func NewMutator(fileSystem filesystem.FileSystem) *Mutator {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &Mutator{fileSystem: fileSystem}
}

// ResolvePath returns the absolute manifest path, appending DefaultFileName for directories.
func (mutator *Mutator) ResolvePath(path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		trimmedPath = DefaultFileName
	}

	absolutePath, absoluteError := mutator.fileSystem.Abs(trimmedPath)
	if absoluteError != nil {
		return "", ReadError{Path: trimmedPath, Cause: absoluteError}
	}

	fileInfo, statError := mutator.fileSystem.Stat(absolutePath)
	if statError != nil {
		return "", ReadError{Path: absolutePath, Cause: statError}
	}
	if fileInfo.IsDir() {
		manifestPath := filepath.Join(absolutePath, DefaultFileName)
		if _, manifestStatError := mutator.fileSystem.Stat(manifestPath); manifestStatError != nil {
			return "", ReadError{Path: manifestPath, Cause: manifestStatError}
		}
		return manifestPath, nil
	}
	return absolutePath, nil
}

// Load reads the manifest at path (a file or a directory containing package.json).
func (mutator *Mutator) Load(path string) (Manifest, error) {
	manifestPath, resolveError := mutator.ResolvePath(path)
	if resolveError != nil {
		return Manifest{}, resolveError
	}

	content, readError := mutator.fileSystem.ReadFile(manifestPath)
	if readError != nil {
		return Manifest{}, ReadError{Path: manifestPath, Cause: readError}
	}

	format := detectFormat(manifestPath)
	var fields manifestFields
	var decodeError error
	switch format {
	case FormatYAML:
		fields, decodeError = decodeYAMLFields(content)
	default:
		fields, decodeError = decodeJSONFields(content)
	}
	if decodeError != nil {
		return Manifest{}, ParseError{Path: manifestPath, Reason: decodeError.Error()}
	}

	return Manifest{
		Name:      fields.name,
		Version:   fields.version,
		Private:   fields.private,
		Path:      manifestPath,
		Directory: filepath.Dir(manifestPath),
		Format:    format,
	}, nil
}

// SetVersion rewrites the version field of the manifest at path.
func (mutator *Mutator) SetVersion(path string, version string) error {
	manifestPath, resolveError := mutator.ResolvePath(path)
	if resolveError != nil {
		return resolveError
	}

	fileInfo, statError := mutator.fileSystem.Stat(manifestPath)
	if statError != nil {
		return ReadError{Path: manifestPath, Cause: statError}
	}
	permissions := fileInfo.Mode().Perm()
	if permissions == 0 {
		permissions = defaultManifestPermissionConstant
	}

	content, readError := mutator.fileSystem.ReadFile(manifestPath)
	if readError != nil {
		return ReadError{Path: manifestPath, Cause: readError}
	}

	var rewritten []byte
	var rewriteError error
	switch detectFormat(manifestPath) {
	case FormatYAML:
		rewritten, rewriteError = rewriteYAMLVersion(content, version)
	default:
		rewritten, rewriteError = rewriteJSONVersion(content, version)
	}
	if rewriteError != nil {
		return ParseError{Path: manifestPath, Reason: rewriteError.Error()}
	}

	if writeError := mutator.fileSystem.WriteFile(manifestPath, rewritten, permissions); writeError != nil {
		return WriteError{Path: manifestPath, Cause: writeError}
	}
	return nil
}

type manifestFields struct {
	name    string
	version string
	private bool
}

var (
	errMissingVersion    = errors.New(missingVersionMessageConstant)
	errVersionNotString  = errors.New(versionNotStringMessageConstant)
	errNameNotString     = errors.New(nameNotStringMessageConstant)
	errPrivateNotBoolean = errors.New(privateNotBooleanMessageConstant)
	errNotAnObject       = errors.New(notAnObjectMessageConstant)
)

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case yamlExtensionConstant, ymlExtensionConstant:
		return FormatYAML
	default:
		return FormatJSON
	}
}
