package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

const (
	openRepositoryErrorTemplateConstant = "opening repository at %s: %w"
	headErrorTemplateConstant           = "reading HEAD: %w"
	tagLookupErrorTemplateConstant      = "looking up tag %s: %w"
	remoteLookupErrorTemplateConstant   = "looking up remote %s: %w"
	remoteWithoutURLTemplateConstant    = "remote %s has no url"
	defaultRepositoryPathConstant       = "."
)

// Inspector answers read-only questions about a repository using go-git.
type Inspector struct {
	repository *git.Repository
}

// OpenInspector opens the repository containing path, searching parent directories for .git.
func OpenInspector(path string) (*Inspector, error) {
	repositoryPath := strings.TrimSpace(path)
	if len(repositoryPath) == 0 {
		repositoryPath = defaultRepositoryPathConstant
	}

	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}
	return &Inspector{repository: repository}, nil
}

// CurrentBranch returns the checked-out branch name, or an empty string for a detached HEAD.
func (inspector *Inspector) CurrentBranch() (string, error) {
	head, headError := inspector.repository.Head()
	if headError != nil {
		return "", fmt.Errorf(headErrorTemplateConstant, headError)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// TagExists reports whether a tag with the given name exists locally.
func (inspector *Inspector) TagExists(tagName string) (bool, error) {
	_, tagError := inspector.repository.Tag(tagName)
	if tagError == nil {
		return true, nil
	}
	if errors.Is(tagError, git.ErrTagNotFound) {
		return false, nil
	}
	return false, fmt.Errorf(tagLookupErrorTemplateConstant, tagName, tagError)
}

// RemoteURL returns the parsed fetch URL of the named remote.
func (inspector *Inspector) RemoteURL(remoteName string) (RemoteURL, error) {
	remote, remoteError := inspector.repository.Remote(remoteName)
	if remoteError != nil {
		return RemoteURL{}, fmt.Errorf(remoteLookupErrorTemplateConstant, remoteName, remoteError)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return RemoteURL{}, fmt.Errorf(remoteWithoutURLTemplateConstant, remoteName)
	}
	return ParseRemoteURL(urls[0])
}
