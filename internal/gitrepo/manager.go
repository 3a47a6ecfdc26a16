package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/relkit/internal/execshell"
)

const (
	gitDiffSubcommandConstant            = "diff"
	gitAddSubcommandConstant             = "add"
	gitAddAllFlagConstant                = "-A"
	gitCommitSubcommandConstant          = "commit"
	gitMessageFlagConstant               = "-m"
	gitTagSubcommandConstant             = "tag"
	gitPushSubcommandConstant            = "push"
	tagReferencePrefixConstant           = "refs/tags/"
	executorNotConfiguredMessageConstant = "git executor not configured"
	requiredValueMessageConstant         = "value required"
	requiredValueErrorTemplateConstant   = "%s: %s"
	tagExistsErrorTemplateConstant       = "tag %s already exists"
	diffFailedTemplateConstant           = "git diff failed: %w"
)

// ErrExecutorNotConfigured indicates a missing command executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// RequiredValueError reports an empty argument.
type RequiredValueError struct {
	Field string
}

// Error describes the missing value.
func (requiredError RequiredValueError) Error() string {
	return fmt.Sprintf(requiredValueErrorTemplateConstant, requiredError.Field, requiredValueMessageConstant)
}

// TagExistsError reports a release tag that is already present in the repository.
type TagExistsError struct {
	Tag string
}

// Error describes the conflicting tag.
func (existsError TagExistsError) Error() string {
	return fmt.Sprintf(tagExistsErrorTemplateConstant, existsError.Tag)
}

// RepositoryManager runs git commands against a working tree.
type RepositoryManager struct {
	executor       execshell.Executor
	repositoryPath string
}

// NewRepositoryManager constructs a RepositoryManager rooted at repositoryPath.
// An empty path runs git in the process working directory.
func NewRepositoryManager(executor execshell.Executor, repositoryPath string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor, repositoryPath: strings.TrimSpace(repositoryPath)}, nil
}

// WorkingTreeDiff returns the unstaged diff of tracked files.
func (manager *RepositoryManager) WorkingTreeDiff(executionContext context.Context) (string, error) {
	result, executionError := manager.run(executionContext, gitDiffSubcommandConstant)
	if executionError != nil {
		return "", fmt.Errorf(diffFailedTemplateConstant, executionError)
	}
	return result.StandardOutput, nil
}

// StageAll stages every change in the working tree.
func (manager *RepositoryManager) StageAll(executionContext context.Context) error {
	_, executionError := manager.run(executionContext, gitAddSubcommandConstant, gitAddAllFlagConstant)
	return executionError
}

// Commit records staged changes with the provided message.
func (manager *RepositoryManager) Commit(executionContext context.Context, message string) error {
	if len(strings.TrimSpace(message)) == 0 {
		return RequiredValueError{Field: "commit message"}
	}
	_, executionError := manager.run(executionContext, gitCommitSubcommandConstant, gitMessageFlagConstant, message)
	return executionError
}

// CreateTag creates a lightweight tag at HEAD.
func (manager *RepositoryManager) CreateTag(executionContext context.Context, tagName string) error {
	if len(strings.TrimSpace(tagName)) == 0 {
		return RequiredValueError{Field: "tag name"}
	}
	_, executionError := manager.run(executionContext, gitTagSubcommandConstant, tagName)
	return executionError
}

// PushTag pushes a single tag reference to the remote.
func (manager *RepositoryManager) PushTag(executionContext context.Context, remoteName string, tagName string) error {
	if len(strings.TrimSpace(remoteName)) == 0 {
		return RequiredValueError{Field: "remote name"}
	}
	if len(strings.TrimSpace(tagName)) == 0 {
		return RequiredValueError{Field: "tag name"}
	}
	_, executionError := manager.run(executionContext, gitPushSubcommandConstant, remoteName, tagReferencePrefixConstant+tagName)
	return executionError
}

// Push pushes the current branch to its upstream.
func (manager *RepositoryManager) Push(executionContext context.Context) error {
	_, executionError := manager.run(executionContext, gitPushSubcommandConstant)
	return executionError
}

func (manager *RepositoryManager) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: manager.repositoryPath,
		},
	})
}
