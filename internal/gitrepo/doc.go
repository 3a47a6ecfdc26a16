// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// RepositoryManager performs the mutating steps of a release (stage, commit,
// tag, push) through the git executable so dry runs can intercept them.
// Inspector answers read-only questions (current branch, tag existence,
// remote destination) in-process with go-git.
package gitrepo
