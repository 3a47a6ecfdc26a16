// Package publish pushes package manifests to a registry and classifies the outcome.
package publish
