// Package ui renders human-facing release output: step lines, dry-run
// previews, command lifecycle messages, progress spinners and tables.
//
// Detailed telemetry continues to flow through structured zap loggers; the
// helpers here keep terminal feedback concise.
package ui
