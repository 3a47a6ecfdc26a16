package release

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/prompt"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveContext(executionContext context.Context) context.Context {
	if executionContext == nil {
		return context.Background()
	}
	return executionContext
}

// isTerminalStream reports whether stream is a file attached to a terminal.
func isTerminalStream(stream any) bool {
	file, isFile := stream.(*os.File)
	if !isFile {
		return false
	}
	return prompt.IsInteractive(file)
}
