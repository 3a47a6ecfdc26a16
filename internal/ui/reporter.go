package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const (
	stepPrefixConstant         = "==>"
	noticePrefixConstant       = "-"
	successPrefixConstant      = "✔"
	warningPrefixConstant      = "!"
	dryRunPrefixConstant       = "[dryrun]"
	linePrefixTemplateConstant = "%s %s\n"
)

// Reporter writes release progress lines to a terminal stream.
type Reporter struct {
	writer       io.Writer
	stepColor    *color.Color
	noticeColor  *color.Color
	successColor *color.Color
	warningColor *color.Color
	dryRunColor  *color.Color
}

// NewReporter constructs a Reporter writing to writer; colorize toggles ANSI styling.
func NewReporter(writer io.Writer, colorize bool) *Reporter {
	if writer == nil {
		writer = io.Discard
	}
	reporter := &Reporter{
		writer:       writer,
		stepColor:    color.New(color.FgCyan, color.Bold),
		noticeColor:  color.New(color.Faint),
		successColor: color.New(color.FgGreen, color.Bold),
		warningColor: color.New(color.FgYellow),
		dryRunColor:  color.New(color.FgMagenta),
	}
	for _, configuredColor := range []*color.Color{reporter.stepColor, reporter.noticeColor, reporter.successColor, reporter.warningColor, reporter.dryRunColor} {
		if colorize {
			configuredColor.EnableColor()
		} else {
			configuredColor.DisableColor()
		}
	}
	return reporter
}

// Step announces a pipeline stage.
func (reporter *Reporter) Step(format string, arguments ...any) {
	reporter.writeLine(reporter.stepColor, stepPrefixConstant, format, arguments...)
}

// Notice reports an informational detail such as a skipped stage.
func (reporter *Reporter) Notice(format string, arguments ...any) {
	reporter.writeLine(reporter.noticeColor, noticePrefixConstant, format, arguments...)
}

// Success reports a completed outcome.
func (reporter *Reporter) Success(format string, arguments ...any) {
	reporter.writeLine(reporter.successColor, successPrefixConstant, format, arguments...)
}

// Warning reports a condition the operator should look at.
func (reporter *Reporter) Warning(format string, arguments ...any) {
	reporter.writeLine(reporter.warningColor, warningPrefixConstant, format, arguments...)
}

// DryRun reports an action that a live run would perform.
func (reporter *Reporter) DryRun(format string, arguments ...any) {
	reporter.writeLine(reporter.dryRunColor, dryRunPrefixConstant, format, arguments...)
}

// CommandPreviewed implements execshell.DryRunObserver.
func (reporter *Reporter) CommandPreviewed(commandLine string) {
	reporter.DryRun("%s", commandLine)
}

func (reporter *Reporter) writeLine(lineColor *color.Color, prefix string, format string, arguments ...any) {
	if reporter == nil {
		return
	}
	message := fmt.Sprintf(format, arguments...)
	fmt.Fprintf(reporter.writer, linePrefixTemplateConstant, lineColor.Sprint(prefix), message)
}
