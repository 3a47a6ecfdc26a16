// Package prompt asks line-based questions over an input and output stream.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	selectHeaderTemplateConstant      = "%s:\n"
	selectOptionTemplateConstant      = "  %d) %s\n"
	selectQuestionTemplateConstant    = "Enter choice [1-%d] (default 1): "
	invalidSelectionTemplateConstant  = "%q is not a valid choice\n"
	inputQuestionTemplateConstant     = "%s (%s): "
	inputQuestionBareTemplateConstant = "%s: "
	confirmQuestionTemplateConstant   = "%s [y/N]: "
	inputClosedMessageConstant        = "input closed before an answer was given"
	noOptionsMessageConstant          = "no options to select from"
)

var (
	// ErrInputClosed indicates the input stream ended before an answer was read.
	ErrInputClosed = errors.New(inputClosedMessageConstant)
	// ErrNoOptions indicates Select was called without options.
	ErrNoOptions = errors.New(noOptionsMessageConstant)
)

// Option is a selectable answer.
type Option struct {
	Label string
	Value string
}

// IOPrompter reads answers from an io.Reader and writes questions to an io.Writer.
type IOPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOPrompter constructs a prompter from the provided reader and writer.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	if output == nil {
		output = io.Discard
	}
	return &IOPrompter{reader: bufio.NewReader(input), writer: output}
}

// Select lists the options and returns the value of the chosen one. Options
// can be chosen by number or by value; an empty answer picks the first.
func (prompter *IOPrompter) Select(message string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}

	if _, writeError := fmt.Fprintf(prompter.writer, selectHeaderTemplateConstant, message); writeError != nil {
		return "", writeError
	}
	for optionIndex, option := range options {
		if _, writeError := fmt.Fprintf(prompter.writer, selectOptionTemplateConstant, optionIndex+1, option.Label); writeError != nil {
			return "", writeError
		}
	}

	for {
		if _, writeError := fmt.Fprintf(prompter.writer, selectQuestionTemplateConstant, len(options)); writeError != nil {
			return "", writeError
		}
		response, inputClosed, readError := prompter.readLine()
		if readError != nil {
			return "", readError
		}
		if len(response) == 0 {
			if inputClosed {
				return "", ErrInputClosed
			}
			return options[0].Value, nil
		}
		if selected, found := matchOption(response, options); found {
			return selected, nil
		}
		if inputClosed {
			return "", ErrInputClosed
		}
		if _, writeError := fmt.Fprintf(prompter.writer, invalidSelectionTemplateConstant, response); writeError != nil {
			return "", writeError
		}
	}
}

// Input asks for free-form text; an empty answer returns initial.
func (prompter *IOPrompter) Input(message string, initial string) (string, error) {
	question := fmt.Sprintf(inputQuestionBareTemplateConstant, message)
	if len(initial) > 0 {
		question = fmt.Sprintf(inputQuestionTemplateConstant, message, initial)
	}
	if _, writeError := io.WriteString(prompter.writer, question); writeError != nil {
		return "", writeError
	}

	response, inputClosed, readError := prompter.readLine()
	if readError != nil {
		return "", readError
	}
	if len(response) > 0 {
		return response, nil
	}
	if inputClosed {
		return "", ErrInputClosed
	}
	return initial, nil
}

// Confirm writes the question and interprets affirmative responses (y/yes).
func (prompter *IOPrompter) Confirm(message string) (bool, error) {
	if _, writeError := fmt.Fprintf(prompter.writer, confirmQuestionTemplateConstant, message); writeError != nil {
		return false, writeError
	}

	response, _, readError := prompter.readLine()
	if readError != nil {
		return false, readError
	}

	switch strings.ToLower(response) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (prompter *IOPrompter) readLine() (string, bool, error) {
	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", false, readError
	}
	return strings.TrimSpace(response), readError != nil, nil
}

func matchOption(response string, options []Option) (string, bool) {
	if optionNumber, parseError := strconv.Atoi(response); parseError == nil {
		if optionNumber >= 1 && optionNumber <= len(options) {
			return options[optionNumber-1].Value, true
		}
		return "", false
	}
	for _, option := range options {
		if strings.EqualFold(option.Value, response) {
			return option.Value, true
		}
	}
	return "", false
}

// IsInteractive reports whether the file is attached to a terminal.
func IsInteractive(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
