package prompt_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/prompt"
)

var releaseOptions = []prompt.Option{
	{Label: "patch (1.0.1)", Value: "patch"},
	{Label: "minor (1.1.0)", Value: "minor"},
	{Label: "custom", Value: "custom"},
}

func TestSelect(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "default_choice", input: "\n", expected: "patch"},
		{name: "by_number", input: "2\n", expected: "minor"},
		{name: "by_value", input: "Custom\n", expected: "custom"},
		{name: "retry_after_invalid", input: "9\n3\n", expected: "custom"},
		{name: "last_line_without_newline", input: "2", expected: "minor"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			prompter := prompt.NewIOPrompter(strings.NewReader(testCase.input), output)

			selected, selectError := prompter.Select("Select release type", releaseOptions)
			require.NoError(testInstance, selectError)
			require.Equal(testInstance, testCase.expected, selected)
			require.Contains(testInstance, output.String(), "Select release type:\n  1) patch (1.0.1)\n  2) minor (1.1.0)\n  3) custom\n")
		})
	}
}

func TestSelectReportsClosedInput(testInstance *testing.T) {
	prompter := prompt.NewIOPrompter(strings.NewReader(""), nil)
	_, selectError := prompter.Select("Select release type", releaseOptions)
	require.ErrorIs(testInstance, selectError, prompt.ErrInputClosed)

	_, emptyError := prompter.Select("Select release type", nil)
	require.ErrorIs(testInstance, emptyError, prompt.ErrNoOptions)
}

func TestInput(testInstance *testing.T) {
	output := &bytes.Buffer{}
	prompter := prompt.NewIOPrompter(strings.NewReader("\n2.0.0-rc.0\n"), output)

	defaulted, defaultError := prompter.Input("Enter version", "1.0.0")
	require.NoError(testInstance, defaultError)
	require.Equal(testInstance, "1.0.0", defaulted)
	require.Equal(testInstance, "Enter version (1.0.0): ", output.String())

	entered, enteredError := prompter.Input("Enter version", "1.0.0")
	require.NoError(testInstance, enteredError)
	require.Equal(testInstance, "2.0.0-rc.0", entered)

	_, closedError := prompter.Input("Enter version", "1.0.0")
	require.ErrorIs(testInstance, closedError, prompt.ErrInputClosed)
}

func TestConfirm(testInstance *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{input: "y\n", expected: true},
		{input: "YES\n", expected: true},
		{input: "n\n", expected: false},
		{input: "\n", expected: false},
		{input: "", expected: false},
	}

	for _, testCase := range testCases {
		output := &bytes.Buffer{}
		prompter := prompt.NewIOPrompter(strings.NewReader(testCase.input), output)
		confirmed, confirmError := prompter.Confirm("Releasing v1.2.3. Confirm?")
		require.NoError(testInstance, confirmError)
		require.Equal(testInstance, testCase.expected, confirmed, testCase.input)
		require.Equal(testInstance, "Releasing v1.2.3. Confirm? [y/N]: ", output.String())
	}
}

func TestIsInteractiveRejectsRegularFiles(testInstance *testing.T) {
	regularFile, createError := os.Create(filepath.Join(testInstance.TempDir(), "stdin"))
	require.NoError(testInstance, createError)
	defer regularFile.Close()

	require.False(testInstance, prompt.IsInteractive(regularFile))
	require.False(testInstance, prompt.IsInteractive(nil))
}
