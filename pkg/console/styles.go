// Package console formats user-facing terminal output: styled message
// prefixes and aligned tables. All styling degrades to plain text when the
// output is not a terminal (lipgloss handles profile detection).
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "35"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "161"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "166"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "33"})
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"}).Bold(true)
	verboseStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "242"})
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// FormatSuccessMessage formats a message indicating a successful operation.
func FormatSuccessMessage(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// FormatErrorMessage formats a fatal error message.
func FormatErrorMessage(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// FormatWarningMessage formats an advisory message.
func FormatWarningMessage(msg string) string {
	return warningStyle.Render("⚠ " + msg)
}

// FormatInfoMessage formats a neutral informational message.
func FormatInfoMessage(msg string) string {
	return infoStyle.Render(msg)
}

// FormatCommandMessage formats a command about to be executed, shell style.
func FormatCommandMessage(cmd string) string {
	return commandStyle.Render("$ " + cmd)
}

// FormatVerboseMessage formats low-priority detail shown only with --verbose.
func FormatVerboseMessage(msg string) string {
	return verboseStyle.Render(msg)
}

// FormatLocationMessage formats a positional diagnostic as file:line:col:
// message, the same shape actionlint emits, so editors can jump to it.
func FormatLocationMessage(file string, line, col int, msg string) string {
	return fmt.Sprintf("%s:%d:%d: %s", file, line, col, msg)
}

// FormatHeader formats a section header for multi-part output.
func FormatHeader(title string) string {
	return headerStyle.Render(title)
}

// Indent prefixes every non-empty line of text with the given prefix.
// Used to nest step output under its step header.
func Indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
