// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpSongAdd    Op = "add song"
	OpSongDelete Op = "delete song"
	OpSongShow   Op = "show song"
	OpSongEdit   Op = "edit song"
	OpSongList   Op = "list songs"
	OpSearch     Op = "search library"
	OpFind       Op = "find songs"
	OpReindex    Op = "rebuild search index"

	// Export
	OpExport Op = "export songs"

	// Tag window
	OpTagRead  Op = "read tag"
	OpTagWrite Op = "write tag"
	OpTagDump  Op = "dump tag"

	// Setup
	OpConfigLoad  Op = "load config"
	OpConfigWrite Op = "write config"
	OpDatabase    Op = "open database"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
