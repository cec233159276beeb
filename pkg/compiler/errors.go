package compiler

import (
	"fmt"
	"strings"
)

// CompileError is a compilation failure with location information and a
// source context snippet pointing at the offending column.
type CompileError struct {
	// Phase is the compilation phase that produced the error, either
	// "lexer" or "parser".
	Phase string

	// Message is the human-readable error description.
	Message string

	// Line is the 1-indexed line number where the error occurred.
	Line int

	// Column is the 1-indexed column number where the error occurred.
	Column int

	// Context holds the source lines around the error with a ^ marker
	// under the error column. Empty when no source was available.
	Context string
}

func (e *CompileError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s error at line %d, column %d: %s\n%s",
			e.Phase, e.Line, e.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error at line %d, column %d: %s",
		e.Phase, e.Line, e.Column, e.Message)
}

// NewLexerErrorWithContext builds a lexer phase CompileError with a
// source snippet around the error location.
func NewLexerErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "lexer",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// NewParserErrorWithContext builds a parser phase CompileError with a
// source snippet around the error location.
func NewParserErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "parser",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// GenerateErrorContext renders the two source lines before and after the
// error line, with line numbers, a > marker on the error line and a ^
// under the error column.
//
// Example output:
//
//	  2 | ROOM: "ordinary", lit, random, random, (5,5)
//	  3 | {
//	> 4 | STAIR: random,
//	    |               ^
//	  5 | }
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := lines[i]

		if lineNum == line {
			buf.WriteString(fmt.Sprintf("> %*d | %s\n", lineNumWidth, lineNum, lineContent))
			pointerIndent := 2 + lineNumWidth + 3
			if column > 0 {
				buf.WriteString(fmt.Sprintf("%s%s^\n", strings.Repeat(" ", pointerIndent), strings.Repeat(" ", column-1)))
			} else {
				buf.WriteString(fmt.Sprintf("%s^\n", strings.Repeat(" ", pointerIndent)))
			}
		} else {
			buf.WriteString(fmt.Sprintf("  %*d | %s\n", lineNumWidth, lineNum, lineContent))
		}
	}

	return buf.String()
}
