package lexer

import "fmt"

// LexError is a tokenization failure with its source position.
type LexError struct {
	Line   int
	Column int
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, col %d: %s", e.Line, e.Column, e.Reason)
}
