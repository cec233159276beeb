package parser

import "fmt"

// ErrorKind classifies compile errors beyond plain syntax problems.
type ErrorKind int

const (
	// KindSyntax is a malformed statement or unexpected token.
	KindSyntax ErrorKind = iota

	// KindUndeclaredVariable is a reference to a variable that has no
	// preceding assignment in the same level.
	KindUndeclaredVariable

	// KindDuplicateFunction is a second FUNCTION declaration with the
	// same name in one level.
	KindDuplicateFunction

	// KindMismatchedNesting is a block construct closed in the wrong
	// order, such as a BREAK outside a SWITCH.
	KindMismatchedNesting

	// KindInvalidSelection is a selection expression whose arguments
	// cannot form a selection.
	KindInvalidSelection
)

var kindNames = map[ErrorKind]string{
	KindSyntax:             "syntax",
	KindUndeclaredVariable: "undeclared variable",
	KindDuplicateFunction:  "duplicate function",
	KindMismatchedNesting:  "mismatched nesting",
	KindInvalidSelection:   "invalid selection",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a compile error with its source position.
type Error struct {
	Kind   ErrorKind
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at line %d, column %d: %s",
		e.Kind, e.Line, e.Column, e.Msg)
}
