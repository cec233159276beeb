package vm

import "fmt"

// ErrorKind classifies runtime failures. All of them are fatal: they
// mean the bytecode and the interpreter disagree, not that the script
// author made a recoverable mistake.
type ErrorKind int

const (
	StackUnderflow ErrorKind = iota
	TypeMismatch
	UnknownFunctionOrVariable
)

var errKindNames = map[ErrorKind]string{
	StackUnderflow:            "stack underflow",
	TypeMismatch:              "type mismatch",
	UnknownFunctionOrVariable: "unknown function or variable",
}

func (k ErrorKind) String() string {
	if s, ok := errKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// RuntimeError aborts interpretation. Index is the instruction where
// execution stopped; Level names the program.
type RuntimeError struct {
	Kind  ErrorKind
	Index int
	Level string
	Msg   string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at instruction %d of %q: %s", e.Kind, e.Index, e.Level, e.Msg)
}
