package expr

import "fmt"

// SyntaxError reports source that does not parse.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at %d: %s", e.Pos, e.Msg)
}

// ReferenceError reports an identifier that resolves in no scope.
type ReferenceError struct {
	Name string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("expr: %s is not defined", e.Name)
}

// TypeError reports an operation on a value that cannot support it, such as
// reading a property of null.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string {
	return "expr: " + e.Msg
}
