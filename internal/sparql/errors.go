package sparql

import (
	"errors"
	"fmt"
)

// SyntaxError reports a lexing or parsing failure.
// Pos is the byte offset; Line and Column are 1-based.
type SyntaxError struct {
	Pos     int
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sparql: syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// IsSyntaxError reports whether err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}
