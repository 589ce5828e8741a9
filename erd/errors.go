package erd

import (
	"errors"
	"fmt"
)

// SyntaxError reports malformed ERD source. Line and Column are 1-based.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
	// Token is the offending text, when there is one.
	Token string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// IsSyntaxError reports whether err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}
