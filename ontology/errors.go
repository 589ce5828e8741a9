package ontology

import (
	"errors"
	"fmt"
)

// SemanticError reports an ERD that parses but cannot form a valid model.
// Subject names the offending entity, field or relationship.
type SemanticError struct {
	Subject string
	// Line is the source line, or 0 when the model was not built from ERD text.
	Line int
	Msg  string
}

func (e *SemanticError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("semantic error at line %d: %s", e.Line, e.Msg)
	}
	return "semantic error: " + e.Msg
}

// IsSemanticError reports whether err is or wraps a *SemanticError.
func IsSemanticError(err error) bool {
	var se *SemanticError
	return errors.As(err, &se)
}

func semanticf(subject string, line int, format string, args ...any) error {
	return &SemanticError{Subject: subject, Line: line, Msg: fmt.Sprintf(format, args...)}
}
