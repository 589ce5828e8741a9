package validate

import (
	"fmt"

	"github.com/agext/levenshtein"
)

// Code classifies a violation.
type Code string

// Violation codes.
const (
	CodeUnknownClass        Code = "unknown_class"
	CodeUnknownProperty     Code = "unknown_property"
	CodeNotDatatypeProperty Code = "not_datatype_property"
	CodeInvalidValue        Code = "invalid_value"
	CodeMissingID           Code = "missing_id"
	CodeDuplicateID         Code = "duplicate_id"
	CodeUnknownRelationship Code = "unknown_relationship"
	CodeDanglingReference   Code = "dangling_reference"
	CodeDomainMismatch      Code = "domain_mismatch"
	CodeRangeMismatch       Code = "range_mismatch"
	CodeExclusiveGroup      Code = "exclusive_group"
)

// Violation is one reason an instance was rejected.
type Violation struct {
	Code    Code   `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	// Suggestion is the closest known name for a misspelled class or property.
	Suggestion string `json:"suggestion,omitempty"`
}

func (v Violation) String() string {
	s := fmt.Sprintf("%s: %s", v.Code, v.Message)
	if v.Suggestion != "" {
		s += fmt.Sprintf(" (did you mean %q?)", v.Suggestion)
	}
	return s
}

// Instance kinds.
const (
	KindNode = "node"
	KindEdge = "edge"
)

// Result is the verdict on one node or edge.
type Result struct {
	Kind       string      `json:"kind"`
	ID         string      `json:"id"`
	Violations []Violation `json:"violations,omitempty"`
}

// Accepted reports whether the instance has no violations.
func (r Result) Accepted() bool {
	return len(r.Violations) == 0
}

func (r *Result) add(code Code, field, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) addSuggested(code Code, field, suggestion, format string, args ...any) {
	r.add(code, field, format, args...)
	r.Violations[len(r.Violations)-1].Suggestion = suggestion
}

// maxSuggestDistance bounds the edit distance of a suggestion.
const maxSuggestDistance = 2

// suggest returns the candidate closest to name, or "" when none is within
// maxSuggestDistance edits.
func suggest(name string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := levenshtein.Distance(name, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
