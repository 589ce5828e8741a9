package erd

import "strings"

// ScalarType is one of the field types the notation accepts.
type ScalarType string

// Scalar types. Matching is case-sensitive.
const (
	ScalarString   ScalarType = "string"
	ScalarDate     ScalarType = "date"
	ScalarDateTime ScalarType = "datetime"
)

// ParseScalarType returns the scalar type named by tok.
func ParseScalarType(tok string) (ScalarType, bool) {
	switch ScalarType(tok) {
	case ScalarString, ScalarDate, ScalarDateTime:
		return ScalarType(tok), true
	}
	return "", false
}

// ForeignKeySuffix marks a field as a relationship hint rather than a property.
const ForeignKeySuffix = "_id"

// Diagram is the raw result of parsing one ERD source.
type Diagram struct {
	Entities      []EntityDeclaration
	Relationships []RelationshipDeclaration
}

// Entity returns the first entity declared with the given raw name.
func (d *Diagram) Entity(name string) (EntityDeclaration, bool) {
	for _, e := range d.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntityDeclaration{}, false
}

// EntityDeclaration is one entity block.
type EntityDeclaration struct {
	Name   string
	Fields []FieldDeclaration
	Line   int
}

// FieldDeclaration is one field line inside an entity block.
type FieldDeclaration struct {
	Type ScalarType
	Name string
	// Keys holds the PK/FK/UK markers written after the name.
	Keys    []string
	Comment string
	Line    int
}

// IsForeignKey reports whether the field only hints at a relationship.
func (f FieldDeclaration) IsForeignKey() bool {
	return strings.HasSuffix(f.Name, ForeignKeySuffix)
}

// RelationshipDeclaration is one relationship edge.
type RelationshipDeclaration struct {
	Left        string
	Right       string
	Cardinality Cardinality
	VerbPhrase  string
	Line        int
}

// IsSelfReferential reports whether both ends name the same entity.
func (r RelationshipDeclaration) IsSelfReferential() bool {
	return r.Left == r.Right
}
