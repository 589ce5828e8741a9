// Package erd parses the entity-relationship diagram notation that drives
// ontology generation.
//
// The notation is the Mermaid erDiagram subset:
//
//	erDiagram
//	    PERSON {
//	        string full_name
//	        date date_of_birth
//	        string organisation_id FK
//	    }
//	    PERSON ||--o{ ORGANISATION : member_of
//
// Parse performs no semantic checks. Entity references in relationships are
// recorded as written and resolved later by the ontology builder, so a
// relationship may name an entity declared further down the file.
//
// When the source is a Markdown document, only the first ```mermaid fence is
// parsed. Line numbers in declarations and errors always refer to the whole
// file.
package erd
