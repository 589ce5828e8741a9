// Package vocabulary provides the semantic-web vocabulary used by the
// ontology and schema emitters.
//
// The package holds three kinds of terms:
//   - Standard IRIs from RDF, RDFS, OWL, XSD and schema.org
//   - The prefix table written at the top of every Turtle document
//   - The mapping from ERD scalar types to XSD datatypes
//
// # Compact Names
//
// The runtime schema document refers to XSD datatypes and the universal
// domain by their compact names ("xsd:string", "owl:Thing"). Expand and
// Compact convert between compact names and full IRIs using the default
// prefix table.
//
//	Compact("http://www.w3.org/2001/XMLSchema#date") // "xsd:date"
//	Expand("owl:Thing")                             // "http://www.w3.org/2002/07/owl#Thing"
package vocabulary
