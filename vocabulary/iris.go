package vocabulary

// Namespace IRIs of the standard vocabularies.
const (
	RDFNamespace    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace   = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace    = "http://www.w3.org/2002/07/owl#"
	XSDNamespace    = "http://www.w3.org/2001/XMLSchema#"
	SchemaNamespace = "http://schema.org/"
)

// DefaultNamespace is the base IRI for generated classes and properties.
const DefaultNamespace = "http://example.org/sintology#"

// RDF and RDFS terms.
const (
	RDFType      = RDFNamespace + "type"
	RDFSLabel    = RDFSNamespace + "label"
	RDFSComment  = RDFSNamespace + "comment"
	RDFSDomain   = RDFSNamespace + "domain"
	RDFSRange    = RDFSNamespace + "range"
	RDFSSubClass = RDFSNamespace + "subClassOf"
)

// OWL terms.
const (
	OWLOntology           = OWLNamespace + "Ontology"
	OWLClass              = OWLNamespace + "Class"
	OWLThing              = OWLNamespace + "Thing"
	OWLDatatypeProperty   = OWLNamespace + "DatatypeProperty"
	OWLObjectProperty     = OWLNamespace + "ObjectProperty"
	OWLAnnotationProperty = OWLNamespace + "AnnotationProperty"
)

// SchemaDomainIncludes lists several possible domains of a property with
// union semantics. rdfs:domain with several values means intersection, so
// multi-domain properties use this term instead.
const SchemaDomainIncludes = SchemaNamespace + "domainIncludes"

// CardinalityLocalName is the local name of the annotation property that
// carries relationship cardinality in the generated namespace.
const CardinalityLocalName = "cardinality"

// Prefixes returns the standard prefix table. The empty prefix is bound to
// ns, the namespace of generated terms.
func Prefixes(ns string) map[string]string {
	return map[string]string{
		"":       ns,
		"rdf":    RDFNamespace,
		"rdfs":   RDFSNamespace,
		"owl":    OWLNamespace,
		"xsd":    XSDNamespace,
		"schema": SchemaNamespace,
	}
}
