package vocabulary

import "strings"

// XSD datatypes produced by the ERD scalar types.
const (
	XSDString   = XSDNamespace + "string"
	XSDDate     = XSDNamespace + "date"
	XSDDateTime = XSDNamespace + "dateTime"
)

// Compact names used by the runtime schema document.
const (
	CompactString   = "xsd:string"
	CompactDate     = "xsd:date"
	CompactDateTime = "xsd:dateTime"
	CompactThing    = "owl:Thing"
)

// scalarRanges maps ERD scalar type names to compact XSD datatypes.
var scalarRanges = map[string]string{
	"string":   CompactString,
	"date":     CompactDate,
	"datetime": CompactDateTime,
}

// RangeForScalar returns the compact XSD datatype for an ERD scalar type.
func RangeForScalar(scalar string) (string, bool) {
	r, ok := scalarRanges[scalar]
	return r, ok
}

// IsDatatypeRange reports whether a compact name is one of the XSD datatypes
// produced by the ERD scalar types.
func IsDatatypeRange(compact string) bool {
	switch compact {
	case CompactString, CompactDate, CompactDateTime:
		return true
	}
	return false
}

var standardPrefixes = []struct{ prefix, ns string }{
	{"rdf", RDFNamespace},
	{"rdfs", RDFSNamespace},
	{"owl", OWLNamespace},
	{"xsd", XSDNamespace},
	{"schema", SchemaNamespace},
}

// Expand turns a compact name such as "xsd:date" into a full IRI. Names
// with an unknown prefix are returned unchanged.
func Expand(compact string) string {
	prefix, local, ok := strings.Cut(compact, ":")
	if !ok {
		return compact
	}
	for _, p := range standardPrefixes {
		if p.prefix == prefix {
			return p.ns + local
		}
	}
	return compact
}

// Compact turns a full IRI in one of the standard namespaces into its
// compact name. Other IRIs are returned unchanged.
func Compact(iri string) string {
	for _, p := range standardPrefixes {
		if local, ok := strings.CutPrefix(iri, p.ns); ok {
			return p.prefix + ":" + local
		}
	}
	return iri
}
