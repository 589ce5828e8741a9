// Package export serializes an ontology Model as RDF and reads it back.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/c360studio/sintology/ontology"
	"github.com/c360studio/sintology/vocabulary"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// IRI is an absolute IRI used as a triple object.
type IRI string

// Triple is one statement. Object is an IRI or a plain string literal.
type Triple struct {
	Subject   string
	Predicate string
	Object    any
}

// subjectBlock groups the statements about one subject in emission order.
type subjectBlock struct {
	subject string
	preds   []predicateObjects
}

type predicateObjects struct {
	predicate string
	objects   []any
}

func (b *subjectBlock) add(predicate string, objects ...any) {
	if len(objects) == 0 {
		return
	}
	b.preds = append(b.preds, predicateObjects{predicate: predicate, objects: objects})
}

func (b *subjectBlock) triples() []Triple {
	var out []Triple
	for _, po := range b.preds {
		for _, o := range po.objects {
			out = append(out, Triple{Subject: b.subject, Predicate: po.predicate, Object: o})
		}
	}
	return out
}

// OntologyExporter renders a Model under one namespace.
type OntologyExporter struct {
	namespace string
	prefixes  map[string]string
}

// NewOntologyExporter creates an exporter for generated terms in ns. An
// empty ns selects vocabulary.DefaultNamespace.
func NewOntologyExporter(ns string) *OntologyExporter {
	if ns == "" {
		ns = vocabulary.DefaultNamespace
	}
	return &OntologyExporter{
		namespace: ns,
		prefixes:  vocabulary.Prefixes(ns),
	}
}

// Namespace returns the namespace of generated terms.
func (e *OntologyExporter) Namespace() string {
	return e.namespace
}

// Export serializes m in the given format.
func (e *OntologyExporter) Export(m *ontology.Model, format Format) ([]byte, error) {
	var sb strings.Builder
	if err := e.Write(&sb, m, format); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Write serializes m in the given format to w.
func (e *OntologyExporter) Write(w io.Writer, m *ontology.Model, format Format) error {
	blocks := e.blocks(m)
	var out string
	switch format {
	case FormatTurtle, "":
		out = e.toTurtle(blocks)
	case FormatNTriples:
		out = e.toNTriples(blocks)
	case FormatJSONLD:
		s, err := e.toJSONLD(blocks)
		if err != nil {
			return err
		}
		out = s
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	_, err := io.WriteString(w, out)
	return err
}

// OntologyIRI returns the IRI of the ontology header resource.
func (e *OntologyExporter) OntologyIRI() string {
	return strings.TrimRight(e.namespace, "#/")
}

// blocks lays out the ontology header, classes, datatype properties and
// object properties in model order.
func (e *OntologyExporter) blocks(m *ontology.Model) []subjectBlock {
	header := subjectBlock{subject: e.OntologyIRI()}
	header.add(vocabulary.RDFType, IRI(vocabulary.OWLOntology))
	if m.Name() != "" {
		header.add(vocabulary.RDFSLabel, m.Name())
	}
	blocks := []subjectBlock{header}

	props := m.Properties()
	hasObject := false
	for _, p := range props {
		if p.Kind == ontology.KindObject {
			hasObject = true
			break
		}
	}
	if hasObject {
		card := subjectBlock{subject: e.namespace + vocabulary.CardinalityLocalName}
		card.add(vocabulary.RDFType, IRI(vocabulary.OWLAnnotationProperty))
		blocks = append(blocks, card)
	}

	for _, c := range m.Classes() {
		b := subjectBlock{subject: e.namespace + c.Name}
		b.add(vocabulary.RDFType, IRI(vocabulary.OWLClass))
		b.add(vocabulary.RDFSLabel, c.Label)
		blocks = append(blocks, b)
	}

	locals := LocalNames(m)
	for _, kind := range []ontology.Kind{ontology.KindDatatype, ontology.KindObject} {
		for i, p := range props {
			if p.Kind != kind {
				continue
			}
			blocks = append(blocks, e.propertyBlock(p, locals[i]))
		}
	}
	return blocks
}

func (e *OntologyExporter) propertyBlock(p ontology.Property, local string) subjectBlock {
	b := subjectBlock{subject: e.namespace + local}
	if p.Kind == ontology.KindObject {
		b.add(vocabulary.RDFType, IRI(vocabulary.OWLObjectProperty))
	} else {
		b.add(vocabulary.RDFType, IRI(vocabulary.OWLDatatypeProperty))
	}
	b.add(vocabulary.RDFSLabel, p.Name)

	switch {
	case p.IsUniversal():
	case len(p.Domain) == 1:
		b.add(vocabulary.RDFSDomain, IRI(e.namespace+p.Domain[0]))
	default:
		domains := make([]any, 0, len(p.Domain))
		for _, d := range p.Domain {
			domains = append(domains, IRI(e.namespace+d))
		}
		b.add(vocabulary.SchemaDomainIncludes, domains...)
	}

	if p.Kind == ontology.KindObject {
		b.add(vocabulary.RDFSRange, IRI(e.namespace+p.Range))
		if p.Cardinality != "" {
			b.add(e.namespace+vocabulary.CardinalityLocalName, p.Cardinality)
		}
	} else {
		b.add(vocabulary.RDFSRange, IRI(vocabulary.Expand(p.Range)))
	}
	if p.Comment != "" {
		b.add(vocabulary.RDFSComment, p.Comment)
	}
	return b
}

// LocalNames returns the IRI local name of every property of m, in
// m.Properties() order. A property sharing its name with other distinct
// entries, or whose name is taken by the cardinality annotation, is
// qualified by its first domain class ("Thing" when universal). Names that
// still clash get a numeric suffix, so no two terms share an IRI.
func LocalNames(m *ontology.Model) []string {
	used := map[string]bool{vocabulary.CardinalityLocalName: true}
	for _, c := range m.Classes() {
		used[c.Name] = true
	}

	props := m.Properties()
	out := make([]string, len(props))
	for i, p := range props {
		local := p.Name
		if used[local] || len(m.PropertiesNamed(p.Name)) > 1 {
			local = qualifier(p) + "_" + p.Name
		}
		base := local
		for n := 2; used[local]; n++ {
			local = fmt.Sprintf("%s_%d", base, n)
		}
		used[local] = true
		out[i] = local
	}
	return out
}

func qualifier(p ontology.Property) string {
	if p.IsUniversal() || len(p.Domain) == 0 {
		return "Thing"
	}
	return p.Domain[0]
}

var localNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// compact writes iri as prefix:local when a prefix covers it.
func compact(prefixes map[string]string, iri string) string {
	best := ""
	for prefix, ns := range prefixes {
		local, ok := strings.CutPrefix(iri, ns)
		if !ok || !localNameRe.MatchString(local) {
			continue
		}
		candidate := prefix + ":" + local
		if best == "" || len(candidate) < len(best) || (len(candidate) == len(best) && candidate < best) {
			best = candidate
		}
	}
	if best == "" {
		return "<" + iri + ">"
	}
	return best
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
