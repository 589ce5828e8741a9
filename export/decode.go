package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/knakk/rdf"

	"github.com/c360studio/sintology/ontology"
	"github.com/c360studio/sintology/vocabulary"
)

// resource collects the statements about one subject.
type resource struct {
	iri   string
	props map[string][]rdf.Object
}

func (r *resource) iris(predicate string) []string {
	var out []string
	for _, o := range r.props[predicate] {
		if iri, ok := o.(rdf.IRI); ok {
			out = append(out, iri.String())
		}
	}
	return out
}

func (r *resource) literal(predicate string) string {
	for _, o := range r.props[predicate] {
		if lit, ok := o.(rdf.Literal); ok {
			return lit.String()
		}
	}
	return ""
}

func (r *resource) hasType(typeIRI string) bool {
	for _, t := range r.iris(vocabulary.RDFType) {
		if t == typeIRI {
			return true
		}
	}
	return false
}

// Decode reads an ontology document written by OntologyExporter back into
// a Model. Turtle and N-Triples are supported.
func Decode(r io.Reader, format Format) (*ontology.Model, error) {
	var rf rdf.Format
	switch format {
	case FormatTurtle, "":
		rf = rdf.Turtle
	case FormatNTriples:
		rf = rdf.NTriples
	default:
		return nil, fmt.Errorf("unsupported decode format: %s", format)
	}

	resources, order, err := readResources(rdf.NewTripleDecoder(r, rf))
	if err != nil {
		return nil, err
	}

	var (
		name    string
		classes []ontology.Class
		dtProps []ontology.Property
		obProps []ontology.Property
	)
	for _, iri := range order {
		res := resources[iri]
		switch {
		case res.hasType(vocabulary.OWLOntology):
			name = res.literal(vocabulary.RDFSLabel)
		case res.hasType(vocabulary.OWLClass):
			classes = append(classes, ontology.Class{
				Name:  localPart(iri),
				Label: res.literal(vocabulary.RDFSLabel),
			})
		case res.hasType(vocabulary.OWLDatatypeProperty):
			dtProps = append(dtProps, decodeProperty(res, ontology.KindDatatype))
		case res.hasType(vocabulary.OWLObjectProperty):
			obProps = append(obProps, decodeProperty(res, ontology.KindObject))
		}
	}
	return ontology.Assemble(name, classes, append(dtProps, obProps...))
}

func readResources(dec rdf.TripleDecoder) (map[string]*resource, []string, error) {
	resources := make(map[string]*resource)
	var order []string
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return resources, order, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decode rdf: %w", err)
		}
		subj := t.Subj.String()
		res, ok := resources[subj]
		if !ok {
			res = &resource{iri: subj, props: make(map[string][]rdf.Object)}
			resources[subj] = res
			order = append(order, subj)
		}
		pred := t.Pred.String()
		res.props[pred] = append(res.props[pred], t.Obj)
	}
}

func decodeProperty(res *resource, kind ontology.Kind) ontology.Property {
	p := ontology.Property{
		Name:    res.literal(vocabulary.RDFSLabel),
		Kind:    kind,
		Comment: res.literal(vocabulary.RDFSComment),
	}
	if p.Name == "" {
		p.Name = localPart(res.iri)
	}

	domains := append(res.iris(vocabulary.RDFSDomain), res.iris(vocabulary.SchemaDomainIncludes)...)
	for _, d := range domains {
		if d == vocabulary.OWLThing {
			p.Domain = []string{ontology.Universal}
			break
		}
		p.Domain = append(p.Domain, localPart(d))
	}
	if len(p.Domain) == 0 && kind == ontology.KindDatatype {
		p.Domain = []string{ontology.Universal}
	}

	if ranges := res.iris(vocabulary.RDFSRange); len(ranges) > 0 {
		if kind == ontology.KindDatatype {
			p.Range = vocabulary.Compact(ranges[0])
		} else {
			p.Range = localPart(ranges[0])
		}
	}
	if kind == ontology.KindObject {
		for pred := range res.props {
			if localPart(pred) == vocabulary.CardinalityLocalName {
				p.Cardinality = res.literal(pred)
			}
		}
	}
	return p
}

// localPart returns the text after the last '#' or '/' of an IRI.
func localPart(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
