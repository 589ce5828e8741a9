package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/c360studio/sintology/vocabulary"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat accepts a format name such as "turtle" or an extension such
// as ".ttl".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatTurtle, nil
	}
	for name, info := range FormatRegistry {
		if s == string(name) || s == info.Extension || "."+s == info.Extension {
			return name, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// FormatForPath picks the format from a file extension, falling back to
// Turtle.
func FormatForPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil && filepath.Ext(path) != "" {
		return f
	}
	return FormatTurtle
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a Turtle writer using the given prefix table.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	return &TurtleWriter{prefixes: prefixes}
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, prefix := range keys {
		fmt.Fprintf(&w.sb, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(iri string) {
	w.sb.WriteString(compact(w.prefixes, iri))
}

// WritePredicate writes a predicate with its objects. The first predicate
// of a block stays on the subject line.
func (w *TurtleWriter) WritePredicate(predicateIRI string, objects []any, first, last bool) {
	if first {
		w.sb.WriteString(" ")
	} else {
		w.sb.WriteString("    ")
	}
	if predicateIRI == vocabulary.RDFType {
		w.sb.WriteString("a")
	} else {
		w.sb.WriteString(compact(w.prefixes, predicateIRI))
	}
	for i, o := range objects {
		if i > 0 {
			w.sb.WriteString(",")
		}
		w.sb.WriteString(" ")
		w.sb.WriteString(w.formatObject(o))
	}
	terminator := " ;\n"
	if last {
		terminator = " .\n"
	}
	w.sb.WriteString(terminator)
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

func (w *TurtleWriter) formatObject(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return compact(w.prefixes, string(v))
	case string:
		return fmt.Sprintf("\"%s\"", escapeString(v))
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple.
func (w *NTriplesWriter) WriteTriple(t Triple) {
	fmt.Fprintf(&w.sb, "<%s> <%s> %s .\n", t.Subject, t.Predicate, formatObjectNTriples(t.Object))
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

func formatObjectNTriples(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return fmt.Sprintf("<%s>", v)
	case string:
		return fmt.Sprintf("\"%s\"", escapeString(v))
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

func (e *OntologyExporter) toTurtle(blocks []subjectBlock) string {
	w := NewTurtleWriter(e.prefixes)
	w.WritePrefixes()
	for i, b := range blocks {
		if i > 0 {
			w.WriteBlank()
		}
		w.WriteSubject(b.subject)
		for j, po := range b.preds {
			w.WritePredicate(po.predicate, po.objects, j == 0, j == len(b.preds)-1)
		}
	}
	return w.String()
}

func (e *OntologyExporter) toNTriples(blocks []subjectBlock) string {
	w := NewNTriplesWriter()
	for _, b := range blocks {
		for _, t := range b.triples() {
			w.WriteTriple(t)
		}
	}
	return w.String()
}

// toJSONLD writes one graph node per subject. Generated terms keep full
// IRIs since JSON-LD has no empty prefix.
func (e *OntologyExporter) toJSONLD(blocks []subjectBlock) (string, error) {
	doc := JSONLDDocument{Context: make(map[string]any), Graph: make([]JSONLDNode, 0, len(blocks))}
	for prefix, ns := range e.prefixes {
		if prefix != "" {
			doc.Context[prefix] = ns
		}
	}
	named := make(map[string]string, len(doc.Context))
	for prefix, ns := range doc.Context {
		named[prefix] = ns.(string)
	}

	for _, b := range blocks {
		node := JSONLDNode{ID: b.subject, Properties: make(map[string]any)}
		for _, po := range b.preds {
			if po.predicate == vocabulary.RDFType {
				for _, o := range po.objects {
					node.Type = append(node.Type, jsonldName(named, string(o.(IRI))))
				}
				continue
			}
			values := make([]any, 0, len(po.objects))
			for _, o := range po.objects {
				switch v := o.(type) {
				case IRI:
					values = append(values, map[string]string{"@id": jsonldName(named, string(v))})
				default:
					values = append(values, v)
				}
			}
			key := jsonldName(named, po.predicate)
			if len(values) == 1 {
				node.Properties[key] = values[0]
			} else {
				node.Properties[key] = values
			}
		}
		doc.Graph = append(doc.Graph, node)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data) + "\n", nil
}

func jsonldName(prefixes map[string]string, iri string) string {
	c := compact(prefixes, iri)
	if strings.HasPrefix(c, "<") {
		return iri
	}
	return c
}
