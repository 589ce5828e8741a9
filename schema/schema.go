// Package schema writes and reads the runtime schema document, the JSON
// description of the ontology that ingestion tools consume instead of
// hardcoding class and property names.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/c360studio/sintology/ontology"
	"github.com/c360studio/sintology/storage"
)

// Document is the schema document.
type Document struct {
	Classes    []Class    `json:"classes"`
	Properties []Property `json:"properties"`
}

// Class is one class entry.
type Class struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Property is one property entry. Range is a compact XSD datatype for
// datatype properties and a class name for object properties.
type Property struct {
	Name   string        `json:"name"`
	Kind   ontology.Kind `json:"kind"`
	Domain []string      `json:"domain"`
	Range  string        `json:"range"`
}

// FromModel lays out m as a Document in model order.
func FromModel(m *ontology.Model) Document {
	doc := Document{
		Classes:    []Class{},
		Properties: []Property{},
	}
	for _, c := range m.Classes() {
		doc.Classes = append(doc.Classes, Class{Name: c.Name, Label: c.Label})
	}
	for _, p := range m.Properties() {
		doc.Properties = append(doc.Properties, Property{
			Name:   p.Name,
			Kind:   p.Kind,
			Domain: slices.Clone(p.Domain),
			Range:  p.Range,
		})
	}
	return doc
}

// Model rebuilds an ontology Model from the document.
func (d Document) Model() (*ontology.Model, error) {
	classes := make([]ontology.Class, 0, len(d.Classes))
	for _, c := range d.Classes {
		classes = append(classes, ontology.Class{Name: c.Name, Label: c.Label})
	}
	props := make([]ontology.Property, 0, len(d.Properties))
	for _, p := range d.Properties {
		props = append(props, ontology.Property{
			Name:   p.Name,
			Kind:   p.Kind,
			Domain: slices.Clone(p.Domain),
			Range:  p.Range,
		})
	}
	return ontology.Assemble("", classes, props)
}

// Encode writes the schema document for m with two-space indentation.
func Encode(w io.Writer, m *ontology.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FromModel(m)); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return nil
}

// Decode reads a schema document and checks it forms a valid Model.
func Decode(r io.Reader) (*ontology.Model, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return doc.Model()
}

// LoadFile decodes the schema document at path.
func LoadFile(path string) (*ontology.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &storage.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
