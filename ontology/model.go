package ontology

import (
	"slices"

	"github.com/c360studio/sintology/vocabulary"
)

// Universal is the domain sentinel meaning "applies to every class".
const Universal = vocabulary.CompactThing

// Kind distinguishes datatype properties from object properties.
type Kind string

// Property kinds, as written in the schema document.
const (
	KindDatatype Kind = "datatype"
	KindObject   Kind = "object"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDatatype || k == KindObject
}

// Class is one ontology class.
type Class struct {
	Name  string
	Label string
	// Properties lists the owned datatype property names in declaration order.
	Properties []string
	// Entity is the ERD entity the class came from; empty for decoded models.
	Entity string
	Line   int
}

// PropertyKey identifies a property for merge purposes.
type PropertyKey struct {
	Name  string
	Range string
}

// Property is one datatype or object property.
type Property struct {
	Name string
	Kind Kind
	// Domain holds class names in first-declaration order, or the single
	// entry Universal.
	Domain []string
	// Range is a compact XSD datatype for datatype properties and a class
	// name for object properties.
	Range string
	// Cardinality is the relationship kind, e.g. "one-to-many". Object
	// properties only.
	Cardinality string
	Comment     string
	// Source is the ERD field name or verb phrase.
	Source string
	Line   int
}

// Key returns the merge identity of p.
func (p Property) Key() PropertyKey {
	return PropertyKey{Name: p.Name, Range: p.Range}
}

// IsUniversal reports whether p applies to every class.
func (p Property) IsUniversal() bool {
	return len(p.Domain) == 1 && p.Domain[0] == Universal
}

// InDomain reports whether class is in p's domain, counting the universal
// sentinel as containing every class.
func (p Property) InDomain(class string) bool {
	return p.IsUniversal() || slices.Contains(p.Domain, class)
}

func (p Property) clone() Property {
	p.Domain = slices.Clone(p.Domain)
	return p
}

// Merge records one class joining the domain of an existing property.
type Merge struct {
	Property string
	Class    string
	Field    string
	Line     int
}

// Model is the immutable ontology built from one ERD.
type Model struct {
	name       string
	classes    []Class
	classIndex map[string]int
	props      []Property
	byName     map[string][]int
	outgoing   map[string][]int
	incoming   map[string][]int
	merges     []Merge
	warnings   []string
}

// Assemble checks the model invariants over classes and props and returns
// the indexed Model. Classes with a nil Properties list own every datatype
// property whose domain includes them.
func Assemble(name string, classes []Class, props []Property) (*Model, error) {
	m := &Model{
		name:       name,
		classIndex: make(map[string]int, len(classes)),
		byName:     make(map[string][]int, len(props)),
		outgoing:   make(map[string][]int),
		incoming:   make(map[string][]int),
	}

	for _, c := range classes {
		if c.Name == "" {
			return nil, semanticf("", c.Line, "class with empty name")
		}
		if _, dup := m.classIndex[c.Name]; dup {
			return nil, semanticf(c.Name, c.Line, "duplicate class %q", c.Name)
		}
		if c.Label == "" {
			c.Label = c.Name
		}
		c.Properties = slices.Clone(c.Properties)
		m.classIndex[c.Name] = len(m.classes)
		m.classes = append(m.classes, c)
	}

	for _, p := range props {
		if err := m.checkProperty(p); err != nil {
			return nil, err
		}
		idx := len(m.props)
		m.props = append(m.props, p.clone())
		m.byName[p.Name] = append(m.byName[p.Name], idx)
		if p.Kind == KindObject {
			for _, d := range p.Domain {
				m.outgoing[d] = append(m.outgoing[d], idx)
			}
			m.incoming[p.Range] = append(m.incoming[p.Range], idx)
		}
	}

	checked := make(map[string]bool, len(m.byName))
	for _, p := range m.props {
		if checked[p.Name] {
			continue
		}
		checked[p.Name] = true
		if err := m.checkNameGroup(p.Name, m.byName[p.Name]); err != nil {
			return nil, err
		}
	}

	for i := range m.classes {
		if err := m.resolveOwned(&m.classes[i]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Model) checkProperty(p Property) error {
	if p.Name == "" {
		return semanticf(p.Source, p.Line, "property with empty name")
	}
	if !p.Kind.Valid() {
		return semanticf(p.Name, p.Line, "property %q has unknown kind %q", p.Name, p.Kind)
	}
	if len(p.Domain) == 0 {
		return semanticf(p.Name, p.Line, "property %q has no domain", p.Name)
	}
	seen := make(map[string]bool, len(p.Domain))
	for _, d := range p.Domain {
		if seen[d] {
			return semanticf(p.Name, p.Line, "property %q lists domain %q twice", p.Name, d)
		}
		seen[d] = true
		if d == Universal {
			if p.Kind == KindObject {
				return semanticf(p.Name, p.Line, "object property %q cannot have a universal domain", p.Name)
			}
			if len(p.Domain) > 1 {
				return semanticf(p.Name, p.Line, "property %q mixes %s with explicit classes", p.Name, Universal)
			}
			continue
		}
		if _, ok := m.classIndex[d]; !ok {
			return semanticf(p.Name, p.Line, "property %q has undefined domain class %q", p.Name, d)
		}
	}
	switch p.Kind {
	case KindDatatype:
		if !vocabulary.IsDatatypeRange(p.Range) {
			return semanticf(p.Name, p.Line, "datatype property %q has unsupported range %q", p.Name, p.Range)
		}
	case KindObject:
		if _, ok := m.classIndex[p.Range]; !ok {
			return semanticf(p.Name, p.Line, "object property %q has undefined range class %q", p.Name, p.Range)
		}
	}
	return nil
}

// checkNameGroup enforces that entries sharing a name are datatype
// properties with disjoint domains.
func (m *Model) checkNameGroup(name string, idxs []int) error {
	if len(idxs) < 2 {
		return nil
	}
	owner := make(map[string]bool)
	universal := false
	for _, i := range idxs {
		p := m.props[i]
		if p.Kind == KindObject {
			return semanticf(name, p.Line, "property name %q is used by an object property and another property", name)
		}
		if p.IsUniversal() {
			if universal {
				return semanticf(name, p.Line, "property %q declared universal twice", name)
			}
			universal = true
			continue
		}
		for _, d := range p.Domain {
			if owner[d] {
				return semanticf(name, p.Line, "property %q declared twice for class %q", name, d)
			}
			owner[d] = true
		}
	}
	return nil
}

func (m *Model) resolveOwned(c *Class) error {
	if c.Properties == nil {
		for _, p := range m.props {
			if p.Kind == KindDatatype && p.InDomain(c.Name) && !slices.Contains(c.Properties, p.Name) {
				c.Properties = append(c.Properties, p.Name)
			}
		}
		return nil
	}
	seen := make(map[string]bool, len(c.Properties))
	for _, name := range c.Properties {
		if seen[name] {
			return semanticf(c.Name, c.Line, "class %q owns property %q twice", c.Name, name)
		}
		seen[name] = true
		p, ok := m.PropertyFor(c.Name, name)
		if !ok || p.Kind != KindDatatype {
			return semanticf(c.Name, c.Line, "class %q owns unknown datatype property %q", c.Name, name)
		}
	}
	return nil
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Classes returns the classes in declaration order.
func (m *Model) Classes() []Class {
	out := make([]Class, len(m.classes))
	for i, c := range m.classes {
		c.Properties = slices.Clone(c.Properties)
		out[i] = c
	}
	return out
}

// Class returns the class with the given name.
func (m *Model) Class(name string) (Class, bool) {
	i, ok := m.classIndex[name]
	if !ok {
		return Class{}, false
	}
	c := m.classes[i]
	c.Properties = slices.Clone(c.Properties)
	return c, true
}

// HasClass reports whether name is a class of m.
func (m *Model) HasClass(name string) bool {
	_, ok := m.classIndex[name]
	return ok
}

// Properties returns every property in the order it was assembled.
func (m *Model) Properties() []Property {
	out := make([]Property, len(m.props))
	for i, p := range m.props {
		out[i] = p.clone()
	}
	return out
}

// PropertiesNamed returns every entry called name. More than one entry
// means distinct per-domain properties.
func (m *Model) PropertiesNamed(name string) []Property {
	return m.collect(m.byName[name])
}

// PropertyFor resolves name in the context of class. A property whose
// domain lists the class wins over a universal one.
func (m *Model) PropertyFor(class, name string) (Property, bool) {
	var universal *Property
	for _, i := range m.byName[name] {
		p := &m.props[i]
		if p.IsUniversal() {
			universal = p
			continue
		}
		if slices.Contains(p.Domain, class) {
			return p.clone(), true
		}
	}
	if universal != nil {
		return universal.clone(), true
	}
	return Property{}, false
}

// DatatypePropertiesOf returns the datatype properties owned by class.
func (m *Model) DatatypePropertiesOf(class string) []Property {
	i, ok := m.classIndex[class]
	if !ok {
		return nil
	}
	var out []Property
	for _, name := range m.classes[i].Properties {
		if p, ok := m.PropertyFor(class, name); ok {
			out = append(out, p)
		}
	}
	return out
}

// ObjectPropertiesOf returns the object properties whose domain includes class.
func (m *Model) ObjectPropertiesOf(class string) []Property {
	return m.collect(m.outgoing[class])
}

// Outgoing returns the names of the relationships leaving class.
func (m *Model) Outgoing(class string) []string {
	return m.names(m.outgoing[class])
}

// Incoming returns the names of the relationships whose range is class.
func (m *Model) Incoming(class string) []string {
	return m.names(m.incoming[class])
}

// Merges returns the audit trail of domain merges performed by the builder.
func (m *Model) Merges() []Merge { return slices.Clone(m.merges) }

// Warnings returns non-fatal findings from the builder.
func (m *Model) Warnings() []string { return slices.Clone(m.warnings) }

func (m *Model) collect(idxs []int) []Property {
	out := make([]Property, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, m.props[i].clone())
	}
	return out
}

func (m *Model) names(idxs []int) []string {
	out := make([]string, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, m.props[i].Name)
	}
	return out
}
