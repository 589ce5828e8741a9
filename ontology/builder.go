package ontology

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/c360studio/sintology/erd"
	"github.com/c360studio/sintology/vocabulary"
)

// DefaultName is the model name used when none is configured.
const DefaultName = "sintology"

// Option configures Build.
type Option func(*builder)

// WithName sets the model name.
func WithName(name string) Option {
	return func(b *builder) { b.name = name }
}

// WithUniversalFields marks source field names whose property applies to
// every class.
func WithUniversalFields(names ...string) Option {
	return func(b *builder) {
		for _, n := range names {
			b.universal[n] = true
		}
	}
}

// WithExcludedFields drops source field names from the model.
func WithExcludedFields(names ...string) Option {
	return func(b *builder) {
		for _, n := range names {
			b.excluded[n] = true
		}
	}
}

// WithStrictForeignKeys controls whether a foreign-key field naming a
// declared entity requires a matching relationship. Enabled by default.
func WithStrictForeignKeys(strict bool) Option {
	return func(b *builder) { b.strictFK = strict }
}

// WithLogger sets the logger used for merge and warning records.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

type builder struct {
	name      string
	universal map[string]bool
	excluded  map[string]bool
	strictFK  bool
	logger    *slog.Logger

	classes  []Class
	byEntity map[string]int
	byClass  map[string]string
	props    []Property
	merges   []Merge
	warnings []string
}

// Build turns a parsed diagram into a Model. It returns a *SemanticError
// for collisions, undefined relationship endpoints and unbacked foreign keys.
func Build(d *erd.Diagram, opts ...Option) (*Model, error) {
	b := &builder{
		name:      DefaultName,
		universal: make(map[string]bool),
		excluded:  make(map[string]bool),
		strictFK:  true,
		byEntity:  make(map[string]int),
		byClass:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}

	if err := b.addClasses(d.Entities); err != nil {
		return nil, err
	}
	for _, e := range d.Entities {
		if err := b.addFields(e); err != nil {
			return nil, err
		}
	}
	for _, r := range d.Relationships {
		if err := b.addRelationship(r); err != nil {
			return nil, err
		}
	}
	if err := b.checkForeignKeys(d); err != nil {
		return nil, err
	}

	m, err := Assemble(b.name, b.classes, b.props)
	if err != nil {
		return nil, err
	}
	m.merges = b.merges
	m.warnings = b.warnings
	return m, nil
}

func (b *builder) addClasses(entities []erd.EntityDeclaration) error {
	for _, e := range entities {
		name := PascalCase(e.Name)
		if name == "" {
			return semanticf(e.Name, e.Line, "entity %q has no usable class name", e.Name)
		}
		if prev, dup := b.byClass[name]; dup {
			if prev == e.Name {
				return semanticf(e.Name, e.Line, "entity %q declared twice", e.Name)
			}
			return semanticf(e.Name, e.Line, "entity %q and entity %q both map to class %q", prev, e.Name, name)
		}
		b.byClass[name] = e.Name
		b.byEntity[e.Name] = len(b.classes)
		b.classes = append(b.classes, Class{
			Name:       name,
			Label:      Label(e.Name),
			Properties: []string{},
			Entity:     e.Name,
			Line:       e.Line,
		})
	}
	return nil
}

func (b *builder) addFields(e erd.EntityDeclaration) error {
	class := &b.classes[b.byEntity[e.Name]]
	sources := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if f.IsForeignKey() || b.excluded[f.Name] {
			continue
		}
		name := CamelCase(f.Name)
		if name == "" {
			return semanticf(f.Name, f.Line, "field %q on %s has no usable property name", f.Name, e.Name)
		}
		if prev, dup := sources[name]; dup {
			return semanticf(f.Name, f.Line, "fields %q and %q on %s both map to property %q", prev, f.Name, e.Name, name)
		}
		sources[name] = f.Name

		rng, ok := vocabulary.RangeForScalar(string(f.Type))
		if !ok {
			return semanticf(f.Name, f.Line, "field %q on %s has unsupported type %q", f.Name, e.Name, f.Type)
		}
		cand := Property{
			Name:    name,
			Kind:    KindDatatype,
			Domain:  []string{class.Name},
			Range:   rng,
			Comment: f.Comment,
			Source:  f.Name,
			Line:    f.Line,
		}
		if b.universal[f.Name] {
			cand.Domain = []string{Universal}
		}
		if err := b.placeDatatype(cand, class.Name); err != nil {
			return err
		}
		class.Properties = append(class.Properties, name)
	}
	return nil
}

// placeDatatype merges cand into an existing entry with the same key and
// source field, or appends it as a new entry.
func (b *builder) placeDatatype(cand Property, class string) error {
	for i := range b.props {
		p := &b.props[i]
		if p.Kind != KindDatatype || p.Key() != cand.Key() || p.Source != cand.Source {
			continue
		}
		if p.IsUniversal() != cand.IsUniversal() {
			continue
		}
		if !p.IsUniversal() {
			p.Domain = append(p.Domain, class)
		}
		if p.Comment == "" {
			p.Comment = cand.Comment
		}
		b.recordMerge(Merge{Property: p.Name, Class: class, Field: cand.Source, Line: cand.Line})
		return nil
	}
	b.props = append(b.props, cand)
	return nil
}

func (b *builder) addRelationship(r erd.RelationshipDeclaration) error {
	left, err := b.endpoint(r, r.Left)
	if err != nil {
		return err
	}
	right, err := b.endpoint(r, r.Right)
	if err != nil {
		return err
	}
	name := CamelCase(r.VerbPhrase)
	if name == "" {
		return semanticf(r.VerbPhrase, r.Line, "relationship %s %s %s has no usable property name", r.Left, r.Cardinality.Raw, r.Right)
	}

	for i := range b.props {
		p := &b.props[i]
		if p.Name != name {
			continue
		}
		if p.Kind == KindDatatype {
			return semanticf(r.VerbPhrase, r.Line, "relationship %q collides with datatype property %q", r.VerbPhrase, p.Source)
		}
		if p.Range != right {
			return semanticf(r.VerbPhrase, r.Line, "relationship %q targets %s but %q already targets %s", r.VerbPhrase, right, name, p.Range)
		}
		if slices.Contains(p.Domain, left) {
			return semanticf(r.VerbPhrase, r.Line, "relationship %q from %s to %s declared twice", r.VerbPhrase, left, right)
		}
		p.Domain = append(p.Domain, left)
		b.recordMerge(Merge{Property: name, Class: left, Field: r.VerbPhrase, Line: r.Line})
		return nil
	}

	b.props = append(b.props, Property{
		Name:        name,
		Kind:        KindObject,
		Domain:      []string{left},
		Range:       right,
		Cardinality: r.Cardinality.Kind(),
		Source:      r.VerbPhrase,
		Line:        r.Line,
	})
	return nil
}

func (b *builder) endpoint(r erd.RelationshipDeclaration, entity string) (string, error) {
	i, ok := b.byEntity[entity]
	if !ok {
		return "", semanticf(entity, r.Line, "relationship %q references undefined entity %q", r.VerbPhrase, entity)
	}
	return b.classes[i].Name, nil
}

// checkForeignKeys matches x_id fields against declared classes. For
// owner_person_id the candidates are OwnerPerson then Person.
func (b *builder) checkForeignKeys(d *erd.Diagram) error {
	linked := make(map[[2]string]bool)
	for _, p := range b.props {
		if p.Kind != KindObject {
			continue
		}
		for _, dom := range p.Domain {
			linked[[2]string{dom, p.Range}] = true
			linked[[2]string{p.Range, dom}] = true
		}
	}

	for _, e := range d.Entities {
		class := b.classes[b.byEntity[e.Name]].Name
		for _, f := range e.Fields {
			if !f.IsForeignKey() || b.excluded[f.Name] {
				continue
			}
			target := b.foreignKeyTarget(f.Name)
			if target == "" {
				b.warn(fmt.Sprintf("foreign key %q on %s names no declared entity", f.Name, e.Name), f.Line)
				continue
			}
			if linked[[2]string{class, target}] {
				continue
			}
			if b.strictFK {
				return semanticf(f.Name, f.Line, "foreign key %q on %s has no relationship to %s", f.Name, e.Name, target)
			}
			b.warn(fmt.Sprintf("foreign key %q on %s has no relationship to %s", f.Name, e.Name, target), f.Line)
		}
	}
	return nil
}

func (b *builder) foreignKeyTarget(field string) string {
	segs := segments(strings.TrimSuffix(field, erd.ForeignKeySuffix))
	for i := range segs {
		name := PascalCase(strings.Join(segs[i:], "_"))
		if _, ok := b.byClass[name]; ok {
			return name
		}
	}
	return ""
}

func (b *builder) recordMerge(mg Merge) {
	b.merges = append(b.merges, mg)
	b.logger.Debug("Merged property domain",
		"property", mg.Property, "class", mg.Class, "field", mg.Field, "line", mg.Line)
}

func (b *builder) warn(msg string, line int) {
	b.warnings = append(b.warnings, fmt.Sprintf("line %d: %s", line, msg))
	b.logger.Warn("Foreign key hint", "detail", msg, "line", line)
}
