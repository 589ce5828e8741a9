// Package validate checks instance nodes and edges against an ontology
// Model. Rejections are values; nothing here returns an error for bad data.
package validate

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/c360studio/sintology/instance"
	"github.com/c360studio/sintology/metrics"
	"github.com/c360studio/sintology/ontology"
	"github.com/c360studio/sintology/vocabulary"
)

// ExclusiveGroup names relationships of which a node may be the source of
// at most one edge, or exactly one when Required.
type ExclusiveGroup struct {
	Name       string   `yaml:"name" json:"name"`
	Properties []string `yaml:"properties" json:"properties"`
	Required   bool     `yaml:"required" json:"required"`
}

// NodeLookup resolves edge endpoints.
type NodeLookup interface {
	Node(id string) (instance.Node, bool)
}

// Option configures a Validator.
type Option func(*Validator)

// WithValueChecks toggles lexical checks of date and dateTime values.
// Enabled by default.
func WithValueChecks(enabled bool) Option {
	return func(v *Validator) { v.checkValues = enabled }
}

// WithExclusiveGroups enforces the given groups in ValidateGraph.
func WithExclusiveGroups(groups ...ExclusiveGroup) Option {
	return func(v *Validator) { v.groups = append(v.groups, groups...) }
}

// WithMetrics counts every validated instance.
func WithMetrics(r *metrics.Recorder) Option {
	return func(v *Validator) { v.metrics = r }
}

// WithLogger sets the logger for rejection records.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// Validator checks instances against one immutable Model.
type Validator struct {
	model       *ontology.Model
	checkValues bool
	groups      []ExclusiveGroup
	metrics     *metrics.Recorder
	logger      *slog.Logger

	classNames  []string
	objectNames []string
}

// New creates a Validator for m.
func New(m *ontology.Model, opts ...Option) *Validator {
	v := &Validator{model: m, checkValues: true}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	for _, c := range m.Classes() {
		v.classNames = append(v.classNames, c.Name)
	}
	for _, p := range m.Properties() {
		if p.Kind == ontology.KindObject {
			v.objectNames = append(v.objectNames, p.Name)
		}
	}
	return v
}

// Model returns the model instances are checked against.
func (v *Validator) Model() *ontology.Model {
	return v.model
}

// ValidateNode checks the class and every property of n.
func (v *Validator) ValidateNode(n instance.Node) Result {
	res := v.checkNode(n)
	v.observe(res)
	return res
}

func (v *Validator) checkNode(n instance.Node) Result {
	res := Result{Kind: KindNode, ID: n.ID}
	if n.ID == "" {
		res.add(CodeMissingID, "id", "node has no id")
	}
	if !v.model.HasClass(n.Class) {
		res.addSuggested(CodeUnknownClass, "class", suggest(n.Class, v.classNames),
			"unknown class %q", n.Class)
		return res
	}

	keys := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		p, ok := v.model.PropertyFor(n.Class, key)
		if !ok {
			v.unknownProperty(&res, n.Class, key)
			continue
		}
		if p.Kind != ontology.KindDatatype {
			res.add(CodeNotDatatypeProperty, key,
				"%q is a relationship; link it with an edge instead", key)
			continue
		}
		if v.checkValues {
			checkValue(&res, key, p.Range, n.Properties[key])
		}
	}
	return res
}

func (v *Validator) unknownProperty(res *Result, class, key string) {
	if len(v.model.PropertiesNamed(key)) > 0 {
		res.add(CodeDomainMismatch, key, "property %q does not apply to class %q", key, class)
		return
	}
	var candidates []string
	for _, p := range v.model.DatatypePropertiesOf(class) {
		candidates = append(candidates, p.Name)
	}
	res.addSuggested(CodeUnknownProperty, key, suggest(key, candidates),
		"unknown property %q for class %q", key, class)
}

// checkValue enforces string values and the lexical form of date types.
func checkValue(res *Result, key, rng string, value any) {
	s, ok := value.(string)
	if !ok {
		res.add(CodeInvalidValue, key, "value of %q must be a string, got %T", key, value)
		return
	}
	switch rng {
	case vocabulary.CompactDate:
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			res.add(CodeInvalidValue, key, "value %q of %q is not a date (YYYY-MM-DD)", s, key)
		}
	case vocabulary.CompactDateTime:
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			res.add(CodeInvalidValue, key, "value %q of %q is not an RFC 3339 date-time", s, key)
		}
	}
}

// ValidateEdge checks the type of e and the classes of its endpoints.
func (v *Validator) ValidateEdge(e instance.Edge, nodes NodeLookup) Result {
	res := v.checkEdge(e, nodes)
	v.observe(res)
	return res
}

func (v *Validator) checkEdge(e instance.Edge, nodes NodeLookup) Result {
	res := Result{Kind: KindEdge, ID: e.ID}
	if e.ID == "" {
		res.add(CodeMissingID, "id", "edge has no id")
	}

	var prop *ontology.Property
	for _, p := range v.model.PropertiesNamed(e.Type) {
		if p.Kind == ontology.KindObject {
			prop = &p
			break
		}
	}
	if prop == nil {
		if len(v.model.PropertiesNamed(e.Type)) > 0 {
			res.add(CodeUnknownRelationship, "type", "%q is a datatype property, not a relationship", e.Type)
		} else {
			res.addSuggested(CodeUnknownRelationship, "type", suggest(e.Type, v.objectNames),
				"unknown relationship %q", e.Type)
		}
	}

	from, fromOK := nodes.Node(e.From)
	if !fromOK {
		res.add(CodeDanglingReference, "from", "source node %q not found", e.From)
	}
	to, toOK := nodes.Node(e.To)
	if !toOK {
		res.add(CodeDanglingReference, "to", "target node %q not found", e.To)
	}
	if prop == nil {
		return res
	}
	if fromOK && !prop.InDomain(from.Class) {
		res.add(CodeDomainMismatch, "from", "%q cannot start at class %q (domain %v)", e.Type, from.Class, prop.Domain)
	}
	if toOK && to.Class != prop.Range {
		res.add(CodeRangeMismatch, "to", "%q must point to class %q, not %q", e.Type, prop.Range, to.Class)
	}
	return res
}

// Report is the outcome of validating a graph.
type Report struct {
	Nodes []Result `json:"nodes"`
	Edges []Result `json:"edges"`
}

// Accepted reports whether every instance passed.
func (r Report) Accepted() bool {
	return len(r.Rejected()) == 0
}

// Rejected returns the failing results, nodes first.
func (r Report) Rejected() []Result {
	var out []Result
	for _, res := range slices.Concat(r.Nodes, r.Edges) {
		if !res.Accepted() {
			out = append(out, res)
		}
	}
	return out
}

// Filter returns the accepted part of g. g must be the graph the report
// was produced from.
func (r Report) Filter(g *instance.Graph) *instance.Graph {
	out := instance.NewGraph()
	for i, n := range g.Nodes {
		if i < len(r.Nodes) && r.Nodes[i].Accepted() {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for i, e := range g.Edges {
		if i < len(r.Edges) && r.Edges[i].Accepted() {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// index maps node ids to their first occurrence.
type index map[string]instance.Node

func (ix index) Node(id string) (instance.Node, bool) {
	n, ok := ix[id]
	return n, ok
}

// chain resolves ids in g first, then in known.
type chain struct {
	local index
	known []NodeLookup
}

func (c chain) Node(id string) (instance.Node, bool) {
	if n, ok := c.local[id]; ok {
		return n, true
	}
	for _, k := range c.known {
		if n, ok := k.Node(id); ok {
			return n, true
		}
	}
	return instance.Node{}, false
}

// ValidateGraph checks every node and edge of g. Edge endpoints may also
// resolve through known, e.g. the store g is about to be merged into. One
// rejection never stops the batch.
func (v *Validator) ValidateGraph(g *instance.Graph, known ...NodeLookup) Report {
	rep := Report{
		Nodes: make([]Result, 0, len(g.Nodes)),
		Edges: make([]Result, 0, len(g.Edges)),
	}

	local := make(index, len(g.Nodes))
	first := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		res := v.checkNode(n)
		if _, dup := local[n.ID]; dup && n.ID != "" {
			res.add(CodeDuplicateID, "id", "node id %q already used", n.ID)
		} else if prev, ok := (chain{known: known}).Node(n.ID); ok && n.ID != "" && prev.Class != n.Class {
			// A merge keeps the stored node, so its class is the one edges will see.
			res.add(CodeDuplicateID, "id", "node id %q already stored as class %q", n.ID, prev.Class)
			local[n.ID] = n
			first[n.ID] = i
		} else if n.ID != "" {
			local[n.ID] = n
			first[n.ID] = i
		}
		rep.Nodes = append(rep.Nodes, res)
	}
	v.checkGroups(g, rep.Nodes)

	// Edges resolve to the first occurrence of an id.
	rejected := make(map[string]bool)
	for id, i := range first {
		if !rep.Nodes[i].Accepted() {
			rejected[id] = true
		}
	}

	lookup := chain{local: local, known: known}
	seen := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		res := v.checkEdge(e, lookup)
		if seen[e.ID] && e.ID != "" {
			res.add(CodeDuplicateID, "id", "edge id %q already used", e.ID)
		}
		seen[e.ID] = true
		for _, end := range []struct{ field, id string }{{"from", e.From}, {"to", e.To}} {
			if rejected[end.id] {
				res.add(CodeDanglingReference, end.field, "node %q was rejected", end.id)
			}
		}
		rep.Edges = append(rep.Edges, res)
	}

	for _, res := range slices.Concat(rep.Nodes, rep.Edges) {
		v.observe(res)
	}
	return rep
}

// checkGroups applies the exclusive groups to every node whose class can
// be the source of a group property.
func (v *Validator) checkGroups(g *instance.Graph, results []Result) {
	for _, group := range v.groups {
		for i, n := range g.Nodes {
			if !v.groupApplies(group, n.Class) {
				continue
			}
			_, err := g.Owner(n.ID, group.Properties...)
			switch {
			case errors.Is(err, instance.ErrAmbiguousOwner):
				results[i].add(CodeExclusiveGroup, group.Name,
					"at most one of %v may be set", group.Properties)
			case errors.Is(err, instance.ErrNoOwner) && group.Required:
				results[i].add(CodeExclusiveGroup, group.Name,
					"exactly one of %v must be set", group.Properties)
			}
		}
	}
}

func (v *Validator) groupApplies(group ExclusiveGroup, class string) bool {
	for _, name := range group.Properties {
		for _, p := range v.model.PropertiesNamed(name) {
			if p.Kind == ontology.KindObject && p.InDomain(class) {
				return true
			}
		}
	}
	return false
}

func (v *Validator) observe(res Result) {
	accepted := res.Accepted()
	v.metrics.ObserveValidation(res.Kind, accepted)
	if !accepted {
		v.logger.Debug("Instance rejected", "kind", res.Kind, "id", res.ID, "violations", len(res.Violations))
	}
}
