package erd

import "fmt"

// Multiplicity is the number of instances allowed at one end of an edge.
type Multiplicity int

// Multiplicities of the cardinality alphabet.
const (
	ExactlyOne Multiplicity = iota + 1
	ZeroOrOne
	OneOrMore
	ZeroOrMore
)

// IsMany reports whether more than one instance is allowed.
func (m Multiplicity) IsMany() bool {
	return m == OneOrMore || m == ZeroOrMore
}

func (m Multiplicity) String() string {
	switch m {
	case ExactlyOne:
		return "exactly-one"
	case ZeroOrOne:
		return "zero-or-one"
	case OneOrMore:
		return "one-or-more"
	case ZeroOrMore:
		return "zero-or-more"
	default:
		return "unknown"
	}
}

// Left-hand markers read outward from the entity on the left.
var leftMarkers = map[string]Multiplicity{
	"||": ExactlyOne,
	"|o": ZeroOrOne,
	"}|": OneOrMore,
	"}o": ZeroOrMore,
}

// Right-hand markers are the mirror images of the left-hand ones.
var rightMarkers = map[string]Multiplicity{
	"||": ExactlyOne,
	"o|": ZeroOrOne,
	"|{": OneOrMore,
	"o{": ZeroOrMore,
}

// Cardinality is a parsed relationship token such as "||--o{".
type Cardinality struct {
	Left  Multiplicity
	Right Multiplicity
	// Identifying is true for "--" and false for "..".
	Identifying bool
	Raw         string
}

// ParseCardinality parses a relationship token.
func ParseCardinality(tok string) (Cardinality, error) {
	if len(tok) != 6 {
		return Cardinality{}, fmt.Errorf("invalid cardinality %q", tok)
	}
	left, ok := leftMarkers[tok[:2]]
	if !ok {
		return Cardinality{}, fmt.Errorf("invalid cardinality %q: unknown left marker %q", tok, tok[:2])
	}
	var identifying bool
	switch tok[2:4] {
	case "--":
		identifying = true
	case "..":
	default:
		return Cardinality{}, fmt.Errorf("invalid cardinality %q: unknown connector %q", tok, tok[2:4])
	}
	right, ok := rightMarkers[tok[4:]]
	if !ok {
		return Cardinality{}, fmt.Errorf("invalid cardinality %q: unknown right marker %q", tok, tok[4:])
	}
	return Cardinality{Left: left, Right: right, Identifying: identifying, Raw: tok}, nil
}

// Kind names the relationship shape, e.g. "one-to-many".
func (c Cardinality) Kind() string {
	side := func(m Multiplicity) string {
		if m.IsMany() {
			return "many"
		}
		return "one"
	}
	return side(c.Left) + "-to-" + side(c.Right)
}

func (c Cardinality) String() string {
	return c.Raw
}
