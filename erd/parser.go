package erd

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	identRe     = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	verbRe      = regexp.MustCompile(`^[A-Za-z0-9_ -]+$`)
	keysRe      = regexp.MustCompile(`^(PK|FK|UK)(\s*,\s*(PK|FK|UK))*$`)

	// relAttemptRe recognises a line that is meant to be a relationship:
	// a name followed by a token carrying cardinality markers.
	relAttemptRe = regexp.MustCompile(`^\s*(\S+)\s+(\S*(?:[|{}]|--|\.\.)\S*)(\s|$)`)
	relRe        = regexp.MustCompile(`^\s*(\S+)\s+(\S+)\s+([^\s:]+)\s*:\s*(.*?)\s*$`)
	entityOpenRe = regexp.MustCompile(`^\s*(\S+?)\s*\{\s*(\})?\s*$`)
)

// ParseFile reads and parses an ERD source file.
func ParseFile(path string) (*Diagram, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src)
}

// Parse parses ERD source text in a single pass.
func Parse(src []byte) (*Diagram, error) {
	lines := splitLines(string(src))
	start, end := diagramBounds(lines)

	p := &parser{diagram: &Diagram{}}
	for i := start; i < end; i++ {
		if err := p.parseLine(i+1, lines[i]); err != nil {
			return nil, err
		}
	}
	if p.current != nil {
		return nil, p.unterminated()
	}
	return p.diagram, nil
}

type parser struct {
	diagram *Diagram
	// current is the entity block being read, nil outside blocks.
	current *EntityDeclaration
	// openColumn locates the name of the current block.
	openColumn int
}

func (p *parser) parseLine(lineNo int, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
		return nil
	}

	if p.current != nil {
		return p.parseBlockLine(lineNo, line, trimmed)
	}

	if trimmed == "erDiagram" {
		return nil
	}
	if m := entityOpenRe.FindStringSubmatchIndex(line); m != nil {
		return p.openEntity(lineNo, line, m)
	}
	if relAttemptRe.MatchString(line) {
		return p.parseRelationship(lineNo, line)
	}
	if trimmed == "}" {
		return &SyntaxError{Line: lineNo, Column: column(line, strings.Index(line, "}")), Msg: `unexpected "}" outside an entity block`, Token: "}"}
	}
	return nil
}

func (p *parser) openEntity(lineNo int, line string, m []int) error {
	name := line[m[2]:m[3]]
	if !identRe.MatchString(name) {
		return &SyntaxError{
			Line:   lineNo,
			Column: column(line, m[2]),
			Msg:    fmt.Sprintf("invalid entity name %q: must match [A-Z][A-Z0-9_]*", name),
			Token:  name,
		}
	}
	entity := EntityDeclaration{Name: name, Line: lineNo}
	if m[4] >= 0 {
		// NAME { } on one line.
		p.diagram.Entities = append(p.diagram.Entities, entity)
		return nil
	}
	p.current = &entity
	p.openColumn = column(line, m[2])
	return nil
}

func (p *parser) parseBlockLine(lineNo int, line, trimmed string) error {
	if trimmed == "}" {
		p.diagram.Entities = append(p.diagram.Entities, *p.current)
		p.current = nil
		return nil
	}
	if strings.HasSuffix(trimmed, "{") {
		return p.unterminated()
	}

	toks := tokenize(line)
	if len(toks) < 2 {
		return &SyntaxError{
			Line:   lineNo,
			Column: toks[0].col,
			Msg:    fmt.Sprintf("field line %q needs a type and a name", trimmed),
			Token:  toks[0].text,
		}
	}

	typ, ok := ParseScalarType(toks[0].text)
	if !ok {
		return &SyntaxError{
			Line:   lineNo,
			Column: toks[0].col,
			Msg:    fmt.Sprintf("unknown type %q: expected string, date or datetime", toks[0].text),
			Token:  toks[0].text,
		}
	}
	if !fieldNameRe.MatchString(toks[1].text) {
		return &SyntaxError{
			Line:   lineNo,
			Column: toks[1].col,
			Msg:    fmt.Sprintf("invalid field name %q", toks[1].text),
			Token:  toks[1].text,
		}
	}

	field := FieldDeclaration{Type: typ, Name: toks[1].text, Line: lineNo}
	rest := toks[2:]
	if len(rest) > 0 && !rest[0].quoted {
		keys, err := parseKeys(rest)
		if err != nil {
			return &SyntaxError{Line: lineNo, Column: rest[0].col, Msg: err.Error(), Token: rest[0].text}
		}
		field.Keys = keys.keys
		rest = rest[keys.consumed:]
	}
	if len(rest) > 0 && rest[0].quoted {
		field.Comment = rest[0].text
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return &SyntaxError{
			Line:   lineNo,
			Column: rest[0].col,
			Msg:    fmt.Sprintf("unexpected %q after field %q", rest[0].text, field.Name),
			Token:  rest[0].text,
		}
	}

	p.current.Fields = append(p.current.Fields, field)
	return nil
}

func (p *parser) parseRelationship(lineNo int, line string) error {
	m := relRe.FindStringSubmatchIndex(line)
	if m == nil {
		return &SyntaxError{
			Line:   lineNo,
			Column: column(line, firstNonSpace(line)),
			Msg:    fmt.Sprintf("malformed relationship %q: expected LEFT <cardinality> RIGHT : verb_phrase", strings.TrimSpace(line)),
		}
	}
	left, tok, right, verb := line[m[2]:m[3]], line[m[4]:m[5]], line[m[6]:m[7]], line[m[8]:m[9]]

	if !identRe.MatchString(left) {
		return &SyntaxError{Line: lineNo, Column: column(line, m[2]), Msg: fmt.Sprintf("invalid entity name %q", left), Token: left}
	}
	card, err := ParseCardinality(tok)
	if err != nil {
		return &SyntaxError{Line: lineNo, Column: column(line, m[4]), Msg: err.Error(), Token: tok}
	}
	if !identRe.MatchString(right) {
		return &SyntaxError{Line: lineNo, Column: column(line, m[6]), Msg: fmt.Sprintf("invalid entity name %q", right), Token: right}
	}

	phrase, err := verbPhrase(verb)
	if err != nil {
		return &SyntaxError{Line: lineNo, Column: column(line, m[8]), Msg: err.Error(), Token: verb}
	}

	p.diagram.Relationships = append(p.diagram.Relationships, RelationshipDeclaration{
		Left:        left,
		Right:       right,
		Cardinality: card,
		VerbPhrase:  phrase,
		Line:        lineNo,
	})
	return nil
}

func (p *parser) unterminated() error {
	return &SyntaxError{
		Line:   p.current.Line,
		Column: p.openColumn,
		Msg:    fmt.Sprintf("unterminated block %q", p.current.Name),
		Token:  p.current.Name,
	}
}

// verbPhrase unquotes and checks a relationship label.
func verbPhrase(raw string) (string, error) {
	phrase := raw
	if len(phrase) >= 2 && strings.HasPrefix(phrase, `"`) && strings.HasSuffix(phrase, `"`) {
		phrase = strings.TrimSpace(phrase[1 : len(phrase)-1])
	} else if !verbRe.MatchString(phrase) {
		return "", fmt.Errorf("invalid verb phrase %q", raw)
	}
	if !strings.ContainsFunc(phrase, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		return "", fmt.Errorf("relationship needs a verb phrase")
	}
	return phrase, nil
}

type parsedKeys struct {
	keys     []string
	consumed int
}

// parseKeys reads PK/FK/UK markers, written either as "PK, FK" or "PK,FK".
func parseKeys(toks []token) (parsedKeys, error) {
	var joined []string
	n := 0
	for _, t := range toks {
		if t.quoted {
			break
		}
		joined = append(joined, t.text)
		n++
	}
	text := strings.Join(joined, " ")
	if !keysRe.MatchString(text) {
		return parsedKeys{}, fmt.Errorf("unexpected %q: expected PK, FK, UK or a quoted comment", text)
	}
	var keys []string
	for _, k := range strings.Split(text, ",") {
		keys = append(keys, strings.TrimSpace(k))
	}
	return parsedKeys{keys: keys, consumed: n}, nil
}

type token struct {
	text   string
	col    int
	quoted bool
}

// tokenize splits a line on whitespace. A double-quoted run is one token
// with the quotes removed.
func tokenize(line string) []token {
	var toks []token
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		if r == '"' {
			end := strings.IndexByte(line[i+1:], '"')
			if end >= 0 {
				toks = append(toks, token{text: line[i+1 : i+1+end], col: column(line, start), quoted: true})
				i += end + 2
				continue
			}
		}
		for i < len(line) {
			r, size = utf8.DecodeRuneInString(line[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		toks = append(toks, token{text: line[start:i], col: column(line, start)})
	}
	return toks
}

// column converts a byte offset into a 1-based rune column.
func column(line string, offset int) int {
	if offset < 0 {
		return 1
	}
	return utf8.RuneCountInString(line[:offset]) + 1
}

func firstNonSpace(line string) int {
	return len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
}
