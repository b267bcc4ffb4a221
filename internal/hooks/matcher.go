package hooks

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// Expr is a compiled matcher expression. Expressions are parsed once at
// configuration load time and evaluated as a pure function of the event's
// tool name and raw tool input; evaluation never mutates state and never
// fails, it only answers true or false.
//
// The grammar is deliberately small:
//
//	*
//	tool == "<name>"
//	tool_input.<field> matches "<regex>"
//	<test> && <test>
//
// There is no negation, disjunction, or grouping.
type Expr interface {
	// Matches reports whether the expression is satisfied by an event with
	// the given tool name and tool input. toolInput may be nil for
	// lifecycle events that carry no tool metadata.
	Matches(toolName string, toolInput json.RawMessage) bool
}

// wildcardExpr matches every event. It backs both "*" and the empty matcher.
type wildcardExpr struct{}

func (wildcardExpr) Matches(string, json.RawMessage) bool { return true }

func (wildcardExpr) String() string { return "*" }

// toolEqualsExpr matches events whose tool name equals name exactly.
// Comparison is case-sensitive with no normalization.
type toolEqualsExpr struct {
	name string
}

func (e toolEqualsExpr) Matches(toolName string, _ json.RawMessage) bool {
	return toolName == e.name
}

func (e toolEqualsExpr) String() string { return fmt.Sprintf("tool == %q", e.name) }

// inputMatchesExpr matches events whose tool input has the named field and
// whose string value contains a match of pattern. A missing field is a
// non-match, not an error.
type inputMatchesExpr struct {
	field   string
	pattern *regexp.Regexp
}

func (e inputMatchesExpr) Matches(_ string, toolInput json.RawMessage) bool {
	if len(toolInput) == 0 {
		return false
	}
	value := gjson.GetBytes(toolInput, e.field)
	if !value.Exists() {
		return false
	}
	return e.pattern.MatchString(value.String())
}

func (e inputMatchesExpr) String() string {
	return fmt.Sprintf("tool_input.%s matches %q", e.field, e.pattern.String())
}

// andExpr is the conjunction of two sub-expressions. Evaluation
// short-circuits; sub-expressions are side-effect free so order is
// unobservable.
type andExpr struct {
	left, right Expr
}

func (e andExpr) Matches(toolName string, toolInput json.RawMessage) bool {
	return e.left.Matches(toolName, toolInput) && e.right.Matches(toolName, toolInput)
}

func (e andExpr) String() string { return fmt.Sprintf("%v && %v", e.left, e.right) }

// ParseMatcher compiles a matcher expression string into an Expr. An empty
// expression is equivalent to "*" and matches everything. Syntax errors and
// invalid regular expressions are reported here so that a bad matcher is a
// load-time failure rather than a silent non-match during dispatch.
func ParseMatcher(expression string) (Expr, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" || trimmed == "*" {
		return wildcardExpr{}, nil
	}

	p := &matcherParser{input: trimmed}
	expr, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("invalid matcher %q: %w", expression, err)
	}
	return expr, nil
}

// matcherParser is a single-use recursive-descent parser over a matcher
// expression string.
type matcherParser struct {
	input string
	pos   int
}

// parse consumes the whole input as a "&&"-joined chain of tests.
func (p *matcherParser) parse() (Expr, error) {
	expr, err := p.parseTest()
	if err != nil {
		return nil, err
	}

	for {
		p.skipSpaces()
		if p.eof() {
			return expr, nil
		}
		if !p.consume("&&") {
			return nil, fmt.Errorf("unexpected %q at position %d, expected \"&&\" or end of expression", p.rest(), p.pos)
		}
		right, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		expr = andExpr{left: expr, right: right}
	}
}

// parseTest consumes a single test: "*", a tool equality, or a tool_input
// regex containment.
func (p *matcherParser) parseTest() (Expr, error) {
	p.skipSpaces()
	if p.eof() {
		return nil, fmt.Errorf("expected a test at position %d", p.pos)
	}

	if p.input[p.pos] == '*' {
		p.pos++
		return wildcardExpr{}, nil
	}

	if p.consume("tool_input.") {
		field, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if !p.consume("matches") {
			return nil, fmt.Errorf("expected \"matches\" after tool_input.%s", field)
		}
		p.skipSpaces()
		literal, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		pattern, err := regexp.Compile(literal)
		if err != nil {
			return nil, fmt.Errorf("bad pattern for tool_input.%s: %w", field, err)
		}
		return inputMatchesExpr{field: field, pattern: pattern}, nil
	}

	if p.consume("tool") {
		p.skipSpaces()
		if !p.consume("==") {
			return nil, fmt.Errorf("expected \"==\" after \"tool\"")
		}
		p.skipSpaces()
		name, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		return toolEqualsExpr{name: name}, nil
	}

	return nil, fmt.Errorf("unexpected %q at position %d", p.rest(), p.pos)
}

// parseIdent consumes a field identifier: a letter or underscore followed by
// letters, digits, or underscores.
func (p *matcherParser) parseIdent() (string, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := rune(p.input[p.pos])
		if unicode.IsLetter(c) || c == '_' || (p.pos > start && unicode.IsDigit(c)) {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", fmt.Errorf("expected field name at position %d", start)
	}
	return p.input[start:p.pos], nil
}

// parseQuoted consumes a double-quoted string literal. Backslash escapes a
// quote or a backslash; any other backslash sequence is kept verbatim so
// that regex literals like "\.py$" survive intact.
func (p *matcherParser) parseQuoted() (string, error) {
	if p.eof() || p.input[p.pos] != '"' {
		return "", fmt.Errorf("expected quoted string at position %d", p.pos)
	}
	p.pos++

	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			if p.pos+1 < len(p.input) {
				next := p.input[p.pos+1]
				if next == '"' || next == '\\' {
					sb.WriteByte(next)
					p.pos += 2
					continue
				}
			}
			sb.WriteByte(c)
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string literal")
}

func (p *matcherParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *matcherParser) consume(prefix string) bool {
	if strings.HasPrefix(p.input[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *matcherParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *matcherParser) rest() string {
	r := p.input[p.pos:]
	if len(r) > 20 {
		r = r[:20] + "..."
	}
	return r
}
