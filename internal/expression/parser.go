package expression

import (
	"fmt"
	"strings"
)

const (
	OpenDelim  = "{{"
	CloseDelim = "}}"
)

// Kind classifies how a string takes part in substitution.
type Kind uint8

const (
	// KindLiteral strings carry no expression and pass through unchanged.
	KindLiteral Kind = iota
	// KindExact strings are a single expression once trimmed and resolve to
	// the native value.
	KindExact
	// KindInterpolated strings mix expressions and text and always resolve
	// to a string.
	KindInterpolated
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindInterpolated:
		return "interpolated"
	default:
		return "literal"
	}
}

// Segment is a run of literal text or one expression body.
type Segment struct {
	Text   string
	Expr   bool
	Offset int
}

// Anomaly records malformed delimiter usage. The offending text stays in
// the template as literal text.
type Anomaly struct {
	Offset  int
	Message string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("offset %d: %s", a.Offset, a.Message)
}

// Template is the parsed form of a string value.
type Template struct {
	Source    string
	Kind      Kind
	Segments  []Segment
	Anomalies []Anomaly
}

// Exact returns the expression body of an exact-match template.
func (t Template) Exact() (string, bool) {
	if t.Kind != KindExact {
		return "", false
	}
	for _, seg := range t.Segments {
		if seg.Expr {
			return seg.Text, true
		}
	}
	return "", false
}

// Expressions lists expression bodies in source order.
func (t Template) Expressions() []string {
	var out []string
	for _, seg := range t.Segments {
		if seg.Expr {
			out = append(out, seg.Text)
		}
	}
	return out
}

// Contains reports whether s has an opening delimiter.
func Contains(s string) bool {
	return strings.Contains(s, OpenDelim)
}

// Parse splits input into literal and expression segments. It never fails:
// unclosed, empty or nested delimiters and stray closers are kept as text
// and reported in Anomalies.
func Parse(input string) Template {
	tpl := Template{Source: input}
	if !strings.Contains(input, OpenDelim) && !strings.Contains(input, CloseDelim) {
		if input != "" {
			tpl.Segments = []Segment{{Text: input}}
		}
		return tpl
	}

	p := parser{tpl: &tpl}
	pos := 0
	for pos < len(input) {
		open := strings.Index(input[pos:], OpenDelim)
		if open < 0 {
			p.text(input[pos:], pos, true)
			break
		}
		p.text(input[pos:pos+open], pos, true)

		start := pos + open
		bodyStart := start + len(OpenDelim)
		end := strings.Index(input[bodyStart:], CloseDelim)
		if end < 0 {
			p.anomaly(start, "unclosed expression delimiter")
			p.text(input[start:], start, false)
			break
		}
		if nested := strings.Index(input[bodyStart:bodyStart+end], OpenDelim); nested >= 0 {
			p.anomaly(start, "nested expression delimiter")
			p.text(input[start:bodyStart+nested], start, false)
			pos = bodyStart + nested
			continue
		}

		next := bodyStart + end + len(CloseDelim)
		body := strings.TrimSpace(input[bodyStart : bodyStart+end])
		if body == "" {
			p.anomaly(start, "empty expression")
			p.text(input[start:next], start, false)
		} else {
			p.expr(body, start)
		}
		pos = next
	}
	p.flush()
	tpl.Kind = classify(tpl.Segments)
	return tpl
}

type parser struct {
	tpl     *Template
	literal strings.Builder
	offset  int
}

// text appends literal text. When scan is set, stray closing delimiters in
// the text are reported.
func (p *parser) text(s string, offset int, scan bool) {
	if s == "" {
		return
	}
	if scan {
		for i := 0; ; {
			idx := strings.Index(s[i:], CloseDelim)
			if idx < 0 {
				break
			}
			p.anomaly(offset+i+idx, "unmatched closing delimiter")
			i += idx + len(CloseDelim)
		}
	}
	if p.literal.Len() == 0 {
		p.offset = offset
	}
	p.literal.WriteString(s)
}

func (p *parser) expr(body string, offset int) {
	p.flush()
	p.tpl.Segments = append(p.tpl.Segments, Segment{Text: body, Expr: true, Offset: offset})
}

func (p *parser) anomaly(offset int, msg string) {
	p.tpl.Anomalies = append(p.tpl.Anomalies, Anomaly{Offset: offset, Message: msg})
}

func (p *parser) flush() {
	if p.literal.Len() == 0 {
		return
	}
	p.tpl.Segments = append(p.tpl.Segments, Segment{Text: p.literal.String(), Offset: p.offset})
	p.literal.Reset()
}

func classify(segments []Segment) Kind {
	exprs := 0
	padding := true
	for _, seg := range segments {
		if seg.Expr {
			exprs++
			continue
		}
		if strings.TrimSpace(seg.Text) != "" {
			padding = false
		}
	}
	switch {
	case exprs == 0:
		return KindLiteral
	case exprs == 1 && padding:
		return KindExact
	default:
		return KindInterpolated
	}
}
