package ldif

import (
	"encoding/base64"
	"strings"
)

// Line is one logical line of LDIF input: either a comment (delivered
// raw, for boundary detection) or an attribute/value pair with
// continuation folding and base64 encoding already resolved.
type Line struct {
	// Comment is true for "#"-prefixed lines. Raw carries the full text.
	Comment bool
	Raw     string

	// Attr and Value are set for attribute lines.
	Attr  string
	Value string
}

// Scanner turns physical input lines into logical LDIF lines. A physical
// line beginning with a single space continues the previous logical line.
type Scanner struct {
	lines []string
	pos   int
}

// NewScanner wraps a batch of raw physical lines.
func NewScanner(lines []string) *Scanner {
	return &Scanner{lines: lines}
}

// Next returns the next logical line. ok is false at end of input. Blank
// lines and lines that fit no LDIF shape are skipped.
func (s *Scanner) Next() (Line, bool) {
	for s.pos < len(s.lines) {
		logical := s.unfold()
		if strings.TrimSpace(logical) == "" {
			continue
		}
		if strings.HasPrefix(logical, "#") {
			return Line{Comment: true, Raw: logical}, true
		}
		attr, value, ok := splitAttrValue(logical)
		if !ok {
			// Not an attribute line; nothing downstream can use it.
			continue
		}
		return Line{Raw: logical, Attr: attr, Value: value}, true
	}
	return Line{}, false
}

// unfold consumes one logical line: the physical line at the cursor plus
// any immediately following continuation lines.
func (s *Scanner) unfold() string {
	var b strings.Builder
	b.WriteString(s.lines[s.pos])
	s.pos++
	for s.pos < len(s.lines) && strings.HasPrefix(s.lines[s.pos], " ") {
		b.WriteString(s.lines[s.pos][1:])
		s.pos++
	}
	return b.String()
}

// splitAttrValue parses "attr: value" and "attr:: base64value" forms.
func splitAttrValue(line string) (attr, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	attr = line[:idx]
	rest := line[idx+1:]

	if strings.HasPrefix(rest, ":") {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest[1:]))
		if err != nil {
			return "", "", false
		}
		return attr, string(decoded), true
	}

	return attr, strings.TrimPrefix(rest, " "), true
}
