package ldif

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultIgnoredAttributes are credential, secret, and noise attributes
// whose values must never surface in an emitted event.
func DefaultIgnoredAttributes() []string {
	return []string{
		"jpegPhoto",
		"lmPassword",
		"ntPassword",
		"userPassword",
		"sshPublicKey",
		"pwdHistory",
		"other",
		"description",
	}
}

// IgnoreSet decides which attribute names are suppressed during record
// accumulation. Exact names match case-insensitively; optional patterns
// match against the lowercased attribute name.
type IgnoreSet struct {
	names    map[string]struct{}
	patterns []*regexp.Regexp
}

// NewIgnoreSet compiles an ignore set from exact names and regex patterns.
func NewIgnoreSet(names, patterns []string) (*IgnoreSet, error) {
	s := &IgnoreSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[strings.ToLower(n)] = struct{}{}
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, re)
	}
	return s, nil
}

// DefaultIgnoreSet builds the ignore set for the default attribute list.
func DefaultIgnoreSet() *IgnoreSet {
	s, err := NewIgnoreSet(DefaultIgnoredAttributes(), nil)
	if err != nil {
		panic(err) // no patterns to compile
	}
	return s
}

// Ignored reports whether values for attr must be suppressed.
func (s *IgnoreSet) Ignored(attr string) bool {
	lower := strings.ToLower(attr)
	if _, ok := s.names[lower]; ok {
		return true
	}
	for _, re := range s.patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
