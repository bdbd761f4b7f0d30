package ldif

import (
	"regexp"
	"strings"

	"github.com/directoryops/ldapwatch/pkg/logging"
)

var parserLog = logging.Log.WithName("ldif").WithName("parser")

// beginPattern matches the comment opening a change record:
// "# <op> <sequence> <actor>". The captured actor seeds the record's
// actor field until a modifiersName attribute overrides it.
var beginPattern = regexp.MustCompile(`(?i)^# (add|change|delete|modify) ([0-9]{1,100}) (.*)`)

// endMarker closes a record.
const endMarker = "# end"

// modifiersNameAttr carries the authoritative actor for a change.
const modifiersNameAttr = "modifiersName"

// operationKinds are the per-attribute operation tokens of the format.
var operationKinds = map[string]struct{}{
	"add":     {},
	"delete":  {},
	"replace": {},
}

// Parser folds logical LDIF lines into completed change records.
type Parser struct {
	ignore *IgnoreSet
}

// NewParser creates a parser that suppresses attributes in ignore.
func NewParser(ignore *IgnoreSet) *Parser {
	if ignore == nil {
		ignore = DefaultIgnoreSet()
	}
	return &Parser{ignore: ignore}
}

// Parse scans the input and returns every completed record, in order. A
// record is complete only when its "# end" line has been seen and it has
// a distinguished name; a trailing record cut off by end of input is
// discarded, protecting against reading a log mid-write.
func (p *Parser) Parse(s *Scanner) []Record {
	var (
		records   []Record
		rec       Record
		inRecord  bool
		currentOp string
	)

	reset := func() {
		rec = Record{}
		inRecord = false
		currentOp = ""
	}

	for {
		line, ok := s.Next()
		if !ok {
			break
		}

		if line.Comment {
			if m := beginPattern.FindStringSubmatch(line.Raw); m != nil {
				if !inRecord {
					inRecord = true
					rec = Record{}
					currentOp = ""
				}
				// For deletes the only actor mention is on this comment.
				rec.Actor = m[3]
				continue
			}
			if inRecord && strings.Contains(line.Raw, endMarker) {
				if rec.DN == "" {
					// Boundary seen but the record never identified an
					// entry; drop it rather than emit garbage.
					parserLog.V(1).Info("discarding record without dn at end marker")
					reset()
					continue
				}
				if rec.Actor == "" {
					rec.Actor = UnknownActor
				}
				records = append(records, rec)
				reset()
			}
			continue
		}

		if !inRecord {
			// Attribute lines outside a record boundary carry no usable
			// context; skip until the next begin comment.
			continue
		}

		switch {
		case line.Attr == "dn":
			if rec.DN == "" {
				rec.DN = line.Value
			}
		case line.Attr == "changetype":
			rec.ChangeType = line.Value
		case isOperationKind(line.Attr):
			currentOp = line.Attr
			rec.Actions = append(rec.Actions, Action{Op: line.Attr, Attr: line.Value})
		case p.ignore.Ignored(line.Attr):
			// Sensitive or noisy attribute: the value never enters the record.
		default:
			op := currentOp
			if op == "" {
				// Whole-entry adds carry no per-attribute operation; the
				// record's change type stands in.
				op = rec.ChangeType
			}
			if line.Attr == modifiersNameAttr {
				rec.Actor = line.Value
			}
			rec.Changes = append(rec.Changes, Change{Tag: op + ":" + line.Attr, Value: line.Value})
		}
	}

	if inRecord {
		parserLog.V(1).Info("dropping incomplete trailing record", "dn", rec.DN)
	}

	return records
}

func isOperationKind(attr string) bool {
	_, ok := operationKinds[attr]
	return ok
}
