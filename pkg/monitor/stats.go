package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/directoryops/ldapwatch/pkg/ldif"
)

// runStats accumulates per-run record counts keyed by change type and
// actor, for the run-completion log line.
type runStats struct {
	records int
	byKey   map[statsKey]int
}

type statsKey struct {
	changeType string
	actor      string
}

func newRunStats() *runStats {
	return &runStats{byKey: make(map[statsKey]int)}
}

func (s *runStats) add(rec ldif.Record) {
	s.records++
	s.byKey[statsKey{changeType: rec.ChangeType, actor: rec.Actor}]++
}

// breakdown renders the counts as "changetype/actor=count" terms in a
// deterministic order.
func (s *runStats) breakdown() string {
	keys := make([]statsKey, 0, len(s.byKey))
	for k := range s.byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].changeType != keys[j].changeType {
			return keys[i].changeType < keys[j].changeType
		}
		return keys[i].actor < keys[j].actor
	})

	terms := make([]string, 0, len(keys))
	for _, k := range keys {
		terms = append(terms, fmt.Sprintf("%s/%s=%d", k.changeType, k.actor, s.byKey[k]))
	}
	return strings.Join(terms, " ")
}
