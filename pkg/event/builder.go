package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/directoryops/ldapwatch/pkg/ldif"
)

// membershipAttrs mark a record as a group-membership change. For these,
// the summary names the exact principals added or removed instead of the
// generic "attribute changed" phrasing.
var membershipAttrs = map[string]struct{}{
	"member":    {},
	"memberUid": {},
}

// Build constructs the change event for one completed record.
func Build(rec ldif.Record) Event {
	summary := fmt.Sprintf("%s %s %s ", rec.Actor, rec.ChangeType, rec.DN)

	details := map[string]any{
		"actor":      rec.Actor,
		"changetype": rec.ChangeType,
		"dn":         rec.DN,
	}

	if len(rec.Actions) > 0 {
		details["actionpairs"] = rec.Actions
		details["changepairs"] = rec.Changes

		if isMembershipChange(rec.Actions) {
			summary = appendMembership(summary, rec)
		} else {
			for _, a := range rec.Actions {
				summary += fmt.Sprintf("%s %s ", a.Op, a.Attr)
			}
		}
	}

	return Event{
		Timestamp: time.Now(),
		Category:  Category,
		Severity:  Severity,
		Summary:   summary,
		// Each event owns its tag slice; sinks may hold events past the
		// dispatch loop.
		Tags:    append([]string(nil), Tags...),
		Details: details,
	}
}

func isMembershipChange(actions []ldif.Action) bool {
	for _, a := range actions {
		if _, ok := membershipAttrs[a.Attr]; ok {
			return true
		}
	}
	return false
}

// appendMembership adds one "<op>:<attr>: <value>" segment per observed
// membership value, deduplicated, so the summary surfaces exactly which
// principals changed.
func appendMembership(summary string, rec ldif.Record) string {
	for _, a := range rec.Actions {
		if _, ok := membershipAttrs[a.Attr]; !ok {
			continue
		}
		tag := a.Op + ":" + a.Attr
		for _, c := range rec.Changes {
			if c.Tag != tag {
				continue
			}
			segment := fmt.Sprintf(" %s: %s ", c.Tag, c.Value)
			if !strings.Contains(summary, segment) {
				summary += segment
			}
		}
	}
	return summary
}
