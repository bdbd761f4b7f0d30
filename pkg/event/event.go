// Package event turns completed change records into normalized change
// events ready for sink delivery.
package event

import (
	"errors"
	"time"
)

// Category is the fixed category literal carried by every change event.
const Category = "ldapChange"

// Severity is the fixed severity for change events.
const Severity = "INFO"

// Tags are attached to every delivered event.
var Tags = []string{"ldap", "ldif"}

// Event is one normalized directory-change event. Immutable once built.
type Event struct {
	Timestamp time.Time
	Category  string
	Severity  string
	Summary   string
	Tags      []string
	Details   map[string]any
}

// Validate reports structural problems with an event. A failure here is a
// programming error in event construction, not a runtime condition.
func (e Event) Validate() error {
	if e.Summary == "" {
		return errors.New("event: summary is required")
	}
	if e.Details == nil {
		return errors.New("event: details must be a map")
	}
	return nil
}
