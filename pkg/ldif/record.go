// Package ldif reconstructs discrete change records from the
// comment-delimited LDIF audit log a directory server appends to. Records
// open with a "# <op> <seq> <actor>" comment and close with a "# end"
// comment; the attribute lines in between describe one entry mutation.
package ldif

// Change types carried on a record's changetype attribute.
const (
	ChangeTypeAdd    = "add"
	ChangeTypeModify = "modify"
	ChangeTypeDelete = "delete"
)

// UnknownActor is recorded when a record closes without any actor having
// been observed.
const UnknownActor = "unknown"

// Action is one modification applied to the entry: an operation kind
// (add, delete, replace) and the attribute it targets.
type Action struct {
	Op   string `json:"op"`
	Attr string `json:"attr"`
}

// Change is the literal value observed for one action. Tag is
// "<op>:<attr>", tying the value back to the action that produced it.
type Change struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// Record is one reconstructed directory-entry mutation.
type Record struct {
	// DN is the distinguished name of the entry that changed.
	DN string

	// ChangeType classifies the mutation (add, modify, delete).
	ChangeType string

	// Actor is who performed the change, from the record's boundary
	// comment unless a modifiersName attribute overrides it.
	Actor string

	// Actions are the per-attribute operations, in encounter order.
	Actions []Action

	// Changes are the observed values, in encounter order.
	Changes []Change
}
