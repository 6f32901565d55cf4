package opstore

import "time"

// Operation states.
const (
	StatePending   = "pending"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

// Resource kinds an operation can target.
const (
	KindProject  = "project"
	KindServo    = "servo"
	KindDatabase = "database"
)

// Operation is a lifecycle command whose completion the CLI was waiting
// for. It carries enough to resume the wait after the process is
// interrupted: what to fetch and which status ends the wait.
type Operation struct {
	// ID is the row id, assigned on insert.
	ID int64

	// Ref is a short random reference shown to the user.
	Ref string

	// Command is the user-facing command, e.g. "project restart".
	Command string

	Kind         string
	ResourceID   string
	ResourceName string

	// TargetStatus is the resource status that completes the operation.
	TargetStatus string

	State        string
	LastStatus   string
	ErrorMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pending reports whether the operation may still be resumed.
func (o *Operation) Pending() bool {
	return o.State == StatePending
}

// Label returns the resource name, falling back to its id.
func (o *Operation) Label() string {
	if o.ResourceName != "" {
		return o.ResourceName
	}
	return o.ResourceID
}
