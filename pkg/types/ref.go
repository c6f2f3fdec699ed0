package types

// RefState describes the outcome of resolving a foreign id.
type RefState int

// Reference states.
const (
	// RefAbsent means the record carries no foreign id.
	RefAbsent RefState = iota
	// RefResolved means the foreign id points at an existing record.
	RefResolved
	// RefMissing means the foreign id is set but its target is gone.
	RefMissing
)

func (s RefState) String() string {
	switch s {
	case RefAbsent:
		return "absent"
	case RefResolved:
		return "resolved"
	case RefMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Ref is a resolved foreign reference. Value is the zero T unless State is
// RefResolved.
type Ref[T any] struct {
	ID    int64    `json:"id,omitempty"`
	Value T        `json:"value"`
	State RefState `json:"-"`
}

// Resolved returns a reference to an existing record.
func Resolved[T any](id int64, v T) Ref[T] {
	return Ref[T]{ID: id, Value: v, State: RefResolved}
}

// Missing returns a reference whose target no longer exists.
func Missing[T any](id int64) Ref[T] {
	return Ref[T]{ID: id, State: RefMissing}
}

// Get returns the referenced value and whether it resolved.
func (r Ref[T]) Get() (T, bool) {
	return r.Value, r.State == RefResolved
}

// Present reports whether the reference resolved to a record. Missing and
// absent references are both not present.
func (r Ref[T]) Present() bool {
	return r.State == RefResolved
}

// SprintView is a sprint with its project resolved.
type SprintView struct {
	Sprint
	Project Ref[Project] `json:"project"`
}

// TaskView is a task with its sprint and assigned user resolved.
type TaskView struct {
	Task
	Sprint   Ref[Sprint] `json:"sprint"`
	Assignee Ref[User]   `json:"assignee"`
}

// RetrospectiveView is a retrospective with its sprint resolved.
type RetrospectiveView struct {
	Retrospective
	Sprint Ref[Sprint] `json:"sprint"`
}
