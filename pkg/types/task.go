package types

// TaskStatus is the workflow state of a task. The string values are the
// tokens written to every backend.
type TaskStatus string

// Task statuses.
const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists the statuses in workflow order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// ParseTaskStatus converts a stored token into a TaskStatus.
// Returns ErrInvalidStatus for anything outside the fixed vocabulary.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return TaskStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	_, err := ParseTaskStatus(string(s))
	return err == nil
}

// Task is a unit of work inside a sprint. AssignedUserID is zero when the
// task is unassigned.
type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       int        `json:"priority"`
	SprintID       int64      `json:"sprint_id"`
	AssignedUserID int64      `json:"assigned_user_id,omitempty"`
}

// Validate checks the title, status and owning sprint id.
func (t Task) Validate() error {
	if t.Title == "" || t.SprintID <= 0 || t.AssignedUserID < 0 {
		return ErrInvalidData
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Assigned reports whether the task carries an assigned user id.
func (t Task) Assigned() bool {
	return t.AssignedUserID > 0
}
