package types

import "errors"

// Standard table names. They double as file base names for the flat-file
// backends and table names for the relational backend.
const (
	TableUsers          = "users"
	TableProjects       = "projects"
	TableSprints        = "sprints"
	TableTasks          = "tasks"
	TableRetrospectives = "retrospectives"
	TableMemberships    = "project_users"
)

// TableNames lists every standard table in parent-before-child order.
var TableNames = []string{
	TableUsers,
	TableProjects,
	TableSprints,
	TableTasks,
	TableRetrospectives,
	TableMemberships,
}

// Backend is a storage medium holding every tracker table. Callers attach
// it to a location, use the table accessors, and detach when done. All
// accessors of one attached backend share the same location.
type Backend interface {
	// Attach connects the backend to the location described by config.
	// Returns ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach every
	// table operation returns ErrDetached.
	Detach() error

	Users() Table[User]
	Projects() Table[Project]
	Sprints() Table[Sprint]
	Tasks() Table[Task]
	Retrospectives() Table[Retrospective]
	Memberships() LinkTable
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
