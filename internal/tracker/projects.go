package tracker

import (
	"fmt"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// CreateProject creates a project and makes its creator a member.
func (t *Tracker) CreateProject(p types.Project, creatorID int64) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("project: %w", err)
	}
	ok, err := exists(t.backend.Users(), creatorID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.integrity("project creator: user %d does not exist", creatorID)
	}
	id, err := t.backend.Projects().Create(p)
	if err != nil {
		return 0, err
	}
	if err := t.backend.Memberships().Link(id, creatorID); err != nil {
		return id, fmt.Errorf("adding creator to project %d: %w", id, err)
	}
	return id, nil
}

// UpdateProject replaces a project's name and description.
func (t *Tracker) UpdateProject(p types.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("project %d: %w", p.ID, err)
	}
	return t.backend.Projects().Update(p)
}

// GetProject returns the project with id.
func (t *Tracker) GetProject(id int64) (types.Project, error) {
	return find(t.backend.Projects(), types.TableProjects, id)
}

// Projects lists every project.
func (t *Tracker) Projects() ([]types.Project, error) {
	return t.backend.Projects().FindAll()
}
