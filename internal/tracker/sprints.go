package tracker

import (
	"fmt"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func (t *Tracker) checkSprint(s types.Sprint) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("sprint: %w", err)
	}
	ok, err := exists(t.backend.Projects(), s.ProjectID)
	if err != nil {
		return err
	}
	if !ok {
		return t.integrity("sprint: project %d does not exist", s.ProjectID)
	}
	return nil
}

// CreateSprint creates a sprint under an existing project.
func (t *Tracker) CreateSprint(s types.Sprint) (int64, error) {
	s.StartDate, s.EndDate = types.Date(s.StartDate), types.Date(s.EndDate)
	if err := t.checkSprint(s); err != nil {
		return 0, err
	}
	return t.backend.Sprints().Create(s)
}

// UpdateSprint replaces a sprint's dates or moves it to another existing
// project.
func (t *Tracker) UpdateSprint(s types.Sprint) error {
	s.StartDate, s.EndDate = types.Date(s.StartDate), types.Date(s.EndDate)
	if err := t.checkSprint(s); err != nil {
		return err
	}
	return t.backend.Sprints().Update(s)
}

// GetSprint returns the sprint with id and its project.
func (t *Tracker) GetSprint(id int64) (types.SprintView, error) {
	s, err := find(t.backend.Sprints(), types.TableSprints, id)
	if err != nil {
		return types.SprintView{}, err
	}
	return t.sprintView(s)
}

// SprintsOf lists the sprints of a project.
func (t *Tracker) SprintsOf(projectID int64) ([]types.SprintView, error) {
	sprints, err := t.backend.Sprints().FindAll()
	if err != nil {
		return nil, err
	}
	var out []types.SprintView
	for _, s := range sprints {
		if s.ProjectID != projectID {
			continue
		}
		v, err := t.sprintView(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AccessibleSprint returns the sprint if userID is a member of its
// project. A sprint whose project no longer exists is treated as not
// found.
func (t *Tracker) AccessibleSprint(userID, sprintID int64) (types.SprintView, error) {
	v, err := t.GetSprint(sprintID)
	if err != nil {
		return types.SprintView{}, err
	}
	if !v.Project.Present() {
		return types.SprintView{}, fmt.Errorf("sprint %d: project %d: %w", sprintID, v.ProjectID, types.ErrNotFound)
	}
	member, err := t.IsMember(v.ProjectID, userID)
	if err != nil {
		return types.SprintView{}, err
	}
	if !member {
		return types.SprintView{}, fmt.Errorf("sprint %d: user %d is not a member of project %d: %w",
			sprintID, userID, v.ProjectID, types.ErrAccessDenied)
	}
	return v, nil
}
