package tracker

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Deletes remove children before their parent, so a failure part way
// leaves orphaned children rather than a parent missing some of them.
// Nothing is rolled back; the first failure stops the cascade.

// DeleteProject deletes a project, its sprints with their tasks and
// retrospectives, and its memberships.
func (t *Tracker) DeleteProject(id int64) error {
	// Ids come from the raw rows so sprints that no longer decode still
	// take their tasks and retrospectives with them.
	sprints, err := t.backend.Sprints().IDsWhere("project_id", id)
	if err != nil {
		return fmt.Errorf("deleting project %d: listing sprints: %w", id, err)
	}
	for _, sid := range sprints {
		if err := t.DeleteSprint(sid); err != nil {
			return fmt.Errorf("deleting project %d: %w", id, err)
		}
	}
	n, err := t.backend.Memberships().UnlinkProject(id)
	if err != nil {
		return fmt.Errorf("deleting project %d: removing memberships: %w", id, err)
	}
	t.log.Debug("removed memberships", zap.Int64("project", id), zap.Int("count", n))
	if err := t.backend.Projects().Delete(id); err != nil {
		return fmt.Errorf("deleting project %d: %w", id, err)
	}
	return nil
}

// DeleteSprint deletes a sprint, its tasks and its retrospective.
func (t *Tracker) DeleteSprint(id int64) error {
	n, err := t.backend.Tasks().DeleteWhere("sprint_id", id)
	if err != nil {
		return fmt.Errorf("deleting sprint %d: removing tasks: %w", id, err)
	}
	t.log.Debug("removed tasks", zap.Int64("sprint", id), zap.Int("count", n))
	if _, err := t.backend.Retrospectives().DeleteWhere("sprint_id", id); err != nil {
		return fmt.Errorf("deleting sprint %d: removing retrospective: %w", id, err)
	}
	if err := t.backend.Sprints().Delete(id); err != nil {
		return fmt.Errorf("deleting sprint %d: %w", id, err)
	}
	return nil
}

// DeleteUser deletes a user and their memberships, and unassigns the
// user's tasks.
func (t *Tracker) DeleteUser(id int64) error {
	if err := t.unassignAll(id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	if _, err := t.backend.Memberships().UnlinkUser(id); err != nil {
		return fmt.Errorf("deleting user %d: removing memberships: %w", id, err)
	}
	if err := t.backend.Users().Delete(id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}

// unassignAll clears the assignee of every task assigned to userID. Tasks
// that do not decode keep the id and resolve as missing.
func (t *Tracker) unassignAll(userID int64) error {
	ids, err := t.backend.Tasks().IDsWhere("assigned_user_id", userID)
	if err != nil {
		return fmt.Errorf("listing assigned tasks: %w", err)
	}
	for _, tid := range ids {
		task, ok, err := t.backend.Tasks().FindByID(tid)
		switch {
		case errors.Is(err, types.ErrMalformedRecord):
			t.log.Warn("leaving unreadable task assigned",
				zap.Int64("task", tid), zap.Int64("user", userID), zap.Error(err))
			continue
		case err != nil:
			return fmt.Errorf("unassigning task %d: %w", tid, err)
		case !ok:
			continue
		}
		task.AssignedUserID = 0
		if err := t.backend.Tasks().Update(task); err != nil {
			return fmt.Errorf("unassigning task %d: %w", tid, err)
		}
	}
	if len(ids) > 0 {
		t.log.Debug("unassigned tasks", zap.Int64("user", userID), zap.Int("count", len(ids)))
	}
	return nil
}

// DeleteTask deletes a task.
func (t *Tracker) DeleteTask(id int64) error {
	return t.backend.Tasks().Delete(id)
}

// DeleteRetrospective deletes a retrospective.
func (t *Tracker) DeleteRetrospective(id int64) error {
	return t.backend.Retrospectives().Delete(id)
}
