package tracker

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// resolve looks up a foreign id. A zero id is absent. An id that no longer
// resolves, or whose record cannot be decoded, is missing; only storage
// failures are returned as errors.
func resolve[T any](t *Tracker, tbl types.Table[T], table string, id int64) (types.Ref[T], error) {
	if id <= 0 {
		return types.Ref[T]{}, nil
	}
	v, ok, err := tbl.FindByID(id)
	switch {
	case errors.Is(err, types.ErrMalformedRecord):
		t.log.Warn("unreadable reference target",
			zap.String("table", table), zap.Int64("id", id), zap.Error(err))
		return types.Missing[T](id), nil
	case err != nil:
		return types.Ref[T]{}, fmt.Errorf("resolving %s %d: %w", table, id, err)
	case !ok:
		return types.Missing[T](id), nil
	}
	return types.Resolved(id, v), nil
}

func (t *Tracker) sprintView(s types.Sprint) (types.SprintView, error) {
	project, err := resolve(t, t.backend.Projects(), types.TableProjects, s.ProjectID)
	if err != nil {
		return types.SprintView{}, err
	}
	return types.SprintView{Sprint: s, Project: project}, nil
}

func (t *Tracker) taskView(task types.Task) (types.TaskView, error) {
	sprint, err := resolve(t, t.backend.Sprints(), types.TableSprints, task.SprintID)
	if err != nil {
		return types.TaskView{}, err
	}
	assignee, err := resolve(t, t.backend.Users(), types.TableUsers, task.AssignedUserID)
	if err != nil {
		return types.TaskView{}, err
	}
	return types.TaskView{Task: task, Sprint: sprint, Assignee: assignee}, nil
}

func (t *Tracker) retrospectiveView(r types.Retrospective) (types.RetrospectiveView, error) {
	sprint, err := resolve(t, t.backend.Sprints(), types.TableSprints, r.SprintID)
	if err != nil {
		return types.RetrospectiveView{}, err
	}
	return types.RetrospectiveView{Retrospective: r, Sprint: sprint}, nil
}

// find returns the record with id or an error wrapping ErrNotFound.
func find[T any](tbl types.Table[T], table string, id int64) (T, error) {
	v, ok, err := tbl.FindByID(id)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("%s %d: %w", table, id, types.ErrNotFound)
	}
	return v, nil
}
