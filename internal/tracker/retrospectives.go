package tracker

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// SaveRetrospective stores the retrospective of r.SprintID, replacing the
// sprint's existing one if it has one, and returns its id. r.ID is
// ignored.
func (t *Tracker) SaveRetrospective(r types.Retrospective) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, fmt.Errorf("retrospective: %w", err)
	}
	ok, err := exists(t.backend.Sprints(), r.SprintID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.integrity("retrospective: sprint %d does not exist", r.SprintID)
	}

	stored, err := t.backend.Retrospectives().IDsWhere("sprint_id", r.SprintID)
	if err != nil {
		return 0, err
	}
	if len(stored) == 0 {
		r.ID = 0
		return t.backend.Retrospectives().Create(r)
	}

	// A stored retrospective that no longer decodes is replaced outright,
	// as are any extra ones left behind for the same sprint.
	r.ID = stored[0]
	_, _, err = t.backend.Retrospectives().FindByID(r.ID)
	switch {
	case errors.Is(err, types.ErrMalformedRecord):
		t.log.Warn("replacing unreadable retrospective",
			zap.Int64("sprint", r.SprintID), zap.Int64("id", r.ID), zap.Error(err))
		if err := t.backend.Retrospectives().Delete(r.ID); err != nil {
			return 0, err
		}
		r.ID = 0
		if r.ID, err = t.backend.Retrospectives().Create(r); err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	default:
		if err := t.backend.Retrospectives().Update(r); err != nil {
			return 0, err
		}
	}
	for _, id := range stored[1:] {
		if err := t.backend.Retrospectives().Delete(id); err != nil {
			return 0, err
		}
	}
	return r.ID, nil
}

// RetrospectiveOf returns the retrospective of a sprint, if any. A stored
// retrospective that does not decode is reported as ErrMalformedRecord.
func (t *Tracker) RetrospectiveOf(sprintID int64) (types.Retrospective, bool, error) {
	stored, err := t.backend.Retrospectives().IDsWhere("sprint_id", sprintID)
	if err != nil || len(stored) == 0 {
		return types.Retrospective{}, false, err
	}
	return t.backend.Retrospectives().FindByID(stored[0])
}

// GetRetrospective returns the retrospective with id and its sprint.
func (t *Tracker) GetRetrospective(id int64) (types.RetrospectiveView, error) {
	r, err := find(t.backend.Retrospectives(), types.TableRetrospectives, id)
	if err != nil {
		return types.RetrospectiveView{}, err
	}
	return t.retrospectiveView(r)
}
