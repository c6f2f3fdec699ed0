package tracker

import (
	"fmt"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func (t *Tracker) checkTask(task types.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	ok, err := exists(t.backend.Sprints(), task.SprintID)
	if err != nil {
		return err
	}
	if !ok {
		return t.integrity("task: sprint %d does not exist", task.SprintID)
	}
	if !task.Assigned() {
		return nil
	}
	if ok, err = exists(t.backend.Users(), task.AssignedUserID); err != nil {
		return err
	}
	if !ok {
		return t.integrity("task: user %d does not exist", task.AssignedUserID)
	}
	return nil
}

// CreateTask creates a task under an existing sprint. The assigned user,
// if any, must exist.
func (t *Tracker) CreateTask(task types.Task) (int64, error) {
	if task.Status == "" {
		task.Status = types.StatusTodo
	}
	if err := t.checkTask(task); err != nil {
		return 0, err
	}
	return t.backend.Tasks().Create(task)
}

// UpdateTask replaces a task.
func (t *Tracker) UpdateTask(task types.Task) error {
	if err := t.checkTask(task); err != nil {
		return err
	}
	return t.backend.Tasks().Update(task)
}

// SetTaskStatus moves a task to status.
func (t *Tracker) SetTaskStatus(id int64, status types.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidStatus, status)
	}
	task, err := find(t.backend.Tasks(), types.TableTasks, id)
	if err != nil {
		return err
	}
	task.Status = status
	return t.backend.Tasks().Update(task)
}

// AssignTask assigns a task to userID, or unassigns it when userID is 0.
func (t *Tracker) AssignTask(id, userID int64) error {
	task, err := find(t.backend.Tasks(), types.TableTasks, id)
	if err != nil {
		return err
	}
	task.AssignedUserID = userID
	return t.UpdateTask(task)
}

// GetTask returns the task with id, its sprint and its assignee. An
// assignee that no longer exists is reported as not present.
func (t *Tracker) GetTask(id int64) (types.TaskView, error) {
	task, err := find(t.backend.Tasks(), types.TableTasks, id)
	if err != nil {
		return types.TaskView{}, err
	}
	return t.taskView(task)
}

// TasksOf lists the tasks of a sprint.
func (t *Tracker) TasksOf(sprintID int64) ([]types.TaskView, error) {
	return t.tasksWhere(func(task types.Task) bool { return task.SprintID == sprintID })
}

// TasksAssignedTo lists the tasks assigned to a user.
func (t *Tracker) TasksAssignedTo(userID int64) ([]types.TaskView, error) {
	return t.tasksWhere(func(task types.Task) bool { return task.AssignedUserID == userID })
}

func (t *Tracker) tasksWhere(keep func(types.Task) bool) ([]types.TaskView, error) {
	tasks, err := t.backend.Tasks().FindAll()
	if err != nil {
		return nil, err
	}
	var out []types.TaskView
	for _, task := range tasks {
		if !keep(task) {
			continue
		}
		v, err := t.taskView(task)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
