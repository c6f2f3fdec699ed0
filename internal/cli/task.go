package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func (a *app) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(a.newTaskAddCmd(), a.newTaskListCmd(), a.newTaskShowCmd(),
		a.newTaskStatusCmd(), a.newTaskAssignCmd(), a.newTaskDeleteCmd())
	return cmd
}

func (a *app) newTaskAddCmd() *cobra.Command {
	var (
		t      types.Task
		status string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task under a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t.Title = args[0]
			s, err := types.ParseTaskStatus(status)
			if err != nil {
				return err
			}
			t.Status = s
			id, err := a.tracker.CreateTask(t)
			if err != nil {
				return err
			}
			return a.created(cmd, "task", id)
		},
	}
	cmd.Flags().Int64Var(&t.SprintID, "sprint", 0, "owning sprint id (required)")
	cmd.Flags().StringVar(&t.Description, "description", "", "task description")
	cmd.Flags().IntVar(&t.Priority, "priority", 3, "priority, 1 (highest) to 5")
	cmd.Flags().StringVar(&status, "status", string(types.StatusTodo), "TODO, IN_PROGRESS or DONE")
	cmd.Flags().Int64Var(&t.AssignedUserID, "assign", 0, "assigned user id")
	return cmd
}

func (a *app) newTaskListCmd() *cobra.Command {
	var (
		sprint int64
		mine   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a sprint, or those assigned to the --as user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				tasks []types.TaskView
				err   error
			)
			if mine {
				u, uerr := a.session.RequireUser()
				if uerr != nil {
					return uerr
				}
				tasks, err = a.tracker.TasksAssignedTo(u.ID)
			} else {
				if _, err := a.tracker.GetSprint(sprint); err != nil {
					return err
				}
				tasks, err = a.tracker.TasksOf(sprint)
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, tasks, func(w io.Writer) {
				for _, t := range tasks {
					taskLine(w, t)
				}
			})
		},
	}
	cmd.Flags().Int64Var(&sprint, "sprint", 0, "sprint id")
	cmd.Flags().BoolVar(&mine, "mine", false, "tasks assigned to the --as user")
	cmd.MarkFlagsOneRequired("sprint", "mine")
	cmd.MarkFlagsMutuallyExclusive("sprint", "mine")
	return cmd
}

func (a *app) newTaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its sprint and assignee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := a.tracker.GetTask(id)
			if err != nil {
				return err
			}
			return a.emit(cmd, v, func(w io.Writer) {
				taskLine(w, v)
			})
		},
	}
}

func (a *app) newTaskStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <TODO|IN_PROGRESS|DONE>",
		Short: "Change a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := types.ParseTaskStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.tracker.SetTaskStatus(id, s); err != nil {
				return err
			}
			return a.done(cmd, "Task %d is %s", id, s)
		},
	}
}

func (a *app) newTaskAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <id> <user-id|0>",
		Short: "Assign a task to a user, or unassign it with 0",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var user int64
			if args[1] != "0" {
				if user, err = parseID(args[1]); err != nil {
					return err
				}
			}
			if err := a.tracker.AssignTask(id, user); err != nil {
				return err
			}
			if user == 0 {
				return a.done(cmd, "Task %d is unassigned", id)
			}
			return a.done(cmd, "Task %d is assigned to user %d", id, user)
		},
	}
}

func (a *app) newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.GetTask(id); err != nil {
				return err
			}
			if err := a.tracker.DeleteTask(id); err != nil {
				return err
			}
			return a.done(cmd, "Deleted task %d", id)
		},
	}
}
