package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func (a *app) newSprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Manage sprints",
	}
	cmd.AddCommand(a.newSprintAddCmd(), a.newSprintListCmd(), a.newSprintShowCmd(), a.newSprintDeleteCmd())
	return cmd
}

func (a *app) newSprintAddCmd() *cobra.Command {
	var (
		project    int64
		start, end string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a sprint under a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := types.Sprint{ProjectID: project}
			var err error
			if s.StartDate, err = parseDate("start", start); err != nil {
				return err
			}
			if s.EndDate, err = parseDate("end", end); err != nil {
				return err
			}
			id, err := a.tracker.CreateSprint(s)
			if err != nil {
				return err
			}
			return a.created(cmd, "sprint", id)
		},
	}
	cmd.Flags().Int64Var(&project, "project", 0, "owning project id (required)")
	cmd.Flags().StringVar(&start, "start", "", "start date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "end date, YYYY-MM-DD (required)")
	return cmd
}

func (a *app) newSprintListCmd() *cobra.Command {
	var project int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the sprints of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.tracker.GetProject(project); err != nil {
				return err
			}
			sprints, err := a.tracker.SprintsOf(project)
			if err != nil {
				return err
			}
			return a.emit(cmd, sprints, func(w io.Writer) {
				for _, s := range sprints {
					sprintLine(w, s)
				}
			})
		},
	}
	cmd.Flags().Int64Var(&project, "project", 0, "project id (required)")
	return cmd
}

func (a *app) newSprintShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a sprint with its tasks",
		Long:  "Show a sprint with its tasks. With --as, the user must be a member of the sprint's project.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var v types.SprintView
			if a.session.User != nil {
				v, err = a.tracker.AccessibleSprint(a.session.User.ID, id)
			} else {
				v, err = a.tracker.GetSprint(id)
			}
			if err != nil {
				return err
			}
			tasks, err := a.tracker.TasksOf(id)
			if err != nil {
				return err
			}
			out := struct {
				types.SprintView
				Tasks []types.TaskView `json:"tasks"`
			}{v, tasks}
			return a.emit(cmd, out, func(w io.Writer) {
				sprintLine(w, v)
				for _, t := range tasks {
					taskLine(w, t)
				}
			})
		},
	}
}

func (a *app) newSprintDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sprint with its tasks and retrospective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.GetSprint(id); err != nil {
				return err
			}
			if err := a.tracker.DeleteSprint(id); err != nil {
				return err
			}
			return a.done(cmd, "Deleted sprint %d", id)
		},
	}
}
