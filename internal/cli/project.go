package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func (a *app) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(a.newProjectAddCmd(), a.newProjectListCmd(), a.newProjectShowCmd(), a.newProjectDeleteCmd())
	return cmd
}

func (a *app) newProjectAddCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project; the --as user becomes its first member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creator, err := a.session.RequireUser()
			if err != nil {
				return err
			}
			id, err := a.tracker.CreateProject(types.Project{Name: args[0], Description: description}, creator.ID)
			if err != nil {
				return err
			}
			return a.created(cmd, "project", id)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "project description")
	return cmd
}

func (a *app) newProjectListCmd() *cobra.Command {
	var mine bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				projects []types.Project
				err      error
			)
			if mine {
				u, uerr := a.session.RequireUser()
				if uerr != nil {
					return uerr
				}
				projects, err = a.tracker.ProjectsOf(u.ID)
			} else {
				projects, err = a.tracker.Projects()
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, projects, func(w io.Writer) {
				for _, p := range projects {
					projectLine(w, p)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "only projects the --as user belongs to")
	return cmd
}

func (a *app) newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with its members and sprints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.tracker.GetProject(id)
			if err != nil {
				return err
			}
			members, err := a.tracker.UsersOf(id)
			if err != nil {
				return err
			}
			sprints, err := a.tracker.SprintsOf(id)
			if err != nil {
				return err
			}
			out := struct {
				types.Project
				Members []types.User       `json:"members"`
				Sprints []types.SprintView `json:"sprints"`
			}{p, members, sprints}
			return a.emit(cmd, out, func(w io.Writer) {
				projectLine(w, p)
				for _, u := range members {
					fmt.Fprintf(w, "member:\t%d\t%s\t%s\n", u.ID, u.Name, u.Email)
				}
				for _, s := range sprints {
					fmt.Fprint(w, "sprint:\t")
					sprintLine(w, s)
				}
			})
		},
	}
}

func (a *app) newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project with its sprints, tasks, retrospectives and memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.GetProject(id); err != nil {
				return err
			}
			if err := a.tracker.DeleteProject(id); err != nil {
				return err
			}
			return a.done(cmd, "Deleted project %d", id)
		},
	}
}
