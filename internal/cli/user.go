package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func (a *app) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(a.newUserAddCmd(), a.newUserListCmd(), a.newUserShowCmd(),
		a.newUserUpdateCmd(), a.newUserDeleteCmd())
	return cmd
}

func (a *app) newUserAddCmd() *cobra.Command {
	var u types.User
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u.Active = true
			id, err := a.tracker.CreateUser(u)
			if err != nil {
				return err
			}
			return a.created(cmd, "user", id)
		},
	}
	cmd.Flags().StringVar(&u.Name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&u.Email, "email", "", "email address (required, unique)")
	cmd.Flags().StringVar(&u.Bio, "bio", "", "short biography")
	return cmd
}

func (a *app) newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.tracker.Users()
			if err != nil {
				return err
			}
			return a.emit(cmd, users, func(w io.Writer) {
				for _, u := range users {
					userLine(w, u)
				}
			})
		},
	}
}

func (a *app) newUserShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user and their projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := a.tracker.GetUser(id)
			if err != nil {
				return err
			}
			projects, err := a.tracker.ProjectsOf(id)
			if err != nil {
				return err
			}
			out := struct {
				types.User
				Projects []types.Project `json:"projects"`
			}{u, projects}
			return a.emit(cmd, out, func(w io.Writer) {
				userLine(w, u)
				if u.Bio != "" {
					fmt.Fprintf(w, "bio:\t%s\n", u.Bio)
				}
				for _, p := range projects {
					fmt.Fprintf(w, "project:\t%d\t%s\n", p.ID, p.Name)
				}
			})
		},
	}
}

func (a *app) newUserUpdateCmd() *cobra.Command {
	var (
		name, email, bio string
		active           bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := a.tracker.GetUser(id)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("name") {
				u.Name = name
			}
			if f.Changed("email") {
				u.Email = email
			}
			if f.Changed("bio") {
				u.Bio = bio
			}
			if f.Changed("active") {
				u.Active = active
			}
			if err := a.tracker.UpdateUser(u); err != nil {
				return err
			}
			return a.done(cmd, "Updated user %d", id)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&bio, "bio", "", "short biography")
	cmd.Flags().BoolVar(&active, "active", true, "whether the account is active")
	return cmd
}

func (a *app) newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user and their memberships",
		Long:  "Delete a user and their memberships. Tasks assigned to the user become unassigned.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.GetUser(id); err != nil {
				return err
			}
			if err := a.tracker.DeleteUser(id); err != nil {
				return err
			}
			return a.done(cmd, "Deleted user %d", id)
		},
	}
}
