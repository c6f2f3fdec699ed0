package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func (a *app) newMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage project membership",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <project-id> <user-id>",
			Short: "Add a user to a project",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, u, err := parsePair(args)
				if err != nil {
					return err
				}
				if err := a.tracker.AddMember(p, u); err != nil {
					return err
				}
				return a.done(cmd, "User %d is a member of project %d", u, p)
			},
		},
		&cobra.Command{
			Use:   "remove <project-id> <user-id>",
			Short: "Remove a user from a project",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, u, err := parsePair(args)
				if err != nil {
					return err
				}
				if err := a.tracker.RemoveMember(p, u); err != nil {
					return err
				}
				return a.done(cmd, "User %d is not a member of project %d", u, p)
			},
		},
		&cobra.Command{
			Use:   "list <project-id>",
			Short: "List the members of a project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := parseID(args[0])
				if err != nil {
					return err
				}
				users, err := a.tracker.UsersOf(p)
				if err != nil {
					return err
				}
				return a.emit(cmd, users, func(w io.Writer) {
					for _, u := range users {
						userLine(w, u)
					}
				})
			},
		},
	)
	return cmd
}

func parsePair(args []string) (int64, int64, error) {
	p, err := parseID(args[0])
	if err != nil {
		return 0, 0, err
	}
	u, err := parseID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return p, u, nil
}
