package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize tracker storage",
		Long:  "Create the configuration and data directories, then create every table in the selected backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the tracker already created everything.
			where := a.cfg.DataDir
			if a.cfg.DSN != "" {
				where = "the configured database"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tracker initialized (%s backend in %s)\n", a.cfg.Backend, where)
			return nil
		},
	}
}

func (a *app) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Record a login for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.tracker.RecordLogin(args[0])
			if err != nil {
				return err
			}
			a.session.User = &u
			return a.emit(cmd, u, func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s <%s> (session %s)\n", u.Name, u.Email, a.session.ID)
			})
		},
	}
}
