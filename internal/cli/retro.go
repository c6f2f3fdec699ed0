package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func (a *app) newRetroCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "retro",
		Aliases: []string{"retrospective"},
		Short:   "Manage sprint retrospectives",
	}
	cmd.AddCommand(a.newRetroSetCmd(), a.newRetroShowCmd(), a.newRetroDeleteCmd())
	return cmd
}

func (a *app) newRetroSetCmd() *cobra.Command {
	var r types.Retrospective
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace the retrospective of a sprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.tracker.SaveRetrospective(r)
			if err != nil {
				return err
			}
			return a.done(cmd, "Saved retrospective %d for sprint %d", id, r.SprintID)
		},
	}
	cmd.Flags().Int64Var(&r.SprintID, "sprint", 0, "sprint id (required)")
	cmd.Flags().StringVar(&r.Summary, "summary", "", "summary text")
	cmd.Flags().StringArrayVar(&r.Improvements, "improvement", nil, "an improvement; repeat for more")
	cmd.Flags().StringArrayVar(&r.Positives, "positive", nil, "a positive; repeat for more")
	return cmd
}

// retroOf finds the retrospective of a sprint, reporting ErrNotFound when
// the sprint has none.
func (a *app) retroOf(arg string) (types.Retrospective, error) {
	sprint, err := parseID(arg)
	if err != nil {
		return types.Retrospective{}, err
	}
	r, ok, err := a.tracker.RetrospectiveOf(sprint)
	if err != nil {
		return types.Retrospective{}, err
	}
	if !ok {
		return types.Retrospective{}, fmt.Errorf("%w: no retrospective for sprint %d", types.ErrNotFound, sprint)
	}
	return r, nil
}

func (a *app) newRetroShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <sprint-id>",
		Short: "Show the retrospective of a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.retroOf(args[0])
			if err != nil {
				return err
			}
			v, err := a.tracker.GetRetrospective(r.ID)
			if err != nil {
				return err
			}
			return a.emit(cmd, v, func(w io.Writer) {
				retroLines(w, v)
			})
		},
	}
}

func (a *app) newRetroDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <sprint-id>",
		Short: "Delete the retrospective of a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.retroOf(args[0])
			if err != nil {
				return err
			}
			if err := a.tracker.DeleteRetrospective(r.ID); err != nil {
				return err
			}
			return a.done(cmd, "Deleted retrospective %d", r.ID)
		},
	}
}
