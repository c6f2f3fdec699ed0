package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// emit writes v as indented JSON in --json mode, otherwise calls text.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if a.jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

// done reports a completed mutation.
func (a *app) done(cmd *cobra.Command, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return a.emit(cmd, map[string]string{"result": msg}, func(w io.Writer) {
		fmt.Fprintln(w, msg)
	})
}

// created reports the id of a new record.
func (a *app) created(cmd *cobra.Command, kind string, id int64) error {
	return a.emit(cmd, map[string]int64{"id": id}, func(w io.Writer) {
		fmt.Fprintf(w, "Created %s %d\n", kind, id)
	})
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, arg)
	}
	return id, nil
}

func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse(record.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --%s must be %s, got %q",
			types.ErrInvalidData, flag, record.DateLayout, value)
	}
	return t, nil
}

func userLine(w io.Writer, u types.User) {
	last := "-"
	if u.LastLogin != nil {
		last = record.FormatTimestamp(*u.LastLogin)
	}
	fmt.Fprintf(w, "%d\t%s\t%s\tactive=%t\tlast_login=%s\n", u.ID, u.Name, u.Email, u.Active, last)
}

func projectLine(w io.Writer, p types.Project) {
	fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Description)
}

func sprintLine(w io.Writer, v types.SprintView) {
	project := refLabel(v.Project, func(p types.Project) string { return p.Name })
	fmt.Fprintf(w, "%d\t%s..%s\tproject=%s\n",
		v.ID, record.FormatDate(v.StartDate), record.FormatDate(v.EndDate), project)
}

func taskLine(w io.Writer, v types.TaskView) {
	assignee := refLabel(v.Assignee, func(u types.User) string { return u.Email })
	fmt.Fprintf(w, "%d\t%s\t%s\tp%d\tsprint=%d\tassignee=%s\n",
		v.ID, v.Status, v.Title, v.Priority, v.SprintID, assignee)
}

func retroLines(w io.Writer, v types.RetrospectiveView) {
	fmt.Fprintf(w, "Retrospective %d\tsprint=%d\n", v.ID, v.SprintID)
	fmt.Fprintf(w, "Summary:\t%s\n", v.Summary)
	fmt.Fprintf(w, "Improvements:\t%s\n", strings.Join(v.Improvements, "; "))
	fmt.Fprintf(w, "Positives:\t%s\n", strings.Join(v.Positives, "; "))
}

// refLabel renders a reference: its label when resolved, "-" when absent
// and "missing(<id>)" when dangling.
func refLabel[T any](r types.Ref[T], label func(T) string) string {
	switch r.State {
	case types.RefResolved:
		return label(r.Value)
	case types.RefMissing:
		return fmt.Sprintf("missing(%d)", r.ID)
	default:
		return "-"
	}
}
