package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newExportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record of every table as one JSON or XML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(io.Writer) error
			snap, err := a.tracker.Snapshot()
			if err != nil {
				return err
			}
			switch format {
			case "json":
				write = snap.WriteJSON
			case "xml":
				write = snap.WriteXML
			default:
				return fmt.Errorf("unknown export format %q (want json or xml)", format)
			}

			if output == "" || output == "-" {
				return write(cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return sysError{fmt.Errorf("creating %s: %w", output, err)}
			}
			if err := write(f); err != nil {
				f.Close()
				return sysError{fmt.Errorf("writing %s: %w", output, err)}
			}
			if err := f.Close(); err != nil {
				return sysError{fmt.Errorf("closing %s: %w", output, err)}
			}
			a.log.Info("export written", zap.String("path", output), zap.String("format", format))
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or xml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
