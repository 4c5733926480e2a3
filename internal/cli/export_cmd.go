package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		from   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export seven days of tasks as an iCalendar file",
		Long: `Export the week starting at --from as iCalendar events. Each day is
synchronized first, so habit tasks are included. Writes to stdout unless
-o is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			start, err := parseDate(from, app.now())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}

			n, err := app.Export.ExportWeek(cmd.Context(), start, w)
			if err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d events to %s\n", n, formatter.Bold(output))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "today", "first day of the week")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}
