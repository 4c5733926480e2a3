package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/service"
)

func newDayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day [DATE]",
		Short: "Show a day's plan, synchronized with the goal library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(app, args, 0)
			if err != nil {
				return err
			}
			return showDay(cmd, app, date)
		},
	}
}

// showDay opens date and prints it. On an interactive terminal the first
// look at today asks for the morning check-in.
func showDay(cmd *cobra.Command, app *App, date time.Time) error {
	if err := promptCheckin(cmd, app, date); err != nil {
		return err
	}
	view, err := app.Days.OpenDay(cmd.Context(), date)
	if err != nil {
		return err
	}
	printDay(cmd, app, view)
	return nil
}

func printDay(cmd *cobra.Command, app *App, view *service.DayView) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, formatter.FormatDay(view.Date, app.now(), view.Mode, view.Tasks, termWidth(cmd)))
	if view.Added+view.Updated+view.Dropped > 0 {
		fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("synced: %d added, %d updated, %d dropped",
			view.Added, view.Updated, view.Dropped)))
	}
}

func promptCheckin(cmd *cobra.Command, app *App, date time.Time) error {
	if !app.interactive() || domain.DaysBetween(app.now(), date) != 0 {
		return nil
	}
	need, err := app.Energy.NeedsCheckin(cmd.Context(), date)
	if err != nil || !need {
		return err
	}
	var raw string
	if err := checkinForm(&raw).Run(); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	level, err := parseLevel(raw)
	if err != nil {
		return err
	}
	_, err = app.Energy.Checkin(cmd.Context(), date, level)
	return err
}

// termWidth is the width of the command's output terminal, or the
// formatter default when it is not a terminal.
func termWidth(cmd *cobra.Command) int {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(f.Fd()) {
		if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
			return w
		}
	}
	return formatter.DefaultWidth
}
