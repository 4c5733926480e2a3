package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [DATE]",
		Short: "Open the interactive timeline",
		Long: `Open the day as a timeline. Drag an empty row to create a task, drag a
task to move it, drag its last row to resize it and click it to check it off.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(app, args, 0)
			if err != nil {
				return err
			}
			if !app.interactive() {
				return fmt.Errorf("the timeline needs an interactive terminal; use 'lifeos day' instead")
			}
			return runTUI(cmd, app, date)
		},
	}
}

// runTUI asks for the morning check-in when needed, then runs the timeline
// until the user quits.
func runTUI(cmd *cobra.Command, app *App, date time.Time) error {
	if err := promptCheckin(cmd, app, date); err != nil {
		return err
	}
	ctx := cmd.Context()
	p := tea.NewProgram(newTimelineModel(ctx, app, date),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	return nil
}
