package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
)

func newStreakCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "streak [GOAL]",
		Short: "Show current streaks",
		Long: `Show how many scheduled days in a row each goal was completed. Today
only counts once it is done; unscheduled days are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				g, err := resolveGoal(ctx, app, args[0])
				if err != nil {
					return err
				}
				n, err := app.Progression.Streak(ctx, g.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d day streak\n", g.Title, n)
				return nil
			}

			streaks, err := app.Progression.RefreshStreaks(ctx)
			if err != nil {
				return err
			}
			goals, byID := splitStreaks(streaks)
			fmt.Fprint(out, formatter.FormatStreaks(goals, byID, app.now()))
			return nil
		},
	}
}
