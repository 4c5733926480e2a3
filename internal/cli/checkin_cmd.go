package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
)

func newCheckinCmd(app *App) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "checkin [LEVEL]",
		Short: "Record the morning energy level (0-100)",
		Long: `Record how much energy you have. A level below the blue threshold
plans the day in blue mode, anything else in green. Without LEVEL an
interactive terminal prompts for it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(dateFlag, app.now())
			if err != nil {
				return err
			}
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			} else if app.interactive() {
				if err := checkinForm(&raw).Run(); err != nil {
					return err
				}
			} else {
				return errors.New("energy level required")
			}
			if raw == "" {
				return nil
			}
			level, err := parseLevel(raw)
			if err != nil {
				return err
			}

			view, err := app.Energy.Checkin(cmd.Context(), date, level)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Energy %d → %s\n", level, formatter.ModeBadge(view.Mode.Mode, string(view.Mode.Origin)))
			return nil
		},
	}
	addDateFlag(cmd, &dateFlag)
	return cmd
}
