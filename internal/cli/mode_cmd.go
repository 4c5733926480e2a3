package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/service"
)

func newModeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode [DATE]",
		Short: "Show or change a day's energy mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(app, args, 0)
			if err != nil {
				return err
			}
			res, err := app.Energy.ResolveMode(cmd.Context(), date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
				formatter.HumanDay(date, app.now()), formatter.ModeBadge(res.Mode, string(res.Origin)))
			return nil
		},
	}

	cmd.AddCommand(
		newModeToggleCmd(app),
		newModeSetCmd(app),
		newModeClearCmd(app),
		newModeProfileCmd(app),
	)
	return cmd
}

func newModeToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [DATE]",
		Short: "Switch the day between green and blue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(app, args, 0)
			if err != nil {
				return err
			}
			view, err := app.Energy.ToggleMode(cmd.Context(), date)
			if err != nil {
				return err
			}
			printModeChange(cmd, app, view)
			return nil
		},
	}
}

func newModeSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set green|blue [DATE]",
		Short:     "Override the mode of one day",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{string(domain.ModeGreen), string(domain.ModeBlue)},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := domain.ParseMode(strings.ToLower(args[0]))
			if !ok {
				return fmt.Errorf("unknown mode %q (want green or blue)", args[0])
			}
			date, err := dateArg(app, args, 1)
			if err != nil {
				return err
			}
			view, err := app.Energy.SetOverride(cmd.Context(), date, m)
			if err != nil {
				return err
			}
			printModeChange(cmd, app, view)
			return nil
		},
	}
}

func newModeClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [DATE]",
		Short: "Remove a day's override so the weekly profile applies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(app, args, 0)
			if err != nil {
				return err
			}
			view, err := app.Energy.ClearOverride(cmd.Context(), date)
			if err != nil {
				return err
			}
			printModeChange(cmd, app, view)
			return nil
		},
	}
}

func newModeProfileCmd(app *App) *cobra.Command {
	var blue string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or set the weekdays that default to blue",
		Long: `Show or set the weekly energy profile. Weekdays are 0 (Sunday) to 6
(Saturday); --blue "" makes every day green.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("blue") {
				days, err := parseWeekdays(blue)
				if err != nil {
					return err
				}
				if err := app.Energy.SetProfile(ctx, days); err != nil {
					return err
				}
			}
			days, ok, err := app.Energy.Profile(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, formatter.Dim("No profile set: every day is green."))
				return nil
			}
			label := "none"
			if len(days) > 0 {
				label = formatter.FormatWeekdays(days)
			}
			fmt.Fprintf(out, "Blue days: %s\n", formatter.StyleBlue.Render(label))
			return nil
		},
	}
	cmd.Flags().StringVar(&blue, "blue", "", "comma-separated weekdays, 0=Sunday")
	return cmd
}

func printModeChange(cmd *cobra.Command, app *App, view *service.DayView) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n",
		formatter.HumanDay(view.Date, app.now()), formatter.ModeBadge(view.Mode.Mode, string(view.Mode.Origin)))
	if view.Updated > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("%d task(s) switched", view.Updated)))
	}
}

// parseWeekdays parses "0,6" or "sat,sun" into weekday indices.
func parseWeekdays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if n, err := strconv.Atoi(part); err == nil {
			days = append(days, n)
			continue
		}
		n, ok := weekdayByName[strings.ToLower(part)[:min(3, len(part))]]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, n)
	}
	return days, nil
}

var weekdayByName = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}
