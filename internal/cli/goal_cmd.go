package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/service"
)

func newGoalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals"},
		Short:   "Manage the goal library",
		Long: `Goals are recurring habits. Every active goal puts one task on each of
its weekdays, in the green or blue variant of the day's mode.`,
	}

	cmd.AddCommand(
		newGoalAddCmd(app),
		newGoalListCmd(app),
		newGoalShowCmd(app),
		newGoalRemoveCmd(app),
		newGoalPauseCmd(app, true),
		newGoalPauseCmd(app, false),
		newGoalDraftCmd(app),
		newGoalAdvanceCmd(app),
	)
	return cmd
}

func newGoalAddCmd(app *App) *cobra.Command {
	var (
		f    goalFields
		days string
		plan string
	)

	cmd := &cobra.Command{
		Use:   "add [TITLE]",
		Short: "Add a goal",
		Long: `Add a goal. Missing fields are asked for on an interactive terminal.
--days takes weekday numbers (0=Sunday) or names; blank means every day.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.Title = args[0]
			}
			var err error
			if f.Days, err = parseWeekdays(days); err != nil {
				return err
			}
			if f.Title == "" || f.Green == "" || f.Blue == "" {
				if !app.interactive() {
					return errors.New("title, --green and --blue are required")
				}
				if err := goalForm(&f).Run(); err != nil {
					return err
				}
			}

			g := &domain.Goal{
				Title:     f.Title,
				Green:     f.Green,
				Blue:      f.Blue,
				Time:      strings.TrimSpace(f.Time),
				Frequency: domain.NewWeekdays(f.Days...),
				PlanMode:  domain.PlanMode(plan),
			}
			if len(g.Frequency) == 0 {
				g.Frequency = domain.EveryDay()
			}
			if err := app.Goals.Create(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added goal %s %s\n", formatter.Bold(g.Title), formatter.TruncID(g.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Green, "green", "", "task text on green days")
	cmd.Flags().StringVar(&f.Blue, "blue", "", "task text on blue days")
	cmd.Flags().StringVar(&f.Time, "at", "", "start time HH:MM (default: staggered from 07:00)")
	cmd.Flags().StringVar(&days, "days", "", "weekdays, e.g. 1,3,5 or mon,wed,fri")
	cmd.Flags().StringVar(&plan, "plan", string(domain.PlanLoop), "loop or advance")
	return cmd
}

func newGoalListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List goals with their streaks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			streaks, err := app.Progression.RefreshStreaks(cmd.Context())
			if err != nil {
				return err
			}
			goals, byID := splitStreaks(streaks)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoalList(goals, byID, termWidth(cmd)))
			return nil
		},
	}
}

func splitStreaks(streaks []service.GoalStreak) ([]domain.Goal, map[string]int) {
	goals := make([]domain.Goal, len(streaks))
	byID := make(map[string]int, len(streaks))
	for i, s := range streaks {
		goals[i] = s.Goal
		byID[s.Goal.ID] = s.Streak
	}
	return goals, byID
}

func newGoalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show GOAL",
		Short: "Show a goal, its recent days and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			streak, err := app.Progression.Streak(ctx, g.ID)
			if err != nil {
				return err
			}
			recent, err := app.Progression.Recent(ctx, g.ID, formatter.RecentDays)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoalDetail(*g, streak, recent, termWidth(cmd)))
			return nil
		},
	}
}

func newGoalRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm GOAL",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a goal",
		Long: `Delete a goal. Its open tasks disappear on each day's next sync;
completed tasks stay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Goals.Delete(ctx, g.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal %s\n", g.Title)
			return nil
		},
	}
}

func newGoalPauseCmd(app *App, pause bool) *cobra.Command {
	use, short, done := "resume GOAL", "Resume a paused goal", "Resumed"
	if pause {
		use, short, done = "pause GOAL", "Stop scheduling a goal without deleting it", "Paused"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			if pause {
				g, err = app.Goals.Pause(ctx, g.ID)
			} else {
				g, err = app.Goals.Resume(ctx, g.ID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", done, g.Title)
			return nil
		},
	}
}

func newGoalDraftCmd(app *App) *cobra.Command {
	var (
		plan string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "draft DESCRIPTION...",
		Short: "Generate a goal plan from a description",
		Long: `Ask the plan generator for a goal with green and blue texts, milestones
and a 7-day routine. The draft is shown and saved after confirmation, or
directly with --yes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode := domain.PlanMode(plan)

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Drafting plan...")
			p, err := app.Goals.Draft(ctx, strings.Join(args, " "), mode)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatProposal(p, termWidth(cmd)))
			if !yes {
				if !app.interactive() {
					fmt.Fprintln(out, formatter.Dim("Not saved. Re-run with --yes to keep it."))
					return nil
				}
				if err := confirmForm("Save this goal?", &yes).Run(); err != nil {
					return err
				}
				if !yes {
					fmt.Fprintln(out, formatter.Dim("Discarded."))
					return nil
				}
			}

			g := service.GoalFromProposal(*p, mode)
			if g.Title == "" {
				g.Title = strings.Join(args, " ")
			}
			if err := app.Goals.Create(ctx, g); err != nil {
				return err
			}
			fmt.Fprintf(out, "Added goal %s %s\n", formatter.Bold(g.Title), formatter.TruncID(g.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", string(domain.PlanLoop), "loop (repeat the routine) or advance (progress through stages)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "save without asking")
	return cmd
}

func newGoalAdvanceCmd(app *App) *cobra.Command {
	var rating string

	cmd := &cobra.Command{
		Use:   "advance GOAL",
		Short: "Move a progressive goal to its next stage",
		Long: `Generate the next stage of an advance-mode goal from how the current
one felt (--rating too-easy, just-right or too-hard) and the reviews written
since it started.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}

			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Planning the next stage...")
			g, err = app.Progression.Advance(ctx, g.ID, domain.Rating(rating))
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now at stage %d\n", formatter.Bold(g.Title), g.StageCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&rating, "rating", string(domain.RatingJustRight), "too-easy, just-right or too-hard")
	return cmd
}
