package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/service"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, edit and complete tasks on a day",
		Long: `Tasks are referenced by their number in 'lifeos day' or by part of
their ID.`,
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskAtCmd(app),
		newTaskResizeCmd(app),
		newTaskMoveCmd(app),
		newTaskEditCmd(app),
		newTaskRemoveCmd(app),
		newTaskDoneCmd(app),
		newTaskUndoCmd(app),
	)
	return cmd
}

// taskFlags is the --date flag shared by every task subcommand.
type taskFlags struct {
	date string
}

func (f *taskFlags) bind(cmd *cobra.Command) { addDateFlag(cmd, &f.date) }

func (f *taskFlags) day(app *App) (time.Time, error) { return parseDate(f.date, app.now()) }

func newTaskAddCmd(app *App) *cobra.Command {
	var (
		flags    taskFlags
		at       string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a manual task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := flags.day(app)
			if err != nil {
				return err
			}
			if at == "" {
				at = nextSlot(app.now())
			}
			t, err := app.Days.AddTask(cmd.Context(), date, strings.Join(args, " "), at, duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s at %s for %s %s\n",
				formatter.Bold(t.Text), t.Time, formatter.FormatMinutes(t.Duration), formatter.TruncID(t.ID))
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&at, "at", "", "start time HH:MM (default: next quarter hour)")
	cmd.Flags().IntVar(&duration, "duration", domain.ManualDurationMin, "duration in minutes")
	return cmd
}

// nextSlot is the next quarter hour after now, kept inside the day.
func nextSlot(now time.Time) string {
	m := now.Hour()*60 + now.Minute()
	m = (m/timeline.SnapMinutes + 1) * timeline.SnapMinutes
	return domain.FormatClock(min(m, domain.MinutesPerDay-timeline.SnapMinutes))
}

func newTaskAtCmd(app *App) *cobra.Command {
	var (
		flags taskFlags
		x     float64
	)

	cmd := &cobra.Command{
		Use:   "at Y",
		Short: "Click the timeline track at offset Y",
		Long: `Click the timeline track Y pixels below its origin, as configured in
the timeline section of the config. Empty space creates a one-hour task
there; a task prints its details.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var y float64
			if _, err := fmt.Sscan(args[0], &y); err != nil {
				return fmt.Errorf("offset %q is not a number", args[0])
			}
			date, err := flags.day(app)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			tasks, err := app.Days.Tasks(ctx, date)
			if err != nil {
				return err
			}
			eff, err := tapTrack(app.geometry(), app.controllerOptions(), tasks, x, y)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if eff.Kind == timeline.EffectOpen {
				t := tasks[domain.FindTask(tasks, eff.TaskID)]
				fmt.Fprintf(out, "%s  %s %s  %s\n", formatter.Bold(t.Text), t.Time, formatter.FormatMinutes(t.Duration), formatter.TruncID(t.ID))
				return nil
			}
			t, err := app.Days.ApplyEffect(ctx, date, eff)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s at %s %s\n", formatter.Bold(t.Text), t.Time, formatter.TruncID(t.ID))
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().Float64Var(&x, "x", 0, "horizontal offset on the track")
	return cmd
}

func newTaskResizeCmd(app *App) *cobra.Command {
	return newTaskDragCmd(app, "resize", "Drag a task's lower edge by DY pixels", true)
}

func newTaskMoveCmd(app *App) *cobra.Command {
	return newTaskDragCmd(app, "move", "Drag a task by DY pixels", false)
}

func newTaskDragCmd(app *App, use, short string, edge bool) *cobra.Command {
	var (
		flags taskFlags
		dy    float64
	)

	cmd := &cobra.Command{
		Use:   use + " TASK --dy PX",
		Short: short,
		Long:  short + `. The result snaps to 15 minutes. Negative values drag up.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := flags.day(app)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, date, args[0])
			if err != nil {
				return err
			}
			tasks, err := app.Days.Tasks(ctx, date)
			if err != nil {
				return err
			}
			eff, err := dragTask(app.geometry(), tasks, t.ID, edge, dy)
			if err != nil {
				return err
			}
			t, err = app.Days.ApplyEffect(ctx, date, eff)
			if err != nil {
				return err
			}
			printTask(cmd, t)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().Float64Var(&dy, "dy", 0, "vertical drag distance in pixels")
	_ = cmd.MarkFlagRequired("dy")
	return cmd
}

func newTaskEditCmd(app *App) *cobra.Command {
	var (
		flags    taskFlags
		text     string
		at       string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "edit TASK",
		Short: "Change a task's text, start or duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit service.TaskEdit
			if cmd.Flags().Changed("text") {
				edit.Text = &text
			}
			if cmd.Flags().Changed("at") {
				edit.Time = &at
			}
			if cmd.Flags().Changed("duration") {
				edit.Duration = &duration
			}
			if edit == (service.TaskEdit{}) {
				return errors.New("nothing to change: pass --text, --at or --duration")
			}

			date, err := flags.day(app)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, date, args[0])
			if err != nil {
				return err
			}
			t, err = app.Days.EditTask(ctx, date, t.ID, edit)
			if err != nil {
				return err
			}
			printTask(cmd, t)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&text, "text", "", "new text")
	cmd.Flags().StringVar(&at, "at", "", "new start time HH:MM")
	cmd.Flags().IntVar(&duration, "duration", 0, "new duration in minutes")
	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:     "rm TASK",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := flags.day(app)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, date, args[0])
			if err != nil {
				return err
			}
			if err := app.Days.DeleteTask(ctx, date, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", t.Text)
			if t.IsHabit() {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Habit tasks come back on the next sync; pause the goal to skip it."))
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	var (
		flags  taskFlags
		review string
		rating int
	)

	cmd := &cobra.Command{
		Use:   "done TASK",
		Short: "Complete a task with an optional review and 1-5 rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := flags.day(app)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, date, args[0])
			if err != nil {
				return err
			}

			prompt := app.interactive() && !cmd.Flags().Changed("review") && !cmd.Flags().Changed("rating")
			if prompt {
				t, err = reviewAndConfirm(cmd, app, date, t)
			} else {
				t, err = app.Checkins.Complete(ctx, date, t.ID, review, rating)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✓"), t.Text)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&review, "review", "", "what went well or badly")
	cmd.Flags().IntVar(&rating, "rating", 0, "satisfaction 1-5, 0 for none")
	return cmd
}

func newTaskUndoCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "undo TASK",
		Short: "Reopen a completed task and drop its review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := flags.day(app)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, date, args[0])
			if err != nil {
				return err
			}
			t, err = app.Checkins.Undo(ctx, date, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reopened %s\n", t.Text)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// reviewAndConfirm opens the review step, asks for the reflection and rating,
// then confirms. Cancelling the form leaves the task open.
func reviewAndConfirm(cmd *cobra.Command, app *App, date time.Time, t domain.Task) (domain.Task, error) {
	r, err := app.Checkins.Begin(cmd.Context(), date, t.ID)
	if err != nil {
		return domain.Task{}, err
	}
	var (
		review string
		rating int
	)
	if err := reviewForm(t.Text, &review, &rating).Run(); err != nil {
		return domain.Task{}, err
	}
	return app.Checkins.Confirm(cmd.Context(), r, review, rating)
}

func printTask(cmd *cobra.Command, t domain.Task) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s-%s  %s  %s\n",
		formatter.Bold(t.Text),
		t.Time, domain.FormatClock(t.EndMinute()),
		formatter.FormatMinutes(t.Duration),
		formatter.TruncID(t.ID))
}
