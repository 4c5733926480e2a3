package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/config"
	"github.com/alexanderramin/lifeos/internal/repository"
	"github.com/alexanderramin/lifeos/internal/service"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

// App holds the services and runtime hooks the commands run against.
type App struct {
	Days        service.DayPlanService
	Energy      service.EnergyService
	Goals       service.GoalService
	Checkins    service.CheckinService
	Progression service.ProgressionService
	Export      service.ExportService
	Settings    repository.SettingsRepo

	Config *config.Config
	// Watcher reports changes made to the store by other processes. Nil when
	// the backend cannot watch.
	Watcher repository.Watcher

	// IsInteractive reports whether prompts and the TUI may be shown. Nil
	// means never.
	IsInteractive func() bool
	// Now defaults to time.Now.
	Now func() time.Time
	// LogLevel is raised to INFO by --verbose. May be nil.
	LogLevel *slog.LevelVar
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) geometry() timeline.Geometry {
	if a.Config == nil {
		return timeline.DefaultGeometry
	}
	return a.Config.Geometry()
}

func (a *App) controllerOptions() []timeline.ControllerOption {
	if a.Config == nil {
		return nil
	}
	return a.Config.ControllerOptions()
}

// NewRootCmd creates the top-level "lifeos" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "lifeos",
		Short:         "Daily planner with green and blue energy modes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose && app.LogLevel != nil && app.LogLevel.Level() > slog.LevelInfo {
				app.LogLevel.Set(slog.LevelInfo)
			}
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runTUI(cmd, app, app.now())
			}
			return showDay(cmd, app, app.now())
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every use case to stderr")

	root.AddCommand(
		newDayCmd(app),
		newModeCmd(app),
		newCheckinCmd(app),
		newTaskCmd(app),
		newGoalCmd(app),
		newStreakCmd(app),
		newExportCmd(app),
		newConfigCmd(app),
		newTUICmd(app),
	)

	return root
}
