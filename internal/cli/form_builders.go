package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/lifeos/internal/checkin"
	"github.com/alexanderramin/lifeos/internal/cli/formatter"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/energy"
)

func lifeosHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func themed(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(lifeosHuhTheme()).WithShowHelp(false)
}

// reviewForm collects the reflection and rating for a task being completed.
func reviewForm(taskText string, review *string, rating *int) *huh.Form {
	options := []huh.Option[int]{huh.NewOption("skip", 0)}
	for r := 1; r <= checkin.MaxRating; r++ {
		options = append(options, huh.NewOption(strings.Repeat("★", r), r))
	}
	return themed(huh.NewGroup(
		huh.NewText().
			Title("How did it go?").
			Description(taskText).
			Value(review),
		huh.NewSelect[int]().
			Title("Rating").
			Options(options...).
			Value(rating),
	))
}

// checkinForm asks for the morning energy level.
func checkinForm(level *string) *huh.Form {
	return themed(huh.NewGroup(
		huh.NewInput().
			Title("Energy check-in").
			Description(fmt.Sprintf("0-100, below %d plans a blue day. Blank to skip.", energy.BlueThreshold)).
			Placeholder("70").
			Value(level).
			Validate(validateOptionalLevel),
	))
}

// goalFields holds the raw answers of the goal form.
type goalFields struct {
	Title string
	Green string
	Blue  string
	Time  string
	Days  []int
}

// goalForm collects a new goal by hand.
func goalForm(f *goalFields) *huh.Form {
	days := make([]huh.Option[int], 0, 7)
	for d, name := range []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"} {
		days = append(days, huh.NewOption(name, d).Selected(true))
	}
	return themed(
		huh.NewGroup(
			huh.NewInput().Title("Goal").Value(&f.Title).Validate(required("goal")),
			huh.NewInput().Title("Green version").Description("full-energy task").Value(&f.Green).Validate(required("green text")),
			huh.NewInput().Title("Blue version").Description("low-energy fallback").Value(&f.Blue).Validate(required("blue text")),
			huh.NewInput().Title("Time (HH:MM, blank for auto)").Placeholder("07:30").Value(&f.Time).Validate(validateOptionalClock),
		),
		huh.NewGroup(
			huh.NewMultiSelect[int]().Title("Days").Options(days...).Value(&f.Days),
		),
	)
}

// apiKeyForm asks for the plan-generation API key without echoing it.
func apiKeyForm(key *string) *huh.Form {
	return themed(huh.NewGroup(
		huh.NewInput().
			Title("API key").
			EchoMode(huh.EchoModePassword).
			Value(key).
			Validate(required("api key")),
	))
}

func confirmForm(title string, ok *bool) *huh.Form {
	return themed(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Save").Negative("Discard").Value(ok),
	))
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// validateOptionalClock accepts empty or an HH:MM time.
func validateOptionalClock(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := domain.NormalizeClock(s)
	return err
}

// validateOptionalLevel accepts empty or an energy level 0..100.
func validateOptionalLevel(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := parseLevel(s)
	return err
}

func parseLevel(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return 0, fmt.Errorf("energy level must be a number from 0 to 100")
	}
	return n, nil
}
