package domain

// Mode is the energy mode a day (and each task on it) is planned for.
type Mode string

const (
	ModeGreen Mode = "green"
	ModeBlue  Mode = "blue"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeGreen || m == ModeBlue
}

// Toggle returns the opposite mode. Unknown modes toggle to blue.
func (m Mode) Toggle() Mode {
	if m == ModeBlue {
		return ModeGreen
	}
	return ModeBlue
}

// ParseMode parses a user-supplied mode name.
func ParseMode(s string) (Mode, bool) {
	m := Mode(s)
	return m, m.Valid()
}

type Source string

const (
	SourceManual Source = "manual"
	SourceHabit  Source = "habit"
)

type PlanMode string

const (
	PlanLoop    PlanMode = "loop"
	PlanAdvance PlanMode = "advance"
)

// Rating is the qualitative difficulty feedback given when advancing a stage.
type Rating string

const (
	RatingTooEasy   Rating = "too-easy"
	RatingJustRight Rating = "just-right"
	RatingTooHard   Rating = "too-hard"
)

// ValidRatings is the canonical set of accepted rating strings.
var ValidRatings = map[Rating]bool{
	RatingTooEasy: true, RatingJustRight: true, RatingTooHard: true,
}

// Durations applied to habit tasks when the routine does not override them.
const (
	GreenDurationMin = 60
	BlueDurationMin  = 15

	// MinTaskDurationMin is the smallest duration a task may have.
	MinTaskDurationMin = 15
	// ManualDurationMin is the default duration for user-created tasks.
	ManualDurationMin = 60

	// RoutineDays is the length of one routine cycle.
	RoutineDays = 7
)

// DefaultDuration returns the habit-task duration for a mode.
func DefaultDuration(m Mode) int {
	if m == ModeBlue {
		return BlueDurationMin
	}
	return GreenDurationMin
}
