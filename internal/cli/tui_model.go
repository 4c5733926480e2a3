package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/lifeos/internal/checkin"
	"github.com/alexanderramin/lifeos/internal/cli/formatter"
	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/repository"
	"github.com/alexanderramin/lifeos/internal/service"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

// One terminal row per snap step.
const (
	rowMinutes  = timeline.SnapMinutes
	gutterWidth = 6
	headerRows  = 2
	scrollStep  = 60
)

// ── messages ─────────────────────────────────────────────────────────────────

// dayLoadedMsg carries a freshly loaded day.
type dayLoadedMsg struct {
	view *service.DayView
	err  error
}

// taskChangedMsg reports the outcome of an edit; the day is reloaded after.
type taskChangedMsg struct {
	status string
	err    error
}

// reviewOpenedMsg carries an open review step for the review panel.
type reviewOpenedMsg struct {
	review *checkin.Review
	err    error
}

type watchStartedMsg struct {
	events <-chan repository.KeyEvent
	err    error
}

type storeChangedMsg struct {
	key string
}

// ── keys ─────────────────────────────────────────────────────────────────────

type timelineKeyMap struct {
	Up, Down       key.Binding
	Earlier, Later key.Binding
	PrevDay        key.Binding
	NextDay        key.Binding
	Today          key.Binding
	Toggle         key.Binding
	Done           key.Binding
	Undo           key.Binding
	Delete         key.Binding
	New            key.Binding
	Help           key.Binding
	Quit           key.Binding
}

func newTimelineKeyMap() timelineKeyMap {
	return timelineKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev task")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next task")),
		Earlier: key.NewBinding(key.WithKeys("K", "pgup"), key.WithHelp("K", "scroll up")),
		Later:   key.NewBinding(key.WithKeys("J", "pgdown"), key.WithHelp("J", "scroll down")),
		PrevDay: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		NextDay: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Today:   key.NewBinding(key.WithKeys("."), key.WithHelp(".", "today")),
		Toggle:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle mode")),
		Done:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "complete")),
		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Delete:  key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k timelineKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Done, k.Toggle, k.PrevDay, k.NextDay, k.Help, k.Quit}
}

func (k timelineKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Earlier, k.Later},
		{k.PrevDay, k.NextDay, k.Today, k.Toggle},
		{k.Done, k.Undo, k.Delete, k.New},
		{k.Help, k.Quit},
	}
}

// ── review panel ─────────────────────────────────────────────────────────────

type reviewPanel struct {
	review *checkin.Review
	input  textinput.Model
	rating int
}

func newReviewPanel(r *checkin.Review, width int) *reviewPanel {
	ti := textinput.New()
	ti.Placeholder = "How did it go? (optional)"
	ti.CharLimit = 500
	ti.Width = max(width-4, 20)
	ti.Focus()
	return &reviewPanel{review: r, input: ti}
}

func (p *reviewPanel) view() string {
	stars := formatter.Dim("none")
	if p.rating > 0 {
		stars = formatter.StyleYellow.Render(strings.Repeat("★", p.rating)) +
			formatter.Dim(strings.Repeat("☆", checkin.MaxRating-p.rating))
	}
	return fmt.Sprintf("%s %s\n%s\n%s %s  %s",
		formatter.StyleHeader.Render("Review"),
		formatter.Bold(p.review.Task.Text),
		p.input.View(),
		formatter.Dim("rating"), stars,
		formatter.Dim("tab rating · enter confirm · esc cancel"))
}

// ── model ────────────────────────────────────────────────────────────────────

// timelineModel is the interactive day view. Mouse gestures on the track go
// through a timeline.Controller; final effects are persisted via ApplyEffect.
type timelineModel struct {
	app *App
	ctx context.Context

	date   time.Time
	view   *service.DayView
	err    error
	status string

	origin  int
	ctl     *timeline.Controller
	preview *timeline.Effect

	cursor int
	review *reviewPanel
	events <-chan repository.KeyEvent

	keys     timelineKeyMap
	help     help.Model
	width    int
	height   int
	quitting bool
}

func newTimelineModel(ctx context.Context, app *App, date time.Time) timelineModel {
	m := timelineModel{
		app:    app,
		ctx:    ctx,
		date:   domain.StartOfDay(date),
		origin: app.geometry().OriginMinute,
		keys:   newTimelineKeyMap(),
		help:   help.New(),
		width:  formatter.DefaultWidth,
		height: 40,
	}
	m.resetController()
	return m
}

// geometry maps one terminal row to one snap step and one column to one
// track cell.
func (m timelineModel) geometry() timeline.Geometry {
	return timeline.Geometry{
		PixelsPerMinute: 1.0 / rowMinutes,
		TrackWidth:      float64(max(m.width-gutterWidth, 10)),
		OriginMinute:    m.origin,
	}
}

func (m *timelineModel) resetController() {
	// A one-cell move is a drag and the last row of a task is its handle.
	m.ctl = timeline.NewController(m.geometry(), timeline.WithDragThreshold(1), timeline.WithEdgeZone(1))
}

func (m timelineModel) tasks() []domain.Task {
	if m.view == nil {
		return nil
	}
	return m.view.Tasks
}

func (m timelineModel) selected() (domain.Task, bool) {
	tasks := m.tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m timelineModel) footerRows() int {
	if m.review != nil {
		return 3
	}
	return lipgloss.Height(m.help.View(m.keys))
}

func (m timelineModel) trackRows() int {
	return max(m.height-headerRows-m.footerRows()-1, 4)
}

// ── commands ─────────────────────────────────────────────────────────────────

// openDay resolves and synchronizes the day.
func (m timelineModel) openDay() tea.Cmd {
	app, ctx, date := m.app, m.ctx, m.date
	return func() tea.Msg {
		view, err := app.Days.OpenDay(ctx, date)
		return dayLoadedMsg{view: view, err: err}
	}
}

// readDay reloads the stored plan without writing, so a change reported by
// the watcher does not trigger another one.
func (m timelineModel) readDay() tea.Cmd {
	app, ctx, date := m.app, m.ctx, m.date
	return func() tea.Msg {
		res, err := app.Energy.ResolveMode(ctx, date)
		if err != nil {
			return dayLoadedMsg{err: err}
		}
		tasks, err := app.Days.Tasks(ctx, date)
		if err != nil {
			return dayLoadedMsg{err: err}
		}
		return dayLoadedMsg{view: &service.DayView{Date: date, Mode: res, Tasks: tasks}}
	}
}

func (m timelineModel) change(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn()
		return taskChangedMsg{status: status, err: err}
	}
}

func (m timelineModel) applyEffect(eff timeline.Effect) tea.Cmd {
	app, ctx, date := m.app, m.ctx, m.date
	return m.change(func() (string, error) {
		t, err := app.Days.ApplyEffect(ctx, date, eff)
		if err != nil {
			return "", err
		}
		switch eff.Kind {
		case timeline.EffectCreate:
			return fmt.Sprintf("Created %q at %s", t.Text, t.Time), nil
		case timeline.EffectResize:
			return fmt.Sprintf("%s now %s", t.Text, formatter.FormatMinutes(t.Duration)), nil
		default:
			return fmt.Sprintf("%s moved to %s", t.Text, t.Time), nil
		}
	})
}

func (m timelineModel) beginReview(id string) tea.Cmd {
	app, ctx, date := m.app, m.ctx, m.date
	return func() tea.Msg {
		r, err := app.Checkins.Begin(ctx, date, id)
		return reviewOpenedMsg{review: r, err: err}
	}
}

func (m timelineModel) startWatch() tea.Cmd {
	if m.app.Watcher == nil {
		return nil
	}
	w, ctx := m.app.Watcher, m.ctx
	return func() tea.Msg {
		events, err := w.Watch(ctx)
		return watchStartedMsg{events: events, err: err}
	}
}

func waitForChange(events <-chan repository.KeyEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return storeChangedMsg{key: ev.Key}
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m timelineModel) Init() tea.Cmd {
	return tea.Batch(m.openDay(), m.startWatch())
}

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resetController()
		return m, nil

	case dayLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.view = msg.view
		m.cursor = min(m.cursor, max(len(m.view.Tasks)-1, 0))
		return m, nil

	case taskChangedMsg:
		m.preview = nil
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err, m.status = nil, msg.status
		}
		return m, m.openDay()

	case reviewOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.review = newReviewPanel(msg.review, m.width)
		return m, textinput.Blink

	case watchStartedMsg:
		if msg.err != nil {
			m.status = "not watching for changes: " + msg.err.Error()
			return m, nil
		}
		m.events = msg.events
		return m, waitForChange(msg.events)

	case storeChangedMsg:
		return m.handleStoreChange(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.err = nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		// An error stays on screen until the next input.
		m.err = nil
		if m.review != nil {
			return m.handleReviewKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.review != nil {
		var cmd tea.Cmd
		m.review.input, cmd = m.review.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleStoreChange reloads when another process edited this day, its mode
// or the goal library, then waits for the next change.
func (m timelineModel) handleStoreChange(msg storeChangedMsg) (tea.Model, tea.Cmd) {
	var reload tea.Cmd
	switch msg.key {
	case repository.TasksKey(m.date):
		reload = m.readDay()
	case "", repository.StatusKey(m.date), repository.KeyGoals, repository.KeyEnergyProfile:
		reload = m.openDay()
	}
	if m.events == nil {
		return m, reload
	}
	return m, tea.Batch(reload, waitForChange(m.events))
}

func (m timelineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, k.Up):
		m.cursor = max(m.cursor-1, 0)
		m.scrollToCursor()

	case key.Matches(msg, k.Down):
		m.cursor = min(m.cursor+1, max(len(m.tasks())-1, 0))
		m.scrollToCursor()

	case key.Matches(msg, k.Earlier):
		m.scroll(-scrollStep)

	case key.Matches(msg, k.Later):
		m.scroll(scrollStep)

	case key.Matches(msg, k.PrevDay):
		return m.goTo(m.date.AddDate(0, 0, -1))

	case key.Matches(msg, k.NextDay):
		return m.goTo(m.date.AddDate(0, 0, 1))

	case key.Matches(msg, k.Today):
		return m.goTo(domain.StartOfDay(m.app.now()))

	case key.Matches(msg, k.Toggle):
		app, ctx, date := m.app, m.ctx, m.date
		return m, m.change(func() (string, error) {
			view, err := app.Energy.ToggleMode(ctx, date)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Switched to %s", view.Mode.Mode), nil
		})

	case key.Matches(msg, k.New):
		at := nextSlot(m.app.now())
		if domain.DaysBetween(m.app.now(), m.date) != 0 {
			at = domain.FormatClock(m.origin)
		}
		return m, m.applyEffect(timeline.Effect{
			Kind:     timeline.EffectCreate,
			Time:     at,
			Duration: domain.ManualDurationMin,
			Final:    true,
		})

	case key.Matches(msg, k.Done):
		if t, ok := m.selected(); ok {
			return m, m.openTask(t)
		}

	case key.Matches(msg, k.Undo):
		if t, ok := m.selected(); ok {
			app, ctx, date := m.app, m.ctx, m.date
			return m, m.change(func() (string, error) {
				t, err := app.Checkins.Undo(ctx, date, t.ID)
				if err != nil {
					return "", err
				}
				return "Reopened " + t.Text, nil
			})
		}

	case key.Matches(msg, k.Delete):
		if t, ok := m.selected(); ok {
			app, ctx, date := m.app, m.ctx, m.date
			return m, m.change(func() (string, error) {
				if err := app.Days.DeleteTask(ctx, date, t.ID); err != nil {
					return "", err
				}
				return "Deleted " + t.Text, nil
			})
		}
	}
	return m, nil
}

// openTask starts the review of an open task; done tasks only report.
func (m timelineModel) openTask(t domain.Task) tea.Cmd {
	if t.Done {
		return func() tea.Msg {
			return taskChangedMsg{err: fmt.Errorf("%q is already done (u to undo): %w", t.Text, checkin.ErrAlreadyDone)}
		}
	}
	return m.beginReview(t.ID)
}

func (m timelineModel) goTo(date time.Time) (tea.Model, tea.Cmd) {
	m.date = domain.StartOfDay(date)
	m.view, m.preview, m.review = nil, nil, nil
	m.cursor, m.status = 0, ""
	return m, m.openDay()
}

func (m *timelineModel) scroll(minutes int) {
	last := domain.MinutesPerDay - m.trackRows()*rowMinutes
	m.origin = min(max(m.origin+minutes, 0), max(last, 0))
	m.origin -= m.origin % rowMinutes
	m.resetController()
}

// scrollToCursor keeps the selected task on screen.
func (m *timelineModel) scrollToCursor() {
	t, ok := m.selected()
	if !ok {
		return
	}
	start := t.StartMinute()
	end := m.origin + m.trackRows()*rowMinutes
	switch {
	case start < m.origin:
		m.scroll(start - m.origin - start%scrollStep)
	case start >= end:
		m.scroll(start - end + scrollStep)
	}
}

func (m timelineModel) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.review = nil
		m.status = "Review cancelled"
		return m, nil
	case tea.KeyTab:
		m.review.rating = (m.review.rating + 1) % (checkin.MaxRating + 1)
		return m, nil
	case tea.KeyEnter:
		p := m.review
		m.review = nil
		app, ctx := m.app, m.ctx
		return m, m.change(func() (string, error) {
			t, err := app.Checkins.Confirm(ctx, p.review, p.input.Value(), p.rating)
			if err != nil {
				return "", err
			}
			return "✓ " + t.Text, nil
		})
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.review.input, cmd = m.review.input.Update(msg)
	return m, cmd
}

// handleMouse feeds the controller in track coordinates. Presses outside
// the track are ignored.
func (m timelineModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.review != nil || m.view == nil {
		return m, nil
	}
	x := float64(msg.X - gutterWidth)
	y := float64(msg.Y - headerRows)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll(-rowMinutes * 2)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll(rowMinutes * 2)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if x < 0 || y < 0 || y >= float64(m.trackRows()) {
			return m, nil
		}
		m.ctl.Press(x, y, m.tasks())

	case msg.Action == tea.MouseActionMotion:
		if eff, ok := m.ctl.Move(x, y); ok {
			m.preview = &eff
		}

	case msg.Action == tea.MouseActionRelease:
		eff, ok := m.ctl.Release(x, y)
		m.preview = nil
		if !ok {
			return m, nil
		}
		if eff.Kind == timeline.EffectOpen {
			i := domain.FindTask(m.tasks(), eff.TaskID)
			if i < 0 {
				return m, nil
			}
			m.cursor = i
			return m, m.openTask(m.tasks()[i])
		}
		return m, m.applyEffect(eff)
	}
	return m, nil
}

// ── rendering ────────────────────────────────────────────────────────────────

func (m timelineModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	if m.view == nil {
		if m.err != nil {
			b.WriteString(formatter.StyleRed.Render("Error: " + m.err.Error()))
		} else {
			b.WriteString(formatter.Dim("Loading..."))
		}
		return b.String()
	}
	b.WriteString(m.trackView())
	b.WriteString("\n")
	if m.review != nil {
		b.WriteString(m.review.view())
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m timelineModel) headerView() string {
	line := formatter.Bold(formatter.HumanDay(m.date, m.app.now())) + "  " + formatter.Dim(domain.DateKey(m.date))
	if m.view != nil {
		line += "  " + formatter.ModeBadge(m.view.Mode.Mode, string(m.view.Mode.Origin))
		var done int
		for _, t := range m.view.Tasks {
			if t.Done {
				done++
			}
		}
		line += "  " + formatter.Dim(fmt.Sprintf("%d/%d done", done, len(m.view.Tasks)))
	}

	status := formatter.Dim(m.status)
	switch {
	case m.err != nil:
		status = formatter.StyleRed.Render(m.err.Error())
	case m.preview != nil:
		status = formatter.StyleYellow.Render(previewLabel(*m.preview))
	}
	return line + "\n" + status
}

func previewLabel(eff timeline.Effect) string {
	if eff.Kind == timeline.EffectResize {
		return "resize → " + formatter.FormatMinutes(eff.Duration)
	}
	return fmt.Sprintf("move → %s-%s", eff.Time, domain.FormatClock(domain.ClockMinutes(eff.Time)+eff.Duration))
}

// segment is one task's slice of one track row.
type segment struct {
	col, width int
	text       string
	style      lipgloss.Style
}

// trackView draws the visible rows of the day with tasks in their lanes.
// The task being dragged is drawn at its previewed position.
func (m timelineModel) trackView() string {
	tasks := m.tasks()
	if m.preview != nil {
		tasks = withPreview(tasks, *m.preview)
	}
	rows := m.trackRows()
	geo := m.geometry()
	selectedID := ""
	if t, ok := m.selected(); ok {
		selectedID = t.ID
	}

	lines := make([][]segment, rows)
	for i, box := range timeline.Layout(tasks, geo) {
		if !box.Visible {
			continue
		}
		t := tasks[i]
		top := int(math.Floor(box.Top))
		bottom := int(math.Ceil(box.Bottom()))
		col := int(box.Left)
		width := max(int(box.Left+box.Width)-col-1, 1)
		style := taskStyle(t, t.ID == selectedID)

		for r := max(top, 0); r < min(bottom, rows); r++ {
			text := ""
			switch r - max(top, 0) {
			case 0:
				text = " " + t.Text
			case 1:
				text = " " + t.Time + "-" + domain.FormatClock(t.EndMinute())
			}
			lines[r] = append(lines[r], segment{col: col, width: width, text: text, style: style})
		}
	}

	var b strings.Builder
	for r, segs := range lines {
		minute := m.origin + r*rowMinutes
		label := strings.Repeat(" ", gutterWidth)
		if minute%60 == 0 && minute < domain.MinutesPerDay {
			label = formatter.Dim(domain.FormatClock(minute) + " ")
		}
		b.WriteString(label)
		b.WriteString(renderRow(segs, minute%60 == 0))
		if r < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderRow(segs []segment, hourLine bool) string {
	sort.Slice(segs, func(i, j int) bool { return segs[i].col < segs[j].col })
	fill := " "
	if hourLine {
		fill = formatter.Dim("┈")
	}
	var b strings.Builder
	cursor := 0
	for _, s := range segs {
		if s.col < cursor {
			continue
		}
		b.WriteString(strings.Repeat(fill, s.col-cursor))
		b.WriteString(s.style.Width(s.width).MaxWidth(s.width).Render(formatter.Truncate(s.text, s.width)))
		cursor = s.col + s.width
	}
	return b.String()
}

func taskStyle(t domain.Task, selected bool) lipgloss.Style {
	bg := formatter.ColorGreen
	if t.Type == domain.ModeBlue {
		bg = formatter.ColorBlue
	}
	s := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("#282828"))
	if t.Done {
		s = s.Background(formatter.ColorDim).Strikethrough(true)
	}
	if selected {
		s = s.Bold(true).Underline(true)
	}
	return s
}

// withPreview returns tasks with the dragged task at its live position.
func withPreview(tasks []domain.Task, eff timeline.Effect) []domain.Task {
	out := append([]domain.Task(nil), tasks...)
	i := domain.FindTask(out, eff.TaskID)
	if i < 0 {
		return out
	}
	switch eff.Kind {
	case timeline.EffectResize:
		out[i].Duration = eff.Duration
	case timeline.EffectMove:
		out[i].Time = eff.Time
	}
	return out
}
