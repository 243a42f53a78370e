package screens

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/dutyroster/internal/config"
	"github.com/emilianohg/dutyroster/internal/engine"
	"github.com/emilianohg/dutyroster/internal/models"
	"github.com/emilianohg/dutyroster/internal/planner"
	"github.com/emilianohg/dutyroster/internal/repository"
)

type Dashboard struct {
	db      *sql.DB
	planner *planner.Planner
	width   int
	height  int

	date            time.Time
	workloads       []repository.MemberWorkload
	unassigned      []models.UnassignedTask
	assignmentCount int
	lockedCount     int

	dateInput    textinput.Model
	enteringDate bool
	loading      bool
	err          error
	message      string
}

func NewDashboard(db *sql.DB, cfg *config.Config, date time.Time) *Dashboard {
	ti := textinput.New()
	ti.Placeholder = models.DateLayout
	ti.CharLimit = 10
	ti.Width = 12

	return &Dashboard{
		db:        db,
		planner:   planner.New(db, cfg),
		date:      date,
		dateInput: ti,
		loading:   true,
	}
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *Dashboard) Date() time.Time {
	return d.date
}

// Editing reports whether the date input has focus, so 'q' must not quit.
func (d *Dashboard) Editing() bool {
	return d.enteringDate
}

func (d *Dashboard) SetDate(date time.Time) {
	d.date = date
}

type dashboardDataMsg struct {
	date        string
	workloads   []repository.MemberWorkload
	unassigned  []models.UnassignedTask
	assignments int
	locked      int
	err         error
}

type generatedMsg struct {
	result planner.DayResult
	err    error
}

func (d *Dashboard) Init() tea.Cmd {
	d.loading = true
	return d.loadData
}

func (d *Dashboard) loadData() tea.Msg {
	day := d.date.Format(models.DateLayout)
	reportRepo := repository.NewReportRepo(d.db)

	workloads, err := reportRepo.GetWorkloads(day)
	if err != nil {
		return dashboardDataMsg{date: day, err: err}
	}

	unassigned, err := reportRepo.GetUnassigned(day)
	if err != nil {
		return dashboardDataMsg{date: day, err: err}
	}

	assignments, err := repository.NewAssignmentRepo(d.db).GetByDate(day)
	if err != nil {
		return dashboardDataMsg{date: day, err: err}
	}
	locked := 0
	for _, a := range assignments {
		if a.Locked {
			locked++
		}
	}

	return dashboardDataMsg{
		date:        day,
		workloads:   workloads,
		unassigned:  unassigned,
		assignments: len(assignments),
		locked:      locked,
	}
}

func (d *Dashboard) generate() tea.Msg {
	results, err := d.planner.Generate(context.Background(), d.date, 1)
	if err != nil {
		return generatedMsg{err: err}
	}
	return generatedMsg{result: results[0]}
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		// Ignore data for a day the user already moved away from
		if msg.date != d.date.Format(models.DateLayout) {
			return nil
		}
		d.loading = false
		d.err = msg.err
		d.workloads = msg.workloads
		d.unassigned = msg.unassigned
		d.assignmentCount = msg.assignments
		d.lockedCount = msg.locked
		return nil

	case generatedMsg:
		if msg.err != nil {
			d.err = msg.err
			d.loading = false
			return nil
		}
		d.message = fmt.Sprintf("Generated %d assignments, %d unassigned",
			len(msg.result.Response.Assignments), len(msg.result.Response.Unassigned))
		return d.loadData

	case RefreshMsg:
		return d.Init()

	case tea.KeyMsg:
		if d.enteringDate {
			return d.handleDateKey(msg)
		}
		return d.handleKey(msg)
	}

	if d.enteringDate {
		var cmd tea.Cmd
		d.dateInput, cmd = d.dateInput.Update(msg)
		return cmd
	}

	return nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "h", "left":
		d.moveDays(-1)
		return d.Init()
	case "l", "right":
		d.moveDays(1)
		return d.Init()
	case "t":
		d.date = today()
		d.message = ""
		return d.Init()
	case "g":
		d.loading = true
		d.message = ""
		d.err = nil
		return d.generate
	case "d":
		d.enteringDate = true
		d.dateInput.SetValue(d.date.Format(models.DateLayout))
		d.dateInput.Focus()
		return textinput.Blink
	case "a":
		return NavigateWithDate("assignments", d.date)
	}
	return nil
}

func (d *Dashboard) handleDateKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		date, err := models.ParseDate(d.dateInput.Value())
		if err != nil {
			d.message = fmt.Sprintf("Invalid date %q (expected %s)", d.dateInput.Value(), models.DateLayout)
			return nil
		}
		d.enteringDate = false
		d.dateInput.Blur()
		d.date = date
		d.message = ""
		return d.Init()
	case "esc":
		d.enteringDate = false
		d.dateInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	d.dateInput, cmd = d.dateInput.Update(msg)
	return cmd
}

func (d *Dashboard) moveDays(n int) {
	d.date = d.date.AddDate(0, 0, n)
	d.message = ""
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("DUTYROSTER"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(DayTitle(d.date)))
	b.WriteString("\n\n")

	if d.enteringDate {
		b.WriteString("Go to date: ")
		b.WriteString(d.dateInput.View())
		b.WriteString("\n")
		if d.message != "" {
			b.WriteString(WarningStyle.Render(d.message))
			b.WriteString("\n")
		}
		b.WriteString(HelpStyle.Render("[enter] Go  [esc] Cancel"))
		return b.String()
	}

	if d.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if d.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", d.err)))
		b.WriteString("\n")
	}

	if d.message != "" {
		b.WriteString(SuccessStyle.Render(d.message))
		b.WriteString("\n\n")
	}

	if len(d.workloads) == 0 && len(d.unassigned) == 0 {
		b.WriteString(DimStyle.Render("Nothing generated for this day. Press 'g' to generate."))
		b.WriteString("\n")
	} else {
		stats := fmt.Sprintf("Assignments: %d (%d locked)\nUnassigned: %s",
			d.assignmentCount, d.lockedCount, d.formatUnassigned())
		b.WriteString(BoxStyle.Render(stats))
		b.WriteString("\n\n")
	}

	// Workloads
	if len(d.workloads) > 0 {
		b.WriteString(SubtitleStyle.Render("Workload"))
		b.WriteString("\n")
		for _, w := range d.workloads {
			used := w.CapacityMinutes - w.Remaining()
			b.WriteString(fmt.Sprintf("  %-16s %s %s / %s",
				NormalStyle.Render(w.MemberName),
				LoadBar(used, w.CapacityMinutes, 20),
				FormatMinutes(used),
				FormatMinutes(w.CapacityMinutes),
			))
			if w.UpkeepMinutes > 0 {
				b.WriteString(DimStyle.Render(fmt.Sprintf("  +%s upkeep", FormatMinutes(w.UpkeepMinutes))))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Unassigned
	if len(d.unassigned) > 0 {
		b.WriteString(SubtitleStyle.Render("Unassigned"))
		b.WriteString("\n")
		for _, u := range d.unassigned {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				NormalStyle.Render(taskLabel(u.Task.Code, u.Task.Name)),
				WarningStyle.Render("("+engine.ReasonText(u.Reason)+")"),
			))
		}
	}

	help := "[h/l] Prev/next day  [t] Today  [d] Go to date  [g] Generate  [a] Assignments  [q] Quit"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (d *Dashboard) formatUnassigned() string {
	if len(d.unassigned) == 0 {
		return SuccessStyle.Render("0")
	}
	return WarningStyle.Render(fmt.Sprintf("%d", len(d.unassigned)))
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
