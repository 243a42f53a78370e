package screens

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/dutyroster/internal/models"
	"github.com/emilianohg/dutyroster/internal/repository"
)

// Assignments lists one day's assignments and toggles their lock.
type Assignments struct {
	db     *sql.DB
	width  int
	height int

	date        time.Time
	assignments []models.Assignment
	cursor      int
	loading     bool
	err         error
	message     string
}

func NewAssignments(db *sql.DB) *Assignments {
	return &Assignments{db: db}
}

func (a *Assignments) SetSize(width, height int) {
	a.width = width
	a.height = height
}

func (a *Assignments) SetDate(date time.Time) {
	a.date = date
}

type assignmentsDataMsg struct {
	assignments []models.Assignment
	err         error
}

func (a *Assignments) Init() tea.Cmd {
	a.loading = true
	a.message = ""
	return a.loadData
}

func (a *Assignments) loadData() tea.Msg {
	repo := repository.NewAssignmentRepo(a.db)
	assignments, err := repo.GetByDate(a.date.Format(models.DateLayout))
	return assignmentsDataMsg{assignments: assignments, err: err}
}

func (a *Assignments) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case assignmentsDataMsg:
		a.loading = false
		a.err = msg.err
		a.assignments = msg.assignments
		if a.cursor >= len(a.assignments) {
			a.cursor = max(0, len(a.assignments)-1)
		}
		return nil

	case RefreshMsg:
		return a.Init()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return nil
}

func (a *Assignments) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.assignments)-1 {
			a.cursor++
		}
	case " ", "space":
		if len(a.assignments) == 0 {
			return nil
		}
		selected := a.assignments[a.cursor]
		repo := repository.NewAssignmentRepo(a.db)
		if err := repo.SetLocked(selected.ID, !selected.Locked); err != nil {
			a.err = err
			return nil
		}
		if selected.Locked {
			a.message = fmt.Sprintf("Unlocked %s for %s", taskLabel(selected.TaskCode, selected.TaskName), selected.MemberName)
		} else {
			a.message = fmt.Sprintf("Locked %s for %s", taskLabel(selected.TaskCode, selected.TaskName), selected.MemberName)
		}
		return a.loadData
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (a *Assignments) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("ASSIGNMENTS"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(DayTitle(a.date)))
	b.WriteString("\n\n")

	if a.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if a.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", a.err)))
		b.WriteString("\n\n")
	}

	if a.message != "" {
		b.WriteString(SuccessStyle.Render(a.message))
		b.WriteString("\n\n")
	}

	if len(a.assignments) == 0 {
		b.WriteString(DimStyle.Render("No assignments for this day."))
		b.WriteString("\n")
	}

	for i, as := range a.assignments {
		lock := "  "
		if as.Locked {
			lock = WarningStyle.Render("L ")
		}
		line := fmt.Sprintf("%s %s  %-24s %-16s %s",
			lock,
			clockRange(as.Start, as.End),
			taskLabel(as.TaskCode, as.TaskName),
			as.MemberName,
			FormatMinutes(as.DurationMinutes),
		)
		if i == a.cursor {
			b.WriteString(SelectedStyle.Render("> " + line))
		} else {
			b.WriteString(NormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	help := "[j/k] Move  [space] Lock/unlock  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
