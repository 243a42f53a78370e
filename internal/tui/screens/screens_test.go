package screens

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/mattn/go-sqlite3"

	"github.com/emilianohg/dutyroster/internal/db"
	"github.com/emilianohg/dutyroster/internal/models"
	"github.com/emilianohg/dutyroster/internal/repository"
)

var monday = time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tui.sqlite")+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// seedDay stores one member on shift and one task for Monday.
func seedDay(t *testing.T, conn *sql.DB) {
	t.Helper()
	member, err := repository.NewMemberRepo(conn).Create("Ana", nil, 0)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := repository.NewTaskRepo(conn).Create(models.Task{Code: "T1", Name: "Open", DurationMinutes: 45}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := repository.NewShiftRepo(conn).Create(models.ShiftAssignment{
		MemberID: member.ID, Date: "2025-01-13", Start: 9 * 60, End: 17 * 60,
	}); err != nil {
		t.Fatalf("create shift: %v", err)
	}
}

// drain runs cmd and feeds every resulting message back into update until no command is left.
func drain(t *testing.T, update func(tea.Msg) tea.Cmd, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		cmd = update(cmd())
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{
		0:   "0m",
		45:  "45m",
		60:  "1h",
		90:  "1h30m",
		485: "8h05m",
		-30: "-30m",
	}
	for in, want := range tests {
		if got := FormatMinutes(in); got != want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadBarWidth(t *testing.T) {
	for _, tc := range []struct{ used, capacity int }{{0, 480}, {240, 480}, {600, 480}, {0, 0}} {
		bar := LoadBar(tc.used, tc.capacity, 10)
		if n := strings.Count(bar, "█") + strings.Count(bar, "░"); n != 10 {
			t.Fatalf("LoadBar(%d, %d) has %d cells, want 10", tc.used, tc.capacity, n)
		}
	}
}

// TestDashboardGenerateAndNavigate generates a day from the dashboard and moves between days.
func TestDashboardGenerateAndNavigate(t *testing.T) {
	conn := openTestDB(t)
	seedDay(t, conn)

	d := NewDashboard(conn, nil, monday)
	drain(t, d.Update, d.Init())
	if d.loading || len(d.workloads) != 0 {
		t.Fatalf("fresh dashboard = loading %v, workloads %+v", d.loading, d.workloads)
	}

	drain(t, d.Update, d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")}))
	if d.err != nil {
		t.Fatalf("generate: %v", d.err)
	}
	if d.assignmentCount != 1 || len(d.workloads) != 1 || d.workloads[0].OrdinaryMinutes != 45 {
		t.Fatalf("after generate: count %d, workloads %+v", d.assignmentCount, d.workloads)
	}
	if !strings.Contains(d.View(), "Ana") {
		t.Fatalf("view does not list the member:\n%s", d.View())
	}

	drain(t, d.Update, d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}))
	if !d.Date().Equal(monday.AddDate(0, 0, 1)) || len(d.workloads) != 0 {
		t.Fatalf("next day = %v, workloads %+v", d.Date(), d.workloads)
	}

	d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if !d.Editing() {
		t.Fatal("date input not focused")
	}
	d.dateInput.SetValue("2025-01-13")
	drain(t, d.Update, d.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	if d.Editing() || !d.Date().Equal(monday) || d.assignmentCount != 1 {
		t.Fatalf("after jump: editing %v, date %v, count %d", d.Editing(), d.Date(), d.assignmentCount)
	}
}

// TestDashboardRejectsBadDate keeps the input open on an unparsable date.
func TestDashboardRejectsBadDate(t *testing.T) {
	d := NewDashboard(openTestDB(t), nil, monday)
	d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	d.dateInput.SetValue("13/01/2025")
	if cmd := d.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("expected no command for an invalid date")
	}
	if !d.Editing() || !strings.Contains(d.message, "Invalid date") {
		t.Fatalf("editing %v, message %q", d.Editing(), d.message)
	}
}

// TestAssignmentsToggleLock locks and unlocks the selected assignment.
func TestAssignmentsToggleLock(t *testing.T) {
	conn := openTestDB(t)
	seedDay(t, conn)
	d := NewDashboard(conn, nil, monday)
	drain(t, d.Update, d.generate)

	a := NewAssignments(conn)
	a.SetDate(monday)
	drain(t, a.Update, a.Init())
	if len(a.assignments) != 1 || a.assignments[0].Locked {
		t.Fatalf("assignments = %+v", a.assignments)
	}

	drain(t, a.Update, a.Update(tea.KeyMsg{Type: tea.KeySpace}))
	stored, err := repository.NewAssignmentRepo(conn).GetByID(a.assignments[0].ID)
	if err != nil || stored == nil || !stored.Locked || !a.assignments[0].Locked {
		t.Fatalf("after lock: stored %+v, %v; screen %+v", stored, err, a.assignments[0])
	}
	if !strings.HasPrefix(a.message, "Locked T1 Open") {
		t.Fatalf("message = %q", a.message)
	}

	drain(t, a.Update, a.Update(tea.KeyMsg{Type: tea.KeySpace}))
	if a.assignments[0].Locked {
		t.Fatal("assignment still locked after second toggle")
	}

	cmd := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if nav, ok := cmd().(NavigateMsg); !ok || nav.Screen != "dashboard" {
		t.Fatalf("esc produced %+v", nav)
	}
}
