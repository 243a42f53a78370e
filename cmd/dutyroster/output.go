package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/emilianohg/dutyroster/internal/engine"
	"github.com/emilianohg/dutyroster/internal/models"
	"github.com/emilianohg/dutyroster/internal/planner"
	"github.com/emilianohg/dutyroster/internal/repository"
	"github.com/emilianohg/dutyroster/internal/tui/screens"
)

type names struct {
	tasks   map[int64]models.Task
	members map[int64]string
}

func loadNames(database *sql.DB) (*names, error) {
	tasks, err := repository.NewTaskRepo(database).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	members, err := repository.NewMemberRepo(database).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	n := &names{tasks: map[int64]models.Task{}, members: map[int64]string{}}
	for _, t := range tasks {
		n.tasks[t.ID] = t
	}
	for _, m := range members {
		n.members[m.ID] = m.Name
	}
	return n, nil
}

func (n *names) task(id int64) string {
	t, ok := n.tasks[id]
	if !ok {
		return fmt.Sprintf("#%d", id)
	}
	if t.Code == "" {
		return t.Name
	}
	return t.Code + " " + t.Name
}

// printStored prints what is stored for date: assignments, workloads and unassigned tasks.
func printStored(database *sql.DB, date time.Time) error {
	day := date.Format(models.DateLayout)

	assignments, err := repository.NewAssignmentRepo(database).GetByDate(day)
	if err != nil {
		return fmt.Errorf("failed to load assignments: %w", err)
	}
	reports := repository.NewReportRepo(database)
	workloads, err := reports.GetWorkloads(day)
	if err != nil {
		return fmt.Errorf("failed to load workloads: %w", err)
	}
	unassigned, err := reports.GetUnassigned(day)
	if err != nil {
		return fmt.Errorf("failed to load unassigned tasks: %w", err)
	}

	fmt.Println(screens.TitleStyle.Render(screens.DayTitle(date)))

	if len(assignments) == 0 && len(workloads) == 0 && len(unassigned) == 0 {
		fmt.Println(screens.DimStyle.Render("Nothing generated for this day."))
		return nil
	}

	if len(assignments) > 0 {
		fmt.Println(screens.SubtitleStyle.Render("Assignments"))
		for _, a := range assignments {
			lock := " "
			if a.Locked {
				lock = screens.WarningStyle.Render("L")
			}
			label := a.TaskName
			if a.TaskCode != "" {
				label = a.TaskCode + " " + a.TaskName
			}
			fmt.Printf("  %s %4d  %s-%s  %-28s %-16s %s\n",
				lock, a.ID, a.Start, a.End, label, a.MemberName, screens.FormatMinutes(a.DurationMinutes))
		}
		fmt.Println()
	}

	if len(workloads) > 0 {
		fmt.Println(screens.SubtitleStyle.Render("Workload"))
		for _, w := range workloads {
			used := w.CapacityMinutes - w.Remaining()
			fmt.Printf("  %-16s %s %s / %s", w.MemberName,
				screens.LoadBar(used, w.CapacityMinutes, 20),
				screens.FormatMinutes(used), screens.FormatMinutes(w.CapacityMinutes))
			if w.UpkeepMinutes > 0 {
				fmt.Print(screens.DimStyle.Render(fmt.Sprintf("  +%s upkeep", screens.FormatMinutes(w.UpkeepMinutes))))
			}
			if len(w.UnmetTaskIDs) > 0 {
				fmt.Print(screens.WarningStyle.Render(fmt.Sprintf("  %d unmet", len(w.UnmetTaskIDs))))
			}
			fmt.Println()
		}
		fmt.Println()
	}

	if len(unassigned) > 0 {
		fmt.Println(screens.SubtitleStyle.Render("Unassigned"))
		for _, u := range unassigned {
			label := u.Task.Name
			if u.Task.Code != "" {
				label = u.Task.Code + " " + u.Task.Name
			}
			fmt.Printf("  %-28s %s\n", label, screens.WarningStyle.Render(engine.ReasonText(u.Reason)))
		}
		fmt.Println()
	}

	return nil
}

// printDay prints one generated day. Verbose output adds the ranked decision for every task.
func printDay(database *sql.DB, r planner.DayResult, verbose bool) error {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return err
	}
	if err := printStored(database, date); err != nil {
		return err
	}

	if len(r.Response.OverCapacity) == 0 && !verbose {
		fmt.Println(screens.DimStyle.Render("run " + r.RunID))
		return nil
	}

	n, err := loadNames(database)
	if err != nil {
		return err
	}

	if len(r.Response.OverCapacity) > 0 {
		var over []string
		for _, id := range r.Response.OverCapacity {
			over = append(over, n.members[id])
		}
		fmt.Println(screens.ErrorStyle.Render("Over capacity from locked assignments: " + strings.Join(over, ", ")))
	}

	if !verbose {
		fmt.Println(screens.DimStyle.Render("run " + r.RunID))
		return nil
	}

	fmt.Println(screens.SubtitleStyle.Render("Decisions (run " + r.RunID + ")"))
	for _, d := range r.Response.Decisions {
		var status string
		switch {
		case d.Skipped:
			status = screens.DimStyle.Render("not scheduled today")
		case d.Covered >= d.Coverage:
			status = screens.SuccessStyle.Render(fmt.Sprintf("covered %d/%d", d.Covered, d.Coverage))
		case d.Covered > 0:
			status = screens.WarningStyle.Render(fmt.Sprintf("partial %d/%d", d.Covered, d.Coverage))
		default:
			status = screens.ErrorStyle.Render(engine.ReasonText(strings.Join(d.Reasons, ",")))
		}

		var who []string
		for _, id := range d.Members {
			who = append(who, n.members[id])
		}
		fmt.Printf("  %3d. %-28s score %4d  %s", d.Rank, n.task(d.TaskID), d.Score, status)
		if len(who) > 0 {
			fmt.Printf("  -> %s", strings.Join(who, ", "))
		}
		fmt.Println()
	}
	fmt.Println()
	return nil
}
