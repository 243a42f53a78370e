package engine

import (
	"strings"
	"time"

	"github.com/emilianohg/dutyroster/internal/models"
)

// Response is the result of scheduling one day.
type Response struct {
	Date         string
	Assignments  []models.Assignment
	Workloads    []models.DailyWorkload
	Unassigned   []models.UnassignedTask
	// OverCapacity lists members pushed past capacity. Only locked assignments can do that.
	OverCapacity []int64
	Decisions    []Decision
}

// Decision explains what happened to one ranked task.
type Decision struct {
	TaskID   int64
	Rank     int
	Score    int
	Skipped  bool
	Members  []int64
	Reasons  []string
	Coverage int
	Covered  int
}

// aggregate reads the allocator's final state and the per-task outcomes into a Response.
func aggregate(a *Allocator, ranked []RankedTask, outcomes []Outcome) Response {
	resp := Response{Date: a.day}

	for i, out := range outcomes {
		resp.Assignments = append(resp.Assignments, out.Assigned...)
		resp.Decisions = append(resp.Decisions, decide(i, ranked[i], out))

		if !out.Unassigned() {
			continue
		}
		resp.Unassigned = append(resp.Unassigned, models.UnassignedTask{
			Task:   out.Task,
			Reason: strings.Join(out.Reasons, ","),
		})
		for _, memberID := range a.shortfall[out.Task.ID] {
			load := a.loads[memberID]
			load.UnmetTaskIDs = append(load.UnmetTaskIDs, out.Task.ID)
		}
	}

	resp.Workloads = make([]models.DailyWorkload, 0, len(a.members))
	for _, c := range a.members {
		w, _ := a.Workload(c.Member.ID)
		resp.Workloads = append(resp.Workloads, w)
		if a.used(a.loads[c.Member.ID]) > w.CapacityMinutes {
			resp.OverCapacity = append(resp.OverCapacity, c.Member.ID)
		}
	}
	return resp
}

// noStaff reports every applicable task as unassigned for a day without a roster.
func noStaff(date time.Time, ranked []RankedTask) Response {
	resp := Response{Date: date.Format(models.DateLayout)}
	for i, r := range ranked {
		if !r.Task.Recurrence.Applies(date) {
			resp.Decisions = append(resp.Decisions, Decision{TaskID: r.Task.ID, Rank: i + 1, Score: r.Score, Skipped: true, Coverage: r.Task.Coverage()})
			continue
		}
		resp.Unassigned = append(resp.Unassigned, models.UnassignedTask{
			Task:   r.Task,
			Reason: models.ReasonNoStaffToday,
		})
		resp.Decisions = append(resp.Decisions, Decision{
			TaskID:   r.Task.ID,
			Rank:     i + 1,
			Score:    r.Score,
			Reasons:  []string{models.ReasonNoStaffToday},
			Coverage: r.Task.Coverage(),
		})
	}
	return resp
}

func decide(i int, r RankedTask, out Outcome) Decision {
	d := Decision{
		TaskID:   r.Task.ID,
		Rank:     i + 1,
		Score:    r.Score,
		Skipped:  out.Skipped,
		Reasons:  out.Reasons,
		Coverage: r.Task.Coverage(),
		Covered:  out.Covered,
	}
	for _, as := range out.Assigned {
		d.Members = append(d.Members, as.MemberID)
	}
	return d
}

// ReasonText renders reason codes for people.
func ReasonText(reason string) string {
	var parts []string
	for _, code := range strings.Split(reason, ",") {
		switch code {
		case models.ReasonNoStaffToday:
			parts = append(parts, "no staff scheduled today")
		case models.ReasonNoSkill:
			parts = append(parts, "no matching skill")
		case models.ReasonNoCapacity:
			parts = append(parts, "insufficient capacity")
		case "":
		default:
			parts = append(parts, code)
		}
	}
	return strings.Join(parts, ", ")
}
