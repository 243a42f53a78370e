package engine

import (
	"reflect"
	"testing"

	"github.com/emilianohg/dutyroster/internal/models"
)

// TestGenerateNoStaffToday covers a day without any shifts.
func TestGenerateNoStaffToday(t *testing.T) {
	req := Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{task(1, 30), task(2, 30), task(3, 30)},
		Shifts:  []models.ShiftAssignment{shiftOf(1, tuesdayDate, 480)},
		Date:    monday,
	}

	resp := Generate(req)
	if len(resp.Unassigned) != 3 {
		t.Fatalf("unassigned = %d, want 3", len(resp.Unassigned))
	}
	for _, u := range resp.Unassigned {
		if u.Reason != models.ReasonNoStaffToday {
			t.Fatalf("reason for task %d = %q, want %q", u.Task.ID, u.Reason, models.ReasonNoStaffToday)
		}
	}
	if len(resp.Workloads) != 0 {
		t.Fatalf("workloads = %+v, want none", resp.Workloads)
	}
	if len(resp.Assignments) != 0 {
		t.Fatalf("assignments = %+v, want none", resp.Assignments)
	}
}

// TestGenerateSameMemberTakesBothTasks covers two tasks fitting one member.
func TestGenerateSameMemberTakesBothTasks(t *testing.T) {
	req := Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{task(1, 100), task(2, 100)},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 240)},
		Date:    monday,
	}

	resp := Generate(req)
	if len(resp.Assignments) != 2 {
		t.Fatalf("assignments = %d, want 2", len(resp.Assignments))
	}
	for _, as := range resp.Assignments {
		if as.MemberID != 1 {
			t.Fatalf("assignment %+v went to member %d, want 1", as, as.MemberID)
		}
	}
	w := workloadFor(t, resp, 1)
	if w.OrdinaryMinutes != 200 || w.CapacityMinutes != 240 {
		t.Fatalf("workload = %+v, want 200 of 240", w)
	}
	assertIDs(t, "assigned tasks", w.AssignedTaskIDs, []int64{1, 2})
	if len(resp.Unassigned) != 0 {
		t.Fatalf("unassigned = %+v, want none", resp.Unassigned)
	}
}

// TestGenerateInsufficientCapacity covers a task longer than any member's capacity.
func TestGenerateInsufficientCapacity(t *testing.T) {
	req := Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{task(1, 100)},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 50)},
		Date:    monday,
	}

	resp := Generate(req)
	if got := unassignedReason(t, resp, 1); got != models.ReasonNoCapacity {
		t.Fatalf("reason = %q, want %q", got, models.ReasonNoCapacity)
	}
	w := workloadFor(t, resp, 1)
	assertIDs(t, "unmet tasks", w.UnmetTaskIDs, []int64{1})
	if w.OrdinaryMinutes != 0 {
		t.Fatalf("ordinary minutes = %d, want 0", w.OrdinaryMinutes)
	}
}

// TestGenerateMissingSkill covers a skill nobody holds.
func TestGenerateMissingSkill(t *testing.T) {
	bakery := task(1, 30)
	bakery.RequiredSkillIDs = []int64{10}

	req := Request{
		Members:      []models.Member{member(1, "Ana"), member(2, "Bo")},
		Skills:       []models.Skill{{ID: 10, Name: "bakery"}, {ID: 11, Name: "till"}},
		MemberSkills: []models.MemberSkill{{MemberID: 1, SkillID: 11}},
		Tasks:        []models.Task{bakery},
		Shifts:       []models.ShiftAssignment{shiftOf(1, mondayDate, 480), shiftOf(2, mondayDate, 480)},
		Date:         monday,
	}

	resp := Generate(req)
	if got := unassignedReason(t, resp, 1); got != models.ReasonNoSkill {
		t.Fatalf("reason = %q, want %q", got, models.ReasonNoSkill)
	}
	if len(workloadFor(t, resp, 1).UnmetTaskIDs) != 0 {
		t.Fatal("unskilled member should not list the task as unmet")
	}
}

// TestGenerateSkipsWeeklyTaskOnOtherDays covers the recurrence filter.
func TestGenerateSkipsWeeklyTaskOnOtherDays(t *testing.T) {
	weekly := task(1, 30)
	weekly.Recurrence = models.Recurrence{Kind: models.RecurrenceWeekly, Weekday: tuesday.Weekday()}

	req := Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{weekly, task(2, 30)},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 480)},
		Date:    monday,
	}

	resp := Generate(req)
	for _, as := range resp.Assignments {
		if as.TaskID == 1 {
			t.Fatalf("weekly task assigned on monday: %+v", as)
		}
	}
	for _, u := range resp.Unassigned {
		if u.Task.ID == 1 {
			t.Fatalf("weekly task reported unassigned on monday: %+v", u)
		}
	}
	if len(resp.Assignments) != 1 || resp.Assignments[0].TaskID != 2 {
		t.Fatalf("assignments = %+v, want only task 2", resp.Assignments)
	}
	if !resp.Decisions[0].Skipped && !resp.Decisions[1].Skipped {
		t.Fatal("expected a skipped decision for the weekly task")
	}

	req.Date = tuesday
	req.Shifts = []models.ShiftAssignment{shiftOf(1, tuesdayDate, 480)}
	resp = Generate(req)
	if len(resp.Assignments) != 2 {
		t.Fatalf("tuesday assignments = %d, want 2", len(resp.Assignments))
	}
}

// TestGenerateNoStaffSkipsNonApplyingTasks ensures the recurrence filter runs before the no-staff report.
func TestGenerateNoStaffSkipsNonApplyingTasks(t *testing.T) {
	weekly := task(1, 30)
	weekly.Recurrence = models.Recurrence{Kind: models.RecurrenceWeekly, Weekday: tuesday.Weekday()}

	resp := Generate(Request{Tasks: []models.Task{weekly, task(2, 30)}, Date: monday})
	if len(resp.Unassigned) != 1 || resp.Unassigned[0].Task.ID != 2 {
		t.Fatalf("unassigned = %+v, want only task 2", resp.Unassigned)
	}
}

// TestGenerateAccumulatesReasons ensures both rejection reasons are reported together.
func TestGenerateAccumulatesReasons(t *testing.T) {
	skilled := task(1, 200)
	skilled.RequiredSkillIDs = []int64{10}

	req := Request{
		Members:      []models.Member{member(1, "Ana"), member(2, "Bo")},
		MemberSkills: []models.MemberSkill{{MemberID: 2, SkillID: 10}},
		Tasks:        []models.Task{skilled},
		Shifts:       []models.ShiftAssignment{shiftOf(1, mondayDate, 480), shiftOf(2, mondayDate, 100)},
		Date:         monday,
	}

	resp := Generate(req)
	if got := unassignedReason(t, resp, 1); got != "no_skill,no_capacity" {
		t.Fatalf("reason = %q, want no_skill,no_capacity", got)
	}
	if got := ReasonText(resp.Unassigned[0].Reason); got != "no matching skill, insufficient capacity" {
		t.Fatalf("ReasonText = %q", got)
	}
}

// TestGenerateClearsReasonsOnceAssigned ensures a partially rejected task is not reported.
func TestGenerateClearsReasonsOnceAssigned(t *testing.T) {
	skilled := task(1, 60)
	skilled.RequiredSkillIDs = []int64{10}

	req := Request{
		Members:      []models.Member{member(1, "Ana"), member(2, "Bo")},
		MemberSkills: []models.MemberSkill{{MemberID: 2, SkillID: 10}},
		Tasks:        []models.Task{skilled},
		Shifts:       []models.ShiftAssignment{shiftOf(1, mondayDate, 480), shiftOf(2, mondayDate, 480)},
		Date:         monday,
	}

	resp := Generate(req)
	if len(resp.Unassigned) != 0 {
		t.Fatalf("unassigned = %+v, want none", resp.Unassigned)
	}
	if len(resp.Decisions[0].Reasons) != 0 {
		t.Fatalf("decision reasons = %v, want none", resp.Decisions[0].Reasons)
	}
}

// TestGenerateLeastLoadedFirst ensures the pool is ordered by running load.
func TestGenerateLeastLoadedFirst(t *testing.T) {
	req := Request{
		Members: []models.Member{member(1, "Ana"), member(2, "Bo")},
		Tasks:   []models.Task{task(1, 100), task(2, 60), task(3, 30)},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 480), shiftOf(2, mondayDate, 480)},
		Date:    monday,
	}

	resp := Generate(req)
	got := make(map[int64]int64, len(resp.Assignments))
	for _, as := range resp.Assignments {
		got[as.TaskID] = as.MemberID
	}
	want := map[int64]int64{1: 1, 2: 2, 3: 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("task->member = %v, want %v", got, want)
	}
}

// TestGenerateCoverage covers multi-member coverage and partial coverage.
func TestGenerateCoverage(t *testing.T) {
	members := []models.Member{member(1, "Ana"), member(2, "Bo"), member(3, "Cy")}
	shifts := []models.ShiftAssignment{
		shiftOf(1, mondayDate, 480),
		shiftOf(2, mondayDate, 480),
		shiftOf(3, mondayDate, 60),
	}

	pair := task(1, 120)
	pair.MinCoverage = 2
	resp := Generate(Request{Members: members, Tasks: []models.Task{pair}, Shifts: shifts, Date: monday})
	if len(resp.Assignments) != 2 {
		t.Fatalf("assignments = %d, want 2", len(resp.Assignments))
	}
	if resp.Assignments[0].MemberID == resp.Assignments[1].MemberID {
		t.Fatalf("coverage used the same member twice: %+v", resp.Assignments)
	}

	crowd := task(1, 120)
	crowd.MinCoverage = 5
	resp = Generate(Request{Members: members, Tasks: []models.Task{crowd}, Shifts: shifts, Date: monday})
	if len(resp.Assignments) != 2 {
		t.Fatalf("partial assignments = %d, want 2", len(resp.Assignments))
	}
	if len(resp.Unassigned) != 0 {
		t.Fatalf("partially covered task reported unassigned: %+v", resp.Unassigned)
	}
	if d := resp.Decisions[0]; d.Covered != 2 || d.Coverage != 5 {
		t.Fatalf("decision = %+v, want covered 2 of 5", d)
	}
}

// TestGenerateAssignmentFields pins the computed times, reason and status.
func TestGenerateAssignmentFields(t *testing.T) {
	open := task(1, 90)
	open.EarliestStart = 6 * 60

	resp := Generate(Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{open},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 480)},
		Date:    monday,
	})

	want := models.Assignment{
		TaskID:          1,
		MemberID:        1,
		Date:            mondayDate,
		Start:           360,
		End:             450,
		DurationMinutes: 90,
		Reason:          models.ReasonMatched,
		Status:          models.StatusAssigned,
	}
	if len(resp.Assignments) != 1 || !reflect.DeepEqual(resp.Assignments[0], want) {
		t.Fatalf("assignments = %+v, want %+v", resp.Assignments, want)
	}
}

// TestGenerateMustRunGetsCapacityFirst ensures must-run tasks win contested capacity.
func TestGenerateMustRunGetsCapacityFirst(t *testing.T) {
	heavy := task(1, 100)
	heavy.PriorityWeight = 500
	critical := task(2, 100)
	critical.MustRun = true

	resp := Generate(Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{heavy, critical},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 100)},
		Date:    monday,
	})

	if len(resp.Assignments) != 1 || resp.Assignments[0].TaskID != 2 {
		t.Fatalf("assignments = %+v, want only must-run task 2", resp.Assignments)
	}
	if got := unassignedReason(t, resp, 1); got != models.ReasonNoCapacity {
		t.Fatalf("reason = %q, want %q", got, models.ReasonNoCapacity)
	}
}

// TestGenerateNeverExceedsCapacity replays commits and checks the running total after each.
func TestGenerateNeverExceedsCapacity(t *testing.T) {
	members := []models.Member{member(1, "Ana"), member(2, "Bo"), {ID: 3, Name: "Cy", FixedMinutes: 60}}
	shifts := []models.ShiftAssignment{
		shiftOf(1, mondayDate, 300),
		shiftOf(2, mondayDate, 200),
		shiftOf(3, mondayDate, 240),
	}
	var tasks []models.Task
	for i := int64(1); i <= 20; i++ {
		tk := task(i, int(15+(i*37)%90))
		tk.MinCoverage = int(1 + i%2)
		tk.PriorityWeight = int(i % 5)
		tasks = append(tasks, tk)
	}

	resp := Generate(Request{Members: members, Tasks: tasks, Shifts: shifts, Date: monday})

	capacity := map[int64]int{}
	for _, w := range resp.Workloads {
		capacity[w.MemberID] = w.CapacityMinutes
	}
	running := map[int64]int{}
	for _, as := range resp.Assignments {
		running[as.MemberID] += as.DurationMinutes
		if running[as.MemberID] > capacity[as.MemberID] {
			t.Fatalf("member %d at %d minutes exceeds capacity %d after task %d",
				as.MemberID, running[as.MemberID], capacity[as.MemberID], as.TaskID)
		}
	}
	for _, w := range resp.Workloads {
		if w.OrdinaryMinutes != running[w.MemberID] {
			t.Fatalf("workload %+v disagrees with replayed total %d", w, running[w.MemberID])
		}
	}
	if len(resp.OverCapacity) != 0 {
		t.Fatalf("over capacity = %v, want none", resp.OverCapacity)
	}
}

// TestGenerateIsDeterministic ensures identical inputs give identical outputs.
func TestGenerateIsDeterministic(t *testing.T) {
	req := Request{
		Members:      []models.Member{member(1, "Ana"), member(2, "Bo"), member(3, "Cy")},
		MemberSkills: []models.MemberSkill{{MemberID: 2, SkillID: 1}, {MemberID: 3, SkillID: 1}},
		Shifts: []models.ShiftAssignment{
			shiftOf(1, mondayDate, 240),
			shiftOf(2, mondayDate, 240),
			shiftOf(3, mondayDate, 240),
		},
		Date: monday,
	}
	for i := int64(1); i <= 8; i++ {
		tk := task(i, 45)
		if i%3 == 0 {
			tk.RequiredSkillIDs = []int64{1}
		}
		req.Tasks = append(req.Tasks, tk)
	}

	first := Generate(req)
	second := Generate(req)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
}

// TestGenerateUpkeepTrackedSeparately ensures upkeep minutes do not consume capacity by default.
func TestGenerateUpkeepTrackedSeparately(t *testing.T) {
	var tasks []models.Task
	for i := int64(1); i <= 3; i++ {
		tk := task(i, 60)
		tk.Type = models.TaskTypeUpkeep
		tasks = append(tasks, tk)
	}
	req := Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   tasks,
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 100)},
		Date:    monday,
	}

	resp := Generate(req)
	if len(resp.Assignments) != 3 {
		t.Fatalf("assignments = %d, want 3", len(resp.Assignments))
	}
	w := workloadFor(t, resp, 1)
	if w.UpkeepMinutes != 180 || w.OrdinaryMinutes != 0 {
		t.Fatalf("workload = %+v, want 180 upkeep, 0 ordinary", w)
	}

	req.Settings.UpkeepCountsAgainstCapacity = true
	resp = Generate(req)
	if len(resp.Assignments) != 1 {
		t.Fatalf("assignments with upkeep counted = %d, want 1", len(resp.Assignments))
	}
	if len(resp.Unassigned) != 2 {
		t.Fatalf("unassigned with upkeep counted = %d, want 2", len(resp.Unassigned))
	}
}

// TestGenerateLeastLoadedCountsUpkeepWhenConfigured orders the pool by the capacity measure in force.
func TestGenerateLeastLoadedCountsUpkeepWhenConfigured(t *testing.T) {
	upkeep := task(1, 60)
	upkeep.Type = models.TaskTypeUpkeep
	req := Request{
		Members: []models.Member{member(1, "Ana"), member(2, "Bo")},
		Tasks:   []models.Task{upkeep, task(2, 30)},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 480), shiftOf(2, mondayDate, 480)},
		Date:    monday,
	}

	tests := []struct {
		name   string
		counts bool
		want   int64
	}{
		{"upkeep tracked separately", false, 1},
		{"upkeep counts against capacity", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Settings.UpkeepCountsAgainstCapacity = tt.counts
			resp := Generate(req)
			if len(resp.Assignments) != 2 {
				t.Fatalf("assignments = %+v, want 2", resp.Assignments)
			}
			for _, as := range resp.Assignments {
				if as.TaskID == 2 && as.MemberID != tt.want {
					t.Fatalf("ordinary task went to member %d, want %d", as.MemberID, tt.want)
				}
			}
		})
	}
}

// TestGenerateUpkeepStillNeedsOrdinaryHeadroom ensures upkeep eligibility checks the ordinary counter.
func TestGenerateUpkeepStillNeedsOrdinaryHeadroom(t *testing.T) {
	full := task(1, 100)
	upkeep := task(2, 30)
	upkeep.Type = models.TaskTypeUpkeep

	resp := Generate(Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{full, upkeep},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 100)},
		Date:    monday,
	})
	if got := unassignedReason(t, resp, 2); got != models.ReasonNoCapacity {
		t.Fatalf("reason = %q, want %q", got, models.ReasonNoCapacity)
	}
}

// TestGenerateLockedAssignments ensures locked work pre-consumes capacity and coverage.
func TestGenerateLockedAssignments(t *testing.T) {
	pinned := task(1, 200)
	extra := task(2, 100)
	locked := []models.Assignment{
		{ID: 77, TaskID: 1, MemberID: 1, Date: mondayDate, DurationMinutes: 200, Locked: true},
		{ID: 78, TaskID: 2, MemberID: 1, Date: tuesdayDate, DurationMinutes: 100, Locked: true},
	}

	resp := Generate(Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{pinned, extra},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 240)},
		Date:    monday,
		Locked:  locked,
	})

	if len(resp.Assignments) != 0 {
		t.Fatalf("assignments = %+v, want none", resp.Assignments)
	}
	if got := unassignedReason(t, resp, 2); got != models.ReasonNoCapacity {
		t.Fatalf("reason = %q, want %q", got, models.ReasonNoCapacity)
	}
	if len(resp.Unassigned) != 1 {
		t.Fatalf("locked task reported unassigned: %+v", resp.Unassigned)
	}
	w := workloadFor(t, resp, 1)
	if w.OrdinaryMinutes != 200 {
		t.Fatalf("ordinary minutes = %d, want 200", w.OrdinaryMinutes)
	}
	assertIDs(t, "assigned tasks", w.AssignedTaskIDs, []int64{1})
}

// TestGenerateLockedOverCapacity ensures pinned work beyond capacity is flagged.
func TestGenerateLockedOverCapacity(t *testing.T) {
	resp := Generate(Request{
		Members: []models.Member{member(1, "Ana"), member(2, "Bo")},
		Tasks:   []models.Task{task(1, 150)},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 100), shiftOf(2, mondayDate, 100)},
		Date:    monday,
		Locked:  []models.Assignment{{TaskID: 1, MemberID: 1, Date: mondayDate, DurationMinutes: 150, Locked: true}},
	})
	assertIDs(t, "over capacity", resp.OverCapacity, []int64{1})
}

// TestGenerateMultiAssignmentGuard covers re-using a locked member on the same task.
func TestGenerateMultiAssignmentGuard(t *testing.T) {
	double := task(1, 30)
	double.MinCoverage = 2
	req := Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{double},
		Shifts:  []models.ShiftAssignment{shiftOf(1, mondayDate, 480)},
		Date:    monday,
		Locked:  []models.Assignment{{TaskID: 1, MemberID: 1, Date: mondayDate, DurationMinutes: 30, Locked: true}},
	}

	resp := Generate(req)
	if len(resp.Assignments) != 0 {
		t.Fatalf("assignments = %+v, want none without multi-assignment", resp.Assignments)
	}
	if len(resp.Unassigned) != 0 {
		t.Fatalf("locked task reported unassigned: %+v", resp.Unassigned)
	}

	req.Tasks[0].AllowMultiple = true
	resp = Generate(req)
	if len(resp.Assignments) != 1 || resp.Assignments[0].MemberID != 1 {
		t.Fatalf("assignments = %+v, want one more for member 1", resp.Assignments)
	}
}

// TestGenerateRangeSchedulesEachDay ensures days are independent and see only their locks.
func TestGenerateRangeSchedulesEachDay(t *testing.T) {
	weekly := task(2, 60)
	weekly.Recurrence = models.Recurrence{Kind: models.RecurrenceWeekly, Weekday: tuesday.Weekday()}

	req := Request{
		Members: []models.Member{member(1, "Ana")},
		Tasks:   []models.Task{task(1, 60), weekly},
		Shifts: []models.ShiftAssignment{
			shiftOf(1, mondayDate, 120),
			shiftOf(1, tuesdayDate, 120),
		},
		Date:   monday,
		Locked: []models.Assignment{{TaskID: 1, MemberID: 1, Date: tuesdayDate, DurationMinutes: 60, Locked: true}},
	}

	days := GenerateRange(req, 3)
	if len(days) != 3 {
		t.Fatalf("days = %d, want 3", len(days))
	}
	if days[0].Date != mondayDate || len(days[0].Assignments) != 1 {
		t.Fatalf("monday = %+v, want one assignment", days[0])
	}
	if days[1].Date != tuesdayDate || len(days[1].Assignments) != 1 || days[1].Assignments[0].TaskID != 2 {
		t.Fatalf("tuesday = %+v, want only the weekly task generated", days[1])
	}
	if w := workloadFor(t, days[1], 1); w.OrdinaryMinutes != 120 {
		t.Fatalf("tuesday workload = %+v, want 120 minutes", w)
	}
	if len(days[2].Workloads) != 0 || len(days[2].Unassigned) != 1 {
		t.Fatalf("wednesday = %+v, want no staff", days[2])
	}
}
