package engine

import (
	"cmp"
	"slices"
	"time"

	"github.com/emilianohg/dutyroster/internal/models"
)

// Outcome is the result of allocating a single task.
type Outcome struct {
	Task     models.Task
	Skipped  bool // recurrence does not apply on the date
	Covered  int  // distinct members on the task, locked ones included
	Assigned []models.Assignment
	Reasons  []string // rejection reasons, cleared once the task has any member
}

// Unassigned reports whether the task ended the run without any member.
func (o Outcome) Unassigned() bool {
	return !o.Skipped && o.Covered == 0
}

// rejections collects why candidates were turned down for a task.
type rejections struct {
	noSkill    bool
	noCapacity bool
}

func (r rejections) reasons() []string {
	var out []string
	if r.noSkill {
		out = append(out, models.ReasonNoSkill)
	}
	if r.noCapacity {
		out = append(out, models.ReasonNoCapacity)
	}
	return out
}

// Allocator owns the workload table for one date. Each Allocate call sees the
// capacity consumed by every earlier call.
type Allocator struct {
	date     time.Time
	day      string
	settings models.ManagerSettings

	members []Capacity
	skills  map[int64]map[int64]bool
	loads   map[int64]*models.DailyWorkload

	onTask    map[int64]map[int64]bool // task -> members already assigned
	locked    map[int64]int            // task -> locked members
	shortfall map[int64][]int64        // task -> skilled members lacking capacity
}

// NewAllocator seeds the workload table with the active members' capacities.
func NewAllocator(date time.Time, members []Capacity, memberSkills []models.MemberSkill, settings models.ManagerSettings) *Allocator {
	a := &Allocator{
		date:      date,
		day:       date.Format(models.DateLayout),
		settings:  settings,
		members:   members,
		skills:    make(map[int64]map[int64]bool, len(members)),
		loads:     make(map[int64]*models.DailyWorkload, len(members)),
		onTask:    map[int64]map[int64]bool{},
		locked:    map[int64]int{},
		shortfall: map[int64][]int64{},
	}
	for _, c := range members {
		a.loads[c.Member.ID] = &models.DailyWorkload{
			MemberID:        c.Member.ID,
			Date:            a.day,
			CapacityMinutes: c.Minutes,
		}
	}
	for _, ms := range memberSkills {
		if _, ok := a.loads[ms.MemberID]; !ok {
			continue
		}
		if a.skills[ms.MemberID] == nil {
			a.skills[ms.MemberID] = map[int64]bool{}
		}
		a.skills[ms.MemberID][ms.SkillID] = true
	}
	return a
}

// Lock records pinned assignments for the date as pre-consumed capacity. Assignments on
// other dates or for members not scheduled that day are ignored.
func (a *Allocator) Lock(locked []models.Assignment, tasks map[int64]models.Task) {
	for _, as := range locked {
		if as.Date != a.day {
			continue
		}
		load, ok := a.loads[as.MemberID]
		if !ok {
			continue
		}
		task := tasks[as.TaskID]
		a.consume(load, task, as.DurationMinutes)
		load.AssignedTaskIDs = append(load.AssignedTaskIDs, as.TaskID)
		if !a.onTask[as.TaskID][as.MemberID] {
			a.locked[as.TaskID]++
		}
		a.markOnTask(as.TaskID, as.MemberID)
	}
}

// Allocate assigns the task to the least-loaded eligible members until its coverage
// is met or no eligible member is left.
func (a *Allocator) Allocate(task models.Task) Outcome {
	out := Outcome{Task: task}
	if !task.Recurrence.Applies(a.date) {
		out.Skipped = true
		return out
	}

	out.Covered = a.locked[task.ID]
	need := task.Coverage() - out.Covered
	if need <= 0 {
		return out
	}

	var rejected rejections
	pool := a.eligible(task, &rejected)

	for _, c := range pool {
		if need == 0 {
			break
		}
		out.Assigned = append(out.Assigned, a.commit(task, c.Member.ID))
		out.Covered++
		need--
	}

	if out.Covered == 0 {
		out.Reasons = rejected.reasons()
	}
	return out
}

// eligible returns the members that can take the task now, least used capacity first.
func (a *Allocator) eligible(task models.Task, rejected *rejections) []Capacity {
	pool := make([]Capacity, 0, len(a.members))
	for _, c := range a.members {
		id := c.Member.ID
		if !task.AllowMultiple && a.onTask[task.ID][id] {
			continue
		}
		if !a.hasSkills(id, task.RequiredSkillIDs) {
			rejected.noSkill = true
			continue
		}
		if a.remaining(id) < task.DurationMinutes {
			rejected.noCapacity = true
			a.shortfall[task.ID] = append(a.shortfall[task.ID], id)
			continue
		}
		pool = append(pool, c)
	}

	slices.SortStableFunc(pool, func(x, y Capacity) int {
		return cmp.Compare(a.used(a.loads[x.Member.ID]), a.used(a.loads[y.Member.ID]))
	})
	return pool
}

func (a *Allocator) commit(task models.Task, memberID int64) models.Assignment {
	load := a.loads[memberID]
	a.consume(load, task, task.DurationMinutes)
	load.AssignedTaskIDs = append(load.AssignedTaskIDs, task.ID)
	a.markOnTask(task.ID, memberID)

	return models.Assignment{
		TaskID:          task.ID,
		MemberID:        memberID,
		Date:            a.day,
		Start:           task.EarliestStart,
		End:             task.EarliestStart.Add(task.DurationMinutes),
		DurationMinutes: task.DurationMinutes,
		Reason:          models.ReasonMatched,
		Status:          models.StatusAssigned,
	}
}

func (a *Allocator) consume(load *models.DailyWorkload, task models.Task, minutes int) {
	if task.IsUpkeep() {
		load.UpkeepMinutes += minutes
		return
	}
	load.OrdinaryMinutes += minutes
}

func (a *Allocator) markOnTask(taskID, memberID int64) {
	if a.onTask[taskID] == nil {
		a.onTask[taskID] = map[int64]bool{}
	}
	a.onTask[taskID][memberID] = true
}

func (a *Allocator) hasSkills(memberID int64, required []int64) bool {
	held := a.skills[memberID]
	for _, id := range required {
		if !held[id] {
			return false
		}
	}
	return true
}

// used is the capacity a member has consumed. Upkeep minutes only count when the
// manager settings say so.
func (a *Allocator) used(load *models.DailyWorkload) int {
	if a.settings.UpkeepCountsAgainstCapacity {
		return load.OrdinaryMinutes + load.UpkeepMinutes
	}
	return load.OrdinaryMinutes
}

func (a *Allocator) remaining(memberID int64) int {
	load := a.loads[memberID]
	return load.CapacityMinutes - a.used(load)
}

// Workload returns a copy of the member's current workload.
func (a *Allocator) Workload(memberID int64) (models.DailyWorkload, bool) {
	load, ok := a.loads[memberID]
	if !ok {
		return models.DailyWorkload{}, false
	}
	w := *load
	w.AssignedTaskIDs = slices.Clone(load.AssignedTaskIDs)
	w.UnmetTaskIDs = slices.Clone(load.UnmetTaskIDs)
	return w, true
}
