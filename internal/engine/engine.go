package engine

import (
	"time"

	"github.com/emilianohg/dutyroster/internal/models"
)

// Request holds everything needed to schedule one target date.
type Request struct {
	Members      []models.Member
	Tasks        []models.Task
	Skills       []models.Skill
	MemberSkills []models.MemberSkill
	Shifts       []models.ShiftAssignment
	Rules        []models.ExplicitRule // passed through, not read by the allocator
	Settings     models.ManagerSettings
	Date         time.Time
	OrderItems   []models.OrderSetItem
	Locked       []models.Assignment
}

// Generate schedules the request's target date.
func Generate(req Request) Response {
	day := req.Date.Format(models.DateLayout)
	ranked := Rank(req.Tasks, req.OrderItems)

	active := ActiveMembers(req.Members, req.Shifts, day)
	if len(active) == 0 {
		return noStaff(req.Date, ranked)
	}

	tasks := make(map[int64]models.Task, len(req.Tasks))
	for _, t := range req.Tasks {
		tasks[t.ID] = t
	}

	alloc := NewAllocator(req.Date, active, req.MemberSkills, req.Settings)
	alloc.Lock(req.Locked, tasks)

	outcomes := make([]Outcome, 0, len(ranked))
	for _, r := range ranked {
		outcomes = append(outcomes, alloc.Allocate(r.Task))
	}
	return aggregate(alloc, ranked, outcomes)
}

// GenerateRange schedules days consecutive dates starting at req.Date. Days are
// independent; each run only sees the locked assignments dated that day.
func GenerateRange(req Request, days int) []Response {
	out := make([]Response, 0, max(days, 0))
	for i := 0; i < days; i++ {
		out = append(out, Generate(ForDay(req, req.Date.AddDate(0, 0, i))))
	}
	return out
}

// ForDay returns a copy of req targeting date with only that day's locked assignments.
func ForDay(req Request, date time.Time) Request {
	day := date.Format(models.DateLayout)
	r := req
	r.Date = date
	r.Locked = nil
	for _, as := range req.Locked {
		if as.Date == day {
			r.Locked = append(r.Locked, as)
		}
	}
	return r
}
