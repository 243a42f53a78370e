package models

import "time"

// DateLayout is the calendar-day format used for shift, assignment and workload dates.
const DateLayout = "2006-01-02"

type Member struct {
	ID           int64
	Name         string
	Roles        []string
	FixedMinutes int // non-task time deducted from shift length
	CreatedAt    time.Time
}

type Skill struct {
	ID   int64
	Name string
}

type MemberSkill struct {
	MemberID int64
	SkillID  int64
}

type ShiftAssignment struct {
	ID       int64
	MemberID int64
	Date     string
	Start    Clock
	End      Clock
	Class    string

	// Joined fields
	MemberName string
}

type TaskType string

const (
	TaskTypeOrdinary TaskType = "ordinary"
	TaskTypeUpkeep   TaskType = "upkeep"
)

type Task struct {
	ID               int64
	Code             string
	Name             string
	DurationMinutes  int
	RequiredSkillIDs []int64
	MinCoverage      int
	MustRun          bool
	Due              Due
	EarliestStart    Clock
	Type             TaskType
	Recurrence       Recurrence
	PriorityWeight   int
	AllowMultiple    bool
	Number           *int // parsed from Code at ingestion, nil when the code has no T-number
}

// Coverage returns the minimum number of distinct members the task needs.
func (t Task) Coverage() int {
	if t.MinCoverage < 1 {
		return 1
	}
	return t.MinCoverage
}

func (t Task) IsUpkeep() bool {
	return t.Type == TaskTypeUpkeep
}

type OrderSetItem struct {
	TaskID   int64
	Position int
}

// ExplicitRule pins or forbids a member for a task. The greedy allocator does not read
// rules; they are stored and passed through for an override layer.
type ExplicitRule struct {
	ID       int64
	TaskID   int64
	MemberID int64
	Kind     string
}

type ManagerSettings struct {
	UpkeepCountsAgainstCapacity bool `toml:"upkeep_counts_against_capacity"`
}

const (
	StatusAssigned = "assigned"
	ReasonMatched  = "skill and priority matched"
)

type Assignment struct {
	ID              int64
	TaskID          int64
	MemberID        int64
	Date            string
	Start           Clock
	End             Clock
	DurationMinutes int
	Reason          string
	Locked          bool
	Status          string
	RunID           string
	CreatedAt       time.Time

	// Joined fields
	TaskCode   string
	TaskName   string
	MemberName string
}

type DailyWorkload struct {
	MemberID        int64
	Date            string
	CapacityMinutes int
	OrdinaryMinutes int
	UpkeepMinutes   int
	AssignedTaskIDs []int64
	UnmetTaskIDs    []int64
}

// Remaining returns the capacity left after ordinary work.
func (w DailyWorkload) Remaining() int {
	return w.CapacityMinutes - w.OrdinaryMinutes
}

// Failure reasons reported on unassigned tasks.
const (
	ReasonNoStaffToday = "no_staff_today"
	ReasonNoSkill      = "no_skill"
	ReasonNoCapacity   = "no_capacity"
)

type UnassignedTask struct {
	Task   Task
	Reason string
}
