package roster

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/emilianohg/dutyroster/internal/models"
	"github.com/emilianohg/dutyroster/internal/repository"
)

type ApplyResult struct {
	SkillsCreated  int
	MembersCreated int
	MembersUpdated int
	TasksCreated   int
	TasksUpdated   int
	Shifts         int
	Ordered        int
	Rules          int
}

// Apply stores a roster document in one transaction, so a bad entry leaves the store untouched.
// Skills, members and tasks are matched by name or code and updated in place. Shifts replace
// whatever a member already had on that date, and a listed order replaces the previous one.
func Apply(db *sql.DB, doc *Document) (*ApplyResult, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin roster load: %w", err)
	}
	defer tx.Rollback()

	result, err := apply(tx, doc)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit roster load: %w", err)
	}
	return result, nil
}

func apply(tx repository.DBTX, doc *Document) (*ApplyResult, error) {
	result := &ApplyResult{}

	skillRepo := repository.NewSkillRepo(tx)
	memberRepo := repository.NewMemberRepo(tx)
	taskRepo := repository.NewTaskRepo(tx)
	shiftRepo := repository.NewShiftRepo(tx)
	orderRepo := repository.NewOrderSetRepo(tx)
	ruleRepo := repository.NewRuleRepo(tx)

	skillIDs := map[string]int64{}
	skillID := func(name string) (int64, error) {
		name = strings.TrimSpace(name)
		if id, ok := skillIDs[name]; ok {
			return id, nil
		}
		skill, created, err := skillRepo.GetOrCreate(name)
		if err != nil {
			return 0, fmt.Errorf("failed to store skill %q: %w", name, err)
		}
		if created {
			result.SkillsCreated++
		}
		skillIDs[name] = skill.ID
		return skill.ID, nil
	}

	for _, name := range doc.Skills {
		if _, err := skillID(name); err != nil {
			return nil, err
		}
	}

	// Members
	memberIDs := map[string]int64{}
	for _, entry := range doc.Members {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("member without a name")
		}

		member, err := memberRepo.GetByName(name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up member %q: %w", name, err)
		}
		if member == nil {
			member, err = memberRepo.Create(name, entry.Roles, entry.FixedMinutes)
			if err != nil {
				return nil, fmt.Errorf("failed to create member %q: %w", name, err)
			}
			result.MembersCreated++
		} else {
			if err := memberRepo.Update(member.ID, entry.Roles, entry.FixedMinutes); err != nil {
				return nil, fmt.Errorf("failed to update member %q: %w", name, err)
			}
			if err := memberRepo.RemoveSkills(member.ID); err != nil {
				return nil, fmt.Errorf("failed to reset skills of %q: %w", name, err)
			}
			result.MembersUpdated++
		}
		memberIDs[name] = member.ID

		for _, skill := range entry.Skills {
			id, err := skillID(skill)
			if err != nil {
				return nil, err
			}
			if err := memberRepo.AddSkill(member.ID, id); err != nil {
				return nil, fmt.Errorf("failed to add skill %q to %q: %w", skill, name, err)
			}
		}
	}

	memberID := func(name string) (int64, error) {
		name = strings.TrimSpace(name)
		if id, ok := memberIDs[name]; ok {
			return id, nil
		}
		member, err := memberRepo.GetByName(name)
		if err != nil {
			return 0, fmt.Errorf("failed to look up member %q: %w", name, err)
		}
		if member == nil {
			return 0, fmt.Errorf("unknown member %q", name)
		}
		memberIDs[name] = member.ID
		return member.ID, nil
	}

	// Tasks
	taskIDs := map[string]int64{}
	for _, entry := range doc.Tasks {
		task, err := toTask(entry, skillID)
		if err != nil {
			return nil, err
		}

		existing, err := taskRepo.GetByCode(task.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to look up task %q: %w", task.Code, err)
		}
		if existing == nil {
			created, err := taskRepo.Create(task)
			if err != nil {
				return nil, fmt.Errorf("failed to create task %q: %w", task.Code, err)
			}
			taskIDs[task.Code] = created.ID
			result.TasksCreated++
			continue
		}

		task.ID = existing.ID
		if err := taskRepo.Update(task); err != nil {
			return nil, fmt.Errorf("failed to update task %q: %w", task.Code, err)
		}
		taskIDs[task.Code] = task.ID
		result.TasksUpdated++
	}

	taskID := func(code string) (int64, error) {
		code = strings.TrimSpace(code)
		if id, ok := taskIDs[code]; ok {
			return id, nil
		}
		task, err := taskRepo.GetByCode(code)
		if err != nil {
			return 0, fmt.Errorf("failed to look up task %q: %w", code, err)
		}
		if task == nil {
			return 0, fmt.Errorf("unknown task %q", code)
		}
		taskIDs[code] = task.ID
		return task.ID, nil
	}

	// Shifts
	cleared := map[string]bool{}
	for _, entry := range doc.Shifts {
		shift, err := toShift(entry, memberID)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%d/%s", shift.MemberID, shift.Date)
		if !cleared[key] {
			if err := shiftRepo.DeleteByMemberAndDate(shift.MemberID, shift.Date); err != nil {
				return nil, fmt.Errorf("failed to clear shifts of %q on %s: %w", entry.Member, shift.Date, err)
			}
			cleared[key] = true
		}
		if _, err := shiftRepo.Create(shift); err != nil {
			return nil, fmt.Errorf("failed to create shift for %q: %w", entry.Member, err)
		}
		result.Shifts++
	}

	// Manual order
	if len(doc.Order) > 0 {
		if err := orderRepo.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear manual order: %w", err)
		}
	}
	for i, code := range doc.Order {
		id, err := taskID(code)
		if err != nil {
			return nil, fmt.Errorf("order position %d: %w", i+1, err)
		}
		if err := orderRepo.Set(id, i+1); err != nil {
			return nil, fmt.Errorf("failed to set order of %q: %w", code, err)
		}
		result.Ordered++
	}

	// Explicit rules
	if len(doc.Rules) > 0 {
		existing, err := ruleRepo.GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		for _, entry := range doc.Rules {
			tid, err := taskID(entry.Task)
			if err != nil {
				return nil, fmt.Errorf("rule: %w", err)
			}
			mid, err := memberID(entry.Member)
			if err != nil {
				return nil, fmt.Errorf("rule: %w", err)
			}
			if hasRule(existing, tid, mid, entry.Kind) {
				continue
			}
			rule, err := ruleRepo.Create(tid, mid, entry.Kind)
			if err != nil {
				return nil, fmt.Errorf("failed to create rule: %w", err)
			}
			existing = append(existing, *rule)
			result.Rules++
		}
	}

	return result, nil
}

func toTask(entry TaskEntry, skillID func(string) (int64, error)) (models.Task, error) {
	code := strings.TrimSpace(entry.Code)
	if code == "" {
		return models.Task{}, fmt.Errorf("task %q has no code", entry.Name)
	}
	if entry.DurationMinutes <= 0 {
		return models.Task{}, fmt.Errorf("task %q: duration_minutes must be positive", code)
	}

	task := models.Task{
		Code:            code,
		Name:            entry.Name,
		DurationMinutes: entry.DurationMinutes,
		MinCoverage:     entry.MinCoverage,
		MustRun:         entry.MustRun,
		PriorityWeight:  entry.PriorityWeight,
		AllowMultiple:   entry.AllowMultiple,
	}
	if task.Name == "" {
		task.Name = code
	}
	if n, ok := models.ParseTaskNumber(code); ok {
		task.Number = &n
	}

	var err error
	if task.Due, err = models.ParseDue(entry.Due); err != nil {
		return models.Task{}, fmt.Errorf("task %q: %w", code, err)
	}
	if task.Recurrence, err = models.ParseRecurrence(entry.Recurrence); err != nil {
		return models.Task{}, fmt.Errorf("task %q: %w", code, err)
	}
	if entry.EarliestStart != "" {
		if task.EarliestStart, err = models.ParseClock(entry.EarliestStart); err != nil {
			return models.Task{}, fmt.Errorf("task %q: earliest_start: %w", code, err)
		}
	}

	switch models.TaskType(strings.ToLower(strings.TrimSpace(entry.Type))) {
	case "", models.TaskTypeOrdinary:
		task.Type = models.TaskTypeOrdinary
	case models.TaskTypeUpkeep:
		task.Type = models.TaskTypeUpkeep
	default:
		return models.Task{}, fmt.Errorf("task %q: unknown type %q", code, entry.Type)
	}

	for _, skill := range entry.Skills {
		id, err := skillID(skill)
		if err != nil {
			return models.Task{}, err
		}
		task.RequiredSkillIDs = append(task.RequiredSkillIDs, id)
	}

	return task, nil
}

func toShift(entry ShiftEntry, memberID func(string) (int64, error)) (models.ShiftAssignment, error) {
	id, err := memberID(entry.Member)
	if err != nil {
		return models.ShiftAssignment{}, fmt.Errorf("shift: %w", err)
	}
	date, err := models.ParseDate(entry.Date)
	if err != nil {
		return models.ShiftAssignment{}, fmt.Errorf("shift for %q: invalid date %q", entry.Member, entry.Date)
	}
	start, err := models.ParseClock(entry.Start)
	if err != nil {
		return models.ShiftAssignment{}, fmt.Errorf("shift for %q: start: %w", entry.Member, err)
	}
	end, err := models.ParseClock(entry.End)
	if err != nil {
		return models.ShiftAssignment{}, fmt.Errorf("shift for %q: end: %w", entry.Member, err)
	}
	return models.ShiftAssignment{
		MemberID: id,
		Date:     date.Format(models.DateLayout),
		Start:    start,
		End:      end,
		Class:    entry.Class,
	}, nil
}

func hasRule(rules []models.ExplicitRule, taskID, memberID int64, kind string) bool {
	for _, r := range rules {
		if r.TaskID == taskID && r.MemberID == memberID && r.Kind == kind {
			return true
		}
	}
	return false
}
