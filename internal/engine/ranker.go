package engine

import (
	"cmp"
	"slices"

	"github.com/emilianohg/dutyroster/internal/models"
)

// unnumberedTask stands in for tasks without a T-number so they earn no code bonus.
const unnumberedTask = 999

// Score bonuses.
const (
	manualOrderBase = 100
	mustRunBonus    = 30
	dueAtBonus      = 15
	taskNumberBase  = 10
)

// RankedTask is a task with the ranking inputs that placed it.
type RankedTask struct {
	Task     models.Task
	Position int // manual order position, 0 when unranked
	Ranked   bool
	Score    int
}

// Rank orders tasks for allocation: must-run first, then by due rank, then by due time,
// then by descending score. Ties keep input order.
func Rank(tasks []models.Task, items []models.OrderSetItem) []RankedTask {
	positions := make(map[int64]int, len(items))
	for _, item := range items {
		if _, ok := positions[item.TaskID]; ok {
			continue
		}
		positions[item.TaskID] = item.Position
	}

	ranked := make([]RankedTask, 0, len(tasks))
	for _, task := range tasks {
		pos, ok := positions[task.ID]
		ranked = append(ranked, RankedTask{
			Task:     task,
			Position: pos,
			Ranked:   ok,
			Score:    Score(task, pos, ok),
		})
	}

	slices.SortStableFunc(ranked, compareRanked)
	return ranked
}

// Score computes the composite priority score of a task.
func Score(task models.Task, position int, ranked bool) int {
	score := task.PriorityWeight
	if ranked {
		score += manualOrderBase - position
	}
	if task.MustRun {
		score += mustRunBonus
	}
	if task.Due.Kind == models.DueAt {
		score += dueAtBonus
	}
	number := unnumberedTask
	if task.Number != nil {
		number = *task.Number
	}
	score += max(0, taskNumberBase-number)
	return score
}

func compareRanked(a, b RankedTask) int {
	if a.Task.MustRun != b.Task.MustRun {
		if a.Task.MustRun {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(dueRank(a.Task.Due), dueRank(b.Task.Due)); c != 0 {
		return c
	}
	if a.Task.Due.Kind == models.DueAt {
		if c := cmp.Compare(a.Task.Due.At, b.Task.Due.At); c != 0 {
			return c
		}
	}
	return cmp.Compare(b.Score, a.Score)
}

// dueRank orders specific times before end of day before continuous work.
func dueRank(d models.Due) int {
	switch d.Kind {
	case models.DueAt:
		return 0
	case models.DueEndOfDay:
		return 1
	default:
		return 2
	}
}

// Tasks returns the tasks of a ranked list in order.
func Tasks(ranked []RankedTask) []models.Task {
	tasks := make([]models.Task, len(ranked))
	for i, r := range ranked {
		tasks[i] = r.Task
	}
	return tasks
}
