package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/emilianohg/dutyroster/internal/models"
)

type TaskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, code, name, duration_minutes, required_skills, min_coverage, must_run,
	due, earliest_start, task_type, recurrence, priority_weight, allow_multiple, task_number`

func (r *TaskRepo) Create(t models.Task) (*models.Task, error) {
	skillsJSON, err := encodeList(t.RequiredSkillIDs)
	if err != nil {
		return nil, err
	}

	result, err := r.db.Exec(`
		INSERT INTO tasks (code, name, duration_minutes, required_skills, min_coverage, must_run,
			due, earliest_start, task_type, recurrence, priority_weight, allow_multiple, task_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Code, t.Name, t.DurationMinutes, skillsJSON, t.Coverage(), t.MustRun,
		t.Due.String(), int(t.EarliestStart), string(taskType(t.Type)), t.Recurrence.String(),
		t.PriorityWeight, t.AllowMultiple, nullableNumber(t.Number))
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *TaskRepo) Update(t models.Task) error {
	skillsJSON, err := encodeList(t.RequiredSkillIDs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		UPDATE tasks SET code = ?, name = ?, duration_minutes = ?, required_skills = ?, min_coverage = ?,
			must_run = ?, due = ?, earliest_start = ?, task_type = ?, recurrence = ?, priority_weight = ?,
			allow_multiple = ?, task_number = ?
		WHERE id = ?
	`, t.Code, t.Name, t.DurationMinutes, skillsJSON, t.Coverage(), t.MustRun,
		t.Due.String(), int(t.EarliestStart), string(taskType(t.Type)), t.Recurrence.String(),
		t.PriorityWeight, t.AllowMultiple, nullableNumber(t.Number), t.ID)
	return err
}

func (r *TaskRepo) GetByID(id int64) (*models.Task, error) {
	rows, err := r.db.Query("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return firstTask(r.scanTasks(rows))
}

func (r *TaskRepo) GetByCode(code string) (*models.Task, error) {
	rows, err := r.db.Query("SELECT "+taskColumns+" FROM tasks WHERE code = ?", code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return firstTask(r.scanTasks(rows))
}

func (r *TaskRepo) GetAll() ([]models.Task, error) {
	rows, err := r.db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanTasks(rows)
}

func (r *TaskRepo) scanTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		var skillsJSON, due, kind, recurrence string
		var number sql.NullInt64

		if err := rows.Scan(
			&t.ID, &t.Code, &t.Name, &t.DurationMinutes, &skillsJSON, &t.MinCoverage, &t.MustRun,
			&due, &t.EarliestStart, &kind, &recurrence, &t.PriorityWeight, &t.AllowMultiple, &number,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(skillsJSON), &t.RequiredSkillIDs); err != nil {
			return nil, err
		}

		var err error
		if t.Due, err = models.ParseDue(due); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.Code, err)
		}
		if t.Recurrence, err = models.ParseRecurrence(recurrence); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.Code, err)
		}
		t.Type = models.TaskType(kind)

		if number.Valid {
			n := int(number.Int64)
			t.Number = &n
		}

		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func firstTask(tasks []models.Task, err error) (*models.Task, error) {
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

func taskType(t models.TaskType) models.TaskType {
	if t == "" {
		return models.TaskTypeOrdinary
	}
	return t
}

func nullableNumber(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
