package repository

import (
	"github.com/emilianohg/dutyroster/internal/models"
)

type AssignmentRepo struct {
	db DBTX
}

func NewAssignmentRepo(db DBTX) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

const assignmentSelect = `
	SELECT a.id, a.task_id, a.member_id, a.assignment_date, a.start_minute, a.end_minute,
	       a.duration_minutes, a.reason, a.locked, a.status, a.run_id, a.created_at,
	       t.code, t.name, m.name
	FROM assignments a
	JOIN tasks t ON t.id = a.task_id
	JOIN members m ON m.id = a.member_id
`

func (r *AssignmentRepo) GetByID(id int64) (*models.Assignment, error) {
	assignments, err := r.query("WHERE a.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, nil
	}
	return &assignments[0], nil
}

// GetByDate returns a day's assignments ordered by start time.
func (r *AssignmentRepo) GetByDate(date string) ([]models.Assignment, error) {
	return r.query("WHERE a.assignment_date = ? ORDER BY a.start_minute, a.id", date)
}

// GetLocked returns locked assignments dated between from and to inclusive.
func (r *AssignmentRepo) GetLocked(from, to string) ([]models.Assignment, error) {
	return r.query(
		"WHERE a.locked = 1 AND a.assignment_date >= ? AND a.assignment_date <= ? ORDER BY a.assignment_date, a.id",
		from, to,
	)
}

func (r *AssignmentRepo) query(filter string, args ...interface{}) ([]models.Assignment, error) {
	rows, err := r.db.Query(assignmentSelect+filter, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(
			&a.ID, &a.TaskID, &a.MemberID, &a.Date, &a.Start, &a.End,
			&a.DurationMinutes, &a.Reason, &a.Locked, &a.Status, &a.RunID, &a.CreatedAt,
			&a.TaskCode, &a.TaskName, &a.MemberName,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *AssignmentRepo) SetLocked(id int64, locked bool) error {
	_, err := r.db.Exec("UPDATE assignments SET locked = ? WHERE id = ?", locked, id)
	return err
}

func insertAssignment(tx DBTX, a models.Assignment) error {
	_, err := tx.Exec(`
		INSERT INTO assignments (task_id, member_id, assignment_date, start_minute, end_minute,
			duration_minutes, reason, locked, status, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.TaskID, a.MemberID, a.Date, int(a.Start), int(a.End),
		a.DurationMinutes, a.Reason, a.Locked, a.Status, a.RunID)
	return err
}
