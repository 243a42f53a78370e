package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/emilianohg/dutyroster/internal/models"
)

// DayReport is everything one generation run produced for a date.
type DayReport struct {
	Date        string
	RunID       string
	Assignments []models.Assignment
	Workloads   []models.DailyWorkload
	Unassigned  []models.UnassignedTask
}

type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// SaveDay replaces the date's unlocked assignments, workloads and unassigned tasks
// with the report in a single transaction. Locked assignments are kept.
func (r *ReportRepo) SaveDay(report DayReport) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM assignments WHERE assignment_date = ? AND locked = 0", report.Date); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM daily_workloads WHERE workload_date = ?", report.Date); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM unassigned_tasks WHERE report_date = ?", report.Date); err != nil {
		return err
	}

	for _, a := range report.Assignments {
		a.RunID = report.RunID
		if err := insertAssignment(tx, a); err != nil {
			return err
		}
	}

	for _, w := range report.Workloads {
		assignedJSON, err := encodeList(w.AssignedTaskIDs)
		if err != nil {
			return err
		}
		unmetJSON, err := encodeList(w.UnmetTaskIDs)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO daily_workloads (member_id, workload_date, capacity_minutes, ordinary_minutes,
				upkeep_minutes, assigned_tasks, unmet_tasks, run_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, w.MemberID, report.Date, w.CapacityMinutes, w.OrdinaryMinutes,
			w.UpkeepMinutes, assignedJSON, unmetJSON, report.RunID); err != nil {
			return err
		}
	}

	for _, u := range report.Unassigned {
		if _, err := tx.Exec(
			"INSERT INTO unassigned_tasks (task_id, report_date, reason, run_id) VALUES (?, ?, ?, ?)",
			u.Task.ID, report.Date, u.Reason, report.RunID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// MemberWorkload is a stored workload with the member's name joined.
type MemberWorkload struct {
	models.DailyWorkload
	MemberName string
	RunID      string
}

func (r *ReportRepo) GetWorkloads(date string) ([]MemberWorkload, error) {
	rows, err := r.db.Query(`
		SELECT w.member_id, w.workload_date, w.capacity_minutes, w.ordinary_minutes, w.upkeep_minutes,
		       w.assigned_tasks, w.unmet_tasks, w.run_id, m.name
		FROM daily_workloads w
		JOIN members m ON m.id = w.member_id
		WHERE w.workload_date = ?
		ORDER BY w.member_id
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workloads []MemberWorkload
	for rows.Next() {
		var w MemberWorkload
		var assignedJSON, unmetJSON string
		if err := rows.Scan(
			&w.MemberID, &w.Date, &w.CapacityMinutes, &w.OrdinaryMinutes, &w.UpkeepMinutes,
			&assignedJSON, &unmetJSON, &w.RunID, &w.MemberName,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(assignedJSON), &w.AssignedTaskIDs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(unmetJSON), &w.UnmetTaskIDs); err != nil {
			return nil, err
		}
		workloads = append(workloads, w)
	}
	return workloads, rows.Err()
}

func (r *ReportRepo) GetUnassigned(date string) ([]models.UnassignedTask, error) {
	rows, err := r.db.Query(`
		SELECT u.task_id, u.reason
		FROM unassigned_tasks u
		WHERE u.report_date = ?
		ORDER BY u.rowid
	`, date)
	if err != nil {
		return nil, err
	}

	type row struct {
		taskID int64
		reason string
	}
	var found []row
	for rows.Next() {
		var rw row
		if err := rows.Scan(&rw.taskID, &rw.reason); err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, rw)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	taskRepo := NewTaskRepo(r.db)
	var unassigned []models.UnassignedTask
	for _, rw := range found {
		task, err := taskRepo.GetByID(rw.taskID)
		if err != nil {
			return nil, err
		}
		if task == nil {
			continue
		}
		unassigned = append(unassigned, models.UnassignedTask{Task: *task, Reason: rw.reason})
	}
	return unassigned, nil
}
