package repository

import (
	"github.com/emilianohg/dutyroster/internal/models"
)

type ShiftRepo struct {
	db DBTX
}

func NewShiftRepo(db DBTX) *ShiftRepo {
	return &ShiftRepo{db: db}
}

func (r *ShiftRepo) Create(s models.ShiftAssignment) (*models.ShiftAssignment, error) {
	result, err := r.db.Exec(`
		INSERT INTO shifts (member_id, shift_date, start_minute, end_minute, shift_class)
		VALUES (?, ?, ?, ?, ?)
	`, s.MemberID, s.Date, int(s.Start), int(s.End), s.Class)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

// GetByDate returns the roster for one day, ordered by member then start time.
func (r *ShiftRepo) GetByDate(date string) ([]models.ShiftAssignment, error) {
	rows, err := r.db.Query(`
		SELECT s.id, s.member_id, s.shift_date, s.start_minute, s.end_minute, s.shift_class, m.name
		FROM shifts s
		JOIN members m ON m.id = s.member_id
		WHERE s.shift_date = ?
		ORDER BY s.member_id, s.start_minute
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []models.ShiftAssignment
	for rows.Next() {
		var s models.ShiftAssignment
		if err := rows.Scan(&s.ID, &s.MemberID, &s.Date, &s.Start, &s.End, &s.Class, &s.MemberName); err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

// DeleteByMemberAndDate clears a member's roster for a day before it is reloaded.
func (r *ShiftRepo) DeleteByMemberAndDate(memberID int64, date string) error {
	_, err := r.db.Exec("DELETE FROM shifts WHERE member_id = ? AND shift_date = ?", memberID, date)
	return err
}
