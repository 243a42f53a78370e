package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/emilianohg/dutyroster/internal/models"
)

type MemberRepo struct {
	db DBTX
}

func NewMemberRepo(db DBTX) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) Create(name string, roles []string, fixedMinutes int) (*models.Member, error) {
	rolesJSON, err := encodeList(roles)
	if err != nil {
		return nil, err
	}

	result, err := r.db.Exec(
		"INSERT INTO members (name, roles, fixed_minutes) VALUES (?, ?, ?)",
		name, rolesJSON, fixedMinutes,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

func (r *MemberRepo) GetByID(id int64) (*models.Member, error) {
	return r.getOne("WHERE id = ?", id)
}

func (r *MemberRepo) GetByName(name string) (*models.Member, error) {
	return r.getOne("WHERE name = ?", name)
}

func (r *MemberRepo) getOne(filter string, arg interface{}) (*models.Member, error) {
	var m models.Member
	var rolesJSON string

	err := r.db.QueryRow(
		"SELECT id, name, roles, fixed_minutes, created_at FROM members "+filter,
		arg,
	).Scan(&m.ID, &m.Name, &rolesJSON, &m.FixedMinutes, &m.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rolesJSON), &m.Roles); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) GetAll() ([]models.Member, error) {
	rows, err := r.db.Query("SELECT id, name, roles, fixed_minutes, created_at FROM members ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var rolesJSON string
		if err := rows.Scan(&m.ID, &m.Name, &rolesJSON, &m.FixedMinutes, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rolesJSON), &m.Roles); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MemberRepo) Update(id int64, roles []string, fixedMinutes int) error {
	rolesJSON, err := encodeList(roles)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		"UPDATE members SET roles = ?, fixed_minutes = ? WHERE id = ?",
		rolesJSON, fixedMinutes, id,
	)
	return err
}

func (r *MemberRepo) AddSkill(memberID, skillID int64) error {
	_, err := r.db.Exec(
		"INSERT OR IGNORE INTO member_skills (member_id, skill_id) VALUES (?, ?)",
		memberID, skillID,
	)
	return err
}

func (r *MemberRepo) RemoveSkills(memberID int64) error {
	_, err := r.db.Exec("DELETE FROM member_skills WHERE member_id = ?", memberID)
	return err
}

func (r *MemberRepo) GetMemberSkills() ([]models.MemberSkill, error) {
	rows, err := r.db.Query("SELECT member_id, skill_id FROM member_skills ORDER BY member_id, skill_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.MemberSkill
	for rows.Next() {
		var ms models.MemberSkill
		if err := rows.Scan(&ms.MemberID, &ms.SkillID); err != nil {
			return nil, err
		}
		links = append(links, ms)
	}
	return links, rows.Err()
}

// encodeList stores a list column as JSON, writing [] for nil.
func encodeList[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
