package repository

import (
	"database/sql"

	"github.com/emilianohg/dutyroster/internal/models"
)

type SkillRepo struct {
	db DBTX
}

func NewSkillRepo(db DBTX) *SkillRepo {
	return &SkillRepo{db: db}
}

func (r *SkillRepo) Create(name string) (*models.Skill, error) {
	result, err := r.db.Exec("INSERT INTO skills (name) VALUES (?)", name)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// GetOrCreate returns the named skill, creating it when missing. created reports which happened.
func (r *SkillRepo) GetOrCreate(name string) (skill *models.Skill, created bool, err error) {
	skill, err = r.GetByName(name)
	if err != nil || skill != nil {
		return skill, false, err
	}
	skill, err = r.Create(name)
	return skill, err == nil, err
}

func (r *SkillRepo) GetByID(id int64) (*models.Skill, error) {
	var s models.Skill
	err := r.db.QueryRow("SELECT id, name FROM skills WHERE id = ?", id).Scan(&s.ID, &s.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepo) GetByName(name string) (*models.Skill, error) {
	var s models.Skill
	err := r.db.QueryRow("SELECT id, name FROM skills WHERE name = ?", name).Scan(&s.ID, &s.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepo) GetAll() ([]models.Skill, error) {
	rows, err := r.db.Query("SELECT id, name FROM skills ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []models.Skill
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}
