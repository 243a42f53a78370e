package repository

import (
	"github.com/emilianohg/dutyroster/internal/models"
)

type RuleRepo struct {
	db DBTX
}

func NewRuleRepo(db DBTX) *RuleRepo {
	return &RuleRepo{db: db}
}

func (r *RuleRepo) Create(taskID, memberID int64, kind string) (*models.ExplicitRule, error) {
	result, err := r.db.Exec(
		"INSERT INTO explicit_rules (task_id, member_id, kind) VALUES (?, ?, ?)",
		taskID, memberID, kind,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.ExplicitRule{ID: id, TaskID: taskID, MemberID: memberID, Kind: kind}, nil
}

func (r *RuleRepo) GetAll() ([]models.ExplicitRule, error) {
	rows, err := r.db.Query("SELECT id, task_id, member_id, kind FROM explicit_rules ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.ExplicitRule
	for rows.Next() {
		var rule models.ExplicitRule
		if err := rows.Scan(&rule.ID, &rule.TaskID, &rule.MemberID, &rule.Kind); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
