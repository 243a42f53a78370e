package repository

import (
	"github.com/emilianohg/dutyroster/internal/models"
)

type OrderSetRepo struct {
	db DBTX
}

func NewOrderSetRepo(db DBTX) *OrderSetRepo {
	return &OrderSetRepo{db: db}
}

// Set places a task at position, replacing any earlier position.
func (r *OrderSetRepo) Set(taskID int64, position int) error {
	_, err := r.db.Exec(`
		INSERT INTO order_set_items (task_id, position) VALUES (?, ?)
		ON CONFLICT(task_id) DO UPDATE SET position = excluded.position
	`, taskID, position)
	return err
}

func (r *OrderSetRepo) GetAll() ([]models.OrderSetItem, error) {
	rows, err := r.db.Query("SELECT task_id, position FROM order_set_items ORDER BY position, task_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderSetItem
	for rows.Next() {
		var item models.OrderSetItem
		if err := rows.Scan(&item.TaskID, &item.Position); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderSetRepo) Clear() error {
	_, err := r.db.Exec("DELETE FROM order_set_items")
	return err
}
