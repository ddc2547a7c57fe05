package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndubrovin/TaskKeeper/internal/models"
)

// PostgresTaskRepository implements task persistence against PostgreSQL.
type PostgresTaskRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTaskRepository creates a repository with the given database
// connection.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

// TasksByUser fetches all tasks for the specified user, oldest first.
func (r *PostgresTaskRepository) TasksByUser(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, description, due_date, priority, category, completed, user_id
		  FROM tasks WHERE user_id = $1 ORDER BY due_date, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("TasksByUser: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate,
			&t.Priority, &t.Category, &t.Completed, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TaskByID retrieves a single task scoped to the user. Returns
// sql.ErrNoRows when the task is missing or owned by someone else.
func (r *PostgresTaskRepository) TaskByID(ctx context.Context, userID, id string) (*models.Task, error) {
	var t models.Task
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, title, description, due_date, priority, category, completed, user_id
		  FROM tasks WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&t.ID, &t.Title, &t.Description, &t.DueDate,
		&t.Priority, &t.Category, &t.Completed, &t.UserID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTask stores a new task.
func (r *PostgresTaskRepository) InsertTask(ctx context.Context, task models.Task) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, due_date, priority, category, completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, task.ID, task.UserID, task.Title, task.Description, task.DueDate,
		task.Priority, task.Category, task.Completed, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// UpdateTask overwrites the mutable fields of an existing task.
func (r *PostgresTaskRepository) UpdateTask(ctx context.Context, task models.Task) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE tasks
		   SET title = $3, description = $4, due_date = $5, priority = $6,
		       category = $7, completed = $8, updated_at = $9
		 WHERE user_id = $1 AND id = $2
	`, task.UserID, task.ID, task.Title, task.Description, task.DueDate,
		task.Priority, task.Category, task.Completed, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// DeleteTask removes the task, reporting whether a row was deleted.
func (r *PostgresTaskRepository) DeleteTask(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM tasks WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}
