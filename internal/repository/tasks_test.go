package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ndubrovin/TaskKeeper/internal/models"
)

func setupTaskMock(t *testing.T) (*PostgresTaskRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresTaskRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

var taskColumns = []string{"id", "title", "description", "due_date", "priority", "category", "completed", "user_id"}

func TestTasksByUser(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(taskColumns).
		AddRow("t1", "one", "d1", "2024-01-01", "high", "work", false, "u1").
		AddRow("t2", "two", "d2", "2024-02-01", "low", "home", true, "u1")
	mock.ExpectQuery(`SELECT id, title, description, due_date, priority, category, completed, user_id`).
		WithArgs("u1").
		WillReturnRows(rows)

	tasks, err := repo.TasksByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "t1" || tasks[0].Priority != models.PriorityHigh {
		t.Errorf("unexpected first task: %+v", tasks[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTaskByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, title, description, due_date, priority, category, completed, user_id`).
		WithArgs("u1", "gone").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.TaskByID(context.Background(), "u1", "gone")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("TaskByID error = %v; want sql.ErrNoRows", err)
	}
}

func TestInsertTask(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	task := models.Task{
		ID: "t1", Title: "one", Description: "d", DueDate: "2024-01-01",
		Priority: models.PriorityHigh, Category: "work", Completed: false, UserID: "u1",
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks`)).
		WithArgs("t1", "u1", "one", "d", "2024-01-01", "high", "work", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.InsertTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	task := models.Task{
		ID: "t1", Title: "new", Description: "d", DueDate: "2024-01-01",
		Priority: models.PriorityLow, Category: "home", Completed: true, UserID: "u1",
	}
	mock.ExpectExec(`UPDATE tasks`).
		WithArgs("u1", "t1", "new", "d", "2024-01-01", "low", "home", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteTask_Deleted(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE user_id = $1 AND id = $2`)).
		WithArgs("u1", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteTask(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected deleted = true")
	}
}

func TestDeleteTask_NoRow(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE user_id = $1 AND id = $2`)).
		WithArgs("u1", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteTask(context.Background(), "u1", "gone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected deleted = false")
	}
}
