package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"surgemind-dispatch/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockTasksDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *TasksRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewTasksRepository(db, logger)

	return db, mock, repo
}

func validTask(tenantID string) *models.Task {
	subject := "P1"
	return &models.Task{
		TaskID:      uuid.New().String(),
		TenantID:    tenantID,
		Title:       "Critical SpO2 Level (87%)",
		Description: "Critical priority: evaluate patient vitals in ICU immediately.",
		Priority:    models.PriorityCritical,
		Location:    "ICU",
		SubjectID:   &subject,
		AssigneeID:  "cg-2",
		Status:      models.TaskStatusPending,
		CreatedAt:   time.Now(),
	}
}

func TestAppendTask_Success(t *testing.T) {
	db, mock, repo := setupMockTasksDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	task := validTask(tenantID)

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs(
			task.TaskID,
			task.TenantID,
			task.Title,
			task.Description,
			task.Priority,
			task.Location,
			sqlmock.AnyArg(),
			task.AssigneeID,
			task.Status,
			task.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendTask(ctx, tenantID, task)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendTask_NilSubject(t *testing.T) {
	db, mock, repo := setupMockTasksDB(t)
	defer db.Close()

	tenantID := uuid.New().String()
	task := validTask(tenantID)
	task.SubjectID = nil

	mock.ExpectExec(`INSERT INTO tasks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendTask(context.Background(), tenantID, task)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendTask_ValidationErrors(t *testing.T) {
	db, mock, repo := setupMockTasksDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()

	// tenant_id 为空
	err := repo.AppendTask(ctx, "", validTask(tenantID))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tenant_id is required")

	// 任务为空
	err = repo.AppendTask(ctx, tenantID, nil)
	assert.Error(t, err)

	// 租户不匹配
	err = repo.AppendTask(ctx, tenantID, validTask("other-tenant"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	// 缺少 task_id
	task := validTask(tenantID)
	task.TaskID = ""
	err = repo.AppendTask(ctx, tenantID, task)
	assert.Error(t, err)

	// 缺少文案
	task = validTask(tenantID)
	task.Description = ""
	err = repo.AppendTask(ctx, tenantID, task)
	assert.Error(t, err)

	// 缺少指派人
	task = validTask(tenantID)
	task.AssigneeID = ""
	err = repo.AppendTask(ctx, tenantID, task)
	assert.Error(t, err)

	// 缺少创建时间
	task = validTask(tenantID)
	task.CreatedAt = time.Time{}
	err = repo.AppendTask(ctx, tenantID, task)
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendTask_InsertError(t *testing.T) {
	db, mock, repo := setupMockTasksDB(t)
	defer db.Close()

	tenantID := uuid.New().String()
	task := validTask(tenantID)

	mock.ExpectExec(`INSERT INTO tasks`).
		WillReturnError(fmt.Errorf("connection reset"))

	err := repo.AppendTask(context.Background(), tenantID, task)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert task")

	require.NoError(t, mock.ExpectationsWereMet())
}
