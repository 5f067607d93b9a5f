package repository

import (
	"context"
	"database/sql"
	"fmt"

	"surgemind-dispatch/internal/models"

	"go.uber.org/zap"
)

// TasksRepository 任务仓库
// 本服务只追加任务：状态流转和改派由外部（员工操作）驱动，这里不做更新和删除
type TasksRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTasksRepository 创建任务仓库
func NewTasksRepository(db *sql.DB, logger *zap.Logger) *TasksRepository {
	return &TasksRepository{
		db:     db,
		logger: logger,
	}
}

// AppendTask 追加任务记录
// 业务规则：
// - tenant_id 必填且与任务一致
// - task_id、title、description、assignee_id 必填（由合成器保证非空）
func (r *TasksRepository) AppendTask(ctx context.Context, tenantID string, task *models.Task) error {
	if tenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if task == nil {
		return fmt.Errorf("task is required")
	}
	if task.TenantID != tenantID {
		return fmt.Errorf("task tenant_id (%s) does not match provided tenant_id (%s)", task.TenantID, tenantID)
	}
	if task.TaskID == "" {
		return fmt.Errorf("task_id is required (should be generated by synthesizer)")
	}
	if task.Title == "" || task.Description == "" {
		return fmt.Errorf("title and description are required")
	}
	if task.AssigneeID == "" {
		return fmt.Errorf("assignee_id is required")
	}
	if task.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}

	query := `
		INSERT INTO tasks (
			task_id,
			tenant_id,
			title,
			description,
			priority,
			location,
			subject_id,
			assignee_id,
			status,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var subjectID sql.NullString
	if task.SubjectID != nil {
		subjectID = sql.NullString{String: *task.SubjectID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		task.TaskID,
		task.TenantID,
		task.Title,
		task.Description,
		task.Priority,
		task.Location,
		subjectID,
		task.AssigneeID,
		task.Status,
		task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	r.logger.Info("Task appended",
		zap.String("tenant_id", tenantID),
		zap.String("task_id", task.TaskID),
		zap.String("priority", string(task.Priority)),
		zap.String("assignee_id", task.AssigneeID),
	)

	return nil
}
