package repository

import (
	"context"
	"database/sql"
	"fmt"

	"surgemind-dispatch/internal/models"

	"go.uber.org/zap"
)

// RosterRepository 护理人员名册仓库（只读快照）
// 名册由外部排班服务维护，本服务不创建人员记录
// ActiveTaskCount 在查询时聚合，允许落后一个轮询周期
type RosterRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRosterRepository 创建名册仓库
func NewRosterRepository(db *sql.DB, logger *zap.Logger) *RosterRepository {
	return &RosterRepository{
		db:     db,
		logger: logger,
	}
}

// CurrentCaregivers 获取当前名册快照
// 返回顺序稳定（按入职时间，再按ID），保证选派的平手规则可复现
func (r *RosterRepository) CurrentCaregivers(ctx context.Context, tenantID string) ([]models.Caregiver, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}

	query := `
		SELECT
			s.staff_id,
			s.display_name,
			s.role,
			s.availability,
			COUNT(t.task_id) FILTER (WHERE t.status IN ('Pending', 'InProgress')) AS active_task_count
		FROM staff s
		LEFT JOIN tasks t
			ON t.assignee_id = s.staff_id
			AND t.tenant_id = s.tenant_id
		WHERE s.tenant_id = $1
		GROUP BY s.staff_id, s.display_name, s.role, s.availability, s.created_at
		ORDER BY s.created_at, s.staff_id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var caregivers []models.Caregiver
	for rows.Next() {
		var cg models.Caregiver
		if err := rows.Scan(
			&cg.ID,
			&cg.DisplayName,
			&cg.Role,
			&cg.Availability,
			&cg.ActiveTaskCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan caregiver: %w", err)
		}
		caregivers = append(caregivers, cg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster: %w", err)
	}

	return caregivers, nil
}
