package models

import "time"

// TaskStatus 任务状态（Pending → InProgress → Completed，状态流转由外部驱动）
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskPriority 任务优先级
// 当前与 Trigger.Severity 一一对应，保留独立类型以便将来策略解耦
type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

// PriorityFromSeverity Severity → TaskPriority 映射（当前为恒等映射）
func PriorityFromSeverity(s Severity) TaskPriority {
	switch s {
	case SeverityLow:
		return PriorityLow
	case SeverityMedium:
		return PriorityMedium
	case SeverityHigh:
		return PriorityHigh
	case SeverityCritical:
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// Task 任务记录（对应 tasks 表）
// AssigneeID 在创建时确定，本服务不做静默改派
type Task struct {
	TaskID      string       `json:"task_id" db:"task_id"`
	TenantID    string       `json:"tenant_id" db:"tenant_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	Location    string       `json:"location" db:"location"`
	SubjectID   *string      `json:"subject_id,omitempty" db:"subject_id"`
	AssigneeID  string       `json:"assignee_id" db:"assignee_id"`
	Status      TaskStatus   `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
