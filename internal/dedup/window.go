package dedup

import (
	"context"
	"time"

	"surgemind-dispatch/internal/models"
)

// Window 去重窗口
// Admit 在逻辑上是原子的：同一去重键并发提交时，恰好一个调用方得到 true
// 这是全流水线中唯一需要互斥的位置，其余组件均为无状态纯函数
type Window interface {
	// Admit 尝试接纳触发器，true = 放行，false = 窗口内重复，静默丢弃
	Admit(ctx context.Context, trigger *models.Trigger, now time.Time) (bool, error)
}

// windowKey 构建完整的去重键（前缀 + 触发器键）
func windowKey(prefix string, trigger *models.Trigger, window time.Duration) string {
	return prefix + trigger.DedupeKey(window)
}
