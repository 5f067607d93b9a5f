package dedup

import (
	"context"
	"sync"
	"time"

	"surgemind-dispatch/internal/models"
)

// MemoryWindow 进程内去重窗口（互斥锁保护的键→过期时间映射）
// 用于单实例部署和测试；淘汰是惰性的，命中同键时清理过期记录
type MemoryWindow struct {
	window  time.Duration
	mu      sync.Mutex
	entries map[string]time.Time // key → windowExpiry
}

// NewMemoryWindow 创建进程内去重窗口
func NewMemoryWindow(window time.Duration) *MemoryWindow {
	return &MemoryWindow{
		window:  window,
		entries: make(map[string]time.Time),
	}
}

// Admit 尝试接纳触发器
func (w *MemoryWindow) Admit(_ context.Context, trigger *models.Trigger, now time.Time) (bool, error) {
	key := windowKey("", trigger, w.window)

	w.mu.Lock()
	defer w.mu.Unlock()

	if expiry, ok := w.entries[key]; ok {
		if now.Before(expiry) {
			return false, nil
		}
		// 过期记录，惰性淘汰
		delete(w.entries, key)
	}

	w.entries[key] = now.Add(w.window)
	return true, nil
}

// Len 当前记录数（含未淘汰的过期记录）
func (w *MemoryWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
