package dedup

import (
	"context"
	"fmt"
	"time"

	"surgemind-dispatch/internal/config"
	"surgemind-dispatch/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisWindow 基于 Redis 的去重窗口
// SET NX 保证同键并发提交时恰好一个成功；TTL 到期即为惰性淘汰，无需后台清扫
// 多实例部署时去重状态天然共享
type RedisWindow struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewRedisWindow 创建 Redis 去重窗口
func NewRedisWindow(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *RedisWindow {
	return &RedisWindow{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Admit 尝试接纳触发器
func (w *RedisWindow) Admit(ctx context.Context, trigger *models.Trigger, now time.Time) (bool, error) {
	window := w.config.Dispatch.Dedupe.Window
	key := windowKey(w.config.Dispatch.Dedupe.KeyPrefix, trigger, window)

	// SET NX EX：键不存在时写入并返回 true，已存在返回 false
	admitted, err := w.redisClient.SetNX(ctx, key, now.Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedupe window: %w", err)
	}

	if !admitted {
		w.logger.Debug("Duplicate trigger suppressed",
			zap.String("dedupe_key", key),
			zap.String("source_kind", string(trigger.SourceKind)),
		)
	}

	return admitted, nil
}
