package engine

import (
	"context"
	"sync"
	"time"

	"surgemind-dispatch/internal/classifier"
	"surgemind-dispatch/internal/config"
	"surgemind-dispatch/internal/dedup"
	"surgemind-dispatch/internal/models"
	"surgemind-dispatch/internal/ranker"
	"surgemind-dispatch/internal/synthesizer"

	"go.uber.org/zap"
)

// RosterSource 名册快照源（允许落后一个轮询周期，本服务只读）
type RosterSource interface {
	CurrentCaregivers(ctx context.Context, tenantID string) ([]models.Caregiver, error)
}

// TaskSink 任务落库（可失败、可重试）
type TaskSink interface {
	AppendTask(ctx context.Context, tenantID string, task *models.Task) error
}

// Outcome 单个事件的处理结果（对应触发器状态机的终态）
type Outcome string

const (
	OutcomeNoTrigger Outcome = "NoTrigger" // 未达到可执行阈值，非故障
	OutcomeDropped   Outcome = "Dropped"   // 窗口内重复，静默丢弃
	OutcomeEmitted   Outcome = "Emitted"   // 任务已落库
	OutcomeFailed    Outcome = "Failed"    // 运营故障，已上报
)

// Engine 任务指派引擎
// 编排：分类 → 去重 → 选派 → 合成 → 落库
// 单个事件的失败绝不中断流水线；强制路径故障经 FailureReporter 上报后继续处理下一事件
type Engine struct {
	config      *config.Config
	classifier  *classifier.Classifier
	window      dedup.Window
	ranker      *ranker.WorkloadRanker
	synthesizer *synthesizer.Synthesizer
	roster      RosterSource
	sink        TaskSink
	reporter    FailureReporter
	logger      *zap.Logger
	tenantID    string

	// 可注入的时钟（测试用）
	now func() time.Time

	// 紧急事件频率监控（回看窗口内的触发时间）
	emergencyMu    sync.Mutex
	emergencyTimes []time.Time
}

// NewEngine 创建任务指派引擎
func NewEngine(
	cfg *config.Config,
	cls *classifier.Classifier,
	window dedup.Window,
	rk *ranker.WorkloadRanker,
	syn *synthesizer.Synthesizer,
	roster RosterSource,
	sink TaskSink,
	reporter FailureReporter,
	logger *zap.Logger,
	tenantID string,
) *Engine {
	return &Engine{
		config:      cfg,
		classifier:  cls,
		window:      window,
		ranker:      rk,
		synthesizer: syn,
		roster:      roster,
		sink:        sink,
		reporter:    reporter,
		logger:      logger,
		tenantID:    tenantID,
		now:         time.Now,
	}
}

// Run 消费事件流直到上下文取消
// 事件源之间没有全局顺序要求；互斥只存在于去重窗口内部
func (e *Engine) Run(ctx context.Context, events <-chan models.RawEvent) error {
	e.logger.Info("Task assignment engine started",
		zap.String("tenant_id", e.tenantID),
		zap.Duration("dedupe_window", e.config.Dispatch.Dedupe.Window),
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Task assignment engine stopped")
			return nil
		case event, ok := <-events:
			if !ok {
				e.logger.Info("Event stream closed, engine stopped")
				return nil
			}
			e.processSafely(ctx, &event)
		}
	}
}

// processSafely 处理单个事件，吞掉任何 panic 并上报（流水线不允许被单个事件击穿）
func (e *Engine) processSafely(ctx context.Context, event *models.RawEvent) {
	defer func() {
		if r := recover(); r != nil {
			e.reporter.Report(ReasonInternalError, map[string]interface{}{
				"kind":  string(event.Kind),
				"panic": r,
			})
		}
	}()

	e.ProcessEvent(ctx, event)
}

// ProcessEvent 处理单个原始事件，返回终态
// 状态机：Received → Classified → (Dropped | Admitted) → Assigned → Synthesized → Emitted
func (e *Engine) ProcessEvent(ctx context.Context, event *models.RawEvent) Outcome {
	trigger := e.classifier.Classify(event)
	if trigger == nil {
		return OutcomeNoTrigger
	}

	outcome := e.processTrigger(ctx, trigger)

	// 紧急事件频率监控：回看窗口内超过阈值时追加一次巡查任务
	if trigger.SourceKind == models.SourceEmergencyReport && outcome != OutcomeDropped {
		if watch := e.noteEmergency(trigger.OccurredAt); watch != nil {
			e.processTrigger(ctx, watch)
		}
	}

	return outcome
}

// processTrigger 推进单个触发器走完状态机
func (e *Engine) processTrigger(ctx context.Context, trigger *models.Trigger) Outcome {
	// Classified → Admitted | Dropped
	admitted, err := e.window.Admit(ctx, trigger, e.now())
	if err != nil {
		// 去重后端不可用时放行：重复任务的代价低于丢失任务
		e.logger.Warn("Dedupe window unavailable, admitting trigger",
			zap.String("source_kind", string(trigger.SourceKind)),
			zap.Error(err),
		)
		admitted = true
	}
	if !admitted {
		return OutcomeDropped
	}

	// Admitted → Assigned
	caregivers, err := e.roster.CurrentCaregivers(ctx, e.tenantID)
	if err != nil {
		e.reporter.Report(ReasonNoStaffAvailable, map[string]interface{}{
			"tenant_id":   e.tenantID,
			"source_kind": string(trigger.SourceKind),
			"severity":    string(trigger.Severity),
			"location":    trigger.Location,
			"error":       err.Error(),
		})
		return OutcomeFailed
	}

	assigneeID := e.ranker.SelectAssignee(caregivers)
	if assigneeID == "" {
		e.reporter.Report(ReasonNoStaffAvailable, map[string]interface{}{
			"tenant_id":   e.tenantID,
			"source_kind": string(trigger.SourceKind),
			"severity":    string(trigger.Severity),
			"location":    trigger.Location,
			"summary":     trigger.Summary,
		})
		return OutcomeFailed
	}

	// Assigned → Synthesized
	task := e.synthesizer.Synthesize(ctx, e.tenantID, trigger, assigneeID)

	// Synthesized → Emitted
	if err := e.appendWithRetry(ctx, task); err != nil {
		// 记录足够的上下文，保证任务可以人工重建
		e.reporter.Report(ReasonSinkUnavailable, map[string]interface{}{
			"tenant_id":   e.tenantID,
			"task_id":     task.TaskID,
			"title":       task.Title,
			"description": task.Description,
			"priority":    string(task.Priority),
			"location":    task.Location,
			"assignee_id": task.AssigneeID,
			"source_kind": string(trigger.SourceKind),
			"occurred_at": trigger.OccurredAt,
			"error":       err.Error(),
		})
		return OutcomeFailed
	}

	e.logger.Info("Task emitted",
		zap.String("tenant_id", e.tenantID),
		zap.String("task_id", task.TaskID),
		zap.String("source_kind", string(trigger.SourceKind)),
		zap.String("priority", string(task.Priority)),
		zap.String("location", task.Location),
		zap.String("assignee_id", task.AssigneeID),
	)

	return OutcomeEmitted
}

// appendWithRetry 带指数退避的任务落库（有界重试，单次写入限时）
func (e *Engine) appendWithRetry(ctx context.Context, task *models.Task) error {
	maxAttempts := e.config.Dispatch.Sink.MaxAttempts
	delay := e.config.Dispatch.Sink.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		writeCtx, cancel := context.WithTimeout(ctx, e.config.Dispatch.Sink.WriteTimeout)
		err := e.sink.AppendTask(writeCtx, e.tenantID, task)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		e.logger.Warn("Task sink write failed",
			zap.String("task_id", task.TaskID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)

		if attempt < maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return lastErr
}

// noteEmergency 记录一次紧急事件，超过频率阈值时返回巡查触发器（并重置计数）
func (e *Engine) noteEmergency(occurredAt time.Time) *models.Trigger {
	lookback := e.config.Dispatch.EmergencyWatch.Lookback
	threshold := e.config.Dispatch.EmergencyWatch.Threshold

	e.emergencyMu.Lock()
	defer e.emergencyMu.Unlock()

	cutoff := occurredAt.Add(-lookback)
	kept := e.emergencyTimes[:0]
	for _, ts := range e.emergencyTimes {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	e.emergencyTimes = append(kept, occurredAt)

	if len(e.emergencyTimes) <= threshold {
		return nil
	}

	// 触发后清零，避免每个后续事件都再次触发
	e.emergencyTimes = e.emergencyTimes[:0]

	return &models.Trigger{
		SourceKind: models.SourceEmergencyReport,
		Severity:   models.SeverityHigh,
		Location:   "ER",
		SubjectID:  "emergency-frequency",
		OccurredAt: occurredAt,
		Summary:    "Emergency Monitoring Round",
	}
}
