package engine

import (
	"go.uber.org/zap"
)

// FailureReason 运营故障原因
type FailureReason string

const (
	ReasonNoStaffAvailable FailureReason = "NoStaffAvailable" // 无在岗人员可指派
	ReasonSinkUnavailable  FailureReason = "SinkUnavailable"  // 任务落库重试耗尽
	ReasonInternalError    FailureReason = "InternalError"    // 未预期的处理异常
)

// FailureReporter 故障上报
// 实现必须自身不失败（不 panic、不返回错误），否则会掩盖原始故障
type FailureReporter interface {
	Report(reason FailureReason, context map[string]interface{})
}

// LogReporter 基于日志的故障上报（带结构化上下文，足以人工重建任务）
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter 创建日志故障上报器
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{
		logger: logger,
	}
}

// Report 上报故障
func (r *LogReporter) Report(reason FailureReason, context map[string]interface{}) {
	fields := make([]zap.Field, 0, len(context)+1)
	fields = append(fields, zap.String("reason", string(reason)))
	for k, v := range context {
		fields = append(fields, zap.Any(k, v))
	}
	r.logger.Error("Dispatch failure", fields...)
}
