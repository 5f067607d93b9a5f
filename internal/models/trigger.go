package models

import (
	"fmt"
	"time"
)

// SourceKind 事件来源类型
type SourceKind string

const (
	SourceVitals          SourceKind = "Vitals"
	SourceCCTVDetection   SourceKind = "CCTVDetection"
	SourceEmergencyReport SourceKind = "EmergencyReport"
	SourceSupplyShortage  SourceKind = "SupplyShortage"
	SourceBedTurnover     SourceKind = "BedTurnover"
)

// Severity 触发器严重级别
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// severityRank 级别排序（用于多阈值取最大值）
var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// MaxSeverity 返回两个级别中较高的一个
func MaxSeverity(a, b Severity) Severity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// Trigger 归一化后的可执行事件（分类器输出，瞬态，不落库）
type Trigger struct {
	SourceKind SourceKind `json:"source_kind"`
	Severity   Severity   `json:"severity"`
	Location   string     `json:"location"`
	SubjectID  string     `json:"subject_id,omitempty"` // 患者/设备引用，可为空
	OccurredAt time.Time  `json:"occurred_at"`
	Summary    string     `json:"summary"` // 分类器生成的简短描述（用于兜底文案）
}

// DedupeKey 构建去重键
// 组成：来源类型 + 位置 + 主体ID（为空时用哨兵 "-"） + 粗粒度时间桶
// 同一键在一个时间窗口内只允许产生一个任务
func (t *Trigger) DedupeKey(window time.Duration) string {
	subject := t.SubjectID
	if subject == "" {
		subject = "-"
	}
	bucket := t.OccurredAt.Unix() / int64(window.Seconds())
	return fmt.Sprintf("%s:%s:%s:%d", t.SourceKind, t.Location, subject, bucket)
}
