package synthesizer

import (
	"context"
	"fmt"
	"time"

	"surgemind-dispatch/internal/enrichment"
	"surgemind-dispatch/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Synthesizer 任务合成器
// 从触发器和指派人构建任务记录：优先级和指派永远来自确定性逻辑，
// 外部文本生成只替换文案，失败时静默回退到兜底文案，合成本身永不失败
type Synthesizer struct {
	provider enrichment.Provider // 可为 nil（未配置增强能力）
	timeout  time.Duration
	logger   *zap.Logger

	// 可注入的时钟和 ID 生成器（测试用）
	now   func() time.Time
	newID func() string
}

// NewSynthesizer 创建任务合成器
func NewSynthesizer(provider enrichment.Provider, timeout time.Duration, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Synthesize 合成任务
// 标题/描述先取确定性兜底文案，增强成功时才替换；必填字段、优先级、指派人不受增强影响
func (s *Synthesizer) Synthesize(ctx context.Context, tenantID string, trigger *models.Trigger, assigneeID string) *models.Task {
	title := trigger.Summary
	if title == "" {
		title = fmt.Sprintf("%s Alert: %s", trigger.SourceKind, trigger.Location)
	}
	description := fallbackDescription(trigger)

	if s.provider != nil {
		if text := s.tryEnrich(ctx, trigger); text != nil {
			title = text.Title
			description = text.Description
		}
	}

	var subjectID *string
	if trigger.SubjectID != "" {
		subject := trigger.SubjectID
		subjectID = &subject
	}

	return &models.Task{
		TaskID:      s.newID(),
		TenantID:    tenantID,
		Title:       title,
		Description: description,
		Priority:    models.PriorityFromSeverity(trigger.Severity),
		Location:    trigger.Location,
		SubjectID:   subjectID,
		AssigneeID:  assigneeID,
		Status:      models.TaskStatusPending,
		CreatedAt:   s.now(),
	}
}

// tryEnrich 限时调用外部文本生成，任何失败都只记日志不上抛
func (s *Synthesizer) tryEnrich(ctx context.Context, trigger *models.Trigger) *enrichment.TaskText {
	enrichCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.provider.Generate(enrichCtx, trigger)
	if err != nil {
		s.logger.Debug("Enrichment failed, using fallback text",
			zap.String("source_kind", string(trigger.SourceKind)),
			zap.Error(err),
		)
		return nil
	}

	return text
}

// fallbackDescription 确定性兜底描述（由来源类型、级别、位置决定，永不为空）
func fallbackDescription(trigger *models.Trigger) string {
	switch trigger.SourceKind {
	case models.SourceVitals:
		return fmt.Sprintf("%s priority: evaluate patient vitals in %s immediately.", trigger.Severity, trigger.Location)
	case models.SourceCCTVDetection:
		return fmt.Sprintf("%s priority: respond to camera detection in %s.", trigger.Severity, trigger.Location)
	case models.SourceEmergencyReport:
		return fmt.Sprintf("Immediate attention required in %s.", trigger.Location)
	case models.SourceSupplyShortage:
		return fmt.Sprintf("Supply level in %s is below threshold. Arrange restocking.", trigger.Location)
	case models.SourceBedTurnover:
		return fmt.Sprintf("Bed in %s has been in cleaning status. Prepare for next patient.", trigger.Location)
	default:
		return fmt.Sprintf("%s priority event in %s requires attention.", trigger.Severity, trigger.Location)
	}
}
