package classifier

import (
	"surgemind-dispatch/internal/models"

	"go.uber.org/zap"
)

// Classifier 事件分类器
// 将原始领域事件归一化为 Trigger：级别由来源类型和负载决定，纯函数，禁止临场指定
// 返回 nil 表示未达到可执行阈值（不是错误）
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier 创建事件分类器
func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{
		logger: logger,
	}
}

// Classify 分类原始事件
// 负载缺少必要字段时按无触发处理，但记录数据质量告警（与正常无触发区分）
func (c *Classifier) Classify(event *models.RawEvent) *models.Trigger {
	if event == nil {
		return nil
	}

	switch event.Kind {
	case models.SourceVitals:
		return c.classifyVitals(event)
	case models.SourceCCTVDetection:
		return c.classifyCCTV(event)
	case models.SourceEmergencyReport:
		return c.classifyEmergency(event)
	case models.SourceSupplyShortage:
		return c.classifySupply(event)
	case models.SourceBedTurnover:
		return c.classifyBedTurnover(event)
	default:
		c.warnMalformed(event, "unknown source kind")
		return nil
	}
}

// warnMalformed 记录数据质量告警（区别于正常的无触发事件）
func (c *Classifier) warnMalformed(event *models.RawEvent, reason string) {
	c.logger.Warn("Malformed event, treated as no-trigger",
		zap.String("kind", string(event.Kind)),
		zap.String("reason", reason),
	)
}
