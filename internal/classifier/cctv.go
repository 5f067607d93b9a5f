package classifier

import (
	"fmt"
	"strings"

	"surgemind-dispatch/internal/models"

	"go.uber.org/zap"
)

// cctvConfidenceMin 置信度门槛，必须严格大于此值才可触发
const cctvConfidenceMin = 0.8

// classifyCCTV 分类 CCTV 检测事件
// 仅跌倒/冲突/聚集三类可触发；普通人形检测为信息性事件，不生成任务
func (c *Classifier) classifyCCTV(event *models.RawEvent) *models.Trigger {
	d := event.CCTV
	if d == nil {
		c.warnMalformed(event, "missing cctv payload")
		return nil
	}
	if d.CameraID == "" || d.DetectionType == "" {
		c.warnMalformed(event, "cctv detection without camera_id or detection_type")
		return nil
	}

	if d.Confidence <= cctvConfidenceMin {
		c.logger.Debug("CCTV detection below confidence threshold, ignored",
			zap.String("camera_id", d.CameraID),
			zap.String("detection_type", d.DetectionType),
			zap.Float64("confidence", d.Confidence),
		)
		return nil
	}

	location := d.Location
	if location == "" {
		location = d.CameraID
	}

	detection := strings.ToLower(d.DetectionType)

	var severity models.Severity
	var summary string
	switch {
	case strings.Contains(detection, "fall"):
		severity = models.SeverityCritical
		summary = fmt.Sprintf("Fall Detected at %s", d.CameraID)
	case strings.Contains(detection, "agitation") || strings.Contains(detection, "fight"):
		severity = models.SeverityHigh
		summary = "Security: Agitation Detected"
	case strings.Contains(detection, "crowd"):
		severity = models.SeverityMedium
		summary = "Crowd Control Needed"
	default:
		// 其他检测类型（含普通人形检测）不触发
		return nil
	}

	return &models.Trigger{
		SourceKind: models.SourceCCTVDetection,
		Severity:   severity,
		Location:   location,
		SubjectID:  d.CameraID,
		OccurredAt: event.OccurredAt,
		Summary:    summary,
	}
}
