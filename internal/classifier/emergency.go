package classifier

import (
	"fmt"

	"surgemind-dispatch/internal/models"
)

// classifyEmergency 分类紧急事件上报
// 紧急事件必定触发：上报方标记 Critical 时为 Critical，否则以 High 兜底（不低于 High）
func (c *Classifier) classifyEmergency(event *models.RawEvent) *models.Trigger {
	e := event.Emergency
	if e == nil {
		c.warnMalformed(event, "missing emergency payload")
		return nil
	}
	if e.EmergencyType == "" {
		c.warnMalformed(event, "emergency report without emergency_type")
		return nil
	}

	severity := models.SeverityHigh
	if e.Severity == string(models.SeverityCritical) {
		severity = models.SeverityCritical
	}

	location := e.Location
	if location == "" {
		location = "Unknown"
	}

	return &models.Trigger{
		SourceKind: models.SourceEmergencyReport,
		Severity:   severity,
		Location:   location,
		SubjectID:  e.PatientID,
		OccurredAt: event.OccurredAt,
		Summary:    fmt.Sprintf("Emergency Response: %s", e.EmergencyType),
	}
}
