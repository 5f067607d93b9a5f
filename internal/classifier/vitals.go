package classifier

import (
	"fmt"

	"surgemind-dispatch/internal/models"
)

// 生命体征阈值（策略常量，调整需评审）
const (
	heartRateHigh    = 120   // bpm，心动过速
	heartRateLow     = 50    // bpm，心动过缓
	spo2CriticalMax  = 90    // %，低于此值为危急
	spo2WarningMax   = 92    // %，低于此值为中级（90 ≤ SpO2 < 92）
	systolicHighMax  = 140   // mmHg
	systolicLowMin   = 110   // mmHg
	temperatureHighF = 100.4 // °F
	temperatureLowF  = 97.0  // °F
)

// vitalsFinding 单项体征判定结果
type vitalsFinding struct {
	severity models.Severity
	summary  string
}

// classifyVitals 分类生命体征事件
// 多项阈值同时命中时取最高级别；摘要取最高级别的那一项
func (c *Classifier) classifyVitals(event *models.RawEvent) *models.Trigger {
	v := event.Vitals
	if v == nil {
		c.warnMalformed(event, "missing vitals payload")
		return nil
	}
	if v.Location == "" {
		c.warnMalformed(event, "vitals reading without location")
		return nil
	}
	if v.HeartRate == nil && v.SpO2 == nil && v.SystolicBP == nil && v.Temperature == nil {
		c.warnMalformed(event, "vitals reading without any measurement")
		return nil
	}

	var findings []vitalsFinding

	if v.HeartRate != nil && (*v.HeartRate > heartRateHigh || *v.HeartRate < heartRateLow) {
		findings = append(findings, vitalsFinding{
			severity: models.SeverityHigh,
			summary:  fmt.Sprintf("High Heart Rate Detected (%d bpm)", *v.HeartRate),
		})
	}
	if v.SpO2 != nil {
		if *v.SpO2 < spo2CriticalMax {
			findings = append(findings, vitalsFinding{
				severity: models.SeverityCritical,
				summary:  fmt.Sprintf("Critical SpO2 Level (%d%%)", *v.SpO2),
			})
		} else if *v.SpO2 < spo2WarningMax {
			findings = append(findings, vitalsFinding{
				severity: models.SeverityMedium,
				summary:  fmt.Sprintf("Low SpO2 Level (%d%%)", *v.SpO2),
			})
		}
	}
	if v.SystolicBP != nil && (*v.SystolicBP > systolicHighMax || *v.SystolicBP < systolicLowMin) {
		findings = append(findings, vitalsFinding{
			severity: models.SeverityMedium,
			summary:  fmt.Sprintf("Abnormal Blood Pressure (%d mmHg systolic)", *v.SystolicBP),
		})
	}
	if v.Temperature != nil && (*v.Temperature > temperatureHighF || *v.Temperature < temperatureLowF) {
		findings = append(findings, vitalsFinding{
			severity: models.SeverityMedium,
			summary:  fmt.Sprintf("Abnormal Temperature (%.1f F)", *v.Temperature),
		})
	}

	if len(findings) == 0 {
		return nil
	}

	best := findings[0]
	for _, f := range findings[1:] {
		if models.MaxSeverity(best.severity, f.severity) == f.severity && f.severity != best.severity {
			best = f
		}
	}

	subject := v.PatientID
	if subject == "" {
		subject = v.DeviceID
	}

	return &models.Trigger{
		SourceKind: models.SourceVitals,
		Severity:   best.severity,
		Location:   v.Location,
		SubjectID:  subject,
		OccurredAt: event.OccurredAt,
		Summary:    best.summary,
	}
}
