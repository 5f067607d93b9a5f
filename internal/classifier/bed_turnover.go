package classifier

import (
	"fmt"

	"surgemind-dispatch/internal/models"
)

// bedCleaningCyclesMin 连续处于 Cleaning 状态的观测周期数，达到后才触发巡查
const bedCleaningCyclesMin = 2

// classifyBedTurnover 分类床位周转事件
// 床位跨两个观测周期仍处于 Cleaning 状态时生成低优先级巡查任务
func (c *Classifier) classifyBedTurnover(event *models.RawEvent) *models.Trigger {
	b := event.Bed
	if b == nil {
		c.warnMalformed(event, "missing bed payload")
		return nil
	}
	if b.BedNumber == "" {
		c.warnMalformed(event, "bed observation without bed_number")
		return nil
	}

	if b.Status != "Cleaning" || b.CleaningCycles < bedCleaningCyclesMin {
		return nil
	}

	location := b.Ward
	if location == "" {
		location = "General Ward"
	}

	return &models.Trigger{
		SourceKind: models.SourceBedTurnover,
		Severity:   models.SeverityLow,
		Location:   location,
		SubjectID:  b.BedNumber,
		OccurredAt: event.OccurredAt,
		Summary:    fmt.Sprintf("Inspect Bed %s Cleaning", b.BedNumber),
	}
}
