package classifier

import (
	"fmt"

	"surgemind-dispatch/internal/models"
)

// classifySupply 分类物资库存事件
// 库存低于阈值才触发：不低于阈值一半为 Medium，低于一半为 High
func (c *Classifier) classifySupply(event *models.RawEvent) *models.Trigger {
	s := event.Supply
	if s == nil {
		c.warnMalformed(event, "missing supply payload")
		return nil
	}
	if s.ItemName == "" {
		c.warnMalformed(event, "supply level without item_name")
		return nil
	}
	if s.Threshold <= 0 {
		c.warnMalformed(event, "supply level without positive threshold")
		return nil
	}

	if s.Quantity >= s.Threshold {
		return nil
	}

	severity := models.SeverityHigh
	if s.Quantity*2 >= s.Threshold {
		severity = models.SeverityMedium
	}

	location := s.Location
	if location == "" {
		location = "Supply Room"
	}

	return &models.Trigger{
		SourceKind: models.SourceSupplyShortage,
		Severity:   severity,
		Location:   location,
		SubjectID:  s.ItemName,
		OccurredAt: event.OccurredAt,
		Summary:    fmt.Sprintf("Restock %s", s.ItemName),
	}
}
