package ranker

import (
	"surgemind-dispatch/internal/models"
)

// WorkloadRanker 最小负载选派器
// 纯函数：相同名册输入永远返回相同结果，无随机性
type WorkloadRanker struct{}

// NewWorkloadRanker 创建选派器
func NewWorkloadRanker() *WorkloadRanker {
	return &WorkloadRanker{}
}

// SelectAssignee 从名册中选出最小负载的护理人员，返回其 ID
// 规则：
// 1. 过滤 Offline 人员；无人可选时返回空串（调用方必须处理，不得凭空指派）
// 2. 按 ActiveTaskCount 升序
// 3. 负载相同时 Active 优先于 Busy
// 4. 仍相同时按名册顺序取先者（保证确定性和可测试性）
func (r *WorkloadRanker) SelectAssignee(caregivers []models.Caregiver) string {
	var best *models.Caregiver

	for i := range caregivers {
		cg := &caregivers[i]
		if cg.Availability == models.AvailabilityOffline {
			continue
		}
		if best == nil || betterCandidate(cg, best) {
			best = cg
		}
	}

	if best == nil {
		return ""
	}
	return best.ID
}

// betterCandidate 判断 candidate 是否严格优于 current（不优时保持名册先者）
func betterCandidate(candidate, current *models.Caregiver) bool {
	if candidate.ActiveTaskCount != current.ActiveTaskCount {
		return candidate.ActiveTaskCount < current.ActiveTaskCount
	}
	return candidate.Availability == models.AvailabilityActive &&
		current.Availability != models.AvailabilityActive
}
