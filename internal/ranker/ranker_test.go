package ranker

import (
	"testing"

	"surgemind-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
)

func caregiver(id string, availability models.Availability, load int) models.Caregiver {
	return models.Caregiver{
		ID:              id,
		DisplayName:     id,
		Role:            models.RoleNurse,
		Availability:    availability,
		ActiveTaskCount: load,
	}
}

func TestSelectAssignee_LeastLoaded(t *testing.T) {
	r := NewWorkloadRanker()

	roster := []models.Caregiver{
		caregiver("a", models.AvailabilityActive, 3),
		caregiver("b", models.AvailabilityActive, 1),
		caregiver("c", models.AvailabilityActive, 2),
	}

	assert.Equal(t, "b", r.SelectAssignee(roster))
}

func TestSelectAssignee_OfflineExcluded(t *testing.T) {
	r := NewWorkloadRanker()

	roster := []models.Caregiver{
		caregiver("a", models.AvailabilityOffline, 0),
		caregiver("b", models.AvailabilityBusy, 5),
	}

	// 离岗人员即使零负载也不可选
	assert.Equal(t, "b", r.SelectAssignee(roster))
}

func TestSelectAssignee_NoStaffAvailable(t *testing.T) {
	r := NewWorkloadRanker()

	assert.Equal(t, "", r.SelectAssignee(nil))
	assert.Equal(t, "", r.SelectAssignee([]models.Caregiver{}))
	assert.Equal(t, "", r.SelectAssignee([]models.Caregiver{
		caregiver("a", models.AvailabilityOffline, 0),
		caregiver("b", models.AvailabilityOffline, 2),
	}))
}

func TestSelectAssignee_TieBreakPrefersActive(t *testing.T) {
	r := NewWorkloadRanker()

	roster := []models.Caregiver{
		caregiver("busy", models.AvailabilityBusy, 2),
		caregiver("active", models.AvailabilityActive, 2),
	}

	assert.Equal(t, "active", r.SelectAssignee(roster))
}

func TestSelectAssignee_TieBreakStableOrder(t *testing.T) {
	r := NewWorkloadRanker()

	// 负载和状态完全相同时取名册先者
	roster := []models.Caregiver{
		caregiver("first", models.AvailabilityActive, 1),
		caregiver("second", models.AvailabilityActive, 1),
	}
	assert.Equal(t, "first", r.SelectAssignee(roster))

	roster = []models.Caregiver{
		caregiver("second", models.AvailabilityActive, 1),
		caregiver("first", models.AvailabilityActive, 1),
	}
	assert.Equal(t, "second", r.SelectAssignee(roster))
}

func TestSelectAssignee_LoadBeatsAvailability(t *testing.T) {
	r := NewWorkloadRanker()

	// 负载优先于状态：低负载的 Busy 胜过高负载的 Active
	roster := []models.Caregiver{
		caregiver("active-loaded", models.AvailabilityActive, 4),
		caregiver("busy-idle", models.AvailabilityBusy, 0),
	}

	assert.Equal(t, "busy-idle", r.SelectAssignee(roster))
}

func TestSelectAssignee_LeastLoadInvariant(t *testing.T) {
	r := NewWorkloadRanker()

	roster := []models.Caregiver{
		caregiver("a", models.AvailabilityBusy, 7),
		caregiver("b", models.AvailabilityActive, 3),
		caregiver("c", models.AvailabilityOffline, 0),
		caregiver("d", models.AvailabilityBusy, 3),
		caregiver("e", models.AvailabilityActive, 5),
	}

	selected := r.SelectAssignee(roster)
	assert.Equal(t, "b", selected)

	// 选中者的负载不高于任何在岗人员
	var selectedLoad int
	for _, cg := range roster {
		if cg.ID == selected {
			selectedLoad = cg.ActiveTaskCount
		}
	}
	for _, cg := range roster {
		if cg.Availability != models.AvailabilityOffline {
			assert.LessOrEqual(t, selectedLoad, cg.ActiveTaskCount)
		}
	}
}

func TestSelectAssignee_Deterministic(t *testing.T) {
	r := NewWorkloadRanker()

	roster := []models.Caregiver{
		caregiver("a", models.AvailabilityBusy, 2),
		caregiver("b", models.AvailabilityActive, 2),
		caregiver("c", models.AvailabilityActive, 2),
	}

	first := r.SelectAssignee(roster)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.SelectAssignee(roster))
	}
}
