package models

// CaregiverRole 护理人员角色
type CaregiverRole string

const (
	RoleDoctor     CaregiverRole = "Doctor"
	RoleNurse      CaregiverRole = "Nurse"
	RoleTechnician CaregiverRole = "Technician"
	RoleOther      CaregiverRole = "Other"
)

// Availability 护理人员在岗状态
type Availability string

const (
	AvailabilityActive  Availability = "Active"  // 在岗且空闲
	AvailabilityBusy    Availability = "Busy"    // 在岗但忙碌
	AvailabilityOffline Availability = "Offline" // 离岗，不可分配
)

// Caregiver 护理人员快照（来自外部排班源，本服务只读）
// ActiveTaskCount = 该人员名下状态为 Pending/InProgress 的任务数
type Caregiver struct {
	ID              string        `json:"id" db:"id"`
	DisplayName     string        `json:"display_name" db:"display_name"`
	Role            CaregiverRole `json:"role" db:"role"`
	Availability    Availability  `json:"availability" db:"availability"`
	ActiveTaskCount int           `json:"active_task_count" db:"active_task_count"`
}
