package models

import "time"

// RawEvent 原始领域事件（标签联合，Kind 为判别字段）
// 五种来源各自携带独立的负载结构，未经分类器校验前不可信
type RawEvent struct {
	Kind       SourceKind `json:"kind"`
	OccurredAt time.Time  `json:"occurred_at"`

	Vitals    *VitalsReading   `json:"vitals,omitempty"`
	CCTV      *CCTVDetection   `json:"cctv,omitempty"`
	Emergency *EmergencyReport `json:"emergency,omitempty"`
	Supply    *SupplyLevel     `json:"supply,omitempty"`
	Bed       *BedObservation  `json:"bed,omitempty"`
}

// VitalsReading IoT 生命体征读数
// 指针字段区分"未上报"和"数值为零"
type VitalsReading struct {
	DeviceID    string   `json:"device_id"`
	PatientID   string   `json:"patient_id,omitempty"`
	Location    string   `json:"location"`
	HeartRate   *int     `json:"heart_rate,omitempty"`   // bpm
	SpO2        *int     `json:"spo2,omitempty"`         // %
	SystolicBP  *int     `json:"systolic_bp,omitempty"`  // mmHg
	Temperature *float64 `json:"temperature,omitempty"`  // °F
}

// CCTVDetection CCTV 检测事件
type CCTVDetection struct {
	CameraID      string  `json:"camera_id"`
	Location      string  `json:"location"`
	DetectionType string  `json:"detection_type"` // 如 "Fall Detected", "Agitation", "Crowd"
	Confidence    float64 `json:"confidence"`     // 0.0 - 1.0
}

// EmergencyReport 紧急事件上报
type EmergencyReport struct {
	EmergencyType string `json:"emergency_type"`
	Location      string `json:"location"`
	PatientID     string `json:"patient_id,omitempty"`
	Severity      string `json:"severity,omitempty"` // 上报方自带级别，"Critical" 时提升
}

// SupplyLevel 物资库存水位
type SupplyLevel struct {
	ItemName  string `json:"item_name"`
	Location  string `json:"location"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"` // 告警阈值（每物资单独配置）
}

// BedObservation 床位状态观测
// CleaningCycles 由上游观测器维护：连续处于 Cleaning 状态的观测周期数
type BedObservation struct {
	BedNumber      string `json:"bed_number"`
	Ward           string `json:"ward"`
	Status         string `json:"status"` // Available, Occupied, Cleaning
	CleaningCycles int    `json:"cleaning_cycles"`
}
