package dto

// ── 工单模块 DTO ──

// CreateWorkOrderRequest 创建临时工单请求
type CreateWorkOrderRequest struct {
	Title         string                `json:"title"          binding:"required,max=200"`
	Description   string                `json:"description"`
	Priority      string                `json:"priority"       binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Type          string                `json:"type"           binding:"required,oneof=PREVENTIVE CORRECTIVE REQUEST"`
	ScheduledDate string                `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
	EquipmentIDs  []string              `json:"equipment_ids"  binding:"omitempty,dive,uuid"`
	Tasks         []TaskTemplateRequest `json:"tasks"          binding:"omitempty,dive"`
}

// WorkOrderListRequest 工单列表查询参数
type WorkOrderListRequest struct {
	PaginationRequest
	Status   string `form:"status"` // 逗号分隔，如 PENDING,IN_PROGRESS
	Priority string `form:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Type     string `form:"type"     binding:"omitempty,oneof=PREVENTIVE CORRECTIVE REQUEST"`
	PlanID   string `form:"plan_id"  binding:"omitempty,uuid"`
	From     string `form:"from"` // YYYY-MM-DD
	To       string `form:"to"`   // YYYY-MM-DD
}

// TransitionWorkOrderRequest 工单状态流转请求
type TransitionWorkOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// ToggleChecklistItemRequest 检查项勾选请求
type ToggleChecklistItemRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// WorkOrderChecklistItemResponse 工单检查项
type WorkOrderChecklistItemResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
	Completed bool   `json:"completed"`
}

// WorkOrderTaskResponse 工单任务
type WorkOrderTaskResponse struct {
	ID        string                           `json:"id"`
	Name      string                           `json:"name"`
	SortOrder int                              `json:"sort_order"`
	Completed bool                             `json:"completed"`
	Checklist []WorkOrderChecklistItemResponse `json:"checklist"`
}

// WorkOrderResponse 工单响应
type WorkOrderResponse struct {
	ID                 string                  `json:"id"`
	Code               string                  `json:"code"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Status             string                  `json:"status"`
	Priority           string                  `json:"priority"`
	Type               string                  `json:"type"`
	ScheduledDate      string                  `json:"scheduled_date"`
	StartedAt          *string                 `json:"started_at"`
	CompletedAt        *string                 `json:"completed_at"`
	PlanID             *string                 `json:"plan_id"`
	EquipmentIDs       []string                `json:"equipment_ids"`
	Tasks              []WorkOrderTaskResponse `json:"tasks,omitempty"`
	AllowedTransitions []string                `json:"allowed_transitions"`
	SLA                *SLAResponse            `json:"sla,omitempty"` // SLA 关闭时为空
	Version            int                     `json:"version"`
	CreatedAt          string                  `json:"created_at"`
	UpdatedAt          string                  `json:"updated_at"`
}

// StatusLogResponse 状态流转记录
type StatusLogResponse struct {
	ID         string `json:"id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	OperatorID string `json:"operator_id"`
	CreatedAt  string `json:"created_at"`
}

// ExportWorkOrdersRequest 工单导出参数
type ExportWorkOrdersRequest struct {
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// [自证通过] internal/dto/work_order.go
