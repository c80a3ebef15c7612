package dto

// ── 维护计划模块 DTO ──

// TaskTemplateRequest 任务模板（计划与临时工单共用）
type TaskTemplateRequest struct {
	Name      string   `json:"name"      binding:"required,max=200"`
	Checklist []string `json:"checklist" binding:"omitempty,dive,required,max=500"`
}

// CreatePlanRequest 创建维护计划请求
type CreatePlanRequest struct {
	Name              string                `json:"name"                binding:"required,max=200"`
	Description       string                `json:"description"`
	Frequency         string                `json:"frequency"           binding:"required,oneof=DAILY WEEKLY MONTHLY QUARTERLY SEMESTER YEARLY"`
	NextExecutionDate string                `json:"next_execution_date"` // YYYY-MM-DD，可空
	AutoGenerate      bool                  `json:"auto_generate"`
	EquipmentIDs      []string              `json:"equipment_ids"       binding:"omitempty,dive,uuid"`
	Tasks             []TaskTemplateRequest `json:"tasks"               binding:"omitempty,dive"`
}

// UpdatePlanRequest 更新维护计划请求（仅更新非空字段）
type UpdatePlanRequest struct {
	Name              *string                `json:"name"                binding:"omitempty,max=200"`
	Description       *string                `json:"description"`
	Frequency         *string                `json:"frequency"           binding:"omitempty,oneof=DAILY WEEKLY MONTHLY QUARTERLY SEMESTER YEARLY"`
	NextExecutionDate *string                `json:"next_execution_date"`
	AutoGenerate      *bool                  `json:"auto_generate"`
	EquipmentIDs      *[]string              `json:"equipment_ids"       binding:"omitempty,dive,uuid"`
	Tasks             *[]TaskTemplateRequest `json:"tasks"               binding:"omitempty,dive"`
	Version           int                    `json:"version"             binding:"required,min=1"`
}

// PlanListRequest 计划列表查询参数
type PlanListRequest struct {
	PaginationRequest
	Status    string `form:"status"    binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Frequency string `form:"frequency" binding:"omitempty,oneof=DAILY WEEKLY MONTHLY QUARTERLY SEMESTER YEARLY"`
	Keyword   string `form:"keyword"`
}

// PlanChecklistItemResponse 计划检查项模板
type PlanChecklistItemResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
}

// PlanTaskResponse 计划任务模板
type PlanTaskResponse struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	SortOrder int                         `json:"sort_order"`
	Checklist []PlanChecklistItemResponse `json:"checklist"`
}

// PlanResponse 维护计划响应
type PlanResponse struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Frequency         string             `json:"frequency"`
	Status            string             `json:"status"`
	NextExecutionDate *string            `json:"next_execution_date"`
	AutoGenerate      bool               `json:"auto_generate"`
	EquipmentIDs      []string           `json:"equipment_ids"`
	Tasks             []PlanTaskResponse `json:"tasks,omitempty"`
	Version           int                `json:"version"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
}

// UpcomingExecutionsResponse 计划未来执行日期
type UpcomingExecutionsResponse struct {
	PlanID    string   `json:"plan_id"`
	Frequency string   `json:"frequency"`
	Dates     []string `json:"dates"`
}

// ── 工单生成 ──

// 扫描结果状态
const (
	GenerateResultGenerated = "generated"
	GenerateResultSkipped   = "skipped"
	GenerateResultFailed    = "failed"
)

// GenerateDueRequest 批量生成请求
type GenerateDueRequest struct {
	Limit int `json:"limit" binding:"omitempty,min=1,max=1000"`
}

// GenerateResult 单个计划的生成结果
type GenerateResult struct {
	PlanID        string `json:"plan_id"`
	PlanName      string `json:"plan_name"`
	Result        string `json:"result"`
	WorkOrderID   string `json:"work_order_id,omitempty"`
	WorkOrderCode string `json:"work_order_code,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// GenerateDueResponse 批量生成汇总
type GenerateDueResponse struct {
	Scanned   int              `json:"scanned"`
	Generated int              `json:"generated"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	Results   []GenerateResult `json:"results"`
}

// [自证通过] internal/dto/plan.go
