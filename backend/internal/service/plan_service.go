package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"traknor-cmms/backend/config"
	"traknor-cmms/backend/internal/authz"
	"traknor-cmms/backend/internal/dto"
	"traknor-cmms/backend/internal/model"
	"traknor-cmms/backend/internal/repository"
	pkgerrors "traknor-cmms/backend/pkg/errors"
	"traknor-cmms/backend/pkg/redis"
)

// ── 维护计划模块业务错误 ──

var (
	ErrPlanNotFound       = pkgerrors.New(pkgerrors.ErrNotFound, "维护计划不存在或已停用")
	ErrPlanNotReady       = pkgerrors.New(pkgerrors.ErrValidation, "维护计划尚未到期，不能生成工单")
	ErrPlanDateRewind     = pkgerrors.New(pkgerrors.ErrValidation, "下次执行日期不能早于当前计划日期")
	ErrPlanGenerateBusy   = pkgerrors.New(pkgerrors.ErrConflict, "该计划正在生成工单，请稍后重试")
	ErrPlanGenerateRace   = pkgerrors.New(pkgerrors.ErrConflict, "该计划本期工单已生成或计划已被修改")
	ErrWorkOrderCodeTaken = pkgerrors.New(pkgerrors.ErrConflict, "工单编号冲突，请重试")
)

const (
	maxUpcomingCount     = 52
	defaultUpcomingCount = 12
)

// PlanService 维护计划业务接口
type PlanService interface {
	Create(ctx context.Context, req *dto.CreatePlanRequest, actor authz.Actor) (*dto.PlanResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PlanResponse, error)
	List(ctx context.Context, req *dto.PlanListRequest) ([]dto.PlanResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdatePlanRequest, actor authz.Actor) (*dto.PlanResponse, error)
	Deactivate(ctx context.Context, id string, actor authz.Actor) error
	Upcoming(ctx context.Context, id string, count int) (*dto.UpcomingExecutionsResponse, error)
	Calendar(ctx context.Context, id string, count int) ([]byte, string, error)
	// Generate 由到期计划生成一张 PENDING 工单，并推进计划的下次执行日期
	Generate(ctx context.Context, id string, actor authz.Actor) (*dto.WorkOrderResponse, error)
	// GenerateDue 扫描所有到期计划，每个计划本次最多生成一张工单
	GenerateDue(ctx context.Context, actor authz.Actor, limit int) (*dto.GenerateDueResponse, error)
}

type planService struct {
	repo    *repository.Repository
	checker authz.Checker
	locker  Locker // 可为 nil
	cfg     config.PlannerConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(
	repo *repository.Repository,
	checker authz.Checker,
	locker Locker,
	cfg config.PlannerConfig,
	logger *zap.Logger,
) PlanService {
	return &planService{
		repo:    repo,
		checker: checker,
		locker:  locker,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *planService) today() time.Time {
	return calendarDay(s.now(), s.cfg.Location())
}

// ────────────────────── Create ──────────────────────

func (s *planService) Create(ctx context.Context, req *dto.CreatePlanRequest, actor authz.Actor) (*dto.PlanResponse, error) {
	if err := authorize(s.checker, actor, authz.ActionCreate, authz.SubjectPlan); err != nil {
		return nil, err
	}

	freq := model.Frequency(req.Frequency)
	if !ValidFrequency(freq) {
		return nil, ErrInvalidFrequency
	}

	plan := &model.MaintenancePlan{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Frequency:    freq,
		Status:       model.PlanStatusActive,
		AutoGenerate: req.AutoGenerate,
		EquipmentIDs: model.StringArray(req.EquipmentIDs).Clone(),
		Tasks:        buildPlanTasks(req.Tasks),
	}
	if plan.EquipmentIDs == nil {
		plan.EquipmentIDs = model.StringArray{}
	}
	if req.NextExecutionDate != "" {
		d, err := parseDate(req.NextExecutionDate)
		if err != nil {
			return nil, err
		}
		plan.NextExecutionDate = &d
	}
	plan.CreatedBy = &actor.UserID
	plan.UpdatedBy = &actor.UserID

	if err := s.repo.Plan.Create(ctx, plan); err != nil {
		s.logger.Error("创建维护计划失败", zap.Error(err))
		return nil, err
	}

	return toPlanResponse(plan), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *planService) GetByID(ctx context.Context, id string) (*dto.PlanResponse, error) {
	plan, err := s.loadPlan(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return toPlanResponse(plan), nil
}

func (s *planService) List(ctx context.Context, req *dto.PlanListRequest) ([]dto.PlanResponse, int64, error) {
	filter := repository.PlanFilter{
		Status:    model.PlanStatus(req.Status),
		Frequency: model.Frequency(req.Frequency),
		Keyword:   strings.TrimSpace(req.Keyword),
	}
	plans, total, err := s.repo.Plan.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询维护计划列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		list = append(list, *toPlanResponse(&plans[i]))
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *planService) Update(ctx context.Context, id string, req *dto.UpdatePlanRequest, actor authz.Actor) (*dto.PlanResponse, error) {
	if err := authorize(s.checker, actor, authz.ActionUpdate, authz.SubjectPlan); err != nil {
		return nil, err
	}

	plan, err := s.loadPlan(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if plan.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Frequency != nil {
		freq := model.Frequency(*req.Frequency)
		if !ValidFrequency(freq) {
			return nil, ErrInvalidFrequency
		}
		plan.Frequency = freq
	}
	if req.NextExecutionDate != nil {
		d, err := parseDate(*req.NextExecutionDate)
		if err != nil {
			return nil, err
		}
		// 已设置的日期只能前移
		if plan.NextExecutionDate != nil && d.Before(*plan.NextExecutionDate) {
			return nil, ErrPlanDateRewind
		}
		plan.NextExecutionDate = &d
	}
	if req.AutoGenerate != nil {
		plan.AutoGenerate = *req.AutoGenerate
	}
	if req.EquipmentIDs != nil {
		plan.EquipmentIDs = model.StringArray(*req.EquipmentIDs).Clone()
		if plan.EquipmentIDs == nil {
			plan.EquipmentIDs = model.StringArray{}
		}
	}
	plan.UpdatedBy = &actor.UserID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Plan.Update(ctx, plan); err != nil {
		rollback(tx)
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新维护计划失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	if req.Tasks != nil {
		tasks := buildPlanTasks(*req.Tasks)
		if err := txRepo.Plan.ReplaceTasks(ctx, plan.PlanID, tasks); err != nil {
			rollback(tx)
			s.logger.Error("替换计划任务失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Deactivate ──────────────────────

func (s *planService) Deactivate(ctx context.Context, id string, actor authz.Actor) error {
	if err := authorize(s.checker, actor, authz.ActionDelete, authz.SubjectPlan); err != nil {
		return err
	}

	plan, err := s.loadPlan(ctx, id, false)
	if err != nil {
		return err
	}

	if err := s.repo.Plan.Deactivate(ctx, plan, actor.UserID); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("停用维护计划失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}
	return nil
}

// ────────────────────── Upcoming / Calendar ──────────────────────

func (s *planService) upcomingDates(ctx context.Context, id string, count int) (*model.MaintenancePlan, []time.Time, error) {
	if count <= 0 {
		count = defaultUpcomingCount
	}
	if count > maxUpcomingCount {
		count = maxUpcomingCount
	}

	plan, err := s.loadPlan(ctx, id, false)
	if err != nil {
		return nil, nil, err
	}
	if plan.NextExecutionDate == nil {
		return plan, nil, nil
	}

	dates, err := UpcomingExecutions(*plan.NextExecutionDate, plan.Frequency, count)
	if err != nil {
		return nil, nil, err
	}
	return plan, dates, nil
}

func (s *planService) Upcoming(ctx context.Context, id string, count int) (*dto.UpcomingExecutionsResponse, error) {
	plan, dates, err := s.upcomingDates(ctx, id, count)
	if err != nil {
		return nil, err
	}

	resp := &dto.UpcomingExecutionsResponse{
		PlanID:    plan.PlanID,
		Frequency: string(plan.Frequency),
		Dates:     make([]string, 0, len(dates)),
	}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.Format(dateLayout))
	}
	return resp, nil
}

// Calendar 以 iCalendar 格式导出计划的未来执行日期（全天事件）
func (s *planService) Calendar(ctx context.Context, id string, count int) ([]byte, string, error) {
	plan, dates, err := s.upcomingDates(ctx, id, count)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//TrakNor CMMS//Maintenance Plans//EN")
	cal.SetName(plan.Name)

	stamp := s.now().UTC()
	for _, d := range dates {
		evt := cal.AddEvent(fmt.Sprintf("%s-%s@traknor-cmms", plan.PlanID, d.Format("20060102")))
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(d)
		evt.SetAllDayEndAt(d.AddDate(0, 0, 1))
		evt.SetSummary(fmt.Sprintf("[%s] %s", plan.Frequency, plan.Name))
		if plan.Description != "" {
			evt.SetDescription(plan.Description)
		}
	}

	filename := fmt.Sprintf("plan_%s.ics", plan.PlanID)
	return []byte(cal.Serialize()), filename, nil
}

// ────────────────────── Generate ──────────────────────

func (s *planService) Generate(ctx context.Context, id string, actor authz.Actor) (*dto.WorkOrderResponse, error) {
	if err := authorize(s.checker, actor, authz.ActionGenerate, authz.SubjectPlan); err != nil {
		return nil, err
	}

	order, err := s.generateLocked(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("由维护计划生成工单",
		zap.String("plan_id", id),
		zap.String("work_order_id", order.WorkOrderID),
		zap.String("code", order.Code),
		zap.String("operator", actor.UserID),
	)
	return toWorkOrderResponse(order, nil), nil
}

// generateLocked 在计划级互斥锁内执行生成；未配置 Locker 时仅依赖乐观锁与唯一索引
func (s *planService) generateLocked(ctx context.Context, id string, actor authz.Actor) (*model.WorkOrder, error) {
	if s.locker != nil {
		release, err := s.locker.Lock(ctx, "plan:generate:"+id, s.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, redis.ErrLockHeld) {
				return nil, ErrPlanGenerateBusy
			}
			s.logger.Error("获取计划生成锁失败", zap.String("plan_id", id), zap.Error(err))
			return nil, err
		}
		defer release(context.WithoutCancel(ctx))
	}
	return s.generate(ctx, id, actor)
}

// generate 在单个事务中创建工单并推进计划日期，任一步失败整体回滚，
// 因此计划日期不会在没有对应工单的情况下前移。
func (s *planService) generate(ctx context.Context, id string, actor authz.Actor) (*model.WorkOrder, error) {
	plan, err := s.loadPlan(ctx, id, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !plan.IsDue(calendarDay(now, s.cfg.Location())) {
		return nil, ErrPlanNotReady
	}
	next, err := NextExecution(*plan.NextExecutionDate, plan.Frequency)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			rollback(tx)
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	// 1. 分配编号
	seq, err := txRepo.WorkOrder.LastCodeSeq(ctx)
	if err != nil {
		rollback(tx)
		s.logger.Error("查询工单流水号失败", zap.Error(err))
		return nil, err
	}

	// 2. 创建工单（任务与检查项深拷贝）
	planID := plan.PlanID
	order := &model.WorkOrder{
		Code:          FormatWorkOrderCode(now.In(s.cfg.Location()).Year(), seq+1),
		Title:         plan.Name,
		Description:   plan.Description,
		Status:        model.WorkOrderPending,
		Priority:      model.PriorityMedium,
		Type:          model.WorkOrderPreventive,
		ScheduledDate: *plan.NextExecutionDate,
		PlanID:        &planID,
		EquipmentIDs:  plan.EquipmentIDs.Clone(),
		Tasks:         clonePlanTasks(plan.Tasks),
		Version:       1,
	}
	if order.EquipmentIDs == nil {
		order.EquipmentIDs = model.StringArray{}
	}
	order.CreatedBy = &actor.UserID
	order.UpdatedBy = &actor.UserID

	if err := txRepo.WorkOrder.Create(ctx, order); err != nil {
		rollback(tx)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("生成工单唯一约束冲突", zap.String("plan_id", id), zap.String("code", order.Code))
			return nil, ErrPlanGenerateRace
		}
		s.logger.Error("创建工单失败", zap.String("plan_id", id), zap.Error(err))
		return nil, err
	}

	// 3. 推进计划日期（version CAS）
	if err := txRepo.Plan.AdvanceNextExecution(ctx, plan, next, actor.UserID); err != nil {
		rollback(tx)
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrPlanGenerateRace
		}
		s.logger.Error("推进计划执行日期失败", zap.String("plan_id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return order, nil
}

// ────────────────────── GenerateDue ──────────────────────

func (s *planService) GenerateDue(ctx context.Context, actor authz.Actor, limit int) (*dto.GenerateDueResponse, error) {
	if err := authorize(s.checker, actor, authz.ActionGenerate, authz.SubjectPlan); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.SweepLimit
	}

	plans, err := s.repo.Plan.ListDue(ctx, s.today(), limit)
	if err != nil {
		s.logger.Error("查询到期维护计划失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.GenerateDueResponse{
		Scanned: len(plans),
		Results: make([]dto.GenerateResult, 0, len(plans)),
	}
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		result := dto.GenerateResult{PlanID: p.PlanID, PlanName: p.Name}
		order, err := s.generateLocked(ctx, p.PlanID, actor)
		switch {
		case err == nil:
			result.Result = dto.GenerateResultGenerated
			result.WorkOrderID = order.WorkOrderID
			result.WorkOrderCode = order.Code
			resp.Generated++
		case errors.Is(err, pkgerrors.ErrValidation),
			errors.Is(err, pkgerrors.ErrNotFound),
			errors.Is(err, pkgerrors.ErrConflict):
			result.Result = dto.GenerateResultSkipped
			result.Reason = err.Error()
			resp.Skipped++
		default:
			result.Result = dto.GenerateResultFailed
			result.Reason = err.Error()
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	s.logger.Info("到期计划扫描完成",
		zap.Int("scanned", resp.Scanned),
		zap.Int("generated", resp.Generated),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ── 辅助函数 ──

// loadPlan 查询 ACTIVE 计划，INACTIVE 视为不存在
func (s *planService) loadPlan(ctx context.Context, id string, withTasks bool) (*model.MaintenancePlan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPlanNotFound
	}
	plan, err := s.repo.Plan.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询维护计划失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if plan.Status != model.PlanStatusActive {
		return nil, ErrPlanNotFound
	}
	if !withTasks {
		plan.Tasks = nil
	}
	return plan, nil
}

func rollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

// FormatWorkOrderCode 生成工单编号，如 OS-2024-001
func FormatWorkOrderCode(year int, seq int64) string {
	return fmt.Sprintf("OS-%04d-%03d", year, seq)
}

// buildPlanTasks 将请求中的任务模板转为模型，并分配新 ID
func buildPlanTasks(reqs []dto.TaskTemplateRequest) []model.PlanTask {
	tasks := make([]model.PlanTask, 0, len(reqs))
	for i, r := range reqs {
		task := model.PlanTask{
			TaskID:    uuid.New().String(),
			Name:      strings.TrimSpace(r.Name),
			SortOrder: i + 1,
		}
		for j, text := range r.Checklist {
			task.ChecklistItems = append(task.ChecklistItems, model.PlanChecklistItem{
				ItemID:    uuid.New().String(),
				TaskID:    task.TaskID,
				Text:      strings.TrimSpace(text),
				SortOrder: j + 1,
			})
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// clonePlanTasks 深拷贝计划任务模板为工单任务；每个任务与检查项都分配新 ID，不与模板共享任何标识
func clonePlanTasks(src []model.PlanTask) []model.WorkOrderTask {
	out := make([]model.WorkOrderTask, 0, len(src))
	for _, t := range src {
		task := model.WorkOrderTask{
			TaskID:    uuid.New().String(),
			Name:      t.Name,
			SortOrder: t.SortOrder,
		}
		task.ChecklistItems = make([]model.WorkOrderChecklistItem, 0, len(t.ChecklistItems))
		for _, item := range t.ChecklistItems {
			task.ChecklistItems = append(task.ChecklistItems, model.WorkOrderChecklistItem{
				ItemID:    uuid.New().String(),
				TaskID:    task.TaskID,
				Text:      item.Text,
				SortOrder: item.SortOrder,
			})
		}
		out = append(out, task)
	}
	return out
}

func toPlanResponse(p *model.MaintenancePlan) *dto.PlanResponse {
	resp := &dto.PlanResponse{
		ID:                p.PlanID,
		Name:              p.Name,
		Description:       p.Description,
		Frequency:         string(p.Frequency),
		Status:            string(p.Status),
		NextExecutionDate: formatDatePtr(p.NextExecutionDate),
		AutoGenerate:      p.AutoGenerate,
		EquipmentIDs:      []string(p.EquipmentIDs.Clone()),
		Version:           p.Version,
		CreatedAt:         p.CreatedAt.Format(dateTimeLayout),
		UpdatedAt:         p.UpdatedAt.Format(dateTimeLayout),
	}
	if resp.EquipmentIDs == nil {
		resp.EquipmentIDs = []string{}
	}
	for _, t := range p.Tasks {
		task := dto.PlanTaskResponse{
			ID:        t.TaskID,
			Name:      t.Name,
			SortOrder: t.SortOrder,
			Checklist: make([]dto.PlanChecklistItemResponse, 0, len(t.ChecklistItems)),
		}
		for _, item := range t.ChecklistItems {
			task.Checklist = append(task.Checklist, dto.PlanChecklistItemResponse{
				ID:        item.ItemID,
				Text:      item.Text,
				SortOrder: item.SortOrder,
			})
		}
		resp.Tasks = append(resp.Tasks, task)
	}
	return resp
}

// [自证通过] internal/service/plan_service.go
