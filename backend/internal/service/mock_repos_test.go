package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traknor-cmms/backend/internal/model"
	"traknor-cmms/backend/internal/repository"
	pkgerrors "traknor-cmms/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock PlanRepository ──

// 存储副本，模拟数据库读写隔离
type mockPlanRepo struct {
	plans      map[string]*model.MaintenancePlan
	advanceErr error
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[string]*model.MaintenancePlan)}
}

func copyPlan(p *model.MaintenancePlan) *model.MaintenancePlan {
	cp := *p
	cp.EquipmentIDs = p.EquipmentIDs.Clone()
	if p.NextExecutionDate != nil {
		d := *p.NextExecutionDate
		cp.NextExecutionDate = &d
	}
	cp.Tasks = make([]model.PlanTask, len(p.Tasks))
	for i, t := range p.Tasks {
		cp.Tasks[i] = t
		cp.Tasks[i].ChecklistItems = append([]model.PlanChecklistItem(nil), t.ChecklistItems...)
	}
	return &cp
}

func (m *mockPlanRepo) Create(_ context.Context, plan *model.MaintenancePlan) error {
	if plan.PlanID == "" {
		plan.PlanID = uuid.New().String()
	}
	if plan.Version == 0 {
		plan.Version = 1
	}
	for i := range plan.Tasks {
		plan.Tasks[i].PlanID = plan.PlanID
	}
	m.plans[plan.PlanID] = copyPlan(plan)
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id string) (*model.MaintenancePlan, error) {
	if p, ok := m.plans[id]; ok {
		return copyPlan(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanRepo) List(_ context.Context, filter repository.PlanFilter, offset, limit int) ([]model.MaintenancePlan, int64, error) {
	var result []model.MaintenancePlan
	for _, p := range m.plans {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Frequency != "" && p.Frequency != filter.Frequency {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(p.Name, filter.Keyword) {
			continue
		}
		result = append(result, *copyPlan(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockPlanRepo) ListDue(_ context.Context, now time.Time, limit int) ([]model.MaintenancePlan, error) {
	var result []model.MaintenancePlan
	for _, p := range m.plans {
		if p.Status == model.PlanStatusActive && p.IsDue(now) {
			result = append(result, *copyPlan(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NextExecutionDate.Before(*result[j].NextExecutionDate)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockPlanRepo) Update(_ context.Context, plan *model.MaintenancePlan) error {
	stored, ok := m.plans[plan.PlanID]
	if !ok || stored.Version != plan.Version {
		return pkgerrors.ErrOptimisticLock
	}
	plan.Version++
	cp := copyPlan(plan)
	cp.Tasks = stored.Tasks
	m.plans[plan.PlanID] = cp
	return nil
}

func (m *mockPlanRepo) ReplaceTasks(_ context.Context, planID string, tasks []model.PlanTask) error {
	stored, ok := m.plans[planID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range tasks {
		tasks[i].PlanID = planID
	}
	stored.Tasks = append([]model.PlanTask(nil), tasks...)
	return nil
}

func (m *mockPlanRepo) AdvanceNextExecution(_ context.Context, plan *model.MaintenancePlan, next time.Time, updatedBy string) error {
	if m.advanceErr != nil {
		return m.advanceErr
	}
	stored, ok := m.plans[plan.PlanID]
	if !ok || stored.Version != plan.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.NextExecutionDate = &next
	stored.UpdatedBy = &updatedBy
	stored.Version++
	plan.NextExecutionDate = &next
	plan.Version = stored.Version
	return nil
}

func (m *mockPlanRepo) Deactivate(_ context.Context, plan *model.MaintenancePlan, updatedBy string) error {
	stored, ok := m.plans[plan.PlanID]
	if !ok || stored.Version != plan.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = model.PlanStatusInactive
	stored.UpdatedBy = &updatedBy
	stored.Version++
	plan.Status = model.PlanStatusInactive
	plan.Version = stored.Version
	return nil
}

// ── Mock WorkOrderRepository ──

type mockWorkOrderRepo struct {
	orders    map[string]*model.WorkOrder
	createErr error
	now       time.Time
}

func newMockWorkOrderRepo() *mockWorkOrderRepo {
	return &mockWorkOrderRepo{
		orders: make(map[string]*model.WorkOrder),
		now:    time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func copyWorkOrder(o *model.WorkOrder) *model.WorkOrder {
	cp := *o
	cp.EquipmentIDs = o.EquipmentIDs.Clone()
	cp.Tasks = make([]model.WorkOrderTask, len(o.Tasks))
	for i, t := range o.Tasks {
		cp.Tasks[i] = t
		cp.Tasks[i].ChecklistItems = append([]model.WorkOrderChecklistItem(nil), t.ChecklistItems...)
	}
	return &cp
}

func (m *mockWorkOrderRepo) Create(_ context.Context, order *model.WorkOrder) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, o := range m.orders {
		if o.Code == order.Code {
			return gorm.ErrDuplicatedKey
		}
		if order.PlanID != nil && o.PlanID != nil && *o.PlanID == *order.PlanID && o.ScheduledDate.Equal(order.ScheduledDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	if order.WorkOrderID == "" {
		order.WorkOrderID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = m.now
		order.UpdatedAt = m.now
	}
	if order.Version == 0 {
		order.Version = 1
	}
	for i := range order.Tasks {
		order.Tasks[i].WorkOrderID = order.WorkOrderID
	}
	m.orders[order.WorkOrderID] = copyWorkOrder(order)
	return nil
}

func (m *mockWorkOrderRepo) GetByID(_ context.Context, id string) (*model.WorkOrder, error) {
	if o, ok := m.orders[id]; ok {
		return copyWorkOrder(o), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderRepo) match(o *model.WorkOrder, filter repository.WorkOrderFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if o.Status == s {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if filter.Priority != "" && o.Priority != filter.Priority {
		return false
	}
	if filter.Type != "" && o.Type != filter.Type {
		return false
	}
	if filter.PlanID != "" && (o.PlanID == nil || *o.PlanID != filter.PlanID) {
		return false
	}
	if filter.From != nil && o.ScheduledDate.Before(*filter.From) {
		return false
	}
	if filter.To != nil && o.ScheduledDate.After(*filter.To) {
		return false
	}
	return true
}

func (m *mockWorkOrderRepo) ListAll(_ context.Context, filter repository.WorkOrderFilter) ([]model.WorkOrder, error) {
	var result []model.WorkOrder
	for _, o := range m.orders {
		if m.match(o, filter) {
			result = append(result, *copyWorkOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockWorkOrderRepo) List(ctx context.Context, filter repository.WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error) {
	all, _ := m.ListAll(ctx, filter)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockWorkOrderRepo) LastCodeSeq(_ context.Context) (int64, error) {
	var last int64
	for _, o := range m.orders {
		parts := strings.Split(o.Code, "-")
		if len(parts) != 3 || parts[0] != "OS" {
			continue
		}
		if n, err := strconv.ParseInt(parts[2], 10, 64); err == nil && n > last {
			last = n
		}
	}
	return last, nil
}

func (m *mockWorkOrderRepo) UpdateStatus(_ context.Context, order *model.WorkOrder, fromStatus model.WorkOrderStatus) error {
	stored, ok := m.orders[order.WorkOrderID]
	if !ok || stored.Status != fromStatus || stored.Version != order.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = order.Status
	stored.StartedAt = order.StartedAt
	stored.CompletedAt = order.CompletedAt
	stored.UpdatedBy = order.UpdatedBy
	stored.Version++
	order.Version = stored.Version
	return nil
}

func (m *mockWorkOrderRepo) SetChecklistItemCompleted(_ context.Context, workOrderID, itemID string, completed bool) error {
	stored, ok := m.orders[workOrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for ti := range stored.Tasks {
		task := &stored.Tasks[ti]
		for ii := range task.ChecklistItems {
			if task.ChecklistItems[ii].ItemID != itemID {
				continue
			}
			task.ChecklistItems[ii].Completed = completed
			done := true
			for _, it := range task.ChecklistItems {
				done = done && it.Completed
			}
			task.Completed = done
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockWorkOrderRepo) DeletePending(_ context.Context, id string) error {
	stored, ok := m.orders[id]
	if !ok || stored.Status != model.WorkOrderPending {
		return pkgerrors.ErrOptimisticLock
	}
	delete(m.orders, id)
	return nil
}

// ── Mock WorkOrderStatusLogRepository ──

type mockStatusLogRepo struct {
	logs []model.WorkOrderStatusLog
}

func newMockStatusLogRepo() *mockStatusLogRepo {
	return &mockStatusLogRepo{}
}

func (m *mockStatusLogRepo) Create(_ context.Context, log *model.WorkOrderStatusLog) error {
	if log.StatusLogID == "" {
		log.StatusLogID = uuid.New().String()
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockStatusLogRepo) ListByWorkOrder(_ context.Context, workOrderID string, offset, limit int) ([]model.WorkOrderStatusLog, int64, error) {
	var result []model.WorkOrderStatusLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].WorkOrderID == workOrderID {
			result = append(result, m.logs[i])
		}
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── Mock SLAConfigRepository ──

type mockSLAConfigRepo struct {
	cfg *model.SLAConfig
}

func newMockSLAConfigRepo() *mockSLAConfigRepo {
	return &mockSLAConfigRepo{cfg: defaultSLAModel(nil)}
}

func (m *mockSLAConfigRepo) Get(_ context.Context) (*model.SLAConfig, error) {
	if m.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *mockSLAConfigRepo) Save(_ context.Context, cfg *model.SLAConfig) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}

// ── 聚合 ──

type testRepos struct {
	users     *mockUserRepo
	plans     *mockPlanRepo
	orders    *mockWorkOrderRepo
	statusLog *mockStatusLogRepo
	sla       *mockSLAConfigRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	r := &testRepos{
		users:     newMockUserRepo(),
		plans:     newMockPlanRepo(),
		orders:    newMockWorkOrderRepo(),
		statusLog: newMockStatusLogRepo(),
		sla:       newMockSLAConfigRepo(),
	}
	return &repository.Repository{
		User:      r.users,
		Plan:      r.plans,
		WorkOrder: r.orders,
		StatusLog: r.statusLog,
		SLAConfig: r.sla,
	}, r
}

// [自证通过] internal/service/mock_repos_test.go
