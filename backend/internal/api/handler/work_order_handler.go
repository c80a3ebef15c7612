package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"traknor-cmms/backend/internal/dto"
	"traknor-cmms/backend/internal/service"
	"traknor-cmms/backend/pkg/response"
)

// WorkOrderHandler 工单模块 HTTP 处理器
type WorkOrderHandler struct {
	workOrderSvc service.WorkOrderService
}

// NewWorkOrderHandler 创建 WorkOrderHandler
func NewWorkOrderHandler(workOrderSvc service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrderSvc: workOrderSvc}
}

// ListWorkOrders 工单列表
// GET /api/v1/work-orders?status=PENDING,IN_PROGRESS&priority=HIGH&from=2024-01-01
func (h *WorkOrderHandler) ListWorkOrders(c *gin.Context) {
	var req dto.WorkOrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.workOrderSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetWorkOrder 工单详情（含 SLA）
// GET /api/v1/work-orders/:id
func (h *WorkOrderHandler) GetWorkOrder(c *gin.Context) {
	wo, err := h.workOrderSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, wo)
}

// CreateWorkOrder 创建临时工单
// POST /api/v1/work-orders
func (h *WorkOrderHandler) CreateWorkOrder(c *gin.Context) {
	var req dto.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	wo, err := h.workOrderSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.Created(c, wo)
}

// TransitionWorkOrder 工单状态流转
// PUT /api/v1/work-orders/:id/status
func (h *WorkOrderHandler) TransitionWorkOrder(c *gin.Context) {
	var req dto.TransitionWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	wo, err := h.workOrderSvc.Transition(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, wo)
}

// ToggleChecklistItem 勾选 / 取消勾选检查项
// PUT /api/v1/work-orders/:id/checklist/:itemId
func (h *WorkOrderHandler) ToggleChecklistItem(c *gin.Context) {
	var req dto.ToggleChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	wo, err := h.workOrderSvc.ToggleChecklistItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), *req.Completed, actor)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, wo)
}

// DeleteWorkOrder 删除待处理工单
// DELETE /api/v1/work-orders/:id
func (h *WorkOrderHandler) DeleteWorkOrder(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.workOrderSvc.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListStatusLogs 工单状态流转记录
// GET /api/v1/work-orders/:id/status-logs
func (h *WorkOrderHandler) ListStatusLogs(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.workOrderSvc.ListStatusLogs(c.Request.Context(), c.Param("id"), &page)
	if err != nil {
		h.handleWorkOrderError(c, err)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

func (h *WorkOrderHandler) handleWorkOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkOrderNotFound):
		response.NotFound(c, 13101, err.Error())
	case errors.Is(err, service.ErrChecklistItemNotFound):
		response.NotFound(c, 13102, err.Error())
	case errors.Is(err, service.ErrWorkOrderStatusRace):
		response.Conflict(c, 13103, err.Error())
	case errors.Is(err, service.ErrWorkOrderLocked):
		response.BadRequest(c, 13104, err.Error())
	case errors.Is(err, service.ErrWorkOrderCodeTaken):
		response.Conflict(c, 13105, err.Error())
	default:
		writeKindError(c, err)
	}
}

// [自证通过] internal/api/handler/work_order_handler.go
