package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ems/internal/dashboard"
	"github.com/hitoshi/ems/internal/employee"
	"github.com/hitoshi/ems/internal/middleware"
	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/user"
)

// --- モック定義 ---

// mockEmployeeService はEmployeeServiceInterfaceのモック実装。
type mockEmployeeService struct {
	listFn   func(ctx context.Context, caller model.Caller, params employee.ListParams) (*employeeListResponse, error)
	getFn    func(ctx context.Context, caller model.Caller, id string) (*employeeResponse, error)
	createFn func(ctx context.Context, caller model.Caller, in employee.CreateInput) (*employeeResponse, error)
	updateFn func(ctx context.Context, caller model.Caller, id string, in employee.UpdateInput) (*employeeResponse, error)
	deleteFn func(ctx context.Context, caller model.Caller, id string) error
}

func (m *mockEmployeeService) List(ctx context.Context, caller model.Caller, params employee.ListParams) (*employeeListResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, caller, params)
	}
	return &employeeListResponse{Employees: []employeeResponse{}}, nil
}

func (m *mockEmployeeService) Get(ctx context.Context, caller model.Caller, id string) (*employeeResponse, error) {
	if m.getFn != nil {
		return m.getFn(ctx, caller, id)
	}
	return nil, model.NewEmployeeNotFoundError()
}

func (m *mockEmployeeService) Create(ctx context.Context, caller model.Caller, in employee.CreateInput) (*employeeResponse, error) {
	if m.createFn != nil {
		return m.createFn(ctx, caller, in)
	}
	return &employeeResponse{}, nil
}

func (m *mockEmployeeService) Update(ctx context.Context, caller model.Caller, id string, in employee.UpdateInput) (*employeeResponse, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, caller, id, in)
	}
	return &employeeResponse{}, nil
}

func (m *mockEmployeeService) Delete(ctx context.Context, caller model.Caller, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, caller, id)
	}
	return nil
}

// mockDepartmentStats はDepartmentStatsProviderのモック実装。
type mockDepartmentStats struct {
	fn func(ctx context.Context, caller model.Caller) ([]model.DepartmentStat, error)
}

func (m *mockDepartmentStats) DepartmentStats(ctx context.Context, caller model.Caller) ([]model.DepartmentStat, error) {
	if m.fn != nil {
		return m.fn(ctx, caller)
	}
	return nil, nil
}

// mockDashboardService はDashboardServiceInterfaceのモック実装。
type mockDashboardService struct {
	statsFn  func(ctx context.Context, caller model.Caller) (*dashboard.Stats, error)
	chartFn  func(ctx context.Context, caller model.Caller) (*dashboard.Chart, error)
	searchFn func(ctx context.Context, caller model.Caller, query, searchType string) (*searchResponse, error)
}

func (m *mockDashboardService) Stats(ctx context.Context, caller model.Caller) (*dashboard.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, caller)
	}
	return &dashboard.Stats{}, nil
}

func (m *mockDashboardService) Chart(ctx context.Context, caller model.Caller) (*dashboard.Chart, error) {
	if m.chartFn != nil {
		return m.chartFn(ctx, caller)
	}
	return &dashboard.Chart{}, nil
}

func (m *mockDashboardService) Search(ctx context.Context, caller model.Caller, query, searchType string) (*searchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, caller, query, searchType)
	}
	return &searchResponse{}, nil
}

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginFn func(ctx context.Context, email, password string) (*loginResponse, error)
	meFn    func(ctx context.Context, caller model.Caller) (*meResponse, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*loginResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, model.NewInvalidCredentialsError()
}

func (m *mockAuthService) Me(ctx context.Context, caller model.Caller) (*meResponse, error) {
	if m.meFn != nil {
		return m.meFn(ctx, caller)
	}
	return &meResponse{User: userResponse{ID: caller.UserID, Role: caller.Role}}, nil
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	createFn func(ctx context.Context, caller model.Caller, in user.CreateInput) (*userResponse, error)
}

func (m *mockUserService) Create(ctx context.Context, caller model.Caller, in user.CreateInput) (*userResponse, error) {
	if m.createFn != nil {
		return m.createFn(ctx, caller, in)
	}
	return &userResponse{Username: in.Username, Email: in.Email, Role: in.Role}, nil
}

// recordingMetrics はmetrics.MetricsCollectorの記録用実装。
type recordingMetrics struct {
	mu          sync.Mutex
	logins      []bool
	writes      []string
	rateLimited []string
	routes      []string
}

func (m *recordingMetrics) RecordHTTPRequest(method, route string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, method+" "+route)
}

func (m *recordingMetrics) RecordLogin(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, success)
}

func (m *recordingMetrics) RecordRateLimited(limitType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimited = append(m.rateLimited, limitType)
}

func (m *recordingMetrics) RecordEmployeeWrite(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, op)
}

// --- テストヘルパー ---

var (
	adminCaller    = model.Caller{UserID: "00000000-0000-0000-0000-00000000000a", Role: model.RoleAdmin}
	managerCaller  = model.Caller{UserID: "00000000-0000-0000-0000-00000000000b", Role: model.RoleManager}
	employeeCaller = model.Caller{UserID: "00000000-0000-0000-0000-00000000000c", Role: model.RoleEmployee}
)

// withCaller はテスト用にリクエストコンテキストに呼び出し元を注入するヘルパー。
func withCaller(r *http.Request, caller model.Caller) *http.Request {
	return r.WithContext(middleware.ContextWithCaller(r.Context(), caller))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// decodeJSON はレスポンスボディをmapとしてパースするヘルパー。
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v\nraw: %s", err, w.Body.String())
	}
	return result
}

// assertErrorCode はエラーレスポンスのステータスとコードを検証するヘルパー。
func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d (body: %s)", w.Code, status, w.Body.String())
	}
	body := decodeJSON(t, w)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["code"] != code {
		t.Errorf("code = %v, want %s", body["code"], code)
	}
	return body
}

// errorFields はエラーレスポンスのerrors配列からフィールド名を取り出す。
func errorFields(body map[string]any) []string {
	raw, _ := body["errors"].([]any)
	fields := make([]string, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			if f, ok := m["field"].(string); ok {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
