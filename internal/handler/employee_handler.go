package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ems/internal/employee"
	"github.com/hitoshi/ems/internal/middleware"
	"github.com/hitoshi/ems/internal/model"
)

// EmployeeServiceInterface は社員ハンドラーが必要とするサービスインターフェース。
type EmployeeServiceInterface interface {
	List(ctx context.Context, caller model.Caller, params employee.ListParams) (*employeeListResponse, error)
	Get(ctx context.Context, caller model.Caller, id string) (*employeeResponse, error)
	Create(ctx context.Context, caller model.Caller, in employee.CreateInput) (*employeeResponse, error)
	Update(ctx context.Context, caller model.Caller, id string, in employee.UpdateInput) (*employeeResponse, error)
	Delete(ctx context.Context, caller model.Caller, id string) error
}

// DepartmentStatsProvider は部署別集計を提供するインターフェース。
// dashboard.Serviceがそのまま満たす。
type DepartmentStatsProvider interface {
	DepartmentStats(ctx context.Context, caller model.Caller) ([]model.DepartmentStat, error)
}

// EmployeeWriteRecorder は社員レコードの書き込みを記録するインターフェース。
type EmployeeWriteRecorder interface {
	RecordEmployeeWrite(op string)
}

// employeeResponse は社員レコードのAPIレスポンス。
type employeeResponse struct {
	ID               string                 `json:"id"`
	EmployeeID       string                 `json:"employeeId"`
	User             *model.UserSummary     `json:"user"`
	Department       model.Department       `json:"department"`
	Position         string                 `json:"position"`
	Salary           float64                `json:"salary"`
	HireDate         time.Time              `json:"hireDate"`
	PhoneNumber      string                 `json:"phoneNumber"`
	Address          model.Address          `json:"address"`
	EmergencyContact model.EmergencyContact `json:"emergencyContact"`
	Skills           []string               `json:"skills"`
	Education        []model.Education      `json:"education"`
	Experience       []model.Experience     `json:"experience"`
	Status           model.EmployeeStatus   `json:"status"`
	Manager          *model.UserSummary     `json:"manager"`
	Notes            string                 `json:"notes"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// employeeListResponse は社員一覧のAPIレスポンス。
type employeeListResponse struct {
	Employees  []employeeResponse
	Pagination paginationResponse
}

// EmployeeHandler は社員レコードのHTTPハンドラー。
type EmployeeHandler struct {
	errorResponder
	service  EmployeeServiceInterface
	stats    DepartmentStatsProvider
	recorder EmployeeWriteRecorder
}

// NewEmployeeHandler はEmployeeHandlerを生成する。
func NewEmployeeHandler(service EmployeeServiceInterface, stats DepartmentStatsProvider, recorder EmployeeWriteRecorder, exposeErrorDetail bool) *EmployeeHandler {
	return &EmployeeHandler{
		errorResponder: errorResponder{exposeDetail: exposeErrorDetail},
		service:        service,
		stats:          stats,
		recorder:       recorder,
	}
}

// List は社員一覧を返す。
// GET /api/employees?page=&limit=&department=&status=&search=
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	q := r.URL.Query()
	params := employee.ListParams{
		Page:       queryInt(q.Get("page")),
		Limit:      queryInt(q.Get("limit")),
		Department: q.Get("department"),
		Status:     q.Get("status"),
		Search:     q.Get("search"),
	}

	result, err := h.service.List(r.Context(), caller, params)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success:    true,
		Data:       result.Employees,
		Pagination: &result.Pagination,
	})
}

// Get は社員を1件返す。
// GET /api/employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	e, err := h.service.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, e)
}

// Create は社員を作成する。
// POST /api/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var in employee.CreateInput
	if _, err := decodeObject(w, r, &in); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	e, err := h.service.Create(r.Context(), caller, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.recorder.RecordEmployeeWrite("create")
	writeJSON(w, http.StatusCreated, successResponse{
		Success: true,
		Data:    e,
		Message: "Employee created successfully",
	})
}

// Update は社員を部分更新する。ボディに含まれていたキーのみを変更対象とする。
// PUT /api/employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var in employee.UpdateInput
	fields, err := decodeObject(w, r, &in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	in.Fields = fields

	e, err := h.service.Update(r.Context(), caller, chi.URLParam(r, "id"), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.recorder.RecordEmployeeWrite("update")
	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Data:    e,
		Message: "Employee updated successfully",
	})
}

// Delete は社員を削除する。
// DELETE /api/employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	if err := h.service.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.recorder.RecordEmployeeWrite("delete")
	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Employee deleted successfully",
	})
}

// DepartmentStats は部署別の集計を返す。
// GET /api/employees/departments/stats
func (h *EmployeeHandler) DepartmentStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	stats, err := h.stats.DepartmentStats(r.Context(), caller)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if stats == nil {
		stats = []model.DepartmentStat{}
	}
	writeData(w, http.StatusOK, stats)
}

// queryInt はクエリパラメータを整数として解釈する。
// 不正な値は0を返し、サービス層の既定値に委ねる。
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
