package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/ems/internal/dashboard"
	"github.com/hitoshi/ems/internal/middleware"
	"github.com/hitoshi/ems/internal/model"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	Stats(ctx context.Context, caller model.Caller) (*dashboard.Stats, error)
	Chart(ctx context.Context, caller model.Caller) (*dashboard.Chart, error)
	Search(ctx context.Context, caller model.Caller, query, searchType string) (*searchResponse, error)
}

// searchResponse は横断検索のAPIレスポンス。検索しなかった種別のキーは含めない。
type searchResponse struct {
	Employees *[]employeeResponse  `json:"employees,omitempty"`
	Users     *[]model.UserSummary `json:"users,omitempty"`
}

// DashboardHandler はダッシュボードのHTTPハンドラー。
type DashboardHandler struct {
	errorResponder
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface, exposeErrorDetail bool) *DashboardHandler {
	return &DashboardHandler{
		errorResponder: errorResponder{exposeDetail: exposeErrorDetail},
		service:        service,
	}
}

// Stats はロールに応じたダッシュボード統計を返す。
// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	stats, err := h.service.Stats(r.Context(), caller)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// Chart はチャート用の集計を返す。
// GET /api/dashboard/employees/chart
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	chart, err := h.service.Chart(r.Context(), caller)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, chart)
}

// Search は社員とユーザーを横断検索する。
// GET /api/dashboard/search?query=&type=
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	q := r.URL.Query()
	result, err := h.service.Search(r.Context(), caller, q.Get("query"), q.Get("type"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
