package handler

import (
	"context"

	"github.com/hitoshi/ems/internal/auth"
	"github.com/hitoshi/ems/internal/dashboard"
	"github.com/hitoshi/ems/internal/employee"
	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/user"
)

// EmployeeServiceAdapter は employee.Service を EmployeeServiceInterface に適合させるアダプタ。
type EmployeeServiceAdapter struct {
	svc *employee.Service
}

// NewEmployeeServiceAdapter はEmployeeServiceAdapterを生成する。
func NewEmployeeServiceAdapter(svc *employee.Service) *EmployeeServiceAdapter {
	return &EmployeeServiceAdapter{svc: svc}
}

// List は社員一覧をhandlerレスポンス型で返す。
func (a *EmployeeServiceAdapter) List(ctx context.Context, caller model.Caller, params employee.ListParams) (*employeeListResponse, error) {
	result, err := a.svc.List(ctx, caller, params)
	if err != nil {
		return nil, err
	}
	return &employeeListResponse{
		Employees: toEmployeeResponses(result.Employees),
		Pagination: paginationResponse{
			Page:  result.Pagination.Page,
			Limit: result.Pagination.Limit,
			Total: result.Pagination.Total,
			Pages: result.Pagination.Pages,
		},
	}, nil
}

// Get は社員を1件handlerレスポンス型で返す。
func (a *EmployeeServiceAdapter) Get(ctx context.Context, caller model.Caller, id string) (*employeeResponse, error) {
	e, err := a.svc.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(e)
	return &resp, nil
}

// Create は社員を作成しhandlerレスポンス型で返す。
func (a *EmployeeServiceAdapter) Create(ctx context.Context, caller model.Caller, in employee.CreateInput) (*employeeResponse, error) {
	e, err := a.svc.Create(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(e)
	return &resp, nil
}

// Update は社員を部分更新しhandlerレスポンス型で返す。
func (a *EmployeeServiceAdapter) Update(ctx context.Context, caller model.Caller, id string, in employee.UpdateInput) (*employeeResponse, error) {
	e, err := a.svc.Update(ctx, caller, id, in)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(e)
	return &resp, nil
}

// Delete は社員を削除する。
func (a *EmployeeServiceAdapter) Delete(ctx context.Context, caller model.Caller, id string) error {
	return a.svc.Delete(ctx, caller, id)
}

// DashboardServiceAdapter は dashboard.Service を DashboardServiceInterface に適合させるアダプタ。
type DashboardServiceAdapter struct {
	svc *dashboard.Service
}

// NewDashboardServiceAdapter はDashboardServiceAdapterを生成する。
func NewDashboardServiceAdapter(svc *dashboard.Service) *DashboardServiceAdapter {
	return &DashboardServiceAdapter{svc: svc}
}

// Stats はダッシュボード統計を返す。
func (a *DashboardServiceAdapter) Stats(ctx context.Context, caller model.Caller) (*dashboard.Stats, error) {
	return a.svc.Stats(ctx, caller)
}

// Chart はチャート用の集計を返す。
func (a *DashboardServiceAdapter) Chart(ctx context.Context, caller model.Caller) (*dashboard.Chart, error) {
	return a.svc.Chart(ctx, caller)
}

// Search は横断検索の結果をhandlerレスポンス型で返す。
func (a *DashboardServiceAdapter) Search(ctx context.Context, caller model.Caller, query, searchType string) (*searchResponse, error) {
	result, err := a.svc.Search(ctx, caller, query, searchType)
	if err != nil {
		return nil, err
	}

	resp := &searchResponse{}
	if result.Employees != nil {
		employees := toEmployeeResponses(result.Employees)
		resp.Employees = &employees
	}
	if result.Users != nil {
		users := result.Users
		resp.Users = &users
	}
	return resp, nil
}

// AuthServiceAdapter は auth.Service を AuthServiceInterface に適合させるアダプタ。
// Meでは本人の社員レコードも合わせて返すため employee.Service も参照する。
type AuthServiceAdapter struct {
	auth      *auth.Service
	employees *employee.Service
}

// NewAuthServiceAdapter はAuthServiceAdapterを生成する。
func NewAuthServiceAdapter(authSvc *auth.Service, employees *employee.Service) *AuthServiceAdapter {
	return &AuthServiceAdapter{auth: authSvc, employees: employees}
}

// Login はログインしhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) Login(ctx context.Context, email, password string) (*loginResponse, error) {
	res, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &loginResponse{User: toUserResponse(res.User), Token: res.Token}, nil
}

// Me は呼び出し元のユーザー情報と本人の社員レコードを返す。
func (a *AuthServiceAdapter) Me(ctx context.Context, caller model.Caller) (*meResponse, error) {
	u, err := a.auth.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	mine, err := a.employees.Mine(ctx, caller)
	if err != nil {
		return nil, err
	}

	resp := &meResponse{User: toUserResponse(u)}
	if mine != nil {
		e := toEmployeeResponse(mine)
		resp.Employee = &e
	}
	return resp, nil
}

// UserServiceAdapter は user.Service を UserServiceInterface に適合させるアダプタ。
type UserServiceAdapter struct {
	svc *user.Service
}

// NewUserServiceAdapter はUserServiceAdapterを生成する。
func NewUserServiceAdapter(svc *user.Service) *UserServiceAdapter {
	return &UserServiceAdapter{svc: svc}
}

// Create はユーザーを作成しhandlerレスポンス型で返す。
func (a *UserServiceAdapter) Create(ctx context.Context, caller model.Caller, in user.CreateInput) (*userResponse, error) {
	u, err := a.svc.Create(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// toEmployeeResponse はドメインのEmployeeをhandlerのレスポンス型に変換する。
// 配列フィールドは空でもnullではなく[]として返す。
func toEmployeeResponse(e *model.Employee) employeeResponse {
	resp := employeeResponse{
		ID:               e.ID,
		EmployeeID:       e.EmployeeID,
		User:             e.User,
		Department:       e.Department,
		Position:         e.Position,
		Salary:           e.Salary,
		HireDate:         e.HireDate,
		PhoneNumber:      e.PhoneNumber,
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
		Skills:           e.Skills,
		Education:        e.Education,
		Experience:       e.Experience,
		Status:           e.Status,
		Manager:          e.Manager,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if resp.User == nil {
		resp.User = &model.UserSummary{ID: e.UserID}
	}
	if resp.Manager == nil && e.ManagerID != nil {
		resp.Manager = &model.UserSummary{ID: *e.ManagerID}
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if resp.Education == nil {
		resp.Education = []model.Education{}
	}
	if resp.Experience == nil {
		resp.Experience = []model.Experience{}
	}
	return resp
}

func toEmployeeResponses(employees []*model.Employee) []employeeResponse {
	out := make([]employeeResponse, len(employees))
	for i, e := range employees {
		out[i] = toEmployeeResponse(e)
	}
	return out
}

// toUserResponse はドメインのUserをhandlerのレスポンス型に変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// --- compile-time interface checks ---

var _ EmployeeServiceInterface = (*EmployeeServiceAdapter)(nil)
var _ DashboardServiceInterface = (*DashboardServiceAdapter)(nil)
var _ AuthServiceInterface = (*AuthServiceAdapter)(nil)
var _ UserServiceInterface = (*UserServiceAdapter)(nil)
var _ DepartmentStatsProvider = (*dashboard.Service)(nil)
