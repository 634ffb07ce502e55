// Package dashboard はダッシュボード向けの集計と横断検索を提供する。
// 集計は毎回現在のレコード集合に対して計算し、結果を保持しない。
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/policy"
	"github.com/hitoshi/ems/internal/repository"
)

// 横断検索の種別
const (
	SearchTypeEmployees = "employees"
	SearchTypeUsers     = "users"
)

// SearchLimit は検索結果の種別ごとの最大件数。
const SearchLimit = 10

// RecentHiresLimit はダッシュボードに表示する最近の入社者数。
const RecentHiresLimit = 5

// EmployeeInfo はemployeeロール向けの自分の所属情報。
type EmployeeInfo struct {
	Department model.Department `json:"department"`
	Position   string           `json:"position"`
	HireDate   time.Time        `json:"hireDate"`
	Salary     float64          `json:"salary"`
}

// Stats はロールごとに形が変わるダッシュボード統計。
// 集計を含む場合は、件数が0でも集計の3つのキーをそろえて[]で出力する。
type Stats struct {
	TotalEmployees  int
	TotalUsers      int
	DepartmentStats []model.DepartmentStat
	StatusStats     []model.StatusStat
	RecentHires     []model.RecentHire
	EmployeeInfo    *EmployeeInfo

	aggregates bool
}

type statsJSON struct {
	TotalEmployees  int                     `json:"totalEmployees"`
	TotalUsers      int                     `json:"totalUsers"`
	DepartmentStats *[]model.DepartmentStat `json:"departmentStats,omitempty"`
	StatusStats     *[]model.StatusStat     `json:"statusStats,omitempty"`
	RecentHires     *[]model.RecentHire     `json:"recentHires,omitempty"`
	EmployeeInfo    *EmployeeInfo           `json:"employeeInfo,omitempty"`
}

// HasAggregates は部署別・状態別の集計と最近の入社者を含むかどうかを返す。
func (s Stats) HasAggregates() bool {
	return s.aggregates || s.DepartmentStats != nil || s.StatusStats != nil || s.RecentHires != nil
}

// MarshalJSON はロールに応じた形でJSONに変換する。
func (s Stats) MarshalJSON() ([]byte, error) {
	out := statsJSON{
		TotalEmployees: s.TotalEmployees,
		TotalUsers:     s.TotalUsers,
		EmployeeInfo:   s.EmployeeInfo,
	}
	if s.HasAggregates() {
		departments := orEmpty(s.DepartmentStats)
		statuses := orEmpty(s.StatusStats)
		recent := orEmpty(s.RecentHires)
		out.DepartmentStats = &departments
		out.StatusStats = &statuses
		out.RecentHires = &recent
	}
	return json.Marshal(out)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// DepartmentCount はチャート用の部署別件数。
type DepartmentCount struct {
	Department model.Department `json:"department"`
	Count      int              `json:"count"`
}

// Chart はチャート表示用の集計結果。
type Chart struct {
	MonthlyHires           []model.MonthlyHire `json:"monthlyHires"`
	DepartmentDistribution []DepartmentCount   `json:"departmentDistribution"`
	SalaryRanges           []SalaryBucket      `json:"salaryRanges"`
}

// SearchResult は横断検索の結果。指定しなかった種別はnilのまま。
type SearchResult struct {
	Employees []*model.Employee
	Users     []model.UserSummary
}

// Service はダッシュボード集計のサービス層。
type Service struct {
	stats     repository.StatsRepository
	employees repository.EmployeeRepository
	users     repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(stats repository.StatsRepository, employees repository.EmployeeRepository, users repository.UserRepository) *Service {
	return &Service{stats: stats, employees: employees, users: users}
}

// Stats はロールに応じたダッシュボード統計を返す。
// admin、managerには部署別・状態別の集計と最近の入社者、
// employeeには自分の所属情報のみを含める。
func (s *Service) Stats(ctx context.Context, caller model.Caller) (*Stats, error) {
	totalEmployees, err := s.employees.Count(ctx, model.EmployeeFilter{Status: model.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("在籍社員数の取得に失敗しました: %w", err)
	}
	totalUsers, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("有効ユーザー数の取得に失敗しました: %w", err)
	}

	stats := &Stats{TotalEmployees: totalEmployees, TotalUsers: totalUsers}

	if policy.CanViewAggregates(caller.Role) {
		stats.aggregates = true
		if stats.DepartmentStats, err = s.stats.DepartmentStats(ctx); err != nil {
			return nil, fmt.Errorf("部署別集計に失敗しました: %w", err)
		}
		if stats.StatusStats, err = s.stats.StatusStats(ctx); err != nil {
			return nil, fmt.Errorf("状態別集計に失敗しました: %w", err)
		}
		if stats.RecentHires, err = s.stats.RecentHires(ctx, RecentHiresLimit); err != nil {
			return nil, fmt.Errorf("最近の入社者の取得に失敗しました: %w", err)
		}
		return stats, nil
	}

	if caller.Role == model.RoleEmployee {
		mine, err := s.employees.FindByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("自分の社員レコードの取得に失敗しました: %w", err)
		}
		if mine != nil {
			stats.EmployeeInfo = &EmployeeInfo{
				Department: mine.Department,
				Position:   mine.Position,
				HireDate:   mine.HireDate,
				Salary:     mine.Salary,
			}
		}
	}
	return stats, nil
}

// DepartmentStats は在籍社員の部署別集計（件数・平均給与・給与合計）を返す。
func (s *Service) DepartmentStats(ctx context.Context, caller model.Caller) ([]model.DepartmentStat, error) {
	if !policy.CanViewAggregates(caller.Role) {
		return nil, model.NewAccessDeniedError()
	}
	stats, err := s.stats.DepartmentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("部署別集計に失敗しました: %w", err)
	}
	return stats, nil
}

// Chart は入社推移・部署分布・給与ヒストグラムを返す。
func (s *Service) Chart(ctx context.Context, caller model.Caller) (*Chart, error) {
	if !policy.CanViewAggregates(caller.Role) {
		return nil, model.NewAccessDeniedError()
	}

	hires, err := s.stats.MonthlyHires(ctx)
	if err != nil {
		return nil, fmt.Errorf("入社推移の集計に失敗しました: %w", err)
	}
	departments, err := s.stats.DepartmentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("部署分布の集計に失敗しました: %w", err)
	}
	salaries, err := s.stats.SalaryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("給与分布の集計に失敗しました: %w", err)
	}

	distribution := make([]DepartmentCount, len(departments))
	for i, d := range departments {
		distribution[i] = DepartmentCount{Department: d.Department, Count: d.Count}
	}

	return &Chart{
		MonthlyHires:           hires,
		DepartmentDistribution: distribution,
		SalaryRanges:           SalaryHistogram(salaries),
	}, nil
}

// Search は社員とユーザーを横断検索する。
// クエリが空の場合はストアに問い合わせる前にQUERY_REQUIREDを返す。
// 未知の種別はどちらも検索せず、空の結果を返す。
func (s *Service) Search(ctx context.Context, caller model.Caller, query, searchType string) (*SearchResult, error) {
	if !policy.CanSearch(caller.Role) {
		return nil, model.NewAccessDeniedError()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.NewQueryRequiredError()
	}
	result := &SearchResult{}
	if searchType == "" || searchType == SearchTypeEmployees {
		employees, err := s.employees.Search(ctx, query, SearchLimit)
		if err != nil {
			return nil, fmt.Errorf("社員の検索に失敗しました: %w", err)
		}
		result.Employees = employees
	}
	if searchType == "" || searchType == SearchTypeUsers {
		users, err := s.users.Search(ctx, query, SearchLimit)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
		}
		result.Users = users
	}
	return result, nil
}
