package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/ems/internal/model"
)

// PostgresStatsRepo はPostgreSQLの集計クエリでダッシュボード統計を返す。
// 読み取りのみを行い、現在のレコード集合に対して毎回計算する。
type PostgresStatsRepo struct {
	db *sql.DB
}

// NewPostgresStatsRepo はPostgresStatsRepoを生成する。
func NewPostgresStatsRepo(db *sql.DB) *PostgresStatsRepo {
	return &PostgresStatsRepo{db: db}
}

// DepartmentStats は在籍中の社員を部署ごとに集計する。
func (r *PostgresStatsRepo) DepartmentStats(ctx context.Context) ([]model.DepartmentStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT department, count(*), avg(salary)::float8, sum(salary)::float8
		 FROM employees
		 WHERE status = 'active'
		 GROUP BY department
		 ORDER BY count(*) DESC, department ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate departments: %w", err)
	}
	defer rows.Close()

	stats := []model.DepartmentStat{}
	for rows.Next() {
		var s model.DepartmentStat
		var department string
		if err := rows.Scan(&department, &s.Count, &s.AvgSalary, &s.TotalSalary); err != nil {
			return nil, fmt.Errorf("failed to scan department stat: %w", err)
		}
		s.Department = model.Department(department)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate department stats: %w", err)
	}
	return stats, nil
}

// StatusStats は全社員を在籍状態ごとに集計する。
func (r *PostgresStatsRepo) StatusStats(ctx context.Context) ([]model.StatusStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, count(*) FROM employees GROUP BY status ORDER BY status ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate statuses: %w", err)
	}
	defer rows.Close()

	stats := []model.StatusStat{}
	for rows.Next() {
		var s model.StatusStat
		var status string
		if err := rows.Scan(&status, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status stat: %w", err)
		}
		s.Status = model.EmployeeStatus(status)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status stats: %w", err)
	}
	return stats, nil
}

// MonthlyHires は全社員を入社年月（UTC）ごとに集計する。
func (r *PostgresStatsRepo) MonthlyHires(ctx context.Context) ([]model.MonthlyHire, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT EXTRACT(YEAR FROM hire_date AT TIME ZONE 'UTC')::int AS year,
		        EXTRACT(MONTH FROM hire_date AT TIME ZONE 'UTC')::int AS month,
		        count(*)
		 FROM employees
		 GROUP BY year, month
		 ORDER BY year ASC, month ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly hires: %w", err)
	}
	defer rows.Close()

	hires := []model.MonthlyHire{}
	for rows.Next() {
		var h model.MonthlyHire
		if err := rows.Scan(&h.Year, &h.Month, &h.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly hire: %w", err)
		}
		hires = append(hires, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly hires: %w", err)
	}
	return hires, nil
}

// SalaryCounts は在籍中の社員を給与額ごとに集計する。
// バケットへの振り分けは呼び出し側で行う。
func (r *PostgresStatsRepo) SalaryCounts(ctx context.Context) ([]model.SalaryCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT salary::float8, count(*)
		 FROM employees
		 WHERE status = 'active'
		 GROUP BY salary
		 ORDER BY salary ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate salaries: %w", err)
	}
	defer rows.Close()

	counts := []model.SalaryCount{}
	for rows.Next() {
		var c model.SalaryCount
		if err := rows.Scan(&c.Salary, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan salary count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary counts: %w", err)
	}
	return counts, nil
}

// RecentHires は在籍中の社員を入社日の新しい順にlimit件返す。
func (r *PostgresStatsRepo) RecentHires(ctx context.Context, limit int) ([]model.RecentHire, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.employee_id, e.department, e.position, e.hire_date,
		        u.id, u.first_name, u.last_name
		 FROM employees e
		 JOIN users u ON u.id = e.user_id
		 WHERE e.status = 'active'
		 ORDER BY e.hire_date DESC, e.id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent hires: %w", err)
	}
	defer rows.Close()

	hires := []model.RecentHire{}
	for rows.Next() {
		var h model.RecentHire
		var department string
		var hireDate time.Time
		owner := &model.UserSummary{}
		if err := rows.Scan(&h.ID, &h.EmployeeID, &department, &h.Position, &hireDate,
			&owner.ID, &owner.FirstName, &owner.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan recent hire: %w", err)
		}
		h.Department = model.Department(department)
		h.HireDate = hireDate.UTC().Format(time.RFC3339)
		h.User = owner
		hires = append(hires, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent hires: %w", err)
	}
	return hires, nil
}

// compile-time interface check
var _ StatsRepository = (*PostgresStatsRepo)(nil)
