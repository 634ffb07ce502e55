package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hitoshi/ems/internal/model"
)

func TestPostgresStatsRepo_ImplementsInterface(t *testing.T) {
	var _ StatsRepository = (*PostgresStatsRepo)(nil)
}

func TestPostgresStatsRepo_DepartmentStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY count(*) DESC, department ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"department", "count", "avg", "sum"}).
			AddRow("IT", 3, 80000.0, 240000.0).
			AddRow("HR", 1, 50000.0, 50000.0))

	stats, err := NewPostgresStatsRepo(db).DepartmentStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.DepartmentStat{
		{Department: model.DepartmentIT, Count: 3, AvgSalary: 80000, TotalSalary: 240000},
		{Department: model.DepartmentHR, Count: 1, AvgSalary: 50000, TotalSalary: 50000},
	}
	if len(stats) != len(want) {
		t.Fatalf("len(stats) = %d, want %d", len(stats), len(want))
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], want[i])
		}
	}
}

func TestPostgresStatsRepo_StatusStats_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))

	stats, err := NewPostgresStatsRepo(db).StatusStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats == nil || len(stats) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", stats)
	}
}

func TestPostgresStatsRepo_MonthlyHires(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY year ASC, month ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"year", "month", "count"}).
			AddRow(2023, 12, 2).
			AddRow(2024, 1, 1))

	hires, err := NewPostgresStatsRepo(db).MonthlyHires(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hires) != 2 || hires[0] != (model.MonthlyHire{Year: 2023, Month: 12, Count: 2}) {
		t.Errorf("hires = %+v", hires)
	}
}

func TestPostgresStatsRepo_SalaryCounts_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	dbErr := errors.New("boom")
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY salary")).WillReturnError(dbErr)

	_, err = NewPostgresStatsRepo(db).SalaryCounts(context.Background())
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped %v, got %v", dbErr, err)
	}
}

func TestPostgresStatsRepo_RecentHires(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hire := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY e.hire_date DESC")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "department", "position", "hire_date", "uid", "first_name", "last_name"}).
			AddRow("e-1", "EMP001", "Sales", "Rep", hire, "u-1", "Sam", "Seller"))

	hires, err := NewPostgresStatsRepo(db).RecentHires(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hires) != 1 {
		t.Fatalf("len(hires) = %d, want 1", len(hires))
	}
	if hires[0].HireDate != "2024-02-10T09:00:00Z" {
		t.Errorf("HireDate = %q", hires[0].HireDate)
	}
	if hires[0].User == nil || hires[0].User.FirstName != "Sam" {
		t.Errorf("User = %+v", hires[0].User)
	}
}
