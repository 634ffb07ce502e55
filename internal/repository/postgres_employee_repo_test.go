package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/hitoshi/ems/internal/model"
)

func TestPostgresEmployeeRepo_ImplementsInterface(t *testing.T) {
	var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)
}

var employeeRowColumns = []string{
	"id", "employee_id", "user_id", "department", "position", "salary",
	"hire_date", "phone_number", "address", "emergency_contact", "skills",
	"education", "experience", "status", "manager_id", "notes",
	"created_at", "updated_at",
	"first_name", "last_name", "email", "username", "role",
	"first_name", "last_name",
}

func employeeRow(rows *sqlmock.Rows, id, employeeID, userID string, managerID any) *sqlmock.Rows {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var managerFirst, managerLast any
	if managerID != nil {
		managerFirst, managerLast = "Mary", "Manager"
	}
	return rows.AddRow(
		id, employeeID, userID, "IT", "Developer", 75000.0,
		now, "+15551234567",
		[]byte(`{"city":"Tokyo"}`), []byte(`{"name":"Jane","phone":"+15550000000"}`), []byte(`{go,sql}`),
		[]byte(`[{"degree":"BSc","institution":"Uni","year":2015}]`), []byte(`[]`),
		"active", managerID, "",
		now, now,
		"John", "Doe", "john@example.com", "john", "employee",
		managerFirst, managerLast,
	)
}

func TestPostgresEmployeeRepo_FindByID_PopulatesNestedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1")).
		WithArgs("e-1").
		WillReturnRows(employeeRow(sqlmock.NewRows(employeeRowColumns), "e-1", "EMP001", "u-1", "m-1"))

	e, err := NewPostgresEmployeeRepo(db).FindByID(context.Background(), "e-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e == nil {
		t.Fatal("expected employee, got nil")
	}
	if e.Department != model.DepartmentIT {
		t.Errorf("Department = %q, want %q", e.Department, model.DepartmentIT)
	}
	if e.Address.City != "Tokyo" {
		t.Errorf("Address.City = %q, want %q", e.Address.City, "Tokyo")
	}
	if e.EmergencyContact.Name != "Jane" {
		t.Errorf("EmergencyContact.Name = %q, want %q", e.EmergencyContact.Name, "Jane")
	}
	if len(e.Skills) != 2 || e.Skills[0] != "go" {
		t.Errorf("Skills = %v, want [go sql]", e.Skills)
	}
	if len(e.Education) != 1 || e.Education[0].Year != 2015 {
		t.Errorf("Education = %+v", e.Education)
	}
	if e.User == nil || e.User.ID != "u-1" || e.User.FirstName != "John" {
		t.Errorf("User = %+v", e.User)
	}
	if e.ManagerID == nil || *e.ManagerID != "m-1" {
		t.Errorf("ManagerID = %v, want m-1", e.ManagerID)
	}
	if e.Manager == nil || e.Manager.LastName != "Manager" {
		t.Errorf("Manager = %+v", e.Manager)
	}
}

func TestPostgresEmployeeRepo_FindByID_NotFoundReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(employeeRowColumns))

	e, err := NewPostgresEmployeeRepo(db).FindByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil, got %+v", e)
	}
}

func TestPostgresEmployeeRepo_List_BuildsFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.department = $1 AND e.status = $2 AND (e.employee_id ILIKE $3 OR e.position ILIKE $3) ORDER BY e.created_at DESC, e.id DESC LIMIT $4 OFFSET $5")).
		WithArgs("IT", "active", "%dev%", 10, 20).
		WillReturnRows(employeeRow(sqlmock.NewRows(employeeRowColumns), "e-1", "EMP001", "u-1", nil))

	list, err := NewPostgresEmployeeRepo(db).List(context.Background(), model.EmployeeFilter{
		Department: model.DepartmentIT,
		Status:     model.StatusActive,
		Search:     "dev",
		Offset:     20,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].ManagerID != nil || list[0].Manager != nil {
		t.Errorf("expected no manager, got %v / %+v", list[0].ManagerID, list[0].Manager)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresEmployeeRepo_Count_NoFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`^SELECT count\(\*\) FROM employees e$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := NewPostgresEmployeeRepo(db).Count(context.Background(), model.EmployeeFilter{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("count = %d, want 42", count)
	}
}

func TestPostgresEmployeeRepo_Search_MatchesDepartment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("e.department ILIKE $1")).
		WithArgs("%eng%", 10).
		WillReturnRows(sqlmock.NewRows(employeeRowColumns))

	list, err := NewPostgresEmployeeRepo(db).Search(context.Background(), "eng", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", list)
	}
}

func TestPostgresEmployeeRepo_Create_DuplicateEmployeeID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_employees_employee_id"})

	err = NewPostgresEmployeeRepo(db).Create(context.Background(), &model.Employee{
		ID: "e-1", EmployeeID: "EMP001", UserID: "u-1",
		Department: model.DepartmentIT, Status: model.StatusActive,
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeDuplicateKey {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateKey)
	}
	if apiErr.Message != "Employee ID already exists" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestPostgresEmployeeRepo_Create_WritesEmptyCollections(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hire := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees")).
		WithArgs(
			"e-1", "EMP001", "u-1", "IT", "Developer", 50000.0, hire,
			"", []byte(`{}`), []byte(`{}`), "{}", []byte(`[]`), []byte(`[]`),
			"active", nil, "", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresEmployeeRepo(db).Create(context.Background(), &model.Employee{
		ID: "e-1", EmployeeID: "EMP001", UserID: "u-1",
		Department: model.DepartmentIT, Position: "Developer", Salary: 50000,
		HireDate: hire, Status: model.StatusActive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresEmployeeRepo_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresEmployeeRepo(db).Delete(context.Background(), "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmployeeNotFound {
		t.Errorf("expected EMPLOYEE_NOT_FOUND, got %v", err)
	}
}

func TestPostgresEmployeeRepo_Update_Succeeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	manager := "m-1"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresEmployeeRepo(db).Update(context.Background(), &model.Employee{
		ID: "e-1", EmployeeID: "EMP001", Department: model.DepartmentHR,
		Skills: []string{"excel"}, ManagerID: &manager, Status: model.StatusOnLeave,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dev", "%dev%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\path`, `%c:\\path%`},
	}
	for _, tt := range tests {
		if got := containsPattern(tt.in); got != tt.want {
			t.Errorf("containsPattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
