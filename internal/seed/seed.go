// Package seed は初期データ（サンプルユーザーと社員レコード）の投入を提供する。
//
// 既に存在するユーザー（メールアドレス）と社員（社員番号）はスキップするため、繰り返し実行できる。
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/ems/internal/employee"
	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/user"
)

// UserFinder はメールアドレスでユーザーを引くインターフェース。
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// EmployeeFinder は社員番号で社員を引くインターフェース。
type EmployeeFinder interface {
	FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error)
}

// UserProvisioner は権限判定なしでユーザーを作成するインターフェース。user.Serviceが満たす。
type UserProvisioner interface {
	Provision(ctx context.Context, in user.CreateInput) (*model.User, error)
}

// EmployeeCreator は社員を作成するインターフェース。employee.Serviceが満たす。
type EmployeeCreator interface {
	Create(ctx context.Context, caller model.Caller, in employee.CreateInput) (*model.Employee, error)
}

// Options は投入内容の指定。
type Options struct {
	// Demo はデモ用の追加社員（入社日付き）とその所有ユーザーも投入する。
	Demo bool
}

// Result は投入結果の件数。
type Result struct {
	UsersCreated     int
	UsersSkipped     int
	EmployeesCreated int
	EmployeesSkipped int
}

// Seeder は初期データを投入する。
type Seeder struct {
	users        UserFinder
	employees    EmployeeFinder
	provisioner  UserProvisioner
	creator      EmployeeCreator
	demoPassword string
}

// NewSeeder はSeederを生成する。
func NewSeeder(users UserFinder, employees EmployeeFinder, provisioner UserProvisioner, creator EmployeeCreator) *Seeder {
	return &Seeder{
		users:        users,
		employees:    employees,
		provisioner:  provisioner,
		creator:      creator,
		demoPassword: "employee123",
	}
}

// Run はサンプルユーザーと社員レコードを投入する。
// 社員はadminとして作成するため、入力検証・上長の妥当性確認はAPI経由と同じ規則で行われる。
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	created := make(map[model.Role]*model.User, len(sampleUsers))
	for _, in := range sampleUsers {
		u, err := s.ensureUser(ctx, in, res)
		if err != nil {
			return nil, err
		}
		created[u.Role] = u
	}

	admin := model.Caller{UserID: created[model.RoleAdmin].ID, Role: model.RoleAdmin}
	managerID := created[model.RoleManager].ID

	// 社員レコードはadmin以外のユーザーに紐付ける
	owners := []*model.User{created[model.RoleManager], created[model.RoleEmployee]}
	for i, owner := range owners {
		in := sampleEmployees[i].input(owner.ID, managerID)
		if err := s.ensureEmployee(ctx, admin, in, res); err != nil {
			return nil, err
		}
	}

	if opts.Demo {
		for _, d := range demoEmployees {
			owner, err := s.ensureUser(ctx, d.owner(s.demoPassword), res)
			if err != nil {
				return nil, err
			}
			if err := s.ensureEmployee(ctx, admin, d.input(owner.ID, managerID), res); err != nil {
				return nil, err
			}
		}
	}

	slog.Info("seed completed",
		slog.Int("users_created", res.UsersCreated),
		slog.Int("users_skipped", res.UsersSkipped),
		slog.Int("employees_created", res.EmployeesCreated),
		slog.Int("employees_skipped", res.EmployeesSkipped),
		slog.Bool("demo", opts.Demo),
	)
	return res, nil
}

func (s *Seeder) ensureUser(ctx context.Context, in user.CreateInput, res *Result) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの確認に失敗しました (%s): %w", in.Email, err)
	}
	if existing != nil {
		res.UsersSkipped++
		return existing, nil
	}

	u, err := s.provisioner.Provision(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました (%s): %w", in.Email, err)
	}
	res.UsersCreated++
	slog.Info("seed user created", slog.String("email", u.Email), slog.String("role", string(u.Role)))
	return u, nil
}

func (s *Seeder) ensureEmployee(ctx context.Context, admin model.Caller, in employee.CreateInput, res *Result) error {
	existing, err := s.employees.FindByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return fmt.Errorf("社員の確認に失敗しました (%s): %w", in.EmployeeID, err)
	}
	if existing != nil {
		res.EmployeesSkipped++
		return nil
	}

	e, err := s.creator.Create(ctx, admin, in)
	if err != nil {
		return fmt.Errorf("社員の作成に失敗しました (%s): %w", in.EmployeeID, err)
	}
	res.EmployeesCreated++
	slog.Info("seed employee created",
		slog.String("employee_id", e.EmployeeID),
		slog.String("department", string(e.Department)),
	)
	return nil
}

// Reset は社員とユーザーをすべて削除する。
func Reset(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE employees, users`); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	slog.Warn("seed reset: all employees and users deleted")
	return nil
}

// --- サンプルデータ ---

var sampleUsers = []user.CreateInput{
	{Username: "admin", Email: "admin@ems.com", Password: "admin123", FirstName: "System", LastName: "Administrator", Role: model.RoleAdmin},
	{Username: "manager", Email: "manager@ems.com", Password: "manager123", FirstName: "John", LastName: "Manager", Role: model.RoleManager},
	{Username: "employee", Email: "employee@ems.com", Password: "employee123", FirstName: "Jane", LastName: "Employee", Role: model.RoleEmployee},
}

type sampleEmployee struct {
	EmployeeID string
	Department model.Department
	Position   string
	Salary     float64
	Phone      string
	Address    model.Address
	Skills     []string
	HireDate   string // YYYY-MM-DD。空の場合は作成時刻
}

func (se sampleEmployee) input(ownerID, managerID string) employee.CreateInput {
	salary := se.Salary
	addr := se.Address
	in := employee.CreateInput{
		EmployeeID:  se.EmployeeID,
		UserID:      ownerID,
		Department:  se.Department,
		Position:    se.Position,
		Salary:      &salary,
		PhoneNumber: se.Phone,
		Address:     &addr,
		Skills:      se.Skills,
		Status:      model.StatusActive,
		Manager:     &managerID,
	}
	if se.HireDate != "" {
		if t, err := time.Parse(time.DateOnly, se.HireDate); err == nil {
			in.HireDate = &t
		}
	}
	return in
}

// owner はデモ社員の所有者となるユーザーの入力を返す。
// 所有者は社員1人につき1ユーザーのため、社員番号からユーザーを作る。
func (se sampleEmployee) owner(password string) user.CreateInput {
	id := strings.ToLower(se.EmployeeID)
	return user.CreateInput{
		Username:  id,
		Email:     id + "@ems.com",
		Password:  password,
		FirstName: "Demo",
		LastName:  se.EmployeeID,
		Role:      model.RoleEmployee,
	}
}

var sampleEmployees = []sampleEmployee{
	{
		EmployeeID: "EMP001", Department: model.DepartmentIT, Position: "Software Developer", Salary: 75000,
		Phone:   "+1234567890",
		Address: model.Address{Street: "123 Tech Street", City: "Tech City", State: "TC", ZipCode: "12345", Country: "USA"},
		Skills:  []string{"JavaScript", "React", "Node.js"},
	},
	{
		EmployeeID: "EMP002", Department: model.DepartmentHR, Position: "HR Specialist", Salary: 60000,
		Phone:   "+1234567891",
		Address: model.Address{Street: "456 HR Avenue", City: "HR City", State: "HR", ZipCode: "12346", Country: "USA"},
		Skills:  []string{"Recruitment", "Employee Relations", "HRIS"},
	},
}

var demoEmployees = []sampleEmployee{
	{
		EmployeeID: "EMP003", Department: model.DepartmentFinance, Position: "Financial Analyst", Salary: 65000,
		Phone:   "+1234567892",
		Address: model.Address{Street: "789 Finance Blvd", City: "Finance City", State: "FC", ZipCode: "12347", Country: "USA"},
		Skills:  []string{"Financial Analysis", "Excel", "Accounting"},
	},
	{
		EmployeeID: "EMP005", Department: model.DepartmentSales, Position: "Sales Representative", Salary: 45000,
		Phone:    "+1234567894",
		Address:  model.Address{Street: "654 Sales Avenue", City: "Sales City", State: "SC", ZipCode: "12349", Country: "USA"},
		Skills:   []string{"Sales", "Customer Relations", "CRM"},
		HireDate: "2024-02-01",
	},
	{
		EmployeeID: "EMP006", Department: model.DepartmentEngineering, Position: "DevOps Engineer", Salary: 85000,
		Phone:    "+1234567895",
		Address:  model.Address{Street: "987 Engineering Blvd", City: "Engineering City", State: "EC", ZipCode: "12350", Country: "USA"},
		Skills:   []string{"Docker", "Kubernetes", "AWS", "CI/CD"},
		HireDate: "2024-01-20",
	},
	{
		EmployeeID: "EMP007", Department: model.DepartmentOperations, Position: "Operations Manager", Salary: 70000,
		Phone:    "+1234567896",
		Address:  model.Address{Street: "147 Operations Street", City: "Operations City", State: "OC", ZipCode: "12351", Country: "USA"},
		Skills:   []string{"Process Management", "Team Leadership", "Project Management"},
		HireDate: "2024-02-15",
	},
}
