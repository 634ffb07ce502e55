package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/ems/internal/model"
)

// PostgresEmployeeRepo はPostgreSQLを使用した社員リポジトリ。
// 住所・緊急連絡先・学歴・職歴はJSONB、スキルはtext[]で保存する。
type PostgresEmployeeRepo struct {
	db *sql.DB
}

// NewPostgresEmployeeRepo はPostgresEmployeeRepoを生成する。
func NewPostgresEmployeeRepo(db *sql.DB) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{db: db}
}

// employeeSelect は所有者と上長をJOINした社員取得クエリの共通部分。
const employeeSelect = `
	SELECT e.id, e.employee_id, e.user_id, e.department, e.position, e.salary,
	       e.hire_date, e.phone_number, e.address, e.emergency_contact, e.skills,
	       e.education, e.experience, e.status, e.manager_id, e.notes,
	       e.created_at, e.updated_at,
	       u.first_name, u.last_name, u.email, u.username, u.role,
	       m.first_name, m.last_name
	FROM employees e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN users m ON m.id = e.manager_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*model.Employee, error) {
	e := &model.Employee{}
	owner := &model.UserSummary{}
	var department, status, ownerRole string
	var address, emergency, education, experience []byte
	var managerID, managerFirst, managerLast sql.NullString

	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.UserID, &department, &e.Position, &e.Salary,
		&e.HireDate, &e.PhoneNumber, &address, &emergency, pq.Array(&e.Skills),
		&education, &experience, &status, &managerID, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
		&owner.FirstName, &owner.LastName, &owner.Email, &owner.Username, &ownerRole,
		&managerFirst, &managerLast,
	)
	if err != nil {
		return nil, err
	}

	e.Department = model.Department(department)
	e.Status = model.EmployeeStatus(status)
	owner.ID = e.UserID
	owner.Role = model.Role(ownerRole)
	e.User = owner

	if managerID.Valid {
		id := managerID.String
		e.ManagerID = &id
		if managerFirst.Valid {
			e.Manager = &model.UserSummary{ID: id, FirstName: managerFirst.String, LastName: managerLast.String}
		}
	}

	if err := unmarshalJSONColumn(address, &e.Address); err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	if err := unmarshalJSONColumn(emergency, &e.EmergencyContact); err != nil {
		return nil, fmt.Errorf("emergency_contact: %w", err)
	}
	if err := unmarshalJSONColumn(education, &e.Education); err != nil {
		return nil, fmt.Errorf("education: %w", err)
	}
	if err := unmarshalJSONColumn(experience, &e.Experience); err != nil {
		return nil, fmt.Errorf("experience: %w", err)
	}
	if e.Skills == nil {
		e.Skills = []string{}
	}

	return e, nil
}

func unmarshalJSONColumn(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

// employeeDocuments はJSONB列に書き込む値をまとめて生成する。
type employeeDocuments struct {
	address, emergency, education, experience []byte
	skills                                    []string
}

func marshalEmployeeDocuments(e *model.Employee) (*employeeDocuments, error) {
	docs := &employeeDocuments{skills: e.Skills}
	if docs.skills == nil {
		docs.skills = []string{}
	}

	education := e.Education
	if education == nil {
		education = []model.Education{}
	}
	experience := e.Experience
	if experience == nil {
		experience = []model.Experience{}
	}

	var err error
	if docs.address, err = json.Marshal(e.Address); err != nil {
		return nil, fmt.Errorf("failed to marshal address: %w", err)
	}
	if docs.emergency, err = json.Marshal(e.EmergencyContact); err != nil {
		return nil, fmt.Errorf("failed to marshal emergency contact: %w", err)
	}
	if docs.education, err = json.Marshal(education); err != nil {
		return nil, fmt.Errorf("failed to marshal education: %w", err)
	}
	if docs.experience, err = json.Marshal(experience); err != nil {
		return nil, fmt.Errorf("failed to marshal experience: %w", err)
	}
	return docs, nil
}

func (r *PostgresEmployeeRepo) findOne(ctx context.Context, where string, arg any) (*model.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, employeeSelect+` WHERE `+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindByID は指定IDの社員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	e, err := r.findOne(ctx, `e.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}
	return e, nil
}

// FindByEmployeeID は社員番号で社員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error) {
	e, err := r.findOne(ctx, `e.employee_id = $1`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by employee ID: %w", err)
	}
	return e, nil
}

// FindByUserID は所有者のユーザーIDで社員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByUserID(ctx context.Context, userID string) (*model.Employee, error) {
	e, err := r.findOne(ctx, `e.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by user ID: %w", err)
	}
	return e, nil
}

// buildEmployeeFilter はフィルタ条件からWHERE句と引数を組み立てる。
func buildEmployeeFilter(filter model.EmployeeFilter) (string, []any) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if filter.Department != "" {
		args = append(args, string(filter.Department))
		conditions = append(conditions, "e.department = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, "e.status = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		p := "$" + strconv.Itoa(len(args))
		conditions = append(conditions, "(e.employee_id ILIKE "+p+" OR e.position ILIKE "+p+")")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List はフィルタ条件に一致する社員をcreated_at降順で返す。
func (r *PostgresEmployeeRepo) List(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error) {
	where, args := buildEmployeeFilter(filter)

	args = append(args, filter.Limit)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := employeeSelect + where +
		` ORDER BY e.created_at DESC, e.id DESC LIMIT ` + limitPlaceholder + ` OFFSET ` + offsetPlaceholder

	return r.queryEmployees(ctx, "list", query, args...)
}

// Count はフィルタ条件に一致する社員数を返す。
func (r *PostgresEmployeeRepo) Count(ctx context.Context, filter model.EmployeeFilter) (int, error) {
	where, args := buildEmployeeFilter(filter)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM employees e`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

// Search は社員番号・役職・部署の部分一致で社員を検索する。
func (r *PostgresEmployeeRepo) Search(ctx context.Context, query string, limit int) ([]*model.Employee, error) {
	return r.queryEmployees(ctx, "search",
		employeeSelect+`
		WHERE e.employee_id ILIKE $1 OR e.position ILIKE $1 OR e.department ILIKE $1
		ORDER BY e.created_at DESC
		LIMIT $2`,
		containsPattern(query), limit,
	)
}

func (r *PostgresEmployeeRepo) queryEmployees(ctx context.Context, op, query string, args ...any) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s employees: %w", op, err)
	}
	defer rows.Close()

	employees := []*model.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

// Create は社員を作成する。
func (r *PostgresEmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	docs, err := marshalEmployeeDocuments(e)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO employees (
			id, employee_id, user_id, department, position, salary, hire_date,
			phone_number, address, emergency_contact, skills, education, experience,
			status, manager_id, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		e.ID, e.EmployeeID, e.UserID, string(e.Department), e.Position, e.Salary, e.HireDate,
		e.PhoneNumber, docs.address, docs.emergency, pq.Array(docs.skills), docs.education, docs.experience,
		string(e.Status), nullableString(e.ManagerID), e.Notes, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if dup := translateUniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

// Update は社員レコード全体を上書き更新する。
func (r *PostgresEmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	docs, err := marshalEmployeeDocuments(e)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE employees SET
			employee_id = $1, department = $2, position = $3, salary = $4, hire_date = $5,
			phone_number = $6, address = $7, emergency_contact = $8, skills = $9,
			education = $10, experience = $11, status = $12, manager_id = $13,
			notes = $14, updated_at = $15
		 WHERE id = $16`,
		e.EmployeeID, string(e.Department), e.Position, e.Salary, e.HireDate,
		e.PhoneNumber, docs.address, docs.emergency, pq.Array(docs.skills),
		docs.education, docs.experience, string(e.Status), nullableString(e.ManagerID),
		e.Notes, e.UpdatedAt, e.ID,
	)
	if err != nil {
		if dup := translateUniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewEmployeeNotFoundError()
	}
	return nil
}

// Delete は指定IDの社員を削除する。
func (r *PostgresEmployeeRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewEmployeeNotFoundError()
	}
	return nil
}

// compile-time interface check
var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)
