// Package employee は社員レコードの参照・作成・更新・削除のドメインロジックを提供する。
// すべての操作はpolicyパッケージの判定を経由する。
package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/policy"
	"github.com/hitoshi/ems/internal/repository"
	"github.com/hitoshi/ems/internal/security"
)

// Service は社員レコードのサービス層。
type Service struct {
	employees repository.EmployeeRepository
	users     repository.UserRepository
	validator *Validator
	sanitizer security.TextSanitizer
	now       func() time.Time
	newID     func() string
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	employees repository.EmployeeRepository,
	users repository.UserRepository,
	validator *Validator,
	sanitizer security.TextSanitizer,
) *Service {
	return &Service{
		employees: employees,
		users:     users,
		validator: validator,
		sanitizer: sanitizer,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// notFoundFor は存在しないレコードへのアクセス時のエラーを返す。
// employeeロールにはレコードの存在を明かさないため、他人のレコードと同じ403を返す。
func notFoundFor(caller model.Caller) error {
	if caller.Role == model.RoleEmployee {
		return model.NewAccessDeniedError()
	}
	return model.NewEmployeeNotFoundError()
}

// load はIDで社員を取得する。不正な形式のIDはストアに問い合わせず未検出として扱う。
func (s *Service) load(ctx context.Context, caller model.Caller, id string) (*model.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFoundFor(caller)
	}
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("社員の取得に失敗しました: %w", err)
	}
	if e == nil {
		return nil, notFoundFor(caller)
	}
	return e, nil
}

// List は社員一覧をページネーション付きで返す。admin、managerのみ。
func (s *Service) List(ctx context.Context, caller model.Caller, params ListParams) (*ListResult, error) {
	if !policy.CanList(caller.Role) {
		return nil, model.NewAccessDeniedError()
	}

	page := params.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := model.EmployeeFilter{
		Department: model.Department(params.Department),
		Status:     model.EmployeeStatus(params.Status),
		Search:     strings.TrimSpace(params.Search),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	}

	var fields []model.FieldError
	if filter.Department != "" && !filter.Department.Valid() {
		fields = append(fields, model.FieldError{Field: "department", Message: "Invalid department"})
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fields = append(fields, model.FieldError{Field: "status", Message: "Invalid status"})
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	employees, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("社員一覧の取得に失敗しました: %w", err)
	}
	total, err := s.employees.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("社員数の取得に失敗しました: %w", err)
	}

	return &ListResult{
		Employees: employees,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// Get は社員を1件返す。
// employeeロールは自分のレコード以外に対して403を受け取る。
func (s *Service) Get(ctx context.Context, caller model.Caller, id string) (*model.Employee, error) {
	e, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewRecord(caller, e) {
		return nil, model.NewAccessDeniedError()
	}
	return e, nil
}

// Create は社員を作成する。admin、managerのみ。
// 入力検証、社員番号の重複、所有者の存在、上長の妥当性をすべて確認してから書き込む。
// 社員番号の重複確認は事前チェックであり、最終的な一意性はストアの一意インデックスが保証する。
func (s *Service) Create(ctx context.Context, caller model.Caller, in CreateInput) (*model.Employee, error) {
	if !policy.CanCreate(caller.Role) {
		return nil, model.NewAccessDeniedError()
	}

	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	// 必須チェックはサニタイズ後の値に対して行う
	in.Position = s.sanitizer.PlainText(in.Position)
	if in.Manager != nil && strings.TrimSpace(*in.Manager) == "" {
		in.Manager = nil
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.employees.FindByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("社員番号の確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateKeyError("Employee ID")
	}

	owner, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("所有者の確認に失敗しました: %w", err)
	}
	if owner == nil {
		return nil, model.NewFieldError("userId", "User not found")
	}

	if err := s.checkManager(ctx, in.Manager); err != nil {
		return nil, err
	}

	now := s.now()
	e := &model.Employee{
		ID:          s.newID(),
		EmployeeID:  in.EmployeeID,
		UserID:      in.UserID,
		Department:  in.Department,
		Position:    in.Position,
		Salary:      *in.Salary,
		HireDate:    now,
		PhoneNumber: in.PhoneNumber,
		Skills:      s.sanitizeSkills(in.Skills),
		Education:   in.Education,
		Experience:  in.Experience,
		Status:      model.StatusActive,
		ManagerID:   in.Manager,
		Notes:       s.sanitizer.Notes(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.HireDate != nil {
		e.HireDate = *in.HireDate
	}
	if in.Address != nil {
		e.Address = s.sanitizeAddress(*in.Address)
	}
	if in.EmergencyContact != nil {
		e.EmergencyContact = s.sanitizeEmergencyContact(*in.EmergencyContact)
	}
	if in.Status != "" {
		e.Status = in.Status
	}

	if err := s.employees.Create(ctx, e); err != nil {
		return nil, err
	}

	slog.Info("employee created",
		slog.String("id", e.ID),
		slog.String("employee_id", e.EmployeeID),
		slog.String("created_by", caller.UserID),
	)

	return s.reload(ctx, e)
}

// Update は社員を部分更新する。
// 呼び出し元のスコープ外のフィールドが1つでも含まれていれば、何も書き込まずに403を返す。
func (s *Service) Update(ctx context.Context, caller model.Caller, id string, in UpdateInput) (*model.Employee, error) {
	e, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	scope := policy.UpdateScopeFor(caller, e)
	if scope == policy.ScopeNone {
		return nil, model.NewAccessDeniedError()
	}
	if disallowed := scope.Disallowed(in.Fields); len(disallowed) > 0 {
		slog.Warn("update rejected: fields outside scope",
			slog.String("id", e.ID),
			slog.String("user_id", caller.UserID),
			slog.String("scope", scope.String()),
			slog.Any("fields", disallowed),
		)
		return nil, model.NewFieldNotPermittedError(disallowed)
	}

	if in.EmployeeID != nil {
		trimmed := strings.TrimSpace(*in.EmployeeID)
		in.EmployeeID = &trimmed
	}
	if in.Position != nil {
		sanitized := s.sanitizer.PlainText(*in.Position)
		in.Position = &sanitized
	}
	if in.Manager != nil && strings.TrimSpace(*in.Manager) == "" {
		in.Manager = nil
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	if in.EmployeeID != nil && *in.EmployeeID != e.EmployeeID {
		existing, err := s.employees.FindByEmployeeID(ctx, *in.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("社員番号の確認に失敗しました: %w", err)
		}
		if existing != nil && existing.ID != e.ID {
			return nil, model.NewDuplicateKeyError("Employee ID")
		}
	}
	if in.Has(policy.FieldManager) {
		if err := s.checkManager(ctx, in.Manager); err != nil {
			return nil, err
		}
	}

	s.apply(e, &in)
	e.UpdatedAt = s.now()

	if err := s.employees.Update(ctx, e); err != nil {
		return nil, err
	}

	slog.Info("employee updated",
		slog.String("id", e.ID),
		slog.String("updated_by", caller.UserID),
		slog.String("scope", scope.String()),
	)

	return s.reload(ctx, e)
}

// apply はリクエストに含まれていたフィールドのみをレコードに反映する。
func (s *Service) apply(e *model.Employee, in *UpdateInput) {
	if in.EmployeeID != nil {
		e.EmployeeID = *in.EmployeeID
	}
	if in.Department != nil {
		e.Department = *in.Department
	}
	if in.Position != nil {
		e.Position = *in.Position
	}
	if in.Salary != nil {
		e.Salary = *in.Salary
	}
	if in.HireDate != nil {
		e.HireDate = *in.HireDate
	}
	if in.PhoneNumber != nil {
		e.PhoneNumber = *in.PhoneNumber
	}
	if in.Has(policy.FieldAddress) {
		e.Address = model.Address{}
		if in.Address != nil {
			e.Address = s.sanitizeAddress(*in.Address)
		}
	}
	if in.Has(policy.FieldEmergencyContact) {
		e.EmergencyContact = model.EmergencyContact{}
		if in.EmergencyContact != nil {
			e.EmergencyContact = s.sanitizeEmergencyContact(*in.EmergencyContact)
		}
	}
	if in.Has(policy.FieldSkills) {
		e.Skills = s.sanitizeSkills(in.Skills)
	}
	if in.Has(policy.FieldEducation) {
		e.Education = in.Education
	}
	if in.Has(policy.FieldExperience) {
		e.Experience = in.Experience
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	if in.Has(policy.FieldManager) {
		e.ManagerID = in.Manager
		e.Manager = nil
	}
	if in.Notes != nil {
		e.Notes = s.sanitizer.Notes(*in.Notes)
	}
}

// Delete は社員を削除する。adminのみ。
func (s *Service) Delete(ctx context.Context, caller model.Caller, id string) error {
	if !policy.CanDelete(caller.Role) {
		return model.NewAccessDeniedError()
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.NewEmployeeNotFoundError()
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("employee deleted",
		slog.String("id", id),
		slog.String("deleted_by", caller.UserID),
	)
	return nil
}

// Mine は呼び出し元が所有する社員レコードを返す。存在しない場合はnilを返す。
func (s *Service) Mine(ctx context.Context, caller model.Caller) (*model.Employee, error) {
	e, err := s.employees.FindByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("自分の社員レコードの取得に失敗しました: %w", err)
	}
	return e, nil
}

// checkManager は上長参照が存在するmanagerまたはadminのユーザーを指すことを確認する。
func (s *Service) checkManager(ctx context.Context, managerID *string) error {
	if managerID == nil {
		return nil
	}
	m, err := s.users.FindByID(ctx, *managerID)
	if err != nil {
		return fmt.Errorf("上長の確認に失敗しました: %w", err)
	}
	if m == nil {
		return model.NewFieldError("manager", "Manager not found")
	}
	if m.Role != model.RoleManager && m.Role != model.RoleAdmin {
		return model.NewFieldError("manager", "Manager must have the manager or admin role")
	}
	return nil
}

// reload は書き込み後のレコードを所有者・上長情報付きで取得し直す。
func (s *Service) reload(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	fresh, err := s.employees.FindByID(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("社員の再取得に失敗しました: %w", err)
	}
	if fresh == nil {
		return e, nil
	}
	return fresh, nil
}

func (s *Service) sanitizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		if v := s.sanitizer.PlainText(sk); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) sanitizeAddress(a model.Address) model.Address {
	return model.Address{
		Street:  s.sanitizer.PlainText(a.Street),
		City:    s.sanitizer.PlainText(a.City),
		State:   s.sanitizer.PlainText(a.State),
		ZipCode: s.sanitizer.PlainText(a.ZipCode),
		Country: s.sanitizer.PlainText(a.Country),
	}
}

func (s *Service) sanitizeEmergencyContact(c model.EmergencyContact) model.EmergencyContact {
	return model.EmergencyContact{
		Name:         s.sanitizer.PlainText(c.Name),
		Relationship: s.sanitizer.PlainText(c.Relationship),
		Phone:        s.sanitizer.PlainText(c.Phone),
	}
}
