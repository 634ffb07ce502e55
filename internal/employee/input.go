package employee

import (
	"time"

	"github.com/hitoshi/ems/internal/model"
)

// CreateInput は社員作成リクエストの入力。
type CreateInput struct {
	EmployeeID       string                  `json:"employeeId" validate:"required,max=50"`
	UserID           string                  `json:"userId" validate:"required,uuid"`
	Department       model.Department        `json:"department" validate:"required,department"`
	Position         string                  `json:"position" validate:"required,max=255"`
	Salary           *float64                `json:"salary" validate:"required,gte=0,lte=9999999999.99"`
	HireDate         *time.Time              `json:"hireDate"`
	PhoneNumber      string                  `json:"phoneNumber" validate:"required,phone"`
	Address          *model.Address          `json:"address"`
	EmergencyContact *model.EmergencyContact `json:"emergencyContact"`
	Skills           []string                `json:"skills" validate:"omitempty,dive,max=100"`
	Education        []model.Education       `json:"education" validate:"omitempty,dive"`
	Experience       []model.Experience      `json:"experience" validate:"omitempty,dive"`
	Status           model.EmployeeStatus    `json:"status" validate:"omitempty,empstatus"`
	Manager          *string                 `json:"manager" validate:"omitempty,uuid"`
	Notes            string                  `json:"notes" validate:"max=5000"`
}

// UpdateInput は社員更新リクエストの入力（部分更新）。
// Fieldsにはリクエストボディに含まれていたキーを保持し、
// ロールごとの許可リスト判定と差分適用に使う。
type UpdateInput struct {
	Fields []string `json:"-"`

	EmployeeID       *string                 `json:"employeeId" validate:"omitempty,min=1,max=50"`
	Department       *model.Department       `json:"department" validate:"omitempty,department"`
	Position         *string                 `json:"position" validate:"omitempty,min=1,max=255"`
	Salary           *float64                `json:"salary" validate:"omitempty,gte=0,lte=9999999999.99"`
	HireDate         *time.Time              `json:"hireDate"`
	PhoneNumber      *string                 `json:"phoneNumber" validate:"omitempty,phone"`
	Address          *model.Address          `json:"address"`
	EmergencyContact *model.EmergencyContact `json:"emergencyContact"`
	Skills           []string                `json:"skills" validate:"omitempty,dive,max=100"`
	Education        []model.Education       `json:"education" validate:"omitempty,dive"`
	Experience       []model.Experience      `json:"experience" validate:"omitempty,dive"`
	Status           *model.EmployeeStatus   `json:"status" validate:"omitempty,empstatus"`
	Manager          *string                 `json:"manager" validate:"omitempty,uuid"`
	Notes            *string                 `json:"notes" validate:"omitempty,max=5000"`
}

// Has はリクエストに指定フィールドが含まれていたかどうかを返す。
func (in *UpdateInput) Has(field string) bool {
	for _, f := range in.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ListParams は社員一覧の取得条件。
type ListParams struct {
	Page       int
	Limit      int
	Department string
	Status     string
	Search     string
}

// ページネーションの既定値と上限
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination はページネーション情報。
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListResult は社員一覧の取得結果。
type ListResult struct {
	Employees  []*model.Employee
	Pagination Pagination
}
