package model

import "time"

// Department は社員の所属部署を表す。
type Department string

const (
	DepartmentIT          Department = "IT"
	DepartmentHR          Department = "HR"
	DepartmentFinance     Department = "Finance"
	DepartmentMarketing   Department = "Marketing"
	DepartmentSales       Department = "Sales"
	DepartmentOperations  Department = "Operations"
	DepartmentEngineering Department = "Engineering"
)

// Departments は部署の固定列挙。
var Departments = []Department{
	DepartmentIT,
	DepartmentHR,
	DepartmentFinance,
	DepartmentMarketing,
	DepartmentSales,
	DepartmentOperations,
	DepartmentEngineering,
}

// Valid は部署が固定列挙に含まれるかどうかを返す。
func (d Department) Valid() bool {
	for _, v := range Departments {
		if v == d {
			return true
		}
	}
	return false
}

// EmployeeStatus は社員の在籍状態を表す。
type EmployeeStatus string

const (
	StatusActive     EmployeeStatus = "active"
	StatusInactive   EmployeeStatus = "inactive"
	StatusTerminated EmployeeStatus = "terminated"
	StatusOnLeave    EmployeeStatus = "on-leave"
)

// Valid は状態が定義済みの値かどうかを返す。
func (s EmployeeStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTerminated, StatusOnLeave:
		return true
	default:
		return false
	}
}

// Address は住所。すべて任意項目。
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// EmergencyContact は緊急連絡先。
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// Education は学歴の1件。
type Education struct {
	Degree      string `json:"degree,omitempty"`
	Institution string `json:"institution,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// Experience は職歴の1件。
type Experience struct {
	Company     string `json:"company,omitempty"`
	Position    string `json:"position,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Employee は社員レコードを表す。
// UserIDの指すユーザーがレコードの所有者（Owner）となる。
type Employee struct {
	ID               string
	EmployeeID       string
	UserID           string
	Department       Department
	Position         string
	Salary           float64
	HireDate         time.Time
	PhoneNumber      string
	Address          Address
	EmergencyContact EmergencyContact
	Skills           []string
	Education        []Education
	Experience       []Experience
	Status           EmployeeStatus
	ManagerID        *string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// 参照時にJOINで埋められる情報。書き込みには使わない。
	User    *UserSummary
	Manager *UserSummary
}

// EmployeeFilter は社員一覧の絞り込み条件。
type EmployeeFilter struct {
	Department Department
	Status     EmployeeStatus
	Search     string
	Offset     int
	Limit      int
}
