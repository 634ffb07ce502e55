package model

// DepartmentStat は部署ごとの集計結果。
type DepartmentStat struct {
	Department  Department `json:"department"`
	Count       int        `json:"count"`
	AvgSalary   float64    `json:"avgSalary"`
	TotalSalary float64    `json:"totalSalary"`
}

// StatusStat は在籍状態ごとの件数。
type StatusStat struct {
	Status EmployeeStatus `json:"status"`
	Count  int            `json:"count"`
}

// MonthlyHire は入社年月ごとの件数。
type MonthlyHire struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// SalaryCount は給与額ごとの件数。ヒストグラム計算の入力に使う。
type SalaryCount struct {
	Salary float64
	Count  int
}

// RecentHire は最近入社した社員の要約。
type RecentHire struct {
	ID         string       `json:"id"`
	EmployeeID string       `json:"employeeId"`
	Department Department   `json:"department"`
	Position   string       `json:"position"`
	HireDate   string       `json:"hireDate"`
	User       *UserSummary `json:"user,omitempty"`
}
