// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/ems/internal/model"
)

// UserRepository はユーザー（Identity）の永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// username、emailの重複はDUPLICATE_KEYエラーとして返す。
	Create(ctx context.Context, user *model.User) error

	// CountActive は有効なユーザー数を返す。
	CountActive(ctx context.Context) (int, error)

	// Search は氏名・メールアドレス・ユーザー名の部分一致でユーザーを検索する。
	// 大文字小文字は区別しない。
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
}

// EmployeeRepository は社員レコードの永続化インターフェース。
// 取得系は所有者と上長のユーザー情報をJOINして返す。
type EmployeeRepository interface {
	// FindByID は指定IDの社員を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Employee, error)

	// FindByEmployeeID は社員番号で社員を取得する。見つからない場合はnilを返す。
	FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error)

	// FindByUserID は所有者のユーザーIDで社員を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Employee, error)

	// List はフィルタ条件に一致する社員をcreated_at降順で返す。
	List(ctx context.Context, filter model.EmployeeFilter) ([]*model.Employee, error)

	// Count はフィルタ条件に一致する社員数を返す。Offset、Limitは無視する。
	Count(ctx context.Context, filter model.EmployeeFilter) (int, error)

	// Search は社員番号・役職・部署の部分一致で社員を検索する。
	Search(ctx context.Context, query string, limit int) ([]*model.Employee, error)

	// Create は社員を作成する。
	// employee_id、user_idの重複はDUPLICATE_KEYエラーとして返す。
	Create(ctx context.Context, employee *model.Employee) error

	// Update は社員レコード全体を上書き更新する。
	Update(ctx context.Context, employee *model.Employee) error

	// Delete は指定IDの社員を削除する。
	// 対象が存在しない場合はEMPLOYEE_NOT_FOUNDエラーを返す。
	Delete(ctx context.Context, id string) error
}

// StatsRepository はダッシュボード集計用の読み取り専用インターフェース。
type StatsRepository interface {
	// DepartmentStats は在籍中（active）の社員を部署ごとに集計する。
	// 件数降順、同数の場合は部署名昇順で返す。
	DepartmentStats(ctx context.Context) ([]model.DepartmentStat, error)

	// StatusStats は全社員を在籍状態ごとに集計する。状態名昇順で返す。
	StatusStats(ctx context.Context) ([]model.StatusStat, error)

	// MonthlyHires は全社員を入社年月ごとに集計する。年月昇順で返す。
	MonthlyHires(ctx context.Context) ([]model.MonthlyHire, error)

	// SalaryCounts は在籍中の社員を給与額ごとに集計する。
	SalaryCounts(ctx context.Context) ([]model.SalaryCount, error)

	// RecentHires は在籍中の社員を入社日の新しい順にlimit件返す。
	RecentHires(ctx context.Context, limit int) ([]model.RecentHire, error)
}
