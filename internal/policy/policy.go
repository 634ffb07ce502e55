// Package policy は社員レコードへの操作可否を判定するアクセスポリシーを提供する。
//
// 判定はロールと所有関係のみから毎リクエスト行い、結果はキャッシュしない。
// ハンドラとサービスは操作ごとに1つの判定関数を呼ぶ。
package policy

import (
	"sort"

	"github.com/hitoshi/ems/internal/model"
)

func isPrivileged(role model.Role) bool {
	return role == model.RoleAdmin || role == model.RoleManager
}

// CanList は社員一覧の取得可否を返す。
func CanList(role model.Role) bool {
	return isPrivileged(role)
}

// CanViewRecord は社員レコードの参照可否を返す。
// admin、managerは全件、employeeは自分が所有するレコードのみ参照できる。
func CanViewRecord(caller model.Caller, record *model.Employee) bool {
	if isPrivileged(caller.Role) {
		return true
	}
	return record != nil && caller.UserID != "" && record.UserID == caller.UserID
}

// CanCreate は社員レコードの作成可否を返す。
func CanCreate(role model.Role) bool {
	return isPrivileged(role)
}

// CanUpdate は社員レコードの更新可否を返す。
// 更新できるフィールドの範囲はUpdateScopeForで判定する。
func CanUpdate(caller model.Caller, record *model.Employee) bool {
	return UpdateScopeFor(caller, record) != ScopeNone
}

// CanDelete は社員レコードの削除可否を返す。adminのみ。
func CanDelete(role model.Role) bool {
	return role == model.RoleAdmin
}

// CanSearch は横断検索の実行可否を返す。
func CanSearch(role model.Role) bool {
	return isPrivileged(role)
}

// CanViewAggregates は集計データの参照可否を返す。
func CanViewAggregates(role model.Role) bool {
	return isPrivileged(role)
}

// CanCreateUser はユーザーアカウントの作成可否を返す。adminのみ。
func CanCreateUser(role model.Role) bool {
	return role == model.RoleAdmin
}

// UpdateScope は更新リクエストで変更してよいフィールドの範囲を表す。
type UpdateScope int

const (
	// ScopeNone は更新不可。
	ScopeNone UpdateScope = iota
	// ScopeFull はすべての更新可能フィールドを変更できる（admin、manager）。
	ScopeFull
	// ScopeSelf は本人の連絡先・経歴フィールドのみ変更できる。
	ScopeSelf
)

// 更新リクエストのフィールド名（JSONキー）
const (
	FieldEmployeeID       = "employeeId"
	FieldDepartment       = "department"
	FieldPosition         = "position"
	FieldSalary           = "salary"
	FieldHireDate         = "hireDate"
	FieldPhoneNumber      = "phoneNumber"
	FieldAddress          = "address"
	FieldEmergencyContact = "emergencyContact"
	FieldSkills           = "skills"
	FieldEducation        = "education"
	FieldExperience       = "experience"
	FieldStatus           = "status"
	FieldManager          = "manager"
	FieldNotes            = "notes"
)

var fullFields = map[string]struct{}{
	FieldEmployeeID:       {},
	FieldDepartment:       {},
	FieldPosition:         {},
	FieldSalary:           {},
	FieldHireDate:         {},
	FieldPhoneNumber:      {},
	FieldAddress:          {},
	FieldEmergencyContact: {},
	FieldSkills:           {},
	FieldEducation:        {},
	FieldExperience:       {},
	FieldStatus:           {},
	FieldManager:          {},
	FieldNotes:            {},
}

var selfFields = map[string]struct{}{
	FieldPhoneNumber:      {},
	FieldAddress:          {},
	FieldEmergencyContact: {},
	FieldSkills:           {},
	FieldEducation:        {},
	FieldExperience:       {},
}

// UpdateScopeFor は呼び出し元がレコードを更新する際のスコープを返す。
func UpdateScopeFor(caller model.Caller, record *model.Employee) UpdateScope {
	if isPrivileged(caller.Role) {
		return ScopeFull
	}
	if caller.Role == model.RoleEmployee && CanViewRecord(caller, record) {
		return ScopeSelf
	}
	return ScopeNone
}

// Allows はフィールドがスコープ内で更新可能かどうかを返す。
func (s UpdateScope) Allows(field string) bool {
	switch s {
	case ScopeFull:
		_, ok := fullFields[field]
		return ok
	case ScopeSelf:
		_, ok := selfFields[field]
		return ok
	default:
		return false
	}
}

// Disallowed はスコープ外のフィールドを名前順で返す。
// 1件でもあればリクエスト全体を拒否し、何も書き込まない。
func (s UpdateScope) Disallowed(fields []string) []string {
	var out []string
	for _, f := range fields {
		if !s.Allows(f) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// String はログ出力用の名前を返す。
func (s UpdateScope) String() string {
	switch s {
	case ScopeFull:
		return "full"
	case ScopeSelf:
		return "self"
	default:
		return "none"
	}
}
