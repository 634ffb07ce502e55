package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/ems/internal/model"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// uniqueIndexSubjects は一意インデックス名とエラーメッセージの主語の対応。
var uniqueIndexSubjects = map[string]string{
	"idx_users_username":        "Username",
	"idx_users_email":           "Email",
	"idx_employees_employee_id": "Employee ID",
	"idx_employees_user_id":     "Employee record for this user",
}

// translateUniqueViolation は一意制約違反をDUPLICATE_KEYエラーに変換する。
// それ以外のエラーはnilを返す。
func translateUniqueViolation(err error) *model.APIError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolationCode {
		return nil
	}
	subject, ok := uniqueIndexSubjects[pqErr.Constraint]
	if !ok {
		subject = "Record"
	}
	apiErr := model.NewDuplicateKeyError(subject)
	apiErr.Err = err
	return apiErr
}

// likeEscaper はLIKEのワイルドカードをリテラルとして扱うためのエスケープ。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern は部分一致検索用のILIKEパターンを返す。
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// nullableString は空文字をNULLとして扱う。
func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
