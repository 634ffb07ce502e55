package model

import (
	"fmt"
	"sort"
	"strings"
)

// FieldError はフィールド単位のバリデーションエラー。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError は統一エラーフォーマットを表す。
// Errには内部エラーを保持し、開発モードでのみレスポンスに含める。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: auth, validation, employee, system
	Fields   []FieldError // フィールド単位の詳細（任意）
	Err      error
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は内部エラーを返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// HasField は指定フィールドのエラーを含むかどうかを返す。
func (e *APIError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// 定義済みエラーコード
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeDuplicateKey      = "DUPLICATE_KEY"
	ErrCodeAccessDenied      = "ACCESS_DENIED"
	ErrCodeFieldNotPermitted = "FIELD_NOT_PERMITTED"
	ErrCodeEmployeeNotFound  = "EMPLOYEE_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInvalidCredential = "INVALID_CREDENTIALS"
	ErrCodeQueryRequired     = "QUERY_REQUIRED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
// フィールドはメッセージの安定性のため名前順に並べる。
func NewValidationError(fields []FieldError) *APIError {
	sorted := make([]FieldError, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Field < sorted[j].Field })

	names := make([]string, len(sorted))
	for i, f := range sorted {
		names[i] = f.Field
	}
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Validation errors: %s", strings.Join(names, ", ")),
		Category: "validation",
		Fields:   sorted,
	}
}

// NewFieldError は単一フィールドのバリデーションエラーを生成する。
func NewFieldError(field, message string) *APIError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewDuplicateKeyError は一意制約違反エラーを生成する。
func NewDuplicateKeyError(what string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateKey,
		Message:  fmt.Sprintf("%s already exists", what),
		Category: "validation",
	}
}

// NewAccessDeniedError は権限不足エラーを生成する。
func NewAccessDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodeAccessDenied,
		Message:  "Access denied",
		Category: "auth",
	}
}

// NewFieldNotPermittedError はロールに許可されていないフィールドの更新エラーを生成する。
func NewFieldNotPermittedError(fields []string) *APIError {
	fe := make([]FieldError, len(fields))
	for i, f := range fields {
		fe[i] = FieldError{Field: f, Message: "not permitted for this role"}
	}
	return &APIError{
		Code:     ErrCodeFieldNotPermitted,
		Message:  fmt.Sprintf("Access denied: cannot update %s", strings.Join(fields, ", ")),
		Category: "auth",
		Fields:   fe,
	}
}

// NewEmployeeNotFoundError は社員レコード未検出エラーを生成する。
func NewEmployeeNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeEmployeeNotFound,
		Message:  "Employee not found",
		Category: "employee",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  message,
		Category: "auth",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredential,
		Message:  "Invalid credentials",
		Category: "auth",
	}
}

// NewQueryRequiredError は検索クエリ未指定エラーを生成する。
func NewQueryRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeQueryRequired,
		Message:  "Search query is required",
		Category: "validation",
		Fields:   []FieldError{{Field: "query", Message: "query required"}},
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
	}
}

// NewInternalError は内部エラーを生成する。
// messageは利用者向けの汎用メッセージ、errは開発モードでのみ公開する詳細。
func NewInternalError(message string, err error) *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  message,
		Category: "system",
		Err:      err,
	}
}
