package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/ems/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// Errorは開発モードでのみ設定する内部エラーの詳細。
type ErrorResponseBody struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Code    string             `json:"code"`
	Errors  []model.FieldError `json:"errors,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// NewErrorResponseBody はAPIErrorからレスポンスボディを組み立てる。
// exposeDetailがtrueの場合のみ内部エラーの文字列を含める。
func NewErrorResponseBody(apiErr *model.APIError, exposeDetail bool) ErrorResponseBody {
	body := ErrorResponseBody{
		Success: false,
		Message: apiErr.Message,
		Code:    apiErr.Code,
		Errors:  apiErr.Fields,
	}
	if exposeDetail && apiErr.Err != nil {
		body.Error = apiErr.Err.Error()
	}
	return body
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// 内部エラーの詳細は含めない。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	WriteErrorBody(w, statusCode, NewErrorResponseBody(apiErr, false))
}

// WriteErrorBody は組み立て済みのエラーボディを書き込む。
func WriteErrorBody(w http.ResponseWriter, statusCode int, body ErrorResponseBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError,
		model.NewInternalError("Something went wrong!", nil))
}

// WriteNotFound はルート未定義時の404レスポンスを書き込む。
func WriteNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteErrorResponse(w, http.StatusNotFound, &model.APIError{
		Code:     "ROUTE_NOT_FOUND",
		Message:  "Route not found",
		Category: "system",
	})
}
