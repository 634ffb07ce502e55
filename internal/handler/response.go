// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/ems/internal/middleware"
	"github.com/hitoshi/ems/internal/model"
)

// successResponse は成功時の統一レスポンス。
type successResponse struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

// paginationResponse はページネーション情報のAPIレスポンス。
type paginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeData はdataを持つ成功レスポンスを書き込む。
func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, successResponse{Success: true, Data: data})
}

// errorResponder はサービス層のエラーを統一エラーフォーマットに変換する。
// exposeDetailがtrueの場合（開発モード）のみ内部エラーの詳細を返す。
type errorResponder struct {
	exposeDetail bool
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func (e errorResponder) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code != model.ErrCodeInternal {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteErrorBody(w, http.StatusInternalServerError,
		middleware.NewErrorResponseBody(model.NewInternalError("Server error", err), e.exposeDetail))
}

// unauthorized は呼び出し元がコンテキストにない場合の401を書き込む。
func unauthorized(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusUnauthorized,
		model.NewUnauthorizedError("No token, authorization denied"))
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeDuplicateKey, model.ErrCodeQueryRequired:
		return http.StatusBadRequest
	case model.ErrCodeAccessDenied, model.ErrCodeFieldNotPermitted:
		return http.StatusForbidden
	case model.ErrCodeEmployeeNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredential:
		return http.StatusUnauthorized
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
