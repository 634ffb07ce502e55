package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/ems/internal/middleware"
	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Create はユーザーアカウントを作成する。adminのみ。
	Create(ctx context.Context, caller model.Caller, in user.CreateInput) (*userResponse, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	errorResponder
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, exposeErrorDetail bool) *UserHandler {
	return &UserHandler{
		errorResponder: errorResponder{exposeDetail: exposeErrorDetail},
		service:        service,
	}
}

// Create はユーザーアカウントを作成する。
// POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var in user.CreateInput
	if _, err := decodeObject(w, r, &in); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	u, err := h.service.Create(r.Context(), caller, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, successResponse{
		Success: true,
		Data:    u,
		Message: "User created successfully",
	})
}
