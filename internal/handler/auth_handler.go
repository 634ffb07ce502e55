package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/ems/internal/middleware"
	"github.com/hitoshi/ems/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はメールアドレスとパスワードを検証し、ユーザーとアクセストークンを返す。
	Login(ctx context.Context, email, password string) (*loginResponse, error)
	// Me は呼び出し元のユーザー情報と、存在すれば本人の社員レコードを返す。
	Me(ctx context.Context, caller model.Caller) (*meResponse, error)
}

// LoginRecorder はログイン試行の結果を記録するインターフェース。
type LoginRecorder interface {
	RecordLogin(success bool)
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      model.Role `json:"role"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
}

// loginResponse はログイン成功時のAPIレスポンス。
type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// meResponse は呼び出し元のユーザー情報のAPIレスポンス。
type meResponse struct {
	User     userResponse      `json:"user"`
	Employee *employeeResponse `json:"employee"`
}

// AuthHandler はログインと呼び出し元情報のHTTPハンドラー。
type AuthHandler struct {
	errorResponder
	service  AuthServiceInterface
	recorder LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, recorder LoginRecorder, exposeErrorDetail bool) *AuthHandler {
	return &AuthHandler{
		errorResponder: errorResponder{exposeDetail: exposeErrorDetail},
		service:        service,
		recorder:       recorder,
	}
}

// Login はアクセストークンを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if _, err := decodeObject(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recorder.RecordLogin(false)
		h.handleServiceError(w, r, err)
		return
	}

	h.recorder.RecordLogin(true)
	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Data:    res,
		Message: "Login successful",
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	me, err := h.service.Me(r.Context(), caller)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, me)
}
