// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/ems/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// callerContextKey はリクエストコンテキストに認証済みの呼び出し元を格納するためのキー。
var callerContextKey = contextKey("caller")

// Authenticator はBearerトークンから呼び出し元を復元するインターフェース。
// auth.Serviceが実装する。
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Caller, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 呼び出し元（ユーザーIDとロール）をリクエストコンテキストに注入するミドルウェアを返す。
// 未認証リクエストには401を返す。
func NewAuthMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized,
					model.NewUnauthorizedError("No token, authorization denied"))
				return
			}

			// 2. トークンとユーザーの有効性を検証
			caller, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) {
					WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
					return
				}
				slog.Error("failed to authenticate request",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			// 3. 呼び出し元をコンテキストに注入
			recordCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), caller)))
		})
	}
}

// bearerToken は"Bearer <token>"形式のヘッダー値からトークンを取り出す。
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CallerFromContext はリクエストコンテキストから呼び出し元を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func CallerFromContext(ctx context.Context) (model.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(model.Caller)
	if !ok || caller.UserID == "" {
		return model.Caller{}, false
	}
	return caller, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("user ID not found in context")
	}
	return caller.UserID, nil
}

// ContextWithCaller はコンテキストに呼び出し元を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}
