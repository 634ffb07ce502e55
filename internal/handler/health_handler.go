package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger はデータベースの疎通確認を行うインターフェース。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthPingTimeout は疎通確認のタイムアウト。
const healthPingTimeout = 2 * time.Second

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewHealthHandler は死活監視用のハンドラーを返す。
// pingerがnilの場合はプロセスの応答のみを確認する。
func NewHealthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				slog.Warn("health check: database unreachable", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{
					Status:  "ERROR",
					Message: "Database is unreachable",
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:  "OK",
			Message: "EMS Backend is running",
		})
	}
}
