package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// NewHealthHandler はヘルスチェックのHTTPハンドラーを返す。
// DB未接続（縮退モード）でもプロセスが生きていれば200を返す。
// データベースの状態はdatabaseフィールドで区別する。
// GET /health
func NewHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Database: "connected"}

		if db == nil {
			resp.Database = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				resp.Database = "unreachable"
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
