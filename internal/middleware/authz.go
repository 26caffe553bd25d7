package middleware

import (
	"net/http"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

// RequireAuth は認証済みユーザーのみを通すミドルウェア。
// IdentityMiddlewareの後に配置すること。
// 匿名リクエストには401 Unauthorizedを返す。
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin はadminロールのユーザーのみを通すミドルウェア。
// IdentityMiddlewareの後に配置すること。
// 匿名リクエストには401、認証済みだが権限不足のリクエストには403を返す。
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		if !user.IsAdmin() {
			WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
			return
		}
		next.ServeHTTP(w, r)
	})
}
