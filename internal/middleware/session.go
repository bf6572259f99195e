package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"go_vocab_builder/internal/model"
)

// SessionAuthenticator はセッションCookieのトークンからユーザーを解決します
// (service.AuthService が実装)
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// SessionMiddleware はセッションCookieを検証し、ログイン中のユーザーをコンテキストにセットします。
// Cookieがない/無効な場合は匿名のまま次へ進む (ログイン必須かどうかは RequireLogin が判断)
func SessionMiddleware(auth SessionAuthenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, model.ErrUnauthorized) {
					logger.Info("Session rejected, continuing as anonymous", "error", err)
					// 無効なCookieは消しておく
					http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
				} else {
					// セッションストア障害などではCookieを残す (復旧後にそのまま使える)
					logger.Error("Session lookup failed, continuing as anonymous", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), model.CurrentUserKey, user)
			ctx = context.WithValue(ctx, model.SessionIDKey, cookie.Value)
			ctx = WithLogger(ctx, logger.With("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin は匿名アクセスをログイン画面へリダイレクトします
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			GetLogger(r.Context()).Info("Anonymous access to protected page, redirecting to login", "path", r.URL.Path)
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole はロールを持たないユーザーを forbidden に回します。RequireLogin の内側で使う
func RequireRole(role string, forbidden http.HandlerFunc) func(http.Handler) http.Handler {
	if forbidden == nil {
		forbidden = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok || !user.HasRole(role) {
				GetLogger(r.Context()).Warn("Role check failed", "required_role", role, "path", r.URL.Path)
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser はログイン中のユーザーを返します。匿名なら ok=false
func CurrentUser(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(model.CurrentUserKey).(*model.User)
	return user, ok && user != nil
}

// GetCurrentUserFromContext は CurrentUser のエラー版
func GetCurrentUserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := CurrentUser(ctx)
	if !ok {
		return nil, model.NewAppError("UNAUTHORIZED", "ログインが必要です。", "", model.ErrUnauthorized)
	}
	return user, nil
}

// SessionToken はリクエストのセッショントークン (ログアウト用)
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(model.SessionIDKey).(string)
	return token
}
