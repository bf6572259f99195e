package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/view"
	"go_vocab_builder/internal/webutil"
)

// base は HTML を返すハンドラに共通の描画・エラー処理です
type base struct {
	renderer *view.Renderer
	logger   *slog.Logger
}

func newBase(renderer *view.Renderer, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{renderer: renderer, logger: logger}
}

// page はログイン中のユーザー付きの Page を作ります
func (b *base) page(r *http.Request, title string) *view.Page {
	user, _ := middleware.CurrentUser(r.Context())
	return &view.Page{
		Title:       title,
		CurrentUser: user,
		FieldErrors: map[string]string{},
	}
}

// renderError はエラーの種類に応じてログイン画面へのリダイレクトかエラー画面を返します
func (b *base) renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, model.ErrUnauthorized) {
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}

	status := webutil.MapErrorToStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Unhandled error", "error", err)
	} else {
		logger.Warn("Request failed", "status", status, "error", err)
	}

	p := b.page(r, http.StatusText(status))
	p.Error = webutil.ErrorDetailOf(err).Message
	b.renderer.Render(w, status, "error", p)
}

// NotFound は未定義のパス用
func (b *base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.renderError(w, r, middleware.GetLogger(r.Context()), model.NewAppError("NOT_FOUND", "ページが見つかりません。", "", model.ErrNotFound))
}

// Forbidden はロールが足りない場合の画面 (RequireRole に渡す)
func (b *base) Forbidden(w http.ResponseWriter, r *http.Request) {
	b.renderError(w, r, middleware.GetLogger(r.Context()), model.NewAppError("FORBIDDEN", "このページを表示する権限がありません。", "", model.ErrForbidden))
}

// redirectSeeOther は POST 後の画面遷移に使う
func redirectSeeOther(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
