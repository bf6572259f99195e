package handlers

import (
	"log/slog"
	"net/http"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/view"
)

// PageHandler はトップ・プロフィール・About の表示だけを行います
type PageHandler struct {
	base
}

func NewPageHandler(renderer *view.Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{base: newBase(renderer, logger)}
}

// Index はログイン済みならプロフィールへ、匿名ならログインへの案内を表示します
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r.Context()); ok {
		redirectSeeOther(w, r, "/profile")
		return
	}
	h.renderer.Render(w, http.StatusOK, "index", h.page(r, "ようこそ"))
}

// Profile はログイン中のユーザーのロール一覧を表示します
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Profile"))
	if _, err := middleware.GetCurrentUserFromContext(r.Context()); err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "profile", h.page(r, "プロフィール"))
}

func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "about", h.page(r, "About"))
}
