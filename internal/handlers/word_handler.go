// internal/handlers/word_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/service"
	"go_vocab_builder/internal/view"
	"go_vocab_builder/internal/webutil"
)

type WordHandler struct {
	base
	service service.WordService
}

func NewWordHandler(s service.WordService, renderer *view.Renderer, logger *slog.Logger) *WordHandler {
	return &WordHandler{
		base:    newBase(renderer, logger),
		service: s,
	}
}

func wordFormData(form *model.WordForm) map[string]string {
	return map[string]string{
		"word":        form.Word,
		"assoc":       form.Assoc,
		"hint":        form.Hint,
		"translation": form.Translation,
	}
}

// ListWords は単語一覧を表示します。admin は全ユーザー分
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListWords"))

	user, err := middleware.GetCurrentUserFromContext(r.Context())
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	logger = logger.With(slog.Uint64("user_id", uint64(user.ID)))

	words, err := h.service.ListWords(r.Context(), user)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}

	logger.Debug("Words listed", slog.Int("count", len(words)))
	p := h.page(r, "単語一覧")
	p.Data = words
	h.renderer.Render(w, http.StatusOK, "words_list", p)
}

// AddWordForm は空の追加フォームを表示します
func (h *WordHandler) AddWordForm(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "単語追加")
	p.Data = wordFormData(&model.WordForm{})
	h.renderer.Render(w, http.StatusOK, "words_add", p)
}

// AddWord は単語を1件追加し、成功したら空のフォームを再表示します
func (h *WordHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "AddWord"))

	user, err := middleware.GetCurrentUserFromContext(r.Context())
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	logger = logger.With(slog.Uint64("user_id", uint64(user.ID)))

	var form model.WordForm
	if err := webutil.DecodeForm(r, &form); err != nil {
		h.renderError(w, r, logger, model.NewAppError("INVALID_REQUEST_BODY", "フォームの形式が正しくありません。", "", err))
		return
	}

	p := h.page(r, "単語追加")
	p.Data = wordFormData(&form)

	if err := webutil.ValidateStruct(form); err != nil {
		logger.Warn("Validation failed", slog.Any("error", err))
		p.FieldErrors = webutil.FieldErrors(err)
		h.renderer.Render(w, http.StatusBadRequest, "words_add", p)
		return
	}

	word, err := h.service.AddWord(r.Context(), user.ID, &form)
	if err != nil {
		if errors.Is(err, model.ErrConflict) || errors.Is(err, model.ErrInvalidInput) {
			p.Error = webutil.ErrorDetailOf(err).Message
			p.FieldErrors = webutil.FieldErrors(err)
			h.renderer.Render(w, webutil.MapErrorToStatusCode(err), "words_add", p)
			return
		}
		h.renderError(w, r, logger, err)
		return
	}

	logger.Info("Word added successfully", slog.Uint64("word_id", uint64(word.ID)))
	p.Data = wordFormData(&model.WordForm{})
	p.Notice = "「" + word.Word + "」を追加しました。"
	h.renderer.Render(w, http.StatusOK, "words_add", p)
}

// RemoveWordForm は自分の単語だけを削除ボタン付きで表示します
func (h *WordHandler) RemoveWordForm(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RemoveWordForm"))

	user, err := middleware.GetCurrentUserFromContext(r.Context())
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}

	words, err := h.service.ListOwnWords(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}

	p := h.page(r, "単語削除")
	p.Data = words
	h.renderer.Render(w, http.StatusOK, "words_rm", p)
}

// RemoveWord は word_id の単語が自分のものなら削除し、一覧へ戻します
// 不正な id や他人の単語は何もせずに戻る
func (h *WordHandler) RemoveWord(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RemoveWord"))

	user, err := middleware.GetCurrentUserFromContext(r.Context())
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	logger = logger.With(slog.Uint64("user_id", uint64(user.ID)))

	var form model.RemoveWordForm
	if err := webutil.DecodeForm(r, &form); err != nil || form.WordID == 0 {
		logger.Info("Remove request without a usable word_id", slog.Any("error", err))
		redirectSeeOther(w, r, "/words-rm")
		return
	}

	if err := h.service.RemoveWord(r.Context(), user.ID, form.WordID); err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	redirectSeeOther(w, r, "/words-rm")
}
