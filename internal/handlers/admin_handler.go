package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/service"
	"go_vocab_builder/internal/view"
	"go_vocab_builder/internal/webutil"

	"github.com/go-chi/chi/v5"
)

// AdminHandler は /admin 配下の CRUD 画面です。ルーティングで admin ロールを要求する
type AdminHandler struct {
	base
	service service.AdminService
}

func NewAdminHandler(s service.AdminService, renderer *view.Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		base:    newBase(renderer, logger),
		service: s,
	}
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, model.NewAppError("NOT_FOUND", "指定されたIDは存在しません。", "", model.ErrNotFound)
	}
	return uint(id), nil
}

// isFormError はフォームを再表示すべきエラー (入力不備・重複) かどうか
func isFormError(err error) bool {
	return errors.Is(err, model.ErrInvalidInput) || errors.Is(err, model.ErrConflict)
}

func (h *AdminHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "admin/index", h.page(r, "管理画面"))
}

// --- Role ---

func (h *AdminHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListRoles"))
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	p := h.page(r, "ロール")
	p.Data = roles
	h.renderer.Render(w, http.StatusOK, "admin/roles", p)
}

func (h *AdminHandler) renderRoleForm(w http.ResponseWriter, r *http.Request, status int, action string, form *model.RoleForm, err error) {
	p := h.page(r, "ロール編集")
	p.Form = form
	p.Data = map[string]any{"Action": action}
	if err != nil {
		p.Error = webutil.ErrorDetailOf(err).Message
		p.FieldErrors = webutil.FieldErrors(err)
	}
	h.renderer.Render(w, status, "admin/role_form", p)
}

func (h *AdminHandler) NewRole(w http.ResponseWriter, r *http.Request) {
	h.renderRoleForm(w, r, http.StatusOK, "/admin/roles", &model.RoleForm{}, nil)
}

func (h *AdminHandler) EditRole(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "EditRole"))
	id, err := pathID(r)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	h.renderRoleForm(w, r, http.StatusOK, fmt.Sprintf("/admin/roles/%d", id), &model.RoleForm{Name: role.Name, Description: role.Description}, nil)
}

// SaveRole は id があれば更新、なければ作成します
func (h *AdminHandler) SaveRole(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SaveRole"))

	var id uint
	action := "/admin/roles"
	if chi.URLParam(r, "id") != "" {
		var err error
		if id, err = pathID(r); err != nil {
			h.renderError(w, r, logger, err)
			return
		}
		action = fmt.Sprintf("/admin/roles/%d", id)
	}

	var form model.RoleForm
	if err := webutil.DecodeForm(r, &form); err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	err := webutil.ValidateStruct(form)
	if err == nil {
		if id == 0 {
			_, err = h.service.CreateRole(r.Context(), &form)
		} else {
			_, err = h.service.UpdateRole(r.Context(), id, &form)
		}
	}
	if err != nil {
		if isFormError(err) {
			h.renderRoleForm(w, r, webutil.MapErrorToStatusCode(err), action, &form, err)
			return
		}
		h.renderError(w, r, logger, err)
		return
	}
	redirectSeeOther(w, r, "/admin/roles")
}

func (h *AdminHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteRole"))
	id, err := pathID(r)
	if err == nil {
		err = h.service.DeleteRole(r.Context(), id)
	}
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	redirectSeeOther(w, r, "/admin/roles")
}

// --- User ---

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ListUsers"))
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	p := h.page(r, "ユーザー")
	p.Data = users
	h.renderer.Render(w, http.StatusOK, "admin/users", p)
}

// renderUserForm はユーザー編集フォームを表示します。パスワードは表示しない
func (h *AdminHandler) renderUserForm(w http.ResponseWriter, r *http.Request, status int, action string, editing bool, form *model.AdminUserForm, err error) {
	logger := h.logger.With(slog.String("handler", "renderUserForm"))
	roles, rerr := h.service.ListRoles(r.Context())
	if rerr != nil {
		h.renderError(w, r, logger, rerr)
		return
	}
	form.Password = ""

	p := h.page(r, "ユーザー編集")
	p.Form = form
	p.Data = map[string]any{"Action": action, "Editing": editing, "Roles": roles}
	if err != nil {
		p.Error = webutil.ErrorDetailOf(err).Message
		p.FieldErrors = webutil.FieldErrors(err)
	}
	h.renderer.Render(w, status, "admin/user_form", p)
}

func (h *AdminHandler) NewUser(w http.ResponseWriter, r *http.Request) {
	h.renderUserForm(w, r, http.StatusOK, "/admin/users", false, &model.AdminUserForm{Active: true}, nil)
}

func (h *AdminHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "EditUser"))
	id, err := pathID(r)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	form := &model.AdminUserForm{
		Email:     user.Email,
		Username:  user.Username,
		Name:      user.Name,
		Active:    user.Active,
		Confirmed: user.ConfirmedAt != nil,
		Roles:     user.RoleNames(),
	}
	h.renderUserForm(w, r, http.StatusOK, fmt.Sprintf("/admin/users/%d", id), true, form, nil)
}

func (h *AdminHandler) SaveUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SaveUser"))

	var id uint
	action := "/admin/users"
	if chi.URLParam(r, "id") != "" {
		var err error
		if id, err = pathID(r); err != nil {
			h.renderError(w, r, logger, err)
			return
		}
		action = fmt.Sprintf("/admin/users/%d", id)
	}

	var form model.AdminUserForm
	if err := webutil.DecodeForm(r, &form); err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	err := webutil.ValidateStruct(form)
	if err == nil {
		if id == 0 {
			_, err = h.service.CreateUser(r.Context(), &form)
		} else {
			_, err = h.service.UpdateUser(r.Context(), id, &form)
		}
	}
	if err != nil {
		if isFormError(err) {
			h.renderUserForm(w, r, webutil.MapErrorToStatusCode(err), action, id != 0, &form, err)
			return
		}
		h.renderError(w, r, logger, err)
		return
	}
	redirectSeeOther(w, r, "/admin/users")
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteUser"))
	id, err := pathID(r)
	if err == nil {
		err = h.service.DeleteUser(r.Context(), id)
	}
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	redirectSeeOther(w, r, "/admin/users")
}

// --- Word ---

func (h *AdminHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "AdminListWords"))
	words, err := h.service.ListWords(r.Context())
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	p := h.page(r, "単語")
	p.Data = words
	h.renderer.Render(w, http.StatusOK, "admin/words", p)
}

func (h *AdminHandler) renderWordForm(w http.ResponseWriter, r *http.Request, status int, action string, form *model.AdminWordForm, err error) {
	p := h.page(r, "単語編集")
	p.Form = form
	p.Data = map[string]any{"Action": action}
	if err != nil {
		p.Error = webutil.ErrorDetailOf(err).Message
		p.FieldErrors = webutil.FieldErrors(err)
	}
	h.renderer.Render(w, status, "admin/word_form", p)
}

func (h *AdminHandler) NewWord(w http.ResponseWriter, r *http.Request) {
	h.renderWordForm(w, r, http.StatusOK, "/admin/words", &model.AdminWordForm{}, nil)
}

func (h *AdminHandler) EditWord(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "EditWord"))
	id, err := pathID(r)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	word, err := h.service.GetWord(r.Context(), id)
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	form := &model.AdminWordForm{
		Word:          word.Word,
		Assoc:         word.Assoc,
		Hint:          word.Hint,
		Translation:   word.Translation,
		OwnerUsername: word.OwnerName(),
	}
	h.renderWordForm(w, r, http.StatusOK, fmt.Sprintf("/admin/words/%d", id), form, nil)
}

func (h *AdminHandler) SaveWord(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "SaveWord"))

	var id uint
	action := "/admin/words"
	if chi.URLParam(r, "id") != "" {
		var err error
		if id, err = pathID(r); err != nil {
			h.renderError(w, r, logger, err)
			return
		}
		action = fmt.Sprintf("/admin/words/%d", id)
	}

	var form model.AdminWordForm
	if err := webutil.DecodeForm(r, &form); err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	err := webutil.ValidateStruct(form)
	if err == nil {
		if id == 0 {
			_, err = h.service.CreateWord(r.Context(), &form)
		} else {
			_, err = h.service.UpdateWord(r.Context(), id, &form)
		}
	}
	if err != nil {
		if isFormError(err) {
			h.renderWordForm(w, r, webutil.MapErrorToStatusCode(err), action, &form, err)
			return
		}
		h.renderError(w, r, logger, err)
		return
	}
	redirectSeeOther(w, r, "/admin/words")
}

func (h *AdminHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "AdminDeleteWord"))
	id, err := pathID(r)
	if err == nil {
		err = h.service.DeleteWord(r.Context(), id)
	}
	if err != nil {
		h.renderError(w, r, logger, err)
		return
	}
	redirectSeeOther(w, r, "/admin/words")
}

// ExportWords は単語一覧を CSV でダウンロードさせます
func (h *AdminHandler) ExportWords(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ExportWords"))

	var buf bytes.Buffer
	if err := h.service.ExportWordsCSV(r.Context(), &buf); err != nil {
		h.renderError(w, r, logger, err)
		return
	}

	filename := fmt.Sprintf("words-%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("Error writing CSV response", "error", err)
	}
}
