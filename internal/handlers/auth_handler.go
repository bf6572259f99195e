package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/service"
	"go_vocab_builder/internal/view"
	"go_vocab_builder/internal/webutil"
)

type AuthHandler struct {
	base
	service service.AuthService
	auth    config.AuthConfig
}

func NewAuthHandler(s service.AuthService, authCfg config.AuthConfig, renderer *view.Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		base:    newBase(renderer, logger),
		service: s,
		auth:    authCfg,
	}
}

func registerData(req *model.RegisterRequest) map[string]string {
	return map[string]string{
		"email":    req.Email,
		"username": req.Username,
		"name":     req.Name,
	}
}

// RegisterForm は登録フォームを表示します
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "新規登録")
	p.Data = registerData(&model.RegisterRequest{})
	h.renderer.Render(w, http.StatusOK, "register", p)
}

// Register は新規ユーザーを登録します。確認必須なら確認メールを送る
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Register"))

	var req model.RegisterRequest
	if err := webutil.DecodeForm(r, &req); err != nil {
		h.renderError(w, r, logger, model.NewAppError("INVALID_REQUEST_BODY", "フォームの形式が正しくありません。", "", err))
		return
	}

	p := h.page(r, "新規登録")
	p.Data = registerData(&req)

	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed for registration", "error", err)
		p.FieldErrors = webutil.FieldErrors(err)
		h.renderer.Render(w, webutil.MapErrorToStatusCode(err), "register", p)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		status := webutil.MapErrorToStatusCode(err)
		if status >= http.StatusInternalServerError || errors.Is(err, model.ErrForbidden) {
			h.renderError(w, r, logger, err)
			return
		}
		logger.Warn("Registration rejected", "error", err)
		p.Error = webutil.ErrorDetailOf(err).Message
		p.FieldErrors = webutil.FieldErrors(err)
		h.renderer.Render(w, status, "register", p)
		return
	}

	lp := h.page(r, "ログイン")
	lp.Form = &model.LoginRequest{Login: user.Username}
	if user.Active {
		lp.Notice = "登録が完了しました。ログインしてください。"
	} else {
		lp.Notice = "確認メールを送信しました。メールのリンクからアカウントを有効化してください。"
	}
	h.renderer.Render(w, http.StatusCreated, "login", lp)
}

// Confirm は確認メールのリンク (?token=) でアカウントを有効化します
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Confirm"))

	token := r.URL.Query().Get("token")
	if token == "" {
		h.renderError(w, r, logger, model.NewAppError("INVALID_REQUEST", "確認トークンが必要です。", "token", model.ErrInvalidInput))
		return
	}
	if err := h.service.ConfirmAccount(r.Context(), token); err != nil {
		h.renderError(w, r, logger, err)
		return
	}

	p := h.page(r, "ログイン")
	p.Form = &model.LoginRequest{}
	p.Notice = "アカウントを有効化しました。ログインしてください。"
	h.renderer.Render(w, http.StatusOK, "login", p)
}

// LoginForm はログインフォームを表示します
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r.Context()); ok {
		redirectSeeOther(w, r, "/profile")
		return
	}
	p := h.page(r, "ログイン")
	p.Form = &model.LoginRequest{Next: r.URL.Query().Get("next")}
	h.renderer.Render(w, http.StatusOK, "login", p)
}

// Login は認証に成功したらセッションCookieを発行して next (なければ /profile) へ移動します
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Login"))

	var req model.LoginRequest
	if err := webutil.DecodeForm(r, &req); err != nil {
		h.renderError(w, r, logger, model.NewAppError("INVALID_REQUEST_BODY", "フォームの形式が正しくありません。", "", err))
		return
	}

	p := h.page(r, "ログイン")
	p.Form = &model.LoginRequest{Login: req.Login, Next: req.Next}

	if err := webutil.ValidateStruct(req); err != nil {
		p.FieldErrors = webutil.FieldErrors(err)
		h.renderer.Render(w, http.StatusBadRequest, "login", p)
		return
	}

	session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		status := webutil.MapErrorToStatusCode(err)
		if status >= http.StatusInternalServerError {
			h.renderError(w, r, logger, err)
			return
		}
		p.Error = webutil.ErrorDetailOf(err).Message
		h.renderer.Render(w, status, "login", p)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info("Session issued", "user_id", session.User.ID)
	redirectSeeOther(w, r, safeNext(req.Next))
}

// Logout はセッションを失効させ、Cookie を消してトップへ戻します
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Logout"))

	if err := h.service.Logout(r.Context(), middleware.SessionToken(r.Context())); err != nil {
		logger.Error("Failed to revoke session", "error", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	redirectSeeOther(w, r, "/")
}

// safeNext は同一サイト内のパスだけを許可します (オープンリダイレクト対策)
// ブラウザはタブや改行を読み飛ばし、\ を / として扱うので、それらを含む値も拒否する
func safeNext(next string) string {
	const fallback = "/profile"
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	if strings.ContainsRune(next, '\\') || strings.ContainsFunc(next, unicode.IsControl) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
