// Package view は埋め込み HTML テンプレートの描画を担当します
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/model"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page はすべての画面に渡すデータ
type Page struct {
	Title       string
	AppName     string
	CurrentUser *model.User
	Notice      string
	Error       string
	FieldErrors map[string]string
	Form        any
	Data        any
}

// Renderer は画面ごとに layout + 画面テンプレートを組み合わせたセットを保持します
type Renderer struct {
	pages   map[string]*template.Template
	appName string
	logger  *slog.Logger
}

// NewRenderer は templates/ 配下の画面テンプレートをすべてパースします
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{
		pages:   make(map[string]*template.Template),
		appName: config.AppName,
		logger:  logger,
	}

	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || !strings.HasSuffix(p, ".html") {
			return nil
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		tmpl, err := template.New(path.Base(layoutFile)).
			Funcs(funcMap()).
			ParseFS(templateFS, layoutFile, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("NewRenderer: %w", err)
	}
	return r, nil
}

// funcMap は sprig の関数にアプリ固有のものを足したもの
func funcMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["fieldError"] = func(errs map[string]string, field string) string {
		return errs[field]
	}
	return funcs
}

// Render は name の画面を status で返します。
// テンプレートの実行に失敗した場合は途中まで書かずに 500 を返す
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.logger.Error("Template not found", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if page.AppName == "" {
		page.AppName = r.appName
	}
	if page.FieldErrors == nil {
		page.FieldErrors = map[string]string{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		r.logger.Error("Error executing template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Warn("Error writing response", "template", name, "error", err)
	}
}

// Has は name の画面テンプレートがあるかどうか
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
