// Package routes は依存関係を組み立てて chi のルーターを作ります
package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/handlers"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"
	"go_vocab_builder/internal/service"
	"go_vocab_builder/internal/view"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// RequestTimeout はハンドラ1回あたりの上限。http.Server の WriteTimeout はこれより長くすること
const RequestTimeout = 30 * time.Second

// Dependencies はルーターの外から渡すもの
type Dependencies struct {
	DB       *gorm.DB
	Config   *config.Config
	Logger   *slog.Logger
	Sessions repository.SessionRepository
	Mailer   service.Mailer
	// Metrics が nil なら /metrics は出さない
	Metrics *middleware.Metrics
}

// NewRouter はリポジトリ・サービス・ハンドラを組み立て、ルーティングを設定します
func NewRouter(deps Dependencies) (http.Handler, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Sessions == nil {
		deps.Sessions = repository.NewStatelessSessionRepository()
	}
	if deps.Mailer == nil {
		deps.Mailer = &service.LogMailer{}
	}

	renderer, err := view.NewRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("NewRouter: %w", err)
	}

	// Dependency Injection
	userRepo := repository.NewGormUserRepository()
	roleRepo := repository.NewGormRoleRepository()
	wordRepo := repository.NewGormWordRepository()
	wordAdminRepo := repository.NewGormWordAdminRepository()
	tokenRepo := repository.NewGormTokenRepository()

	authService := service.NewAuthService(deps.DB, userRepo, roleRepo, tokenRepo, deps.Sessions, deps.Mailer, cfg)
	wordService := service.NewWordService(deps.DB, wordRepo)
	adminService := service.NewAdminService(deps.DB, roleRepo, userRepo, wordAdminRepo, tokenRepo, cfg)

	pageHandler := handlers.NewPageHandler(renderer, logger)
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth, renderer, logger)
	wordHandler := handlers.NewWordHandler(wordService, renderer, logger)
	adminHandler := handlers.NewAdminHandler(adminService, renderer, logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, logger)

	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
		Debug:            false,
	})
	r.Use(corsHandler.Handler)

	// フォーム POST は自サイト (base_url) と CORS 許可オリジンからのみ受け付ける
	r.Use(middleware.CSRF(middleware.CSRFConfig{
		AllowedOrigins: append([]string{cfg.App.BaseURL}, cfg.CORS.AllowedOrigins...),
	}))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(RequestTimeout))
	r.Use(middleware.SessionMiddleware(authService, cfg.Auth.CookieName))

	r.NotFound(pageHandler.NotFound)

	// --- Public routes ---
	r.Get("/", pageHandler.Index)
	r.Get("/about", pageHandler.About)
	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)
	r.Post("/logout", authHandler.Logout)
	r.Get("/confirm", authHandler.Confirm)
	r.Get("/health", healthHandler.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// --- Protected routes (login required) ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)

		r.Get("/profile", pageHandler.Profile)
		r.Get("/words-list", wordHandler.ListWords)
		r.Get("/words-add", wordHandler.AddWordForm)
		r.Post("/words-add", wordHandler.AddWord)
		r.Get("/words-rm", wordHandler.RemoveWordForm)
		r.Post("/words-rm", wordHandler.RemoveWord)

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleAdmin, pageHandler.Forbidden))

			r.Get("/", adminHandler.Index)

			r.Route("/roles", func(r chi.Router) {
				r.Get("/", adminHandler.ListRoles)
				r.Get("/new", adminHandler.NewRole)
				r.Post("/", adminHandler.SaveRole)
				r.Get("/{id}/edit", adminHandler.EditRole)
				r.Post("/{id}", adminHandler.SaveRole)
				r.Post("/{id}/delete", adminHandler.DeleteRole)
			})
			r.Route("/users", func(r chi.Router) {
				r.Get("/", adminHandler.ListUsers)
				r.Get("/new", adminHandler.NewUser)
				r.Post("/", adminHandler.SaveUser)
				r.Get("/{id}/edit", adminHandler.EditUser)
				r.Post("/{id}", adminHandler.SaveUser)
				r.Post("/{id}/delete", adminHandler.DeleteUser)
			})
			r.Route("/words", func(r chi.Router) {
				r.Get("/", adminHandler.ListWords)
				r.Get("/new", adminHandler.NewWord)
				r.Post("/", adminHandler.SaveWord)
				r.Get("/export.csv", adminHandler.ExportWords)
				r.Get("/{id}/edit", adminHandler.EditWord)
				r.Post("/{id}", adminHandler.SaveWord)
				r.Post("/{id}/delete", adminHandler.DeleteWord)
			})
		})
	})

	return r, nil
}
