package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/webutil"

	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHealthHandler(db *gorm.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health は DB に ping して結果を JSON で返します
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Health"))

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.Error("Health check failed", "error", err)
		webutil.RespondWithJSON(w, http.StatusServiceUnavailable, model.APIErrorResponse{
			Error: model.ErrorDetail{Code: "DB_UNAVAILABLE", Message: "データベースに接続できません。"},
		}, logger)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.AppVersion,
	}, logger)
}
