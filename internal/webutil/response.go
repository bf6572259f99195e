// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go_vocab_builder/internal/model"

	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorDetailOf は画面に出すエラー詳細を返します。AppError でなければステータスに応じた汎用メッセージ
func ErrorDetailOf(err error) model.ErrorDetail {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	switch MapErrorToStatusCode(err) {
	case http.StatusBadRequest:
		return model.ErrorDetail{Code: "INVALID_INPUT", Message: "入力内容が正しくありません。"}
	case http.StatusNotFound:
		return model.ErrorDetail{Code: "NOT_FOUND", Message: "ページが見つかりません。"}
	case http.StatusForbidden:
		return model.ErrorDetail{Code: "FORBIDDEN", Message: "このページを表示する権限がありません。"}
	}
	return model.ErrorDetail{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "サーバー内部でエラーが発生しました。",
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"レスポンス生成中にエラーが発生しました。"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// NewValidationErrorResponse はバリデーションエラーを翻訳済みメッセージ付きの AppError にします
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	var fields []string
	var messages []string

	for _, err := range errs {
		fields = append(fields, err.Field())
		messages = append(messages, err.Translate(Trans))
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, " "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}

// ValidateStruct は Validator.Struct の結果を AppError に変換します
func ValidateStruct(s interface{}) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationErrorResponse(validationErrors)
	}
	return fmt.Errorf("ValidateStruct: %w", err)
}

// FieldErrors はバリデーションエラーをフィールド名 -> メッセージの map にします (フォーム再表示用)
func FieldErrors(err error) map[string]string {
	result := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			result[fe.Field()] = fe.Translate(Trans)
		}
		return result
	}
	var appErr *model.AppError
	if errors.As(err, &appErr) && appErr.Detail.Field != "" {
		for _, field := range strings.Split(appErr.Detail.Field, ",") {
			result[field] = appErr.Detail.Message
		}
	}
	return result
}
