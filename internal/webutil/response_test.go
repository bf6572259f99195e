package webutil_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/webutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: model.ErrNotFound, want: http.StatusNotFound},
		{err: fmt.Errorf("wrapped: %w", model.ErrInvalidInput), want: http.StatusBadRequest},
		{err: model.NewAppError("DUPLICATE_WORD", "", "word", model.ErrConflict), want: http.StatusConflict},
		{err: model.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{err: model.ErrUnauthorized, want: http.StatusUnauthorized},
		{err: model.ErrForbidden, want: http.StatusForbidden},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, webutil.MapErrorToStatusCode(tt.err))
		})
	}
}

func TestErrorDetailOf(t *testing.T) {
	appErr := model.NewAppError("DUPLICATE_WORD", "この単語は既に登録されています。", "word", model.ErrConflict)
	assert.Equal(t, appErr.Detail, webutil.ErrorDetailOf(fmt.Errorf("ctx: %w", appErr)))

	assert.Equal(t, "NOT_FOUND", webutil.ErrorDetailOf(model.ErrNotFound).Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", webutil.ErrorDetailOf(errors.New("boom")).Code)
}

func TestValidateStruct(t *testing.T) {
	err := webutil.ValidateStruct(&model.RegisterRequest{Email: "not-an-email", Username: "bob", Password: "short"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	fields := webutil.FieldErrors(err)
	assert.Equal(t, "メールアドレスは有効なメールアドレス形式ではありません。", fields["email"])
	assert.Equal(t, "パスワードは8文字以上で入力してください。", fields["password"])
	assert.NotContains(t, fields, "username")

	assert.NoError(t, webutil.ValidateStruct(&model.WordForm{Word: "casa", Assoc: "a", Hint: "h", Translation: "house"}))
}

func TestFieldErrors_AppErrorFields(t *testing.T) {
	err := model.NewAppError("DUPLICATE_ENTRY", "使用済みです。", "email,username", model.ErrConflict)
	assert.Equal(t, map[string]string{"email": "使用済みです。", "username": "使用済みです。"}, webutil.FieldErrors(err))
	assert.Empty(t, webutil.FieldErrors(errors.New("plain")))
}
