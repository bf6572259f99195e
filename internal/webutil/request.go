package webutil

import (
	"fmt"
	"net/http"

	"go_vocab_builder/internal/model"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeForm は application/x-www-form-urlencoded のボディを dst (formタグ付き構造体) にデコードします
// 値が1つのキーは文字列、複数あるキー (チェックボックス等) はスライスとして渡す
func DecodeForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("DecodeForm: %w: %v", model.ErrInvalidInput, err)
	}

	input := make(map[string]interface{}, len(r.PostForm))
	for key, values := range r.PostForm {
		switch len(values) {
		case 0:
		case 1:
			input[key] = values[0]
		default:
			input[key] = values
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true, // "12" -> uint, "true" -> bool, "admin" -> []string{"admin"}
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("DecodeForm: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("DecodeForm: %w: %v", model.ErrInvalidInput, err)
	}
	return nil
}
