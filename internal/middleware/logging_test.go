package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{name: "空", contentType: "application/x-www-form-urlencoded", body: "", want: ""},
		{name: "password を伏せる", contentType: "application/x-www-form-urlencoded", body: "login=alice&password=secret", want: "login=alice&password=%5BMASKED%5D"},
		{name: "フォーム以外", contentType: "application/json", body: `{"a":1}`, want: "[non-form body]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskBody(tt.contentType, []byte(tt.body)))
		})
	}
}

func TestFormatHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Cookie", "session=abc")
	h.Set("Accept", "text/html")
	got := formatHeaders(h)
	assert.Equal(t, "[SENSITIVE]", got["Cookie"])
	assert.Equal(t, "text/html", got["Accept"])
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		GetLogger(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	assert.Contains(t, out, "inside handler")
	assert.True(t, strings.Contains(out, "level=WARN") && strings.Contains(out, "status=404"), out)
}
