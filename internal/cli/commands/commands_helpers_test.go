package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"Stash/internal/config"
)

// withTempConfig возвращает конфиг с токеном во временном каталоге.
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	return &config.Config{
		ServerURL: serverURL,
		TokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

// loggedIn сохраняет токен, как после успешного login.
func loggedIn(t *testing.T, cfg *config.Config, token string) {
	t.Helper()
	if err := tokenFile(cfg).Save(token); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

// captureOut перенаправляет вывод CLI в буфер на время теста.
func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := Out
	Out = buf
	t.Cleanup(func() { Out = prev })
	return buf
}

// reply пишет ответ в формате сервера.
func reply(w http.ResponseWriter, status int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": status < 400,
		"message": msg,
		"data":    data,
	})
}
