// Package auth хранит токен CLI между запусками.
package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoToken — пользователь ещё не входил.
var ErrNoToken = errors.New("not logged in: run `stash login <email> <password>` first")

// TokenFile — файл с токеном.
type TokenFile struct {
	Path string
}

// Save записывает токен с правами 0600.
func (f TokenFile) Save(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(token), 0o600)
}

// Load читает токен. Нет файла или он пуст — ErrNoToken.
func (f TokenFile) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Clear удаляет токен; отсутствие файла не ошибка.
func (f TokenFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
