package commands

import (
	"time"

	"Stash/internal/cli/api"
	"Stash/internal/cli/auth"
	"Stash/internal/config"
)

// Представления ответов сервера, которые печатает CLI
type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tokenData struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type subjectView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type fileView struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subjectId"`
	OriginalName string     `json:"originalName"`
	FileSize     int64      `json:"fileSize"`
	Category     string     `json:"category"`
	SyncStatus   string     `json:"syncStatus"`
	RemoteURL    string     `json:"remoteUrl"`
	LastSyncAt   *time.Time `json:"lastSyncAt"`
}

type rejectionView struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func tokenFile(cfg *config.Config) auth.TokenFile {
	return auth.TokenFile{Path: cfg.TokenFile}
}

// anonClient — клиент без токена (register/login).
func anonClient(cfg *config.Config) *api.Client {
	return api.New(cfg.ServerURL, "")
}

// authClient читает сохранённый токен; без него команда не выполняется.
func authClient(cfg *config.Config) (*api.Client, error) {
	token, err := tokenFile(cfg).Load()
	if err != nil {
		return nil, err
	}
	return api.New(cfg.ServerURL, token), nil
}
