// Package remote описывает удалённое иерархическое хранилище (Google Drive, S3-совместимое)
// и поиск/создание папок в нём.
package remote

import (
	"context"
	"errors"
	"io"
)

// ErrNotConnected — у пользователя нет рабочей привязки к удалённому хранилищу.
var ErrNotConnected = errors.New("remote storage not connected")

// Credentials — пара токенов пользователя.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Folder — папка в удалённом хранилище.
type Folder struct {
	ID   string
	Name string
}

// Uploaded — результат загрузки файла.
type Uploaded struct {
	ID      string
	ViewURL string
}

// Drive — операции над хранилищем от имени одного пользователя.
type Drive interface {
	// ListFolders возвращает не удалённые папки с точным именем name непосредственно в parentID.
	ListFolders(ctx context.Context, parentID, name string) ([]Folder, error)
	CreateFolder(ctx context.Context, parentID, name string) (Folder, error)
	// UploadFile загружает файл; size < 0 означает, что размер неизвестен.
	UploadFile(ctx context.Context, parentID, name, contentType string, size int64, body io.Reader) (Uploaded, error)
}

// Backend — фабрика клиентов. Не хранит состояния пользователя:
// учётные данные передаются в каждый вызов Open.
type Backend interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (Credentials, error)
	Open(ctx context.Context, creds Credentials) (Drive, error)
	// TopParent — родитель, под которым создаётся корневая папка пользователя.
	TopParent(userID int64) string
}
