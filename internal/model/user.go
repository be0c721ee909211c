package model

import "time"

// User — серверная модель пользователя.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"not null;uniqueIndex"`
	Password string `gorm:"not null"` // bcrypt hash

	Drive DriveLink `gorm:"embedded;embeddedPrefix:drive_"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// DriveLink — привязка пользователя к удалённому хранилищу.
// AccessToken и RefreshToken не читаются репозиторием по умолчанию.
type DriveLink struct {
	Connected    bool `gorm:"not null;default:false"`
	AccessToken  string
	RefreshToken string
	ConnectedAt  *time.Time
	LastSyncAt   *time.Time
	RootFolderID string
}

// CredentialColumns — колонки с учётными данными, исключаемые из обычного чтения.
var CredentialColumns = []string{"drive_access_token", "drive_refresh_token"}

// Ready сообщает, можно ли синхронизировать файлы с этой привязкой.
func (d DriveLink) Ready() bool {
	return d.Connected && d.AccessToken != "" && d.RootFolderID != ""
}
