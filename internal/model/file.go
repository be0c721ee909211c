package model

import "time"

// SyncStatus — состояние зеркалирования файла в удалённое хранилище.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// File — метаданные загруженного файла.
// UserID и SubjectID не меняются после создания.
type File struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	UserID    int64  `gorm:"not null;index"`
	SubjectID string `gorm:"type:uuid;not null;index"`

	OriginalName string   `gorm:"not null"`
	FileName     string   `gorm:"not null"` // имя на диске
	FilePath     string   `gorm:"not null"`
	FileSize     int64    `gorm:"not null"`
	MimeType     string   `gorm:"not null"`
	Category     Category `gorm:"not null"`

	// Заполняются только после успешной синхронизации
	RemoteFileID   string
	RemoteFolderID string
	RemoteURL      string

	SyncStatus SyncStatus `gorm:"not null;default:pending;index"`
	LastSyncAt *time.Time

	UploadedAt time.Time `gorm:"autoCreateTime"`
}
