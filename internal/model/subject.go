package model

import "time"

// Subject — предмет, группирующий файлы пользователя.
// Имя уникально в пределах владельца.
type Subject struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID int64  `gorm:"not null;uniqueIndex:idx_subject_owner_name"`
	Name   string `gorm:"not null;uniqueIndex:idx_subject_owner_name"`
	Code   string

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
