package repo

import (
	"Stash/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// UserRepository — доступ к пользователям.
// Учётные данные удалённого хранилища читаются только через GetWithCredentials.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetWithCredentials(ctx context.Context, id int64) (*model.User, error)
	ConnectDrive(ctx context.Context, id int64, link model.DriveLink) error
	DisconnectDrive(ctx context.Context, id int64) error
	TouchLastSync(ctx context.Context, id int64, at time.Time) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Omit(model.CredentialColumns...).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Omit(model.CredentialColumns...).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetWithCredentials(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ConnectDrive(ctx context.Context, id int64, link model.DriveLink) error {
	return r.updateDrive(ctx, id, map[string]any{
		"drive_connected":      true,
		"drive_access_token":   link.AccessToken,
		"drive_refresh_token":  link.RefreshToken,
		"drive_connected_at":   link.ConnectedAt,
		"drive_root_folder_id": link.RootFolderID,
	})
}

func (r *userRepo) DisconnectDrive(ctx context.Context, id int64) error {
	return r.updateDrive(ctx, id, map[string]any{
		"drive_connected":      false,
		"drive_access_token":   "",
		"drive_refresh_token":  "",
		"drive_connected_at":   nil,
		"drive_root_folder_id": "",
	})
}

func (r *userRepo) TouchLastSync(ctx context.Context, id int64, at time.Time) error {
	return r.updateDrive(ctx, id, map[string]any{"drive_last_sync_at": at.UTC()})
}

func (r *userRepo) updateDrive(ctx context.Context, id int64, updates map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
