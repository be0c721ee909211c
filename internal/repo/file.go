package repo

import (
	"Stash/internal/model"
	"context"

	"gorm.io/gorm"
)

// FileRepository — доступ к метаданным файлов.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	GetByID(ctx context.Context, userID int64, id string) (*model.File, error)
	ListBySubject(ctx context.Context, userID int64, subjectID string) ([]model.File, error)
	ListByUser(ctx context.Context, userID int64) ([]model.File, error)
	ListByStatus(ctx context.Context, userID int64, statuses ...model.SyncStatus) ([]model.File, error)
	UpdateByID(ctx context.Context, id string, updates map[string]any) (*model.File, error)
	Delete(ctx context.Context, id string) error
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepository создаёт реализацию репозитория для File.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *fileRepo) GetByID(ctx context.Context, userID int64, id string) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) ListBySubject(ctx context.Context, userID int64, subjectID string) ([]model.File, error) {
	var out []model.File
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Order("uploaded_at DESC").
		Find(&out).Error
	return out, err
}

func (r *fileRepo) ListByUser(ctx context.Context, userID int64) ([]model.File, error) {
	var out []model.File
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("uploaded_at DESC").Find(&out).Error
	return out, err
}

func (r *fileRepo) ListByStatus(ctx context.Context, userID int64, statuses ...model.SyncStatus) ([]model.File, error) {
	var out []model.File
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sync_status IN ?", userID, statuses).
		Order("uploaded_at ASC").
		Find(&out).Error
	return out, err
}

// UpdateByID применяет patch и возвращает обновлённую запись.
func (r *fileRepo) UpdateByID(ctx context.Context, id string, updates map[string]any) (*model.File, error) {
	tx := r.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	var f model.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.File{}).Error
}
