package repo

import (
	"Stash/internal/model"
	"context"

	"gorm.io/gorm"
)

// SubjectRepository — доступ к предметам. Все выборки ограничены владельцем.
type SubjectRepository interface {
	Create(ctx context.Context, s *model.Subject) error
	GetByID(ctx context.Context, userID int64, id string) (*model.Subject, error)
	GetByName(ctx context.Context, userID int64, name string) (*model.Subject, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Subject, error)
	Update(ctx context.Context, userID int64, id string, updates map[string]any) error
	Delete(ctx context.Context, userID int64, id string) error
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepository создаёт реализацию репозитория для Subject.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, s *model.Subject) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *subjectRepo) GetByID(ctx context.Context, userID int64, id string) (*model.Subject, error) {
	var s model.Subject
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subjectRepo) GetByName(ctx context.Context, userID int64, name string) (*model.Subject, error) {
	var s model.Subject
	err := r.db.WithContext(ctx).Where("name = ? AND user_id = ?", name, userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subjectRepo) ListByUser(ctx context.Context, userID int64) ([]model.Subject, error) {
	var out []model.Subject
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *subjectRepo) Update(ctx context.Context, userID int64, id string, updates map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&model.Subject{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет только сам предмет; файлы предмета остаются.
func (r *subjectRepo) Delete(ctx context.Context, userID int64, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Subject{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
