package service

import (
	"Stash/internal/model"
	"Stash/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxSubjectName = 100
	maxSubjectCode = 20
)

// SubjectService — CRUD предметов в пределах владельца.
type SubjectService struct {
	repo repo.SubjectRepository
}

func NewSubjectService(r repo.SubjectRepository) *SubjectService {
	return &SubjectService{repo: r}
}

func (s *SubjectService) List(ctx context.Context, userID int64) ([]model.Subject, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get возвращает предмет владельца; чужой или несуществующий — ErrNotFound.
func (s *SubjectService) Get(ctx context.Context, userID int64, id string) (*model.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	subj, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return subj, nil
}

func (s *SubjectService) Create(ctx context.Context, userID int64, name, code string) (*model.Subject, error) {
	name, code = strings.TrimSpace(name), strings.TrimSpace(code)
	if err := validateSubject(name, code); err != nil {
		return nil, err
	}

	subj := &model.Subject{ID: uuid.NewString(), UserID: userID, Name: name, Code: code}
	if err := s.repo.Create(ctx, subj); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrSubjectExists
		}
		return nil, err
	}
	return subj, nil
}

// Update меняет только переданные поля.
func (s *SubjectService) Update(ctx context.Context, userID int64, id string, name, code *string) (*model.Subject, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	newName, newCode := current.Name, current.Code
	if name != nil {
		newName = strings.TrimSpace(*name)
		updates["name"] = newName
	}
	if code != nil {
		newCode = strings.TrimSpace(*code)
		updates["code"] = newCode
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := validateSubject(newName, newCode); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, userID, id, updates); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrSubjectExists
		}
		return nil, notFound(err)
	}
	return s.Get(ctx, userID, id)
}

// Delete удаляет предмет. Файлы предмета не удаляются.
func (s *SubjectService) Delete(ctx context.Context, userID int64, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return notFound(s.repo.Delete(ctx, userID, id))
}

func validateSubject(name, code string) error {
	if n := utf8.RuneCountInString(name); n == 0 || n > maxSubjectName {
		return fmt.Errorf("%w: subject name must be 1-%d characters", ErrInvalidInput, maxSubjectName)
	}
	if utf8.RuneCountInString(code) > maxSubjectCode {
		return fmt.Errorf("%w: subject code must be at most %d characters", ErrInvalidInput, maxSubjectCode)
	}
	return nil
}
