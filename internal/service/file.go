package service

import (
	"Stash/internal/model"
	"Stash/internal/repo"
	"Stash/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Причины отказа в приёме файла
const (
	ReasonUnsupportedType = "unsupported file type"
	ReasonTooLarge        = "file too large"
	ReasonUnreadable      = "file could not be read"
)

// Upload — один файл из запроса. Open вызывается только для допущенных файлов.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Rejection — файл, не прошедший допуск. Не ошибка: остальные файлы принимаются.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IngestResult — итог приёма пачки файлов.
type IngestResult struct {
	Subject  *model.Subject
	Files    []model.File
	Rejected []Rejection
}

// SyncOutcome — результат синхронизации одного файла.
type SyncOutcome struct {
	Status         model.SyncStatus
	RemoteFileID   string
	RemoteFolderID string
	RemoteURL      string
}

func Synced(remoteFileID, remoteFolderID, remoteURL string) SyncOutcome {
	return SyncOutcome{Status: model.SyncSynced, RemoteFileID: remoteFileID, RemoteFolderID: remoteFolderID, RemoteURL: remoteURL}
}

func Failed() SyncOutcome {
	return SyncOutcome{Status: model.SyncFailed}
}

// FileService — приём файлов на локальный диск и жизненный цикл их записей.
type FileService struct {
	files    repo.FileRepository
	subjects repo.SubjectRepository
	store    *storage.LocalStore
	log      *zap.SugaredLogger

	allowed  map[string]struct{}
	maxBytes int64
	now      func() time.Time
}

func NewFileService(
	files repo.FileRepository,
	subjects repo.SubjectRepository,
	store *storage.LocalStore,
	allowedTypes []string,
	maxBytes int64,
	logger *zap.SugaredLogger,
) *FileService {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &FileService{
		files:    files,
		subjects: subjects,
		store:    store,
		log:      logger,
		allowed:  allowed,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Ingest проверяет предмет, сохраняет допущенные файлы и создаёт записи в статусе pending.
// Предмет проверяется до записи первого байта, поэтому при ошибке предмета на диске
// ничего не остаётся. Сбой записи или БД откатывает весь вызов.
func (s *FileService) Ingest(ctx context.Context, userID int64, subjectID string, uploads []Upload) (*IngestResult, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, ErrSubjectRequired
	}
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	if _, err := uuid.Parse(subjectID); err != nil {
		return nil, ErrNotFound
	}
	subj, err := s.subjects.GetByID(ctx, userID, subjectID)
	if err != nil {
		return nil, notFound(err)
	}

	res := &IngestResult{Subject: subj}
	var saved []*pendingFile
	for _, up := range uploads {
		ct, ok := s.admit(up)
		if !ok {
			res.Rejected = append(res.Rejected, s.reject(up.Name, ReasonUnsupportedType))
			continue
		}
		if up.Size > s.maxBytes {
			res.Rejected = append(res.Rejected, s.reject(up.Name, ReasonTooLarge))
			continue
		}

		out, err := s.write(up)
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			res.Rejected = append(res.Rejected, s.reject(up.Name, ReasonTooLarge))
			continue
		case errors.Is(err, errUnreadable):
			res.Rejected = append(res.Rejected, s.reject(up.Name, ReasonUnreadable))
			continue
		case err != nil:
			s.discard(saved)
			return nil, fmt.Errorf("store %q: %w", up.Name, err)
		}
		saved = append(saved, &pendingFile{upload: up, contentType: ct, saved: out})
	}

	for _, p := range saved {
		f := model.File{
			ID:           uuid.NewString(),
			UserID:       userID,
			SubjectID:    subj.ID,
			OriginalName: p.upload.Name,
			FileName:     p.saved.Name,
			FilePath:     p.saved.Path,
			FileSize:     p.saved.Size,
			MimeType:     p.contentType,
			Category:     model.Classify(p.contentType),
			SyncStatus:   model.SyncPending,
		}
		if err := s.files.Create(ctx, &f); err != nil {
			for _, created := range res.Files {
				if derr := s.files.Delete(ctx, created.ID); derr != nil {
					s.log.Warnw("rollback: delete file record failed", "file_id", created.ID, "err", derr)
				}
			}
			s.discard(saved)
			return nil, fmt.Errorf("create file record: %w", err)
		}
		res.Files = append(res.Files, f)
	}
	for _, f := range res.Files {
		ingestedBytes.Add(float64(f.FileSize))
	}

	s.log.Infow("files ingested",
		"user_id", userID, "subject_id", subj.ID,
		"accepted", len(res.Files), "rejected", len(res.Rejected))
	return res, nil
}

type pendingFile struct {
	upload      Upload
	contentType string
	saved       *storage.Saved
}

var errUnreadable = errors.New("unreadable upload")

// admit возвращает нормализованный content-type, если он разрешён.
func (s *FileService) admit(up Upload) (string, bool) {
	ct, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil {
		return "", false
	}
	ct = strings.ToLower(ct)
	_, ok := s.allowed[ct]
	return ct, ok
}

func (s *FileService) write(up Upload) (*storage.Saved, error) {
	if up.Open == nil {
		return nil, errUnreadable
	}
	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnreadable, err)
	}
	defer rc.Close()
	return s.store.Write(rc, up.Name, s.maxBytes)
}

func (s *FileService) reject(name, reason string) Rejection {
	rejectedFiles.WithLabelValues(reason).Inc()
	s.log.Infow("file rejected", "name", name, "reason", reason)
	return Rejection{Name: name, Reason: reason}
}

func (s *FileService) discard(files []*pendingFile) {
	for _, p := range files {
		if err := s.store.Delete(p.saved.Path); err != nil {
			s.log.Warnw("cleanup failed", "path", p.saved.Path, "err", err)
		}
	}
}

// Get возвращает запись файла владельца.
func (s *FileService) Get(ctx context.Context, userID int64, id string) (*model.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	f, err := s.files.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// ListBySubject — файлы предмета, новые сначала. Чужой предмет — ErrNotFound.
func (s *FileService) ListBySubject(ctx context.Context, userID int64, subjectID string) ([]model.File, error) {
	if _, err := uuid.Parse(subjectID); err != nil {
		return nil, ErrNotFound
	}
	if _, err := s.subjects.GetByID(ctx, userID, subjectID); err != nil {
		return nil, notFound(err)
	}
	return s.files.ListBySubject(ctx, userID, subjectID)
}

func (s *FileService) ListByOwner(ctx context.Context, userID int64) ([]model.File, error) {
	return s.files.ListByUser(ctx, userID)
}

// ListRetryable — файлы в статусах pending и failed, старые сначала.
func (s *FileService) ListRetryable(ctx context.Context, userID int64) ([]model.File, error) {
	return s.files.ListByStatus(ctx, userID, model.SyncPending, model.SyncFailed)
}

// Open открывает локальную копию файла. Нет записи или байтов на диске — ErrNotFound.
func (s *FileService) Open(ctx context.Context, userID int64, id string) (*model.File, *os.File, error) {
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	fh, err := s.store.Open(f.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return f, fh, nil
}

// Delete удаляет локальные байты (ошибка только логируется) и затем запись.
func (s *FileService) Delete(ctx context.Context, userID int64, id string) error {
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(f.FilePath); err != nil {
		s.log.Warnw("local file delete failed", "file_id", f.ID, "path", f.FilePath, "err", err)
	}
	return notFound(s.files.Delete(ctx, f.ID))
}

// UpdateSyncResult фиксирует исход синхронизации. Повторный вызов с тем же исходом
// даёт ту же запись (кроме отметки времени).
func (s *FileService) UpdateSyncResult(ctx context.Context, id string, out SyncOutcome) (*model.File, error) {
	updates := map[string]any{"sync_status": out.Status}
	if out.Status == model.SyncSynced {
		updates["remote_file_id"] = out.RemoteFileID
		updates["remote_folder_id"] = out.RemoteFolderID
		updates["remote_url"] = out.RemoteURL
		updates["last_sync_at"] = s.now().UTC()
	}
	f, err := s.files.UpdateByID(ctx, id, updates)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// localReader открывает байты файла для выгрузки.
func (s *FileService) localReader(f *model.File) (io.ReadCloser, error) {
	return s.store.Open(f.FilePath)
}
