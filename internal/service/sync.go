package service

import (
	"Stash/internal/events"
	"Stash/internal/model"
	"Stash/internal/remote"
	"Stash/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SyncSummary — итог повторной синхронизации.
type SyncSummary struct {
	Total  int          `json:"total"`
	Synced int          `json:"synced"`
	Failed int          `json:"failed"`
	Files  []model.File `json:"files"`
}

// SyncService зеркалирует локально принятые файлы в удалённое хранилище.
// Ошибки отдельных файлов превращаются в статус failed и не прерывают остальные.
type SyncService struct {
	users     repo.UserRepository
	subjects  repo.SubjectRepository
	files     *FileService
	backend   remote.Backend
	resolver  *remote.Resolver
	publisher events.Publisher
	workers   int
	log       *zap.SugaredLogger
}

func NewSyncService(
	users repo.UserRepository,
	subjects repo.SubjectRepository,
	files *FileService,
	backend remote.Backend,
	resolver *remote.Resolver,
	publisher events.Publisher,
	workers int,
	logger *zap.SugaredLogger,
) *SyncService {
	if workers <= 0 {
		workers = 1
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SyncService{
		users:     users,
		subjects:  subjects,
		files:     files,
		backend:   backend,
		resolver:  resolver,
		publisher: publisher,
		workers:   workers,
		log:       logger,
	}
}

// SyncBatch делает одну попытку синхронизации каждого файла и возвращает обновлённые записи
// в исходном порядке. Отмена контекста запроса не прерывает пачку.
func (s *SyncService) SyncBatch(ctx context.Context, userID int64, files []model.File) []model.File {
	if len(files) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	out := make([]model.File, len(files))

	drive, rootID, err := s.open(ctx, userID)
	if err != nil {
		s.log.Infow("sync skipped", "user_id", userID, "files", len(files), "reason", err)
		for i := range files {
			out[i] = s.finish(ctx, &files[i], Failed(), err)
		}
		return out
	}

	subjectNames := s.subjectNames(ctx, userID, files)

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i := range files {
		g.Go(func() error {
			f := &files[i]
			name, ok := subjectNames[f.SubjectID]
			if !ok {
				out[i] = s.finish(ctx, f, Failed(), fmt.Errorf("subject %s: %w", f.SubjectID, ErrNotFound))
				return nil
			}
			res, err := s.upload(ctx, drive, rootID, name, f)
			if err != nil {
				s.resolver.Forget(userID, rootID, name)
				out[i] = s.finish(ctx, f, Failed(), err)
				return nil
			}
			out[i] = s.finish(ctx, f, res, nil)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ResyncPending повторяет синхронизацию всех pending/failed файлов пользователя.
func (s *SyncService) ResyncPending(ctx context.Context, userID int64) (*SyncSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if !user.Drive.Connected {
		return nil, ErrDriveNotConnected
	}

	files, err := s.files.ListRetryable(ctx, userID)
	if err != nil {
		return nil, err
	}
	synced := s.SyncBatch(ctx, userID, files)

	if err := s.users.TouchLastSync(ctx, userID, time.Now()); err != nil {
		s.log.Warnw("touch last sync failed", "user_id", userID, "err", err)
	}
	return summarize(synced), nil
}

// ResyncFile повторяет синхронизацию одного файла. Уже синхронизированный файл возвращается как есть.
func (s *SyncService) ResyncFile(ctx context.Context, userID int64, fileID string) (*model.File, error) {
	f, err := s.files.Get(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if f.SyncStatus == model.SyncSynced {
		return f, nil
	}
	res := s.SyncBatch(ctx, userID, []model.File{*f})
	return &res[0], nil
}

func (s *SyncService) open(ctx context.Context, userID int64) (remote.Drive, string, error) {
	user, err := s.users.GetWithCredentials(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if !user.Drive.Ready() {
		return nil, "", ErrDriveNotConnected
	}
	d, err := s.backend.Open(ctx, remote.Credentials{
		AccessToken:  user.Drive.AccessToken,
		RefreshToken: user.Drive.RefreshToken,
	})
	if err != nil {
		return nil, "", err
	}
	return d, user.Drive.RootFolderID, nil
}

func (s *SyncService) subjectNames(ctx context.Context, userID int64, files []model.File) map[string]string {
	names := make(map[string]string)
	for _, f := range files {
		if _, seen := names[f.SubjectID]; seen {
			continue
		}
		subj, err := s.subjects.GetByID(ctx, userID, f.SubjectID)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				s.log.Warnw("subject lookup failed", "subject_id", f.SubjectID, "err", err)
			}
			continue
		}
		names[f.SubjectID] = subj.Name
	}
	return names
}

func (s *SyncService) upload(ctx context.Context, d remote.Drive, rootID, subject string, f *model.File) (SyncOutcome, error) {
	folderID, err := s.resolver.ResolveHierarchy(ctx, d, f.UserID, rootID, subject, string(f.Category))
	if err != nil {
		return SyncOutcome{}, err
	}

	body, err := s.files.localReader(f)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("open local copy: %w", err)
	}
	defer body.Close()

	up, err := d.UploadFile(ctx, folderID, f.OriginalName, f.MimeType, f.FileSize, body)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("upload: %w", err)
	}
	return Synced(up.ID, folderID, up.ViewURL), nil
}

// finish записывает исход, публикует событие и возвращает актуальную запись.
func (s *SyncService) finish(ctx context.Context, f *model.File, out SyncOutcome, cause error) model.File {
	if cause != nil {
		s.log.Warnw("file sync failed", "file_id", f.ID, "user_id", f.UserID, "err", cause)
	}
	syncOutcomes.WithLabelValues(string(out.Status), string(f.Category)).Inc()

	result := *f
	updated, err := s.files.UpdateSyncResult(ctx, f.ID, out)
	if err != nil {
		s.log.Errorw("store sync result failed", "file_id", f.ID, "status", out.Status, "err", err)
		result.SyncStatus = out.Status
	} else {
		result = *updated
	}

	ev := events.FileSynced{
		FileID:       f.ID,
		UserID:       f.UserID,
		SubjectID:    f.SubjectID,
		Category:     string(f.Category),
		Status:       string(out.Status),
		RemoteFileID: out.RemoteFileID,
		At:           time.Now().UTC(),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if err := s.publisher.PublishFileSynced(ctx, ev); err != nil {
		s.log.Warnw("publish sync event failed", "file_id", f.ID, "err", err)
	}
	return result
}

func summarize(files []model.File) *SyncSummary {
	sum := &SyncSummary{Total: len(files), Files: files}
	if sum.Files == nil {
		sum.Files = []model.File{}
	}
	for _, f := range files {
		switch f.SyncStatus {
		case model.SyncSynced:
			sum.Synced++
		case model.SyncFailed:
			sum.Failed++
		}
	}
	return sum
}
