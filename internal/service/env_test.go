package service

import (
	"Stash/internal/config"
	"Stash/internal/model"
	"Stash/internal/remote"
	"Stash/internal/remote/memdrive"
	"Stash/internal/repo"
	"Stash/internal/storage"
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv — сервисы поверх in-memory SQLite, временного каталога и хранилища в памяти.
type testEnv struct {
	db       *gorm.DB
	users    repo.UserRepository
	subjects repo.SubjectRepository
	files    repo.FileRepository

	store   *storage.LocalStore
	backend *memdrive.Backend

	subjectSvc *SubjectService
	fileSvc    *FileService
	syncSvc    *SyncService
	driveSvc   *DriveService

	user *model.User
}

const testRootName = "Stash - Study Materials"

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repo.InitDB("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	log := zap.NewNop().Sugar()
	e := &testEnv{
		db:       db,
		users:    repo.NewUserRepository(db),
		subjects: repo.NewSubjectRepository(db),
		files:    repo.NewFileRepository(db),
		store:    store,
		backend:  memdrive.New(),
	}
	resolver := remote.NewResolver(64, time.Minute)
	e.subjectSvc = NewSubjectService(e.subjects)
	e.fileSvc = NewFileService(e.files, e.subjects, store, config.DefaultAllowedTypes, 10<<20, log)
	e.syncSvc = NewSyncService(e.users, e.subjects, e.fileSvc, e.backend, resolver, nil, 4, log)
	e.driveSvc = NewDriveService(e.users, e.backend, resolver, testRootName, log)

	e.user = e.newUser(t, "alice@example.com")
	return e
}

func (e *testEnv) newUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &model.User{Name: "U", Email: email, Password: "x"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) newSubject(t *testing.T, userID int64, name string) *model.Subject {
	t.Helper()
	s, err := e.subjectSvc.Create(context.Background(), userID, name, "")
	require.NoError(t, err)
	return s
}

func (e *testEnv) connect(t *testing.T, userID int64) {
	t.Helper()
	_, err := e.driveSvc.Connect(context.Background(), userID, "code")
	require.NoError(t, err)
}

// storedFiles — имена файлов в каталоге загрузок.
func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.store.Dir())
	require.NoError(t, err)
	var names []string
	for _, en := range entries {
		names = append(names, en.Name())
	}
	return names
}

func (e *testEnv) recordCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.File{}).Count(&n).Error)
	return n
}

func upload(name, contentType string, data []byte) Upload {
	return Upload{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
