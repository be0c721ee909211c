package handlers_test

import (
	"Stash/internal/config"
	"Stash/internal/handlers"
	"Stash/internal/middleware"
	"Stash/internal/model"
	"Stash/internal/remote"
	"Stash/internal/remote/memdrive"
	"Stash/internal/repo"
	"Stash/internal/service"
	"Stash/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testServer — роутер поверх настоящих сервисов, in-memory SQLite и хранилища в памяти.
type testServer struct {
	router  http.Handler
	cfg     *config.Config
	db      *gorm.DB
	store   *storage.LocalStore
	backend *memdrive.Backend
	users   repo.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repo.InitDB("file:h_" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		AuthSecret:        "test-secret",
		MaxUploadMB:       1,
		MaxFilesPerUpload: 3,
		AllowedTypes:      config.DefaultAllowedTypes,
		SyncWorkers:       2,
		RemoteRootName:    "Stash - Study Materials",
	}
	logger := zap.NewNop().Sugar()
	backend := memdrive.New()
	resolver := remote.NewResolver(32, time.Minute)

	users := repo.NewUserRepository(db)
	subjects := repo.NewSubjectRepository(db)
	files := repo.NewFileRepository(db)

	userSvc := service.NewUserService(users)
	subjectSvc := service.NewSubjectService(subjects)
	fileSvc := service.NewFileService(files, subjects, store, cfg.AllowedTypes, cfg.MaxUploadBytes(), logger)
	syncSvc := service.NewSyncService(users, subjects, fileSvc, backend, resolver, nil, cfg.SyncWorkers, logger)
	driveSvc := service.NewDriveService(users, backend, resolver, cfg.RemoteRootName, logger)

	h := handlers.NewHandler(userSvc, subjectSvc, fileSvc, syncSvc, driveSvc, logger, cfg)
	return &testServer{router: h.Router, cfg: cfg, db: db, store: store, backend: backend, users: users}
}

func (s *testServer) newUser(t *testing.T, email string) int64 {
	t.Helper()
	u, err := s.users.CreateUser(context.Background(), &model.User{Name: "U", Email: email, Password: "x"})
	require.NoError(t, err)
	return u.ID
}

func addAuth(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_, _ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// envelopeResp — разобранный ответ API.
type envelopeResp struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, userID int64, body any) (*httptest.ResponseRecorder, envelopeResp) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		addAuth(t, req, userID, s.cfg.AuthSecret)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelopeResp) {
	t.Helper()
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	var env envelopeResp
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

type part struct {
	name        string
	contentType string
	data        []byte
}

// upload собирает multipart-запрос: поле subjectId (если не пустое) и файлы в поле files.
func (s *testServer) upload(t *testing.T, userID int64, subjectID string, parts ...part) (*httptest.ResponseRecorder, envelopeResp) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if subjectID != "" {
		require.NoError(t, mw.WriteField("subjectId", subjectID))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	addAuth(t, req, userID, s.cfg.AuthSecret)
	return s.serve(t, req)
}

func (s *testServer) createSubject(t *testing.T, userID int64, name string) string {
	t.Helper()
	rr, env := s.do(t, http.MethodPost, "/api/subjects", userID, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var data struct {
		Subject struct {
			ID string `json:"id"`
		} `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Subject.ID
}

func (s *testServer) storedFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(s.store.Dir())
	require.NoError(t, err)
	return entries
}

func (s *testServer) recordCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&model.File{}).Count(&n).Error)
	return n
}

type fileJSON struct {
	ID           string `json:"id"`
	OriginalName string `json:"originalName"`
	Category     string `json:"category"`
	SyncStatus   string `json:"syncStatus"`
	RemoteFileID string `json:"remoteFileId"`
	FileSize     int64  `json:"fileSize"`
}

type uploadData struct {
	Files    []fileJSON          `json:"files"`
	Rejected []service.Rejection `json:"rejected"`
}
