package service

import (
	"Stash/internal/model"
	"Stash/internal/remote"
	"Stash/internal/repo"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DriveStatus — публичное состояние привязки. Токены сюда не попадают.
type DriveStatus struct {
	Backend     string     `json:"backend"`
	Connected   bool       `json:"isConnected"`
	ConnectedAt *time.Time `json:"connectedAt"`
	LastSyncAt  *time.Time `json:"lastSyncAt"`
}

// DriveService — подключение пользователя к удалённому хранилищу.
type DriveService struct {
	users    repo.UserRepository
	backend  remote.Backend
	resolver *remote.Resolver
	rootName string
	log      *zap.SugaredLogger
}

func NewDriveService(
	users repo.UserRepository,
	backend remote.Backend,
	resolver *remote.Resolver,
	rootName string,
	logger *zap.SugaredLogger,
) *DriveService {
	return &DriveService{users: users, backend: backend, resolver: resolver, rootName: rootName, log: logger}
}

// AuthURL возвращает адрес страницы согласия и state для сверки на клиенте.
func (s *DriveService) AuthURL() (url, state string) {
	state = uuid.NewString()
	return s.backend.AuthURL(state), state
}

// Connect обменивает код на токены, находит или создаёт корневую папку и сохраняет привязку.
func (s *DriveService) Connect(ctx context.Context, userID int64, code string) (*DriveStatus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrInvalidInput)
	}

	creds, err := s.backend.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	d, err := s.backend.Open(ctx, creds)
	if err != nil {
		return nil, err
	}
	// корень ищется всегда заново: папку могли удалить между подключениями
	rootID, err := s.resolver.ResolveFolder(ctx, d, s.backend.TopParent(userID), s.rootName)
	if err != nil {
		return nil, fmt.Errorf("root folder: %w", err)
	}

	now := time.Now().UTC()
	link := model.DriveLink{
		Connected:    true,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ConnectedAt:  &now,
		RootFolderID: rootID,
	}
	if err := s.users.ConnectDrive(ctx, userID, link); err != nil {
		return nil, notFound(err)
	}
	s.log.Infow("remote storage connected", "user_id", userID, "backend", s.backend.Name())
	return s.Status(ctx, userID)
}

func (s *DriveService) Status(ctx context.Context, userID int64) (*DriveStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &DriveStatus{
		Backend:     s.backend.Name(),
		Connected:   user.Drive.Connected,
		ConnectedAt: user.Drive.ConnectedAt,
		LastSyncAt:  user.Drive.LastSyncAt,
	}, nil
}

// Disconnect удаляет токены и корневую папку. Файлы в хранилище не трогаются.
func (s *DriveService) Disconnect(ctx context.Context, userID int64) error {
	if err := s.users.DisconnectDrive(ctx, userID); err != nil {
		return notFound(err)
	}
	s.resolver.ForgetOwner(userID)
	s.log.Infow("remote storage disconnected", "user_id", userID)
	return nil
}
