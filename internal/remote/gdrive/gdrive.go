// Package gdrive — удалённое хранилище на Google Drive.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"Stash/internal/remote"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Backend хранит только параметры OAuth-приложения.
type Backend struct {
	oauth *oauth2.Config
	opts  []option.ClientOption
}

// New создаёт бэкенд. Дополнительные opts передаются в каждый drive.Service (в тестах — endpoint).
func New(clientID, clientSecret, redirectURL string, opts ...option.ClientOption) *Backend {
	return &Backend{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{drive.DriveFileScope, drive.DriveReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		opts: opts,
	}
}

func (b *Backend) Name() string { return "gdrive" }

// AuthURL запрашивает офлайн-доступ с обязательным экраном согласия, чтобы получить refresh token.
func (b *Backend) AuthURL(state string) string {
	return b.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (b *Backend) Exchange(ctx context.Context, code string) (remote.Credentials, error) {
	tok, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		return remote.Credentials{}, fmt.Errorf("exchange code: %w", err)
	}
	return remote.Credentials{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}

// Open создаёт клиент Drive из токенов конкретного пользователя.
func (b *Backend) Open(ctx context.Context, creds remote.Credentials) (remote.Drive, error) {
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return nil, remote.ErrNotConnected
	}
	tok := &oauth2.Token{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken, TokenType: "Bearer"}
	opts := append([]option.ClientOption{option.WithTokenSource(b.oauth.TokenSource(ctx, tok))}, b.opts...)

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &client{srv: srv}, nil
}

// TopParent — корень «Мой диск».
func (b *Backend) TopParent(int64) string { return "root" }

type client struct {
	srv *drive.Service
}

func (c *client) ListFolders(ctx context.Context, parentID, name string) ([]remote.Folder, error) {
	q := fmt.Sprintf("mimeType='%s' and name='%s' and '%s' in parents and trashed=false",
		folderMimeType, escape(name), escape(parentID))

	list, err := c.srv.Files.List().
		Q(q).
		Fields("files(id, name)").
		OrderBy("createdTime").
		Spaces("drive").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]remote.Folder, 0, len(list.Files))
	for _, f := range list.Files {
		out = append(out, remote.Folder{ID: f.Id, Name: f.Name})
	}
	return out, nil
}

func (c *client) CreateFolder(ctx context.Context, parentID, name string) (remote.Folder, error) {
	f, err := c.srv.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return remote.Folder{}, err
	}
	return remote.Folder{ID: f.Id, Name: f.Name}, nil
}

func (c *client) UploadFile(ctx context.Context, parentID, name, contentType string, _ int64, body io.Reader) (remote.Uploaded, error) {
	f, err := c.srv.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parentID},
	}).Media(body, googleapi.ContentType(contentType)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return remote.Uploaded{}, err
	}
	return remote.Uploaded{ID: f.Id, ViewURL: f.WebViewLink}, nil
}

// escape экранирует строковый литерал для языка запросов Drive.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
