// Package memdrive — хранилище в памяти процесса. Используется для локальной разработки
// (REMOTE_BACKEND=memory) и в тестах.
package memdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"

	"Stash/internal/remote"
)

// ErrTokenRevoked возвращается для отозванного токена.
var ErrTokenRevoked = errors.New("token revoked")

// Object — папка или файл в хранилище.
type Object struct {
	ID          string
	ParentID    string
	Name        string
	Folder      bool
	Trashed     bool
	ContentType string
	Data        []byte
	Seq         int
}

// Backend хранит объекты всех пользователей.
type Backend struct {
	mu      sync.Mutex
	seq     int
	objects map[string]*Object
	revoked map[string]bool

	// FailUpload, если задан, вызывается перед загрузкой; ненулевая ошибка прерывает её.
	FailUpload func(name string) error
}

func New() *Backend {
	return &Backend{objects: make(map[string]*Object), revoked: make(map[string]bool)}
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) AuthURL(state string) string {
	return "memory://authorize?state=" + url.QueryEscape(state)
}

func (b *Backend) Exchange(_ context.Context, code string) (remote.Credentials, error) {
	if code == "" {
		return remote.Credentials{}, errors.New("empty authorization code")
	}
	return remote.Credentials{AccessToken: "mem-access-" + code, RefreshToken: "mem-refresh-" + code}, nil
}

func (b *Backend) Open(_ context.Context, creds remote.Credentials) (remote.Drive, error) {
	if creds.AccessToken == "" {
		return nil, remote.ErrNotConnected
	}
	return &drive{b: b, token: creds.AccessToken}, nil
}

func (b *Backend) TopParent(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

// Revoke делает токен недействительным.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = true
}

// Trash помечает объект удалённым пользователем.
func (b *Backend) Trash(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o, ok := b.objects[id]; ok {
		o.Trashed = true
	}
}

// Get возвращает копию объекта.
func (b *Backend) Get(id string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objects[id]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

// Children возвращает не удалённые объекты внутри parentID в порядке создания.
func (b *Backend) Children(parentID string) []Object {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Object
	for _, o := range b.objects {
		if o.ParentID == parentID && !o.Trashed {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// AddFolder создаёт папку напрямую, в обход резолвера.
func (b *Backend) AddFolder(parentID, name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.add(&Object{ParentID: parentID, Name: name, Folder: true}).ID
}

func (b *Backend) add(o *Object) *Object {
	b.seq++
	o.Seq = b.seq
	if o.Folder {
		o.ID = fmt.Sprintf("folder-%d", b.seq)
	} else {
		o.ID = fmt.Sprintf("file-%d", b.seq)
	}
	b.objects[o.ID] = o
	return o
}

type drive struct {
	b     *Backend
	token string
}

func (d *drive) check() error {
	if d.b.revoked[d.token] {
		return ErrTokenRevoked
	}
	return nil
}

func (d *drive) ListFolders(ctx context.Context, parentID, name string) ([]remote.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if err := d.check(); err != nil {
		return nil, err
	}

	var found []*Object
	for _, o := range d.b.objects {
		if o.Folder && !o.Trashed && o.ParentID == parentID && o.Name == name {
			found = append(found, o)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Seq < found[j].Seq })

	out := make([]remote.Folder, 0, len(found))
	for _, o := range found {
		out = append(out, remote.Folder{ID: o.ID, Name: o.Name})
	}
	return out, nil
}

func (d *drive) CreateFolder(ctx context.Context, parentID, name string) (remote.Folder, error) {
	if err := ctx.Err(); err != nil {
		return remote.Folder{}, err
	}
	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if err := d.check(); err != nil {
		return remote.Folder{}, err
	}
	o := d.b.add(&Object{ParentID: parentID, Name: name, Folder: true})
	return remote.Folder{ID: o.ID, Name: o.Name}, nil
}

func (d *drive) UploadFile(ctx context.Context, parentID, name, contentType string, _ int64, body io.Reader) (remote.Uploaded, error) {
	if err := ctx.Err(); err != nil {
		return remote.Uploaded{}, err
	}
	if d.b.FailUpload != nil {
		if err := d.b.FailUpload(name); err != nil {
			return remote.Uploaded{}, err
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return remote.Uploaded{}, err
	}

	d.b.mu.Lock()
	defer d.b.mu.Unlock()
	if err := d.check(); err != nil {
		return remote.Uploaded{}, err
	}
	parent, ok := d.b.objects[parentID]
	if !ok || !parent.Folder || parent.Trashed {
		return remote.Uploaded{}, fmt.Errorf("parent folder %s not found", parentID)
	}
	o := d.b.add(&Object{ParentID: parentID, Name: name, ContentType: contentType, Data: data})
	return remote.Uploaded{ID: o.ID, ViewURL: "memory://files/" + o.ID}, nil
}
