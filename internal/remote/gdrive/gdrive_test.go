package gdrive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"Stash/internal/remote"
)

type fakeAPI struct {
	mu       sync.Mutex
	queries  []string
	created  []map[string]any
	uploads  int
	listResp string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/drive/v3/files"):
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(f.listResp))
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/upload/"):
		f.uploads++
		_, _ = w.Write([]byte(`{"id":"file-1","webViewLink":"https://drive.example/file-1"}`))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/drive/v3/files"):
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		_, _ = w.Write([]byte(`{"id":"folder-9","name":"` + body["name"].(string) + `"}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestBackend(t *testing.T, api *fakeAPI) *Backend {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New("client", "secret", "http://localhost/callback",
		option.WithEndpoint(srv.URL+"/drive/v3/"),
		option.WithHTTPClient(srv.Client()),
	)
}

func TestAuthURL_RequestsOfflineConsent(t *testing.T) {
	b := New("client-id", "secret", "http://localhost/callback")
	raw := b.AuthURL("state-42")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-42", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "drive.file")
}

func TestOpen_RequiresCredentials(t *testing.T) {
	b := New("c", "s", "r")
	_, err := b.Open(context.Background(), remote.Credentials{})
	assert.ErrorIs(t, err, remote.ErrNotConnected)
}

func TestListFolders_QueryAndResult(t *testing.T) {
	api := &fakeAPI{listResp: `{"files":[{"id":"a","name":"Bob's notes"},{"id":"b","name":"Bob's notes"}]}`}
	d, err := newTestBackend(t, api).Open(context.Background(), remote.Credentials{AccessToken: "tok"})
	require.NoError(t, err)

	folders, err := d.ListFolders(context.Background(), "parent-1", "Bob's notes")
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "a", folders[0].ID)

	require.Len(t, api.queries, 1)
	q := api.queries[0]
	assert.Contains(t, q, `name='Bob\'s notes'`)
	assert.Contains(t, q, `'parent-1' in parents`)
	assert.Contains(t, q, "trashed=false")
	assert.Contains(t, q, folderMimeType)
}

func TestCreateFolder(t *testing.T) {
	api := &fakeAPI{}
	d, err := newTestBackend(t, api).Open(context.Background(), remote.Credentials{AccessToken: "tok"})
	require.NoError(t, err)

	f, err := d.CreateFolder(context.Background(), "root", "Math")
	require.NoError(t, err)
	assert.Equal(t, "folder-9", f.ID)

	require.Len(t, api.created, 1)
	assert.Equal(t, "Math", api.created[0]["name"])
	assert.Equal(t, folderMimeType, api.created[0]["mimeType"])
	assert.Equal(t, []any{"root"}, api.created[0]["parents"])
}

func TestUploadFile(t *testing.T) {
	api := &fakeAPI{}
	d, err := newTestBackend(t, api).Open(context.Background(), remote.Credentials{AccessToken: "tok"})
	require.NoError(t, err)

	up, err := d.UploadFile(context.Background(), "folder-9", "notes.pdf", "application/pdf", 4, strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "file-1", up.ID)
	assert.Equal(t, "https://drive.example/file-1", up.ViewURL)
	assert.Equal(t, 1, api.uploads)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\'b`, escape(`a'b`))
	assert.Equal(t, `a\\b`, escape(`a\b`))
}
