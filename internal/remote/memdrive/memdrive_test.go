package memdrive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Stash/internal/remote"
)

func TestBackend_ExchangeAndOpen(t *testing.T) {
	b := New()
	ctx := context.Background()

	_, err := b.Exchange(ctx, "")
	assert.Error(t, err)

	creds, err := b.Exchange(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "mem-access-abc", creds.AccessToken)
	assert.Equal(t, "mem-refresh-abc", creds.RefreshToken)

	_, err = b.Open(ctx, remote.Credentials{})
	assert.ErrorIs(t, err, remote.ErrNotConnected)

	assert.Equal(t, "user-42", b.TopParent(42))
	assert.Equal(t, "memory://authorize?state=a+b", b.AuthURL("a b"))
}

func TestDrive_FoldersAndUpload(t *testing.T) {
	b := New()
	ctx := context.Background()
	d, err := b.Open(ctx, remote.Credentials{AccessToken: "tok"})
	require.NoError(t, err)

	root, err := d.CreateFolder(ctx, "user-1", "Stash")
	require.NoError(t, err)
	dup := b.AddFolder("user-1", "Stash")

	found, err := d.ListFolders(ctx, "user-1", "Stash")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, root.ID, found[0].ID, "older folder first")

	b.Trash(dup)
	found, err = d.ListFolders(ctx, "user-1", "Stash")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	up, err := d.UploadFile(ctx, root.ID, "notes.txt", "text/plain", 5, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "memory://files/"+up.ID, up.ViewURL)

	obj, ok := b.Get(up.ID)
	require.True(t, ok)
	assert.Equal(t, "hello", string(obj.Data))
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Len(t, b.Children(root.ID), 1)

	_, err = d.UploadFile(ctx, "folder-999", "x.txt", "text/plain", 1, strings.NewReader("x"))
	assert.Error(t, err, "missing parent")
}

func TestDrive_RevokedAndInjectedFailures(t *testing.T) {
	b := New()
	ctx := context.Background()
	d, err := b.Open(ctx, remote.Credentials{AccessToken: "tok"})
	require.NoError(t, err)
	folder, err := d.CreateFolder(ctx, "user-1", "Stash")
	require.NoError(t, err)

	boom := errors.New("quota exceeded")
	b.FailUpload = func(name string) error {
		if name == "big.pdf" {
			return boom
		}
		return nil
	}
	_, err = d.UploadFile(ctx, folder.ID, "big.pdf", "application/pdf", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, boom)
	_, err = d.UploadFile(ctx, folder.ID, "small.pdf", "application/pdf", 1, strings.NewReader("x"))
	assert.NoError(t, err)

	b.Revoke("tok")
	_, err = d.ListFolders(ctx, "user-1", "Stash")
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = d.CreateFolder(ctx, "user-1", "Other")
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
