package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutURLDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://cdn.test/files/", "clubhub", zerolog.Nop())
	require.NoError(t, err)

	obj, err := ls.Put(ctx, "clubs/avatars", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "clubhub", obj.Bucket)
	assert.True(t, strings.HasPrefix(obj.Key, "clubs/avatars/"))
	assert.True(t, strings.HasSuffix(obj.Key, ".png"))
	assert.Len(t, obj.ETag, 64)

	data, err := os.ReadFile(filepath.Join(dir, obj.Bucket, filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	assert.Equal(t, "http://cdn.test/files/clubhub/"+obj.Key, ls.URL(obj.Bucket, obj.Key))
	assert.Empty(t, ls.URL("", ""))

	require.NoError(t, ls.Delete(ctx, obj.Bucket, obj.Key))
	require.NoError(t, ls.Delete(ctx, obj.Bucket, obj.Key))
	_, err = os.Stat(filepath.Join(dir, obj.Bucket, filepath.FromSlash(obj.Key)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageRejects(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir(), "", "clubhub", zerolog.Nop())
	require.NoError(t, err)

	_, err = ls.Put(ctx, "posts", []byte("text"), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)

	assert.Error(t, ls.Delete(ctx, "clubhub", "../../etc/passwd"))
	assert.Error(t, ls.Delete(ctx, "../x", "a.png"))
}
