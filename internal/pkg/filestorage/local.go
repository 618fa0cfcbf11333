package filestorage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStorage handles saving files to the local filesystem. Objects live at
// <basePath>/<bucket>/<key>.
type LocalStorage struct {
	basePath string
	baseURL  string
	bucket   string
	log      zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath, baseURL, bucket string, log zerolog.Logger) (*LocalStorage, error) {
	if bucket == "" {
		bucket = "default"
	}
	root := filepath.Join(basePath, bucket)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", root, err)
	}
	log.Info().Str("path", root).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		bucket:   bucket,
		log:      log,
	}, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func extensionFor(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, mediaType)
	}
	return ext, nil
}

// objectPath resolves bucket/key below basePath and refuses keys that escape it.
func (ls *LocalStorage) objectPath(bucket, key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == ".." || bucket == "." {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	return filepath.Join(ls.basePath, bucket, filepath.FromSlash(clean)), nil
}

// Put writes data below prefix with a random name. The ETag is the SHA-256 of the
// content.
func (ls *LocalStorage) Put(ctx context.Context, prefix string, data []byte, contentType string) (StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return StoredObject{}, err
	}
	ext, err := extensionFor(contentType)
	if err != nil {
		return StoredObject{}, err
	}

	key := path.Join(strings.Trim(prefix, "/"), uuid.New().String()+ext)
	dst, err := ls.objectPath(ls.bucket, key)
	if err != nil {
		return StoredObject{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Write to a temp file first so readers never see a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return StoredObject{}, fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return StoredObject{}, fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return StoredObject{}, fmt.Errorf("failed to move file into place: %w", err)
	}

	sum := sha256.Sum256(data)
	obj := StoredObject{Bucket: ls.bucket, Key: key, ETag: hex.EncodeToString(sum[:])}
	ls.log.Debug().Str("bucket", obj.Bucket).Str("key", obj.Key).Int("size", len(data)).Msg("Object stored")
	return obj, nil
}

// URL returns the public URL of an object.
func (ls *LocalStorage) URL(bucket, key string) string {
	if bucket == "" || key == "" {
		return ""
	}
	if ls.baseURL == "" {
		return path.Join("/", bucket, key)
	}
	return ls.baseURL + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}

// Delete removes an object. Missing objects are ignored.
func (ls *LocalStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := ls.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	ls.log.Debug().Str("bucket", bucket).Str("key", key).Msg("Object deleted")
	return nil
}
