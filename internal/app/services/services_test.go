package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/app/repositories/memory"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
	"golang.org/x/crypto/bcrypt"
)

var day0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeObjects is an in-memory ObjectStore with a call trace.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) Put(_ context.Context, prefix string, data []byte, contentType string) (filestorage.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return filestorage.StoredObject{}, f.putErr
	}
	if contentType != "image/png" && contentType != "image/jpeg" {
		return filestorage.StoredObject{}, filestorage.ErrUnsupportedContentType
	}
	key := prefix + "/" + uuid.NewString()
	f.objects[key] = data
	return filestorage.StoredObject{Bucket: "test", Key: key, ETag: fmt.Sprintf("%x", len(data))}, nil
}

func (f *fakeObjects) URL(bucket, key string) string {
	return "mem://" + bucket + "/" + key
}

func (f *fakeObjects) Delete(_ context.Context, _ string, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type testEnv struct {
	ctx     context.Context
	store   repositories.Store
	clock   *helpers.ManualClock
	objects *fakeObjects
	jwt     *pkgauth.JWTService
	svc     *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, memory.NewStore(zerolog.Nop()))
}

// newTestEnvOn wires the services over store with a stopped clock and fake objects.
func newTestEnvOn(t *testing.T, store repositories.Store) *testEnv {
	t.Helper()
	clock := helpers.NewManualClock(day0)
	objects := newFakeObjects()
	jwt := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "clubhub.test",
	}, clock, pkgauth.NewRevocationList(clock, zerolog.Nop()))

	return &testEnv{
		ctx:     context.Background(),
		store:   store,
		clock:   clock,
		objects: objects,
		jwt:     jwt,
		svc: NewServices(Dependencies{
			Store:   store,
			Objects: objects,
			Tokens:  jwt,
			Hasher:  pkgauth.PasswordHasher{Cost: bcrypt.MinCost},
			Clock:   clock,
			Logger:  zerolog.Nop(),
		}),
	}
}

// user inserts a user straight into the store.
func (e *testEnv) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := models.User{
		ID:        models.NewID(),
		Email:     name + "@uni.test",
		Username:  name,
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	require.NoError(t, e.store.WithTx(e.ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Users().Create(ctx, &u)
	}))
	return u.ID
}

func (e *testEnv) club(t *testing.T, adminID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	c, err := e.svc.Membership.CreateWithAdmin(e.ctx, adminID, models.Club{Name: name, Category: "Sports"})
	require.NoError(t, err)
	return c.ID
}

// member joins userID to the club and, if role is not MEMBER, has adminID grant it.
func (e *testEnv) member(t *testing.T, clubID, userID, adminID uuid.UUID, role models.Role) uuid.UUID {
	t.Helper()
	m, err := e.svc.Membership.Join(e.ctx, clubID, userID)
	require.NoError(t, err)
	if role != models.RoleMember {
		_, err = e.svc.Membership.ChangeRole(e.ctx, clubID, m.ID, role, adminID)
		require.NoError(t, err)
	}
	return m.ID
}

func (e *testEnv) post(t *testing.T, clubID, authorID uuid.UUID, content string) uuid.UUID {
	t.Helper()
	p, err := e.svc.Posts.Create(e.ctx, authorID, clubID, content, nil)
	require.NoError(t, err)
	return p.ID
}

func (e *testEnv) getPost(t *testing.T, id uuid.UUID) *models.Post {
	t.Helper()
	var p *models.Post
	require.NoError(t, e.store.WithTx(e.ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		p, err = tx.Posts().GetByID(ctx, id)
		return err
	}))
	return p
}

func (e *testEnv) exists(t *testing.T, fn func(ctx context.Context, tx repositories.Tx) error) bool {
	t.Helper()
	err := e.store.WithTx(e.ctx, fn)
	if errors.Is(err, repositories.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}
