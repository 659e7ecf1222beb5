package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

type fakeUserLookup struct {
	mu    sync.Mutex
	users map[int64]models.User
	calls map[int64]int
}

func (f *fakeUserLookup) Get(ctx context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[int64]int{}
	}
	f.calls[id]++
	user, ok := f.users[id]
	if !ok {
		return models.User{}, appErrors.ErrNotFound
	}
	return user, nil
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = raw
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if strings.HasPrefix(key, prefix) {
			delete(r.entries, key)
		}
	}
	return nil
}

func TestUserDirectoryMemoizes(t *testing.T) {
	lookup := &fakeUserLookup{users: map[int64]models.User{
		7: {ID: 7, FullName: "Tess Trainer", Role: models.RoleTrainer},
	}}
	dir := NewUserDirectory(lookup, nil, 1, time.Minute, nil)

	for i := 0; i < 3; i++ {
		info, err := dir.Lookup(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Tess Trainer", info.FullName)
	}
	assert.Equal(t, 1, lookup.calls[7])
}

func TestUserDirectoryResolveSkipsFailures(t *testing.T) {
	lookup := &fakeUserLookup{users: map[int64]models.User{1: {ID: 1, FullName: "Owner"}}}
	dir := NewUserDirectory(lookup, nil, 1, time.Minute, nil)

	got := dir.Resolve(context.Background(), []int64{1, 1, 2, 0})
	assert.Len(t, got, 1)
	assert.Equal(t, "Owner", got[1].FullName)
	assert.Equal(t, 1, dir.Len())
}

func TestUserDirectoryRemembersMissingUsers(t *testing.T) {
	lookup := &fakeUserLookup{users: map[int64]models.User{}}
	dir := NewUserDirectory(lookup, nil, 1, time.Minute, nil)

	for i := 0; i < 3; i++ {
		assert.Empty(t, dir.Resolve(context.Background(), []int64{42}))
	}
	assert.Equal(t, 1, lookup.calls[42])

	_, err := dir.Lookup(context.Background(), 42)
	assert.Equal(t, appErrors.KindNotFound, appErrors.KindOf(err))
}

type flakyUserLookup struct {
	calls int
}

func (f *flakyUserLookup) Get(ctx context.Context, id int64) (models.User, error) {
	f.calls++
	if f.calls == 1 {
		return models.User{}, appErrors.ErrUpstream
	}
	return models.User{ID: id, FullName: "Back online"}, nil
}

func TestUserDirectoryRetriesTransientFailures(t *testing.T) {
	lookup := &flakyUserLookup{}
	dir := NewUserDirectory(lookup, nil, 1, time.Minute, nil)

	_, err := dir.Lookup(context.Background(), 5)
	require.Error(t, err)
	info, err := dir.Lookup(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Back online", info.FullName)
	assert.Equal(t, 2, lookup.calls)
}

func TestUserDirectorySharesRedisTierAcrossScreensOfAGym(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	lookup := &fakeUserLookup{users: map[int64]models.User{3: {ID: 3, FullName: "Sam Staff"}}}

	first := NewUserDirectory(lookup, cache, 1, time.Minute, nil)
	_, err := first.Lookup(context.Background(), 3)
	require.NoError(t, err)
	first.Close()
	assert.Contains(t, repo.entries, "gymdash:gym:1:users:3")

	second := NewUserDirectory(lookup, cache, 1, time.Minute, nil)
	info, err := second.Lookup(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Sam Staff", info.FullName)
	assert.Equal(t, 1, lookup.calls[3])

	otherGym := NewUserDirectory(lookup, cache, 2, time.Minute, nil)
	_, err = otherGym.Lookup(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.calls[3])

	require.NoError(t, InvalidateGymUsers(context.Background(), cache, 1))
	assert.NotContains(t, repo.entries, "gymdash:gym:1:users:3")
	assert.Contains(t, repo.entries, "gymdash:gym:2:users:3")
}
