package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

type userLookup interface {
	Get(ctx context.Context, id int64) (models.User, error)
}

// userCacheParts is the key prefix of a gym's shared user entries.
func userCacheParts(gymID int64) []string {
	return []string{"gym", strconv.FormatInt(gymID, 10), "users"}
}

// InvalidateGymUsers drops a gym's shared user entries, e.g. after a user is
// renamed or deleted.
func InvalidateGymUsers(ctx context.Context, cache *CacheService, gymID int64) error {
	return cache.Invalidate(ctx, userCacheParts(gymID)...)
}

// UserDirectory memoizes user display info for the lifetime of one screen.
// Entries are added as they are resolved and never refreshed; a renamed user
// keeps the old name until the screen is remounted. Users the backend reports
// as missing are remembered too. The shared tier is keyed per gym so every
// screen of that gym reuses it.
type UserDirectory struct {
	users  userLookup
	cache  *CacheService
	gymID  int64
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[int64]models.UserInfo
	missing map[int64]struct{}
}

// NewUserDirectory creates a directory for one screen of gymID. cache may be nil.
func NewUserDirectory(users userLookup, cache *CacheService, gymID int64, ttl time.Duration, logger *zap.Logger) *UserDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserDirectory{
		users:   users,
		cache:   cache,
		gymID:   gymID,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[int64]models.UserInfo),
		missing: make(map[int64]struct{}),
	}
}

// Lookup returns the user's display info, fetching it at most once per screen.
func (d *UserDirectory) Lookup(ctx context.Context, id int64) (models.UserInfo, error) {
	d.mu.RLock()
	info, ok := d.entries[id]
	_, gone := d.missing[id]
	d.mu.RUnlock()
	if ok {
		return info, nil
	}
	if gone {
		return models.UserInfo{}, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	key := d.key(id)
	if d.cache.Get(ctx, key, &info) {
		d.store(info)
		return info, nil
	}

	user, err := d.users.Get(ctx, id)
	if err != nil {
		// Transient failures are retried on the next lookup.
		if appErrors.KindOf(err) == appErrors.KindNotFound {
			d.mu.Lock()
			d.missing[id] = struct{}{}
			d.mu.Unlock()
		}
		return models.UserInfo{}, err
	}
	info = user.Info()
	d.store(info)
	d.cache.Set(ctx, key, info, d.ttl)
	return info, nil
}

// Resolve looks up every id and returns those it could find. Failures are
// logged and leave the name unresolved.
func (d *UserDirectory) Resolve(ctx context.Context, ids []int64) map[int64]models.UserInfo {
	out := make(map[int64]models.UserInfo, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, done := out[id]; done {
			continue
		}
		info, err := d.Lookup(ctx, id)
		if err != nil {
			d.logger.Debug("user lookup failed", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		out[id] = info
	}
	return out
}

// Len reports how many users have been memoized.
func (d *UserDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Close releases the screen's memoized entries. Shared entries expire on their own.
func (d *UserDirectory) Close() {
	d.mu.Lock()
	d.entries = make(map[int64]models.UserInfo)
	d.missing = make(map[int64]struct{})
	d.mu.Unlock()
}

func (d *UserDirectory) store(info models.UserInfo) {
	d.mu.Lock()
	d.entries[info.ID] = info
	d.mu.Unlock()
}

func (d *UserDirectory) key(id int64) string {
	return CacheKey(append(userCacheParts(d.gymID), strconv.FormatInt(id, 10))...)
}
