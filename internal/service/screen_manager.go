package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/gateway"
	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/timezone"
)

const (
	gymSettingsTTL     = 10 * time.Minute
	minJanitorInterval = time.Second
)

// ScreenSettings tunes every mounted screen.
type ScreenSettings struct {
	PageSize        int
	SearchDebounce  time.Duration
	NotificationTTL time.Duration
	// IdleTTL unmounts screens nobody has touched for this long. Zero keeps them forever.
	IdleTTL time.Duration
}

// ScreenManagerConfig wires a ScreenManager.
type ScreenManagerConfig struct {
	Client          *gateway.Client
	Clock           clockwork.Clock
	Settings        ScreenSettings
	DefaultTimezone string
	Cache           *CacheService
	Audit           *AuditService
	Metrics         *MetricsService
	Logger          *zap.Logger
}

type mountedScreen struct {
	screen   Screen
	owner    int64
	lastSeen time.Time
}

// ScreenManager holds the screens mounted by dashboard sessions.
type ScreenManager struct {
	client    *gateway.Client
	clock     clockwork.Clock
	settings  ScreenSettings
	defaultTZ string
	validate  *validator.Validate
	cache     *CacheService
	audit     *AuditService
	metrics   *MetricsService
	logger    *zap.Logger

	mu      sync.Mutex
	screens map[string]*mountedScreen
}

// NewScreenManager constructs a ScreenManager.
func NewScreenManager(cfg ScreenManagerConfig) *ScreenManager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ScreenManager{
		client:    cfg.Client,
		clock:     cfg.Clock,
		settings:  cfg.Settings,
		defaultTZ: cfg.DefaultTimezone,
		validate:  NewValidator(),
		cache:     cfg.Cache,
		audit:     cfg.Audit,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		screens:   make(map[string]*mountedScreen),
	}
}

// Mount creates a screen for resource, owned by session, and runs its first load.
// A first load rejected for auth reasons unmounts the screen again; any other
// failure leaves it mounted with the error in its view.
func (m *ScreenManager) Mount(ctx context.Context, session models.Session, resource models.Resource) (Screen, error) {
	if !CanManage(session.Role) {
		return nil, appErrors.ErrForbidden
	}
	factory, ok := screenCatalog[resource]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown screen "+string(resource))
	}

	id := uuid.NewString()
	screen, err := factory.mount(screenEnv{
		id:       id,
		session:  session,
		client:   m.client,
		clock:    m.clock,
		settings: m.settings,
		validate: m.validate,
		tz:       m.gymTimezone(ctx, session.GymID),
		cache:    m.cache,
		audit:    m.audit,
		logger:   m.logger.With(zap.Int64("user_id", session.UserID), zap.String("resource", string(resource))),
	})
	if err != nil {
		return nil, err
	}

	if err := screen.Reload(ctx); err != nil {
		if errors.Is(err, appErrors.ErrAuthExpired) || errors.Is(err, appErrors.ErrUnauthorized) || errors.Is(err, appErrors.ErrForbidden) {
			screen.Close()
			return nil, err
		}
		m.logger.Warn("initial screen load failed", zap.String("screen_id", id), zap.Error(err))
	}

	m.mu.Lock()
	m.screens[id] = &mountedScreen{screen: screen, owner: session.UserID, lastSeen: m.clock.Now()}
	m.mu.Unlock()
	m.metrics.ScreenMounted()

	m.logger.Info("screen mounted",
		zap.String("screen_id", id),
		zap.String("resource", string(resource)),
		zap.Int64("user_id", session.UserID),
	)
	return screen, nil
}

// Get returns the caller's screen with id. Another user's screen is reported as not found.
func (m *ScreenManager) Get(session models.Session, id string) (Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.screens[id]
	if !ok || entry.owner != session.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "screen not found")
	}
	entry.lastSeen = m.clock.Now()
	return entry.screen, nil
}

// Unmount closes the caller's screen with id.
func (m *ScreenManager) Unmount(session models.Session, id string) error {
	m.mu.Lock()
	entry, ok := m.screens[id]
	if !ok || entry.owner != session.UserID {
		m.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, "screen not found")
	}
	delete(m.screens, id)
	m.mu.Unlock()

	m.closeScreen(entry.screen)
	return nil
}

// Count reports how many screens are mounted.
func (m *ScreenManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.screens)
}

// EvictIdle unmounts screens idle for longer than the configured TTL and
// returns how many were closed.
func (m *ScreenManager) EvictIdle() int {
	if m.settings.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.clock.Now().Add(-m.settings.IdleTTL)

	m.mu.Lock()
	var idle []Screen
	for id, entry := range m.screens {
		if entry.lastSeen.Before(cutoff) {
			idle = append(idle, entry.screen)
			delete(m.screens, id)
		}
	}
	m.mu.Unlock()

	for _, screen := range idle {
		m.closeScreen(screen)
	}
	if len(idle) > 0 {
		m.logger.Info("evicted idle screens", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run evicts idle screens until ctx is cancelled.
func (m *ScreenManager) Run(ctx context.Context) {
	if m.settings.IdleTTL <= 0 {
		<-ctx.Done()
		return
	}
	interval := m.settings.IdleTTL / 4
	if interval < minJanitorInterval {
		interval = minJanitorInterval
	}
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.EvictIdle()
		}
	}
}

// Shutdown closes every mounted screen.
func (m *ScreenManager) Shutdown() {
	m.mu.Lock()
	screens := make([]Screen, 0, len(m.screens))
	for id, entry := range m.screens {
		screens = append(screens, entry.screen)
		delete(m.screens, id)
	}
	m.mu.Unlock()

	for _, screen := range screens {
		m.closeScreen(screen)
	}
}

func (m *ScreenManager) closeScreen(screen Screen) {
	screen.Close()
	m.metrics.ScreenUnmounted()
	m.logger.Debug("screen unmounted", zap.String("screen_id", screen.ID()))
}

// gymTimezone resolves the gym's zone, falling back to the configured default
// when the settings cannot be loaded.
func (m *ScreenManager) gymTimezone(ctx context.Context, gymID int64) *timezone.Converter {
	key := CacheKey("gym", strconv.FormatInt(gymID, 10), "settings")
	var settings models.GymSettings
	if !m.cache.Get(ctx, key, &settings) {
		loaded, err := m.client.GymSettings(ctx, gymID)
		if err != nil {
			m.logger.Warn("gym settings unavailable, using default timezone",
				zap.Int64("gym_id", gymID),
				zap.String("timezone", m.defaultTZ),
				zap.Error(err),
			)
			return timezone.New(m.defaultTZ)
		}
		settings = *loaded
		m.cache.Set(ctx, key, settings, gymSettingsTTL)
	}
	if settings.Timezone == "" {
		return timezone.New(m.defaultTZ)
	}
	return timezone.New(settings.Timezone)
}
