package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-dashboard/internal/gateway"
	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/export"
)

const backendToken = "tok-1"

type fakeBackend struct {
	mu         sync.Mutex
	listStatus int
	posted     map[string]any
	userGets   int
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/gyms/1/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Iron Temple", "timezone": "Asia/Jakarta"})
	})
	mux.HandleFunc("/gyms/2/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+backendToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			if b.listStatus != 0 {
				writeJSON(w, b.listStatus, map[string]any{"message": "backend down"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"items": []map[string]any{
					{"id": 1, "title": "Yoga Night", "location": "Studio", "status": "SCHEDULED", "starts_at": "2024-05-01T11:00:00Z", "ends_at": "2024-05-01T12:00:00Z", "created_by": 7},
					{"id": 2, "title": "Spin Marathon", "location": "Hall", "status": "COMPLETED", "starts_at": "2024-04-01T11:00:00Z", "ends_at": "2024-04-01T15:00:00Z"},
				},
				"total": 2,
			})
		case http.MethodPost:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["id"] = 99
			b.posted = body
			writeJSON(w, http.StatusCreated, body)
		}
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.userGets++
		b.mu.Unlock()
		id := strings.TrimPrefix(r.URL.Path, "/users/")
		writeJSON(w, http.StatusOK, map[string]any{"id": json.Number(id), "full_name": "Coach " + id, "email": "coach" + id + "@gym.test", "role": "TRAINER", "status": "ACTIVE"})
	})
	return mux
}

func newTestManager(t *testing.T) (*ScreenManager, *fakeBackend, *clockwork.FakeClock) {
	t.Helper()
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClock()
	manager := NewScreenManager(ScreenManagerConfig{
		Client: gateway.NewClient(server.URL, time.Second, nil, nil),
		Clock:  clock,
		Settings: ScreenSettings{
			PageSize:        20,
			SearchDebounce:  300 * time.Millisecond,
			NotificationTTL: 4 * time.Second,
			IdleTTL:         30 * time.Minute,
		},
		DefaultTimezone: "UTC",
	})
	t.Cleanup(manager.Shutdown)
	return manager, backend, clock
}

func adminSession(gymID int64) models.Session {
	return models.Session{UserID: 7, GymID: gymID, Role: models.RoleAdmin, Token: backendToken}
}

func authed() context.Context {
	return gateway.WithToken(context.Background(), backendToken)
}

func TestMountRendersGymLocalView(t *testing.T) {
	manager, _, _ := newTestManager(t)

	screen, err := manager.Mount(authed(), adminSession(1), models.ResourceEvents)
	require.NoError(t, err)
	assert.Equal(t, 1, manager.Count())

	view := screen.View(authed())
	assert.Equal(t, "Asia/Jakarta", view.Timezone)
	assert.Equal(t, PagingServer, view.Paging)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "2024-05-01T18:00", view.Items[0].LocalTimes["starts_at"])
	assert.True(t, view.Items[0].Editable)
	assert.False(t, view.Items[1].Editable, "completed events are read-only")
	assert.Equal(t, 2, view.Pagination.TotalCount)
	assert.Nil(t, view.Error)

	require.Contains(t, view.Users, int64(7))
	assert.Equal(t, "Coach 7", view.Users[7].FullName)
}

func TestMountRejectsNonStaffAndUnknownScreens(t *testing.T) {
	manager, _, _ := newTestManager(t)

	member := adminSession(1)
	member.Role = models.RoleMember
	_, err := manager.Mount(authed(), member, models.ResourceEvents)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = manager.Mount(authed(), adminSession(1), models.Resource("invoices"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Zero(t, manager.Count())
}

func TestMountWithExpiredTokenIsNotKept(t *testing.T) {
	manager, _, _ := newTestManager(t)

	_, err := manager.Mount(context.Background(), adminSession(1), models.ResourceEvents)
	require.Error(t, err)
	assert.Equal(t, appErrors.KindAuthExpired, appErrors.KindOf(err))
	assert.Zero(t, manager.Count())
}

func TestMountKeepsScreenWhenFirstLoadFails(t *testing.T) {
	manager, backend, _ := newTestManager(t)
	backend.listStatus = http.StatusBadGateway

	screen, err := manager.Mount(authed(), adminSession(1), models.ResourceEvents)
	require.NoError(t, err)

	view := screen.View(authed())
	require.NotNil(t, view.Error)
	assert.Equal(t, appErrors.KindNetworkOrServer, view.Error.Kind)
	assert.Equal(t, appErrors.ActionRetry, view.Error.Action)

	backend.mu.Lock()
	backend.listStatus = 0
	backend.mu.Unlock()
	require.NoError(t, screen.Reload(authed()))
	assert.Len(t, screen.View(authed()).Items, 2)
}

func TestMountFallsBackToDefaultTimezone(t *testing.T) {
	manager, _, _ := newTestManager(t)

	screen, err := manager.Mount(authed(), adminSession(2), models.ResourceEvents)
	require.NoError(t, err)

	view := screen.View(authed())
	assert.Equal(t, "UTC", view.Timezone)
	assert.Equal(t, "2024-05-01T11:00", view.Items[0].LocalTimes["starts_at"])
}

func TestScreensAreScopedToTheirOwner(t *testing.T) {
	manager, _, _ := newTestManager(t)
	owner := adminSession(1)

	screen, err := manager.Mount(authed(), owner, models.ResourceEvents)
	require.NoError(t, err)

	other := owner
	other.UserID = 8
	_, err = manager.Get(other, screen.ID())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.ErrorIs(t, manager.Unmount(other, screen.ID()), appErrors.ErrNotFound)

	got, err := manager.Get(owner, screen.ID())
	require.NoError(t, err)
	assert.Equal(t, screen.ID(), got.ID())

	require.NoError(t, manager.Unmount(owner, screen.ID()))
	assert.Zero(t, manager.Count())
}

func TestEvictIdleClosesUntouchedScreens(t *testing.T) {
	manager, _, clock := newTestManager(t)
	owner := adminSession(1)

	stale, err := manager.Mount(authed(), owner, models.ResourceEvents)
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)
	fresh, err := manager.Mount(authed(), owner, models.ResourceEvents)
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, manager.EvictIdle())

	_, err = manager.Get(owner, stale.ID())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = manager.Get(owner, fresh.ID())
	assert.NoError(t, err)
}

func TestScreenCreateThroughModal(t *testing.T) {
	manager, backend, _ := newTestManager(t)

	screen, err := manager.Mount(authed(), adminSession(1), models.ResourceEvents)
	require.NoError(t, err)

	require.NoError(t, screen.OpenModal(ModalCreate, 0))
	require.NoError(t, screen.SetDraft(map[string]any{
		"title":           "Boxing Clinic",
		"location":        "Ring",
		"starts_at_local": "2024-05-02T09:00",
		"ends_at_local":   "2024-05-02T10:30",
	}))
	require.NoError(t, screen.SubmitModal(authed()))

	backend.mu.Lock()
	posted := backend.posted
	backend.mu.Unlock()
	assert.Equal(t, "2024-05-02T02:00:00Z", posted["starts_at"])

	view := screen.View(authed())
	require.Len(t, view.Items, 3)
	assert.Equal(t, int64(99), view.Items[0].Record.RecordID())
	require.Len(t, view.Notifications, 1)
	assert.Equal(t, "Event created", view.Notifications[0].Message)
	assert.Equal(t, ModalView[models.Event]{}, view.Modal)
}

func TestScreenEditOfCompletedEventIsRefused(t *testing.T) {
	manager, _, _ := newTestManager(t)

	screen, err := manager.Mount(authed(), adminSession(1), models.ResourceEvents)
	require.NoError(t, err)

	assert.ErrorIs(t, screen.OpenModal(ModalEdit, 2), appErrors.ErrTerminalState)
	assert.NoError(t, screen.OpenModal(ModalDelete, 2))
}

func TestScreenExportUsesLocalTimes(t *testing.T) {
	manager, _, _ := newTestManager(t)

	screen, err := manager.Mount(authed(), adminSession(1), models.ResourceEvents)
	require.NoError(t, err)

	out, err := screen.Export(authed(), export.FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,title,location,status,starts_at,ends_at,capacity", lines[0])
	assert.Equal(t, "1,Yoga Night,Studio,SCHEDULED,2024-05-01T18:00,2024-05-01T19:00,0", lines[1])
}

func TestDefinitionsCoverEveryResource(t *testing.T) {
	seen := map[models.Resource]bool{}
	for _, def := range Definitions() {
		seen[def.Resource] = true
		assert.NotEmpty(t, def.Columns, def.Resource)
	}
	for _, resource := range []models.Resource{
		models.ResourceEvents,
		models.ResourceMembershipPlans,
		models.ResourceNutritionPlans,
		models.ResourceClasses,
		models.ResourceClassSessions,
		models.ResourceGymHours,
		models.ResourceUsers,
	} {
		assert.True(t, seen[resource], resource)
	}
}
