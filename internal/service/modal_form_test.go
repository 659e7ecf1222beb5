package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/timezone"
)

func newEventModal(t *testing.T, source *fakeEventSource, tz string) (*ModalForm[models.Event], *ListController[models.Event]) {
	t.Helper()
	list := newEventController(t, source, ListOptions{PageSize: 10})
	require.NoError(t, list.Load(context.Background(), FilterCriteria{}, 1))
	defaults := func() models.Event { return models.Event{Status: models.EventScheduled} }
	return NewModalForm(list, nil, timezone.New(tz), defaults, nil), list
}

func TestModalCreateConvertsLocalTimesAndCloses(t *testing.T) {
	source := newFakeEventSource(fixtureEvents(2)...)
	modal, list := newEventModal(t, source, "America/New_York")

	require.NoError(t, modal.Open(ModalCreate, 0))
	assert.Equal(t, models.EventScheduled, modal.View().Draft.Status)

	require.NoError(t, modal.SetDraft(map[string]any{
		"title":           "Spin marathon",
		"location":        "Cycle room",
		"starts_at_local": "2024-07-04T09:00",
		"ends_at_local":   "2024-07-04T11:30",
	}))
	view := modal.View()
	assert.Equal(t, time.Date(2024, 7, 4, 13, 0, 0, 0, time.UTC), view.Draft.StartsAt.UTC())
	assert.Equal(t, "2024-07-04T09:00", view.Local["starts_at_local"])

	require.NoError(t, modal.Submit(context.Background()))
	assert.False(t, modal.View().Open)
	assert.Equal(t, "Spin marathon", list.View().Items[0].Title)
}

func TestModalRejectsEndBeforeStartWithoutNetwork(t *testing.T) {
	source := newFakeEventSource(fixtureEvents(1)...)
	modal, _ := newEventModal(t, source, "")

	require.NoError(t, modal.Open(ModalCreate, 0))
	require.NoError(t, modal.SetDraft(map[string]any{
		"location":        "Hall",
		"starts_at_local": "2024-07-04T11:00",
		"ends_at_local":   "2024-07-04T10:00",
	}))

	err := modal.Submit(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.KindValidationFailed, appErr.Kind)
	assert.Equal(t, "is required", appErr.FieldErrors["title"])
	assert.Equal(t, "must be after starts_at", appErr.FieldErrors["ends_at"])

	view := modal.View()
	assert.True(t, view.Open)
	require.NotNil(t, view.Error)
	assert.Len(t, sourceItems(source), 1)
}

func sourceItems(source *fakeEventSource) []models.Event {
	source.mu.Lock()
	defer source.mu.Unlock()
	return append([]models.Event(nil), source.items...)
}

func TestModalEditOfTerminalRecordIsRefused(t *testing.T) {
	source := newFakeEventSource(fixtureEvents(5)...)
	modal, _ := newEventModal(t, source, "")

	err := modal.Open(ModalEdit, 5)
	assert.ErrorIs(t, err, appErrors.ErrTerminalState)
	assert.False(t, modal.View().Open)

	// Deleting a completed event is still allowed.
	require.NoError(t, modal.Open(ModalDelete, 5))
	require.NoError(t, modal.Submit(context.Background()))
	assert.NotContains(t, ids(sourceItems(source)), int64(5))
}

func TestModalNoOpEditClosesWithoutNetwork(t *testing.T) {
	source := newFakeEventSource(fixtureEvents(2)...)
	modal, _ := newEventModal(t, source, "")

	require.NoError(t, modal.Open(ModalEdit, 1))
	require.NoError(t, modal.Submit(context.Background()))
	assert.False(t, modal.View().Open)
	_, updates, _ := source.calls()
	assert.Zero(t, updates)
}

func TestModalStaysOpenOnServerFailure(t *testing.T) {
	source := newFakeEventSource(fixtureEvents(2)...)
	source.updateErr = appErrors.FromStatus(422, "", "capacity exceeds room size")
	modal, _ := newEventModal(t, source, "")

	require.NoError(t, modal.Open(ModalEdit, 1))
	require.NoError(t, modal.SetDraft(map[string]any{"capacity": 500}))
	err := modal.Submit(context.Background())

	require.Error(t, err)
	view := modal.View()
	assert.True(t, view.Open)
	assert.Equal(t, "capacity exceeds room size", view.Error.Message)
	assert.Equal(t, 500, view.Draft.Capacity)
}

func TestModalCloseDiscardsDraft(t *testing.T) {
	modal, _ := newEventModal(t, newFakeEventSource(fixtureEvents(1)...), "")

	require.NoError(t, modal.Open(ModalEdit, 1))
	require.NoError(t, modal.SetDraft(map[string]any{"title": "Draft"}))
	modal.Close()

	assert.Equal(t, ModalView[models.Event]{}, modal.View())
	assert.ErrorIs(t, modal.Submit(context.Background()), errNoModal)
}

func TestModalSubmitFinishingLateKeepsNewerDialog(t *testing.T) {
	source := newFakeEventSource(fixtureEvents(2)...)
	source.deleteHeld = make(chan struct{})
	source.deleteGate = make(chan struct{})
	modal, list := newEventModal(t, source, "")

	require.NoError(t, modal.Open(ModalDelete, 1))
	done := make(chan error, 1)
	go func() { done <- modal.Submit(context.Background()) }()
	<-source.deleteHeld

	modal.Close()
	require.NoError(t, modal.Open(ModalCreate, 0))
	require.NoError(t, modal.SetDraft(map[string]any{"title": "Open house"}))

	close(source.deleteGate)
	require.NoError(t, <-done)

	view := modal.View()
	assert.True(t, view.Open)
	assert.Equal(t, ModalCreate, view.Mode)
	assert.Equal(t, "Open house", view.Draft.Title)
	assert.False(t, view.Submitting)
	assert.Equal(t, []int64{2}, ids(list.View().Items))
}

func TestModalInvalidLocalTime(t *testing.T) {
	modal, _ := newEventModal(t, newFakeEventSource(), "")
	require.NoError(t, modal.Open(ModalCreate, 0))

	err := modal.SetDraft(map[string]any{"starts_at_local": "tomorrow morning"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).FieldErrors, "starts_at")
}

func TestGymHoursRule(t *testing.T) {
	validate := NewValidator()

	err := validationError(validate, models.GymHours{DayOfWeek: "MONDAY", OpensAt: "18:00", ClosesAt: "06:00"})
	require.Error(t, err)
	assert.Equal(t, "must be after opens_at", appErrors.FromError(err).FieldErrors["closes_at"])

	assert.NoError(t, validationError(validate, models.GymHours{DayOfWeek: "SUNDAY", Closed: true}))
	assert.NoError(t, validationError(validate, models.GymHours{DayOfWeek: "MONDAY", OpensAt: "06:00", ClosesAt: "22:00"}))
}
