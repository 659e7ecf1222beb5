package service

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

func TestNotifierAutoDismissesAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	n := NewNotifier(clock, 4*time.Second)

	n.Notify(NotifySuccess, "Event created", appErrors.ActionNone)
	require.Len(t, n.Active(), 1)

	clock.Advance(3 * time.Second)
	assert.Len(t, n.Active(), 1)

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return len(n.Active()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestNotifierDismissAndClose(t *testing.T) {
	n := NewNotifier(clockwork.NewFakeClock(), time.Second)
	n.Notify(NotifyDestructive, "Plan deleted", appErrors.ActionNone)
	n.Notify(NotifySuccess, "Plan updated", appErrors.ActionNone)

	active := n.Active()
	require.Len(t, active, 2)
	n.Dismiss(active[0].ID)
	assert.Equal(t, "Plan updated", n.Active()[0].Message)

	n.Close()
	n.Notify(NotifySuccess, "ignored", appErrors.ActionNone)
	assert.Empty(t, n.Active())
}

func TestNotifyFailureCarriesAction(t *testing.T) {
	n := NewNotifier(clockwork.NewFakeClock(), time.Second)

	notifyFailure(n, appErrors.ErrAuthExpired)
	notifyFailure(n, errors.New("socket closed"))
	notifyFailure(n, appErrors.ErrForbidden)

	active := n.Active()
	require.Len(t, active, 3)
	assert.Equal(t, appErrors.ActionReload, active[0].Action)
	assert.Equal(t, NotifyError, active[1].Level)
	assert.Equal(t, appErrors.ActionNone, active[2].Action)
}
