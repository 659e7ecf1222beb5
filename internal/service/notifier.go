package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

// NotificationLevel selects the colour channel of a notification.
type NotificationLevel string

const (
	// NotifySuccess is green: create and update succeeded.
	NotifySuccess NotificationLevel = "success"
	// NotifyDestructive is red: a delete succeeded.
	NotifyDestructive NotificationLevel = "destructive"
	// NotifyError is red: an operation failed.
	NotifyError NotificationLevel = "error"
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 4 * time.Second

// Notification is a transient message shown to the user.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	Action    appErrors.Action  `json:"action,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NotificationSink receives user-facing notifications.
type NotificationSink interface {
	Notify(level NotificationLevel, message string, action appErrors.Action)
}

// Notifier keeps active notifications and dismisses each one after its TTL.
type Notifier struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu     sync.Mutex
	items  []Notification
	timers map[string]clockwork.Timer
	closed bool
}

// NewNotifier builds a notifier. A nil clock uses the real clock.
func NewNotifier(clock clockwork.Clock, ttl time.Duration) *Notifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{clock: clock, ttl: ttl, timers: make(map[string]clockwork.Timer)}
}

// Notify shows a notification and schedules its dismissal.
func (n *Notifier) Notify(level NotificationLevel, message string, action appErrors.Action) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	item := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Action:    action,
		CreatedAt: n.clock.Now().UTC(),
	}
	n.items = append(n.items, item)
	n.timers[item.ID] = n.clock.AfterFunc(n.ttl, func() { n.Dismiss(item.ID) })
}

// Active returns the notifications currently visible, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.items))
	copy(out, n.items)
	return out
}

// Dismiss removes a notification before its TTL.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return
		}
	}
}

// Close stops all dismissal timers and drops future notifications.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	n.items = nil
	n.closed = true
}

// notifyFailure raises a red notification carrying the error's follow-up action.
func notifyFailure(sink NotificationSink, err error) {
	if sink == nil || err == nil {
		return
	}
	appErr := appErrors.FromError(err)
	sink.Notify(NotifyError, appErr.Message, appErr.Action)
}
