package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/gateway"
	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/export"
	"github.com/noah-isme/gym-dashboard/pkg/timezone"
)

// Screen is one mounted list screen: its collection, dialog, notifications and
// user lookups. Handlers drive it without knowing the record type.
type Screen interface {
	ID() string
	Resource() models.Resource
	View(ctx context.Context) ScreenView
	SetCriteria(ctx context.Context, criteria FilterCriteria)
	SetPage(ctx context.Context, page int) error
	Reload(ctx context.Context) error
	OpenModal(mode ModalMode, recordID int64) error
	SetDraft(patch map[string]any) error
	SubmitModal(ctx context.Context) error
	CloseModal()
	DismissNotification(id string)
	Export(ctx context.Context, format export.Format) ([]byte, error)
	Close()
}

// ItemView is one visible row.
type ItemView struct {
	Record     models.Record     `json:"record"`
	LocalTimes map[string]string `json:"local_times,omitempty"`
	Editable   bool              `json:"editable"`
	Pending    bool              `json:"pending"`
}

// ScreenView is everything a client needs to render a screen.
type ScreenView struct {
	ID            string                    `json:"id"`
	Resource      models.Resource           `json:"resource"`
	Title         string                    `json:"title"`
	Timezone      string                    `json:"timezone"`
	Paging        PagingMode                `json:"paging"`
	Filters       []string                  `json:"filters"`
	Items         []ItemView                `json:"items"`
	Pagination    models.Pagination         `json:"pagination"`
	Criteria      FilterCriteria            `json:"criteria"`
	Loading       bool                      `json:"loading"`
	Error         *appErrors.Error          `json:"error,omitempty"`
	Notifications []Notification            `json:"notifications"`
	Modal         any                       `json:"modal"`
	Users         map[int64]models.UserInfo `json:"users,omitempty"`
}

// ScreenDefinition declares how a resource's screen behaves.
type ScreenDefinition struct {
	Resource models.Resource
	Label    string
	Title    string
	Paging   PagingMode
	// ImmediateFilters marks screens whose criteria come from dropdowns and skip the debounce.
	ImmediateFilters bool
	Filters          []string
	// Columns lists the exported fields after the id.
	Columns []string
	// ResolveUsers enriches visible records with user display names.
	ResolveUsers bool
}

// screenEnv carries what a screen needs from its manager.
type screenEnv struct {
	id       string
	session  models.Session
	client   *gateway.Client
	clock    clockwork.Clock
	settings ScreenSettings
	validate *validator.Validate
	tz       *timezone.Converter
	cache    *CacheService
	audit    *AuditService
	logger   *zap.Logger
}

type screenFactory struct {
	def   ScreenDefinition
	mount func(env screenEnv) (Screen, error)
}

func define[T models.Record](def ScreenDefinition, defaults func() T) screenFactory {
	return screenFactory{
		def: def,
		mount: func(env screenEnv) (Screen, error) {
			return newListScreen[T](env, def, gateway.For[T](env.client, def.Resource), defaults)
		},
	}
}

// screenCatalog lists every screen the dashboard can mount.
var screenCatalog = map[models.Resource]screenFactory{
	models.ResourceEvents: define(ScreenDefinition{
		Resource:     models.ResourceEvents,
		Label:        "Event",
		Title:        "Events",
		Paging:       PagingServer,
		Filters:      []string{"status"},
		Columns:      []string{"title", "location", "status", "starts_at", "ends_at", "capacity"},
		ResolveUsers: true,
	}, func() models.Event { return models.Event{Status: models.EventScheduled} }),
	models.ResourceMembershipPlans: define(ScreenDefinition{
		Resource: models.ResourceMembershipPlans,
		Label:    "Membership plan",
		Title:    "Membership plans",
		Paging:   PagingClient,
		Filters:  []string{"status"},
		Columns:  []string{"name", "price_cents", "currency", "duration_days", "active"},
	}, func() models.MembershipPlan { return models.MembershipPlan{Currency: "USD", DurationDays: 30, Active: true} }),
	models.ResourceNutritionPlans: define(ScreenDefinition{
		Resource:     models.ResourceNutritionPlans,
		Label:        "Nutrition plan",
		Title:        "Nutrition plans",
		Paging:       PagingClient,
		Filters:      []string{"goal"},
		Columns:      []string{"name", "goal", "daily_calories", "user_id"},
		ResolveUsers: true,
	}, func() models.NutritionPlan { return models.NutritionPlan{Goal: models.GoalMaintenance} }),
	models.ResourceClasses: define(ScreenDefinition{
		Resource: models.ResourceClasses,
		Label:    "Class",
		Title:    "Classes",
		Paging:   PagingClient,
		Filters:  []string{"level"},
		Columns:  []string{"name", "instructor", "level", "capacity", "duration_minutes"},
	}, func() models.GymClass { return models.GymClass{Level: models.LevelAll, DurationMinutes: 60} }),
	models.ResourceClassSessions: define(ScreenDefinition{
		Resource:         models.ResourceClassSessions,
		Label:            "Class session",
		Title:            "Class sessions",
		Paging:           PagingServer,
		ImmediateFilters: true,
		Filters:          []string{"status", "class_id"},
		Columns:          []string{"class_id", "room", "status", "starts_at", "ends_at"},
	}, func() models.ClassSession { return models.ClassSession{Status: models.SessionScheduled} }),
	models.ResourceGymHours: define(ScreenDefinition{
		Resource:         models.ResourceGymHours,
		Label:            "Opening hours",
		Title:            "Opening hours",
		Paging:           PagingClient,
		ImmediateFilters: true,
		Filters:          []string{"day_of_week"},
		Columns:          []string{"day_of_week", "opens_at", "closes_at", "closed"},
	}, func() models.GymHours { return models.GymHours{OpensAt: "06:00", ClosesAt: "22:00"} }),
	models.ResourceUsers: define(ScreenDefinition{
		Resource:         models.ResourceUsers,
		Label:            "User",
		Title:            "Users",
		Paging:           PagingServer,
		ImmediateFilters: true,
		Filters:          []string{"role", "status"},
		Columns:          []string{"full_name", "email", "phone", "role", "status"},
	}, func() models.User { return models.User{Role: models.RoleMember, Status: models.UserActive} }),
}

// Definitions returns the mountable screen definitions.
func Definitions() []ScreenDefinition {
	out := make([]ScreenDefinition, 0, len(screenCatalog))
	for _, f := range screenCatalog {
		out = append(out, f.def)
	}
	return out
}

type listScreen[T models.Record] struct {
	id       string
	def      ScreenDefinition
	tz       *timezone.Converter
	list     *ListController[T]
	modal    *ModalForm[T]
	notifier *Notifier
	users    *UserDirectory
	cache    *CacheService
	gymID    int64
	logger   *zap.Logger

	closeOnce sync.Once
}

func newListScreen[T models.Record](env screenEnv, def ScreenDefinition, source RecordSource[T], defaults func() T) (*listScreen[T], error) {
	debounce := env.settings.SearchDebounce
	if def.ImmediateFilters {
		debounce = 0
	}
	logger := env.logger.With(zap.String("screen_id", env.id))
	notifier := NewNotifier(env.clock, env.settings.NotificationTTL)

	list, err := NewListController[T](source, ListOptions{
		Resource: def.Resource,
		Label:    def.Label,
		Paging:   def.Paging,
		PageSize: env.settings.PageSize,
		Debounce: debounce,
		Clock:    env.clock,
		Notifier: notifier,
		Recorder: env.audit.Recorder(env.session, env.id),
		Logger:   logger,
	})
	if err != nil {
		notifier.Close()
		return nil, err
	}

	screen := &listScreen[T]{
		id:       env.id,
		def:      def,
		tz:       env.tz,
		list:     list,
		modal:    NewModalForm(list, env.validate, env.tz, defaults, logger),
		notifier: notifier,
		cache:    env.cache,
		gymID:    env.session.GymID,
		logger:   logger,
	}
	if def.ResolveUsers {
		screen.users = NewUserDirectory(gateway.For[models.User](env.client, models.ResourceUsers), env.cache, env.session.GymID, env.settings.IdleTTL, logger)
	}
	return screen, nil
}

func (s *listScreen[T]) ID() string                { return s.id }
func (s *listScreen[T]) Resource() models.Resource { return s.def.Resource }

func (s *listScreen[T]) View(ctx context.Context) ScreenView {
	list := s.list.View()
	pending := make(map[int64]struct{}, len(list.Pending))
	for _, id := range list.Pending {
		pending[id] = struct{}{}
	}

	view := ScreenView{
		ID:            s.id,
		Resource:      s.def.Resource,
		Title:         s.def.Title,
		Timezone:      s.tz.Name(),
		Paging:        s.def.Paging,
		Filters:       s.def.Filters,
		Items:         make([]ItemView, 0, len(list.Items)),
		Pagination:    list.Pagination,
		Criteria:      list.Criteria,
		Loading:       list.Loading,
		Error:         list.Error,
		Notifications: s.notifier.Active(),
		Modal:         s.modal.View(),
	}

	var refs []int64
	for _, record := range list.Items {
		item := ItemView{Record: record, Editable: !models.IsTerminal(record)}
		_, item.Pending = pending[record.RecordID()]
		if temporal, ok := any(record).(models.Temporal); ok {
			item.LocalTimes = make(map[string]string)
			for field, instant := range temporal.Instants() {
				item.LocalTimes[field] = s.tz.ToLocal(instant)
			}
		}
		if ref, ok := any(record).(models.UserReferencing); ok {
			refs = append(refs, ref.UserRefs()...)
		}
		view.Items = append(view.Items, item)
	}
	if s.users != nil && len(refs) > 0 {
		view.Users = s.users.Resolve(ctx, refs)
	}
	return view
}

func (s *listScreen[T]) SetCriteria(ctx context.Context, criteria FilterCriteria) {
	s.list.SetCriteria(ctx, criteria)
}

func (s *listScreen[T]) SetPage(ctx context.Context, page int) error {
	return s.list.SetPage(ctx, page)
}

func (s *listScreen[T]) Reload(ctx context.Context) error {
	return s.list.Reload(ctx)
}

func (s *listScreen[T]) OpenModal(mode ModalMode, recordID int64) error {
	return s.modal.Open(mode, recordID)
}

func (s *listScreen[T]) SetDraft(patch map[string]any) error {
	return s.modal.SetDraft(patch)
}

func (s *listScreen[T]) SubmitModal(ctx context.Context) error {
	mode := s.modal.View().Mode
	if err := s.modal.Submit(ctx); err != nil {
		return err
	}
	if s.def.Resource == models.ResourceUsers && mode != ModalCreate {
		if err := InvalidateGymUsers(ctx, s.cache, s.gymID); err != nil {
			s.logger.Warn("shared user cache not invalidated", zap.Error(err))
		}
	}
	return nil
}

func (s *listScreen[T]) CloseModal() { s.modal.Close() }

func (s *listScreen[T]) DismissNotification(id string) { s.notifier.Dismiss(id) }

func (s *listScreen[T]) Export(ctx context.Context, format export.Format) ([]byte, error) {
	records, err := s.list.Collect(ctx)
	if err != nil {
		return nil, err
	}
	data := BuildDataset(s.def.Title, s.def.Columns, records, s.tz)
	out, err := export.Render(format, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Kind, appErrors.ErrInternal.Status, "failed to render export")
	}
	return out, nil
}

func (s *listScreen[T]) Close() {
	s.closeOnce.Do(func() {
		s.list.Close()
		s.modal.Close()
		s.notifier.Close()
		if s.users != nil {
			s.users.Close()
		}
	})
}
