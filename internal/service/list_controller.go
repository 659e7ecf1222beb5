package service

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/gateway"
	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

// RecordSource is the gateway surface a list screen reads and writes through.
// *gateway.Resource[T] satisfies it.
type RecordSource[T models.Record] interface {
	List(ctx context.Context, q gateway.ListQuery) (*gateway.ListResult[T], error)
	Create(ctx context.Context, payload T) (T, error)
	Update(ctx context.Context, id int64, changes map[string]any) (T, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// collectPageSize is the page size requested while walking every page for an export.
const collectPageSize = 100

// PagingMode selects where a screen filters and slices its collection.
type PagingMode string

const (
	// PagingClient fetches the whole collection once and filters/paginates locally.
	PagingClient PagingMode = "client"
	// PagingServer sends criteria and the page window to the backend on every load.
	PagingServer PagingMode = "server"
)

// Mutation describes a committed create, update or delete.
type Mutation struct {
	Action   string
	Resource models.Resource
	RecordID int64
	Changes  map[string]any
}

// MutationRecorder is told about every committed mutation.
type MutationRecorder interface {
	RecordMutation(ctx context.Context, m Mutation)
}

// ListOptions configures a ListController.
type ListOptions struct {
	Resource models.Resource
	// Label is the singular display name used in notifications, e.g. "Event".
	Label    string
	Paging   PagingMode
	PageSize int
	Debounce time.Duration
	Clock    clockwork.Clock
	Notifier NotificationSink
	Recorder MutationRecorder
	Logger   *zap.Logger
}

// ListView is a render-ready snapshot of a list screen.
type ListView[T models.Record] struct {
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
	Criteria   FilterCriteria    `json:"criteria"`
	Loading    bool              `json:"loading"`
	Error      *appErrors.Error  `json:"error,omitempty"`
	Pending    []int64           `json:"pending,omitempty"`
}

// ListController owns the authoritative local copy of one screen's collection
// and mediates every read and write against the backend.
type ListController[T models.Record] struct {
	source    RecordSource[T]
	opts      ListOptions
	debouncer *Debouncer
	logger    *zap.Logger

	mu         sync.Mutex
	state      listState[T]
	criteria   FilterCriteria
	applied    FilterCriteria
	page       int
	generation uint64
	loading    bool
	loadErr    *appErrors.Error
	pending    map[int64]struct{}
	closed     bool
}

// NewListController validates opts and builds a controller.
func NewListController[T models.Record](source RecordSource[T], opts ListOptions) (*ListController[T], error) {
	if opts.PageSize <= 0 {
		return nil, appErrors.Wrap(fmt.Errorf("%s page size %d", opts.Resource, opts.PageSize), ErrInvalidPageSize.Code, ErrInvalidPageSize.Kind, ErrInvalidPageSize.Status, ErrInvalidPageSize.Message)
	}
	if opts.Paging == "" {
		opts.Paging = PagingServer
	}
	if opts.Label == "" {
		opts.Label = "Record"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListController[T]{
		source:    source,
		opts:      opts,
		debouncer: NewDebouncer(opts.Clock, opts.Debounce),
		logger:    logger.With(zap.String("resource", string(opts.Resource))),
		page:      1,
		pending:   make(map[int64]struct{}),
	}, nil
}

// Resource reports the collection the controller manages.
func (c *ListController[T]) Resource() models.Resource { return c.opts.Resource }

// Paging reports the controller's paging mode.
func (c *ListController[T]) Paging() PagingMode { return c.opts.Paging }

// Load fetches the collection for criteria and page and commits it unless a
// newer load was issued in the meantime.
func (c *ListController[T]) Load(ctx context.Context, criteria FilterCriteria, page int) error {
	criteria = criteria.Normalize()
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	c.loading = true
	c.criteria = criteria
	c.applied = criteria
	c.page = page
	c.mu.Unlock()

	result, err := c.source.List(ctx, c.query(criteria, page))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		c.logger.Debug("discarding superseded load", zap.Uint64("generation", gen))
		return nil
	}
	c.loading = false
	if err != nil {
		c.loadErr = appErrors.FromError(err)
		c.logger.Warn("list load failed", zap.Error(err))
		return c.loadErr
	}
	c.loadErr = nil
	c.state.reset(result.Items, result.Total)
	return nil
}

// Reload repeats the last load.
func (c *ListController[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	criteria, page := c.applied, c.page
	c.mu.Unlock()
	return c.Load(ctx, criteria, page)
}

// SetCriteria records new search/filter input. A change resets the page to 1
// and schedules the query after the debounce delay; only the last input within
// the quiet period reaches the backend.
func (c *ListController[T]) SetCriteria(ctx context.Context, criteria FilterCriteria) {
	criteria = criteria.Normalize()

	c.mu.Lock()
	if c.closed || criteria.Equal(c.criteria) {
		c.mu.Unlock()
		return
	}
	c.criteria = criteria
	c.page = 1
	c.mu.Unlock()

	// The request that set the criteria is long gone when the timer fires.
	detached := context.WithoutCancel(ctx)
	c.debouncer.Trigger(func() {
		if c.opts.Paging == PagingClient {
			c.mu.Lock()
			if !c.closed {
				c.applied = criteria
			}
			c.mu.Unlock()
			return
		}
		if err := c.Load(detached, criteria, 1); err != nil {
			c.logger.Debug("debounced load failed", zap.Error(err))
		}
	})
}

// SetPage moves to page. Server-paged screens refetch; client-paged screens re-slice.
func (c *ListController[T]) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	if c.opts.Paging == PagingServer {
		c.mu.Lock()
		criteria := c.applied
		c.mu.Unlock()
		return c.Load(ctx, criteria, page)
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return nil
}

// Find returns the locally held record with id.
func (c *ListController[T]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.find(id)
}

// Pending reports whether a mutation on id is in flight.
func (c *ListController[T]) Pending(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// Create posts payload and inserts the server's copy at the head of the list.
func (c *ListController[T]) Create(ctx context.Context, payload T) (T, error) {
	created, err := c.source.Create(ctx, payload)
	if err != nil {
		var zero T
		return zero, c.fail(ctx, "create", 0, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return created, nil
	}
	c.state.insertHead(created)
	c.mu.Unlock()

	c.notify(NotifySuccess, c.opts.Label+" created")
	c.record(ctx, Mutation{Action: models.AuditActionCreate, RecordID: created.RecordID(), Changes: created.EditableFields()})
	return created, nil
}

// Update sends the fields of draft that differ from the stored record and
// replaces it in place. It reports changed=false, without calling the backend,
// when the draft matches the stored record.
func (c *ListController[T]) Update(ctx context.Context, id int64, draft T) (updated T, changed bool, err error) {
	c.mu.Lock()
	original, ok := c.state.find(id)
	switch {
	case !ok:
		c.mu.Unlock()
		return updated, false, appErrors.Clone(appErrors.ErrNotFound, c.opts.Label+" not found")
	case models.IsTerminal(original):
		c.mu.Unlock()
		return original, false, appErrors.ErrTerminalState
	}
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return original, false, appErrors.ErrMutationPending
	}
	changes := DiffFields(original.EditableFields(), draft.EditableFields())
	if len(changes) == 0 {
		c.mu.Unlock()
		return original, false, nil
	}
	c.pending[id] = struct{}{}
	c.mu.Unlock()

	updated, err = c.source.Update(ctx, id, changes)

	c.mu.Lock()
	delete(c.pending, id)
	if err == nil && !c.closed {
		c.state.replaceByID(updated)
	}
	c.mu.Unlock()

	if err != nil {
		var zero T
		return zero, true, c.fail(ctx, "update", id, err)
	}
	c.notify(NotifySuccess, c.opts.Label+" updated")
	c.record(ctx, Mutation{Action: models.AuditActionUpdate, RecordID: id, Changes: changes})
	return updated, true, nil
}

// Remove deletes id and filters it out of the local collection.
func (c *ListController[T]) Remove(ctx context.Context, id int64) error {
	c.mu.Lock()
	if _, ok := c.state.find(id); !ok {
		c.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, c.opts.Label+" not found")
	}
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return appErrors.ErrMutationPending
	}
	c.pending[id] = struct{}{}
	c.mu.Unlock()

	deleted, err := c.source.Delete(ctx, id)

	c.mu.Lock()
	delete(c.pending, id)
	if err == nil && !c.closed {
		c.state.removeByID(deleted)
	}
	c.mu.Unlock()

	if err != nil {
		return c.fail(ctx, "delete", id, err)
	}
	c.notify(NotifyDestructive, c.opts.Label+" deleted")
	c.record(ctx, Mutation{Action: models.AuditActionDelete, RecordID: deleted})
	return nil
}

// View returns the visible page with loading, error and pending markers.
func (c *ListController[T]) View() ListView[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := ListView[T]{
		Criteria: c.criteria,
		Loading:  c.loading,
		Error:    c.loadErr,
	}
	for id := range c.pending {
		view.Pending = append(view.Pending, id)
	}
	sort.Slice(view.Pending, func(i, j int) bool { return view.Pending[i] < view.Pending[j] })

	if c.opts.Paging == PagingClient {
		// Page size is validated in the constructor, so Paginate cannot fail here.
		page, _ := Paginate(FilterRecords(c.state.items, c.applied), c.page, c.opts.PageSize)
		view.Items, view.Pagination = page.Items, page.Pagination
		return view
	}
	view.Pagination, _ = PageMeta(c.state.total, c.page, c.opts.PageSize)
	view.Items = make([]T, len(c.state.items))
	copy(view.Items, c.state.items)
	return view
}

// Collect returns every record matching the current criteria across all pages.
func (c *ListController[T]) Collect(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	criteria := c.applied
	if c.opts.Paging == PagingClient {
		out := FilterRecords(c.state.items, criteria)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	var out []T
	for page := 1; ; page++ {
		result, err := c.source.List(ctx, gateway.ListQuery{
			Search:  criteria.Search,
			Filters: criteria.Filters,
			Page:    page,
			PerPage: collectPageSize,
		})
		if err != nil {
			return nil, appErrors.FromError(err)
		}
		out = append(out, result.Items...)
		if len(result.Items) == 0 || len(out) >= result.Total {
			return out, nil
		}
	}
}

// Close cancels any scheduled load and discards responses that arrive later.
func (c *ListController[T]) Close() {
	c.debouncer.Close()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *ListController[T]) query(criteria FilterCriteria, page int) gateway.ListQuery {
	if c.opts.Paging == PagingClient {
		return gateway.ListQuery{}
	}
	return gateway.ListQuery{
		Search:  criteria.Search,
		Filters: criteria.Filters,
		Page:    page,
		PerPage: c.opts.PageSize,
	}
}

// fail classifies a mutation error, raises it, and drops a record the backend no longer has.
func (c *ListController[T]) fail(ctx context.Context, op string, id int64, err error) *appErrors.Error {
	appErr := appErrors.FromError(err)
	c.logger.Warn("mutation failed",
		zap.String("operation", op),
		zap.Int64("record_id", id),
		zap.String("kind", string(appErr.Kind)),
		zap.Error(err),
	)
	notifyFailure(c.opts.Notifier, appErr)
	if appErr.Kind == appErrors.KindNotFound && id != 0 {
		if reloadErr := c.Reload(ctx); reloadErr != nil {
			c.logger.Warn("reload after missing record failed", zap.Error(reloadErr))
		}
	}
	return appErr
}

func (c *ListController[T]) notify(level NotificationLevel, message string) {
	if c.opts.Notifier != nil {
		c.opts.Notifier.Notify(level, message, appErrors.ActionNone)
	}
}

func (c *ListController[T]) record(ctx context.Context, m Mutation) {
	if c.opts.Recorder == nil {
		return
	}
	m.Resource = c.opts.Resource
	c.opts.Recorder.RecordMutation(ctx, m)
}

// DiffFields returns the entries of draft whose values differ from original.
func DiffFields(original, draft map[string]any) map[string]any {
	changes := make(map[string]any)
	for key, value := range draft {
		if prev, ok := original[key]; ok && reflect.DeepEqual(prev, value) {
			continue
		}
		changes[key] = value
	}
	return changes
}
