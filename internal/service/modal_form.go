package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/timezone"
)

// ModalMode is the kind of dialog a form is open for.
type ModalMode string

const (
	ModalCreate ModalMode = "create"
	ModalEdit   ModalMode = "edit"
	ModalDelete ModalMode = "delete-confirm"
)

// localSuffix marks draft keys holding gym-local wall-clock values.
const localSuffix = "_local"

var errNoModal = appErrors.Clone(appErrors.ErrBusinessRule, "no form is open")

// ModalView is the render-ready state of a screen's dialog.
type ModalView[T models.Record] struct {
	Open       bool              `json:"open"`
	Mode       ModalMode         `json:"mode,omitempty"`
	RecordID   int64             `json:"record_id,omitempty"`
	Draft      *T                `json:"draft,omitempty"`
	Local      map[string]string `json:"local_times,omitempty"`
	Submitting bool              `json:"submitting"`
	Error      *appErrors.Error  `json:"error,omitempty"`
}

// ModalForm owns the single create/edit/delete-confirm dialog of a screen.
type ModalForm[T models.Record] struct {
	list     *ListController[T]
	validate *validator.Validate
	tz       *timezone.Converter
	defaults func() T
	logger   *zap.Logger

	mu sync.Mutex
	// dialog changes whenever a dialog is opened or closed, so a submit that
	// outlives its dialog leaves the current one alone.
	dialog     uint64
	open       bool
	mode       ModalMode
	recordID   int64
	draft      T
	submitting bool
	err        *appErrors.Error
}

// NewModalForm binds a dialog to list. defaults seeds create drafts.
func NewModalForm[T models.Record](list *ListController[T], validate *validator.Validate, tz *timezone.Converter, defaults func() T, logger *zap.Logger) *ModalForm[T] {
	if validate == nil {
		validate = NewValidator()
	}
	if tz == nil {
		tz = timezone.New("")
	}
	if defaults == nil {
		defaults = func() T {
			var zero T
			return zero
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModalForm[T]{list: list, validate: validate, tz: tz, defaults: defaults, logger: logger}
}

// Open shows the dialog. Opening replaces any dialog already open.
func (m *ModalForm[T]) Open(mode ModalMode, id int64) error {
	var draft T
	switch mode {
	case ModalCreate:
		draft, id = m.defaults(), 0
	case ModalEdit, ModalDelete:
		record, ok := m.list.Find(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, m.list.opts.Label+" not found")
		}
		if mode == ModalEdit && models.IsTerminal(record) {
			return appErrors.ErrTerminalState
		}
		draft = record
	default:
		return appErrors.WithFields(map[string]string{"mode": "must be one of: create, edit, delete-confirm"})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog++
	m.open, m.mode, m.recordID, m.draft = true, mode, id, draft
	m.submitting, m.err = false, nil
	return nil
}

// SetDraft merges a partial JSON object into the draft. Keys ending in
// "_local" carry gym-local times and are stored as instants in the field
// without the suffix.
func (m *ModalForm[T]) SetDraft(patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return errNoModal
	}
	if m.mode == ModalDelete {
		return appErrors.Clone(appErrors.ErrBusinessRule, "a delete confirmation has no editable fields")
	}

	fields := make(map[string]string)
	converted := make(map[string]any, len(patch))
	for key, value := range patch {
		if key == "id" {
			continue
		}
		if !strings.HasSuffix(key, localSuffix) {
			converted[key] = value
			continue
		}
		field := strings.TrimSuffix(key, localSuffix)
		raw, _ := value.(string)
		if raw == "" {
			converted[field] = time.Time{}
			continue
		}
		instant, err := m.tz.ToInstant(raw)
		if err != nil {
			fields[field] = "must be a date and time like 2006-01-02T15:04"
			continue
		}
		converted[field] = instant
	}
	if len(fields) > 0 {
		m.err = appErrors.WithFields(fields)
		return m.err
	}

	merged, err := mergeJSON(m.draft, converted)
	if err != nil {
		m.err = appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Kind, appErrors.ErrValidation.Status, "one or more fields have the wrong type")
		return m.err
	}
	m.draft = merged
	m.err = nil
	return nil
}

// Close discards the dialog and its draft.
func (m *ModalForm[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog++
	m.reset()
}

// Submit validates the draft and runs the matching list operation. The dialog
// closes on success, including an edit that changed nothing, and stays open
// with the error otherwise.
func (m *ModalForm[T]) Submit(ctx context.Context) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return errNoModal
	}
	if m.submitting {
		m.mu.Unlock()
		return appErrors.ErrMutationPending
	}
	dialog, mode, id, draft := m.dialog, m.mode, m.recordID, m.draft
	if mode != ModalDelete {
		if err := validationError(m.validate, draft); err != nil {
			m.err = appErrors.FromError(err)
			m.mu.Unlock()
			return err
		}
	}
	m.submitting, m.err = true, nil
	m.mu.Unlock()

	var err error
	switch mode {
	case ModalCreate:
		_, err = m.list.Create(ctx, draft)
	case ModalEdit:
		_, _, err = m.list.Update(ctx, id, draft)
	case ModalDelete:
		err = m.list.Remove(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if dialog != m.dialog {
		return err
	}
	m.submitting = false
	if err != nil {
		m.err = appErrors.FromError(err)
		m.logger.Debug("modal submit failed", zap.String("mode", string(mode)), zap.Int64("record_id", id), zap.Error(err))
		return err
	}
	m.reset()
	return nil
}

// View returns the dialog state with temporal fields rendered in gym-local time.
func (m *ModalForm[T]) View() ModalView[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return ModalView[T]{}
	}
	draft := m.draft
	view := ModalView[T]{
		Open:       true,
		Mode:       m.mode,
		RecordID:   m.recordID,
		Draft:      &draft,
		Submitting: m.submitting,
		Error:      m.err,
	}
	if temporal, ok := any(draft).(models.Temporal); ok {
		view.Local = make(map[string]string)
		for field, instant := range temporal.Instants() {
			view.Local[field+localSuffix] = m.tz.ToLocal(instant)
		}
	}
	return view
}

func (m *ModalForm[T]) reset() {
	var zero T
	m.open, m.mode, m.recordID, m.draft = false, "", 0, zero
	m.submitting, m.err = false, nil
}

// mergeJSON overlays patch onto base by JSON field name.
func mergeJSON[T any](base T, patch map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(base)
	if err != nil {
		return out, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, err
	}
	for key, value := range patch {
		fields[key] = value
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
