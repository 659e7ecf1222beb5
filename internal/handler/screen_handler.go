package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-dashboard/internal/dto"
	"github.com/noah-isme/gym-dashboard/internal/models"
	"github.com/noah-isme/gym-dashboard/internal/service"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/export"
	"github.com/noah-isme/gym-dashboard/pkg/response"
)

type screenManager interface {
	Mount(ctx context.Context, session models.Session, resource models.Resource) (service.Screen, error)
	Get(session models.Session, id string) (service.Screen, error)
	Unmount(session models.Session, id string) error
}

type exportArchive interface {
	Publish(ctx context.Context, session models.Session, screen service.Screen, format export.Format) (*models.ExportLink, error)
	Open(token string) (*os.File, string, error)
}

// ScreenHandler exposes mounted list screens over HTTP.
type ScreenHandler struct {
	screens screenManager
	exports exportArchive
}

// NewScreenHandler constructs the handler. exports may be nil to disable stored exports.
func NewScreenHandler(screens screenManager, exports exportArchive) *ScreenHandler {
	return &ScreenHandler{screens: screens, exports: exports}
}

// Definitions godoc
// @Summary List mountable screens
// @Tags Screens
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /screens [get]
func (h *ScreenHandler) Definitions(c *gin.Context) {
	defs := service.Definitions()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Resource < defs[j].Resource })
	out := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		out = append(out, gin.H{
			"resource": def.Resource,
			"title":    def.Title,
			"paging":   def.Paging,
			"filters":  def.Filters,
		})
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Mount godoc
// @Summary Mount a list screen
// @Tags Screens
// @Accept json
// @Produce json
// @Param payload body dto.MountScreenRequest true "Screen resource"
// @Success 201 {object} response.Envelope
// @Router /screens [post]
func (h *ScreenHandler) Mount(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.MountScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource is required"))
		return
	}
	screen, err := h.screens.Mount(c.Request.Context(), session, req.Resource)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, screen.View(c.Request.Context()), withMeta(c, nil))
}

// View godoc
// @Summary Render a mounted screen
// @Tags Screens
// @Produce json
// @Param id path string true "Screen ID"
// @Success 200 {object} response.Envelope
// @Router /screens/{id} [get]
func (h *ScreenHandler) View(c *gin.Context) {
	h.withScreen(c, func(screen service.Screen) error { return nil })
}

// SetCriteria godoc
// @Summary Update search text and filters
// @Description The query runs after the debounce delay; the page resets to 1 immediately.
// @Tags Screens
// @Accept json
// @Produce json
// @Param id path string true "Screen ID"
// @Param payload body dto.CriteriaRequest true "Criteria"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/criteria [put]
func (h *ScreenHandler) SetCriteria(c *gin.Context) {
	var req dto.CriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid criteria payload"))
		return
	}
	h.withScreen(c, func(screen service.Screen) error {
		screen.SetCriteria(c.Request.Context(), service.FilterCriteria{Search: req.Search, Filters: req.Filters})
		return nil
	})
}

// SetPage godoc
// @Summary Move to another page
// @Tags Screens
// @Accept json
// @Produce json
// @Param id path string true "Screen ID"
// @Param payload body dto.PageRequest true "Page"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/page [put]
func (h *ScreenHandler) SetPage(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WithFields(map[string]string{"page": "must be at least 1"}))
		return
	}
	h.withScreen(c, func(screen service.Screen) error {
		return screen.SetPage(c.Request.Context(), req.Page)
	})
}

// Reload godoc
// @Summary Repeat the last load
// @Tags Screens
// @Produce json
// @Param id path string true "Screen ID"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/reload [post]
func (h *ScreenHandler) Reload(c *gin.Context) {
	h.withScreen(c, func(screen service.Screen) error {
		return screen.Reload(c.Request.Context())
	})
}

// OpenModal godoc
// @Summary Open the create, edit or delete-confirm dialog
// @Tags Screens
// @Accept json
// @Produce json
// @Param id path string true "Screen ID"
// @Param payload body dto.OpenModalRequest true "Dialog"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/modal [post]
func (h *ScreenHandler) OpenModal(c *gin.Context) {
	var req dto.OpenModalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WithFields(map[string]string{"mode": "must be one of: create, edit, delete-confirm"}))
		return
	}
	h.withScreen(c, func(screen service.Screen) error {
		return screen.OpenModal(service.ModalMode(req.Mode), req.RecordID)
	})
}

// SetDraft godoc
// @Summary Patch the dialog draft
// @Tags Screens
// @Accept json
// @Produce json
// @Param id path string true "Screen ID"
// @Param payload body dto.DraftRequest true "Draft fields"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/modal/draft [put]
func (h *ScreenHandler) SetDraft(c *gin.Context) {
	var req dto.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "draft is required"))
		return
	}
	h.withScreen(c, func(screen service.Screen) error {
		return screen.SetDraft(req.Draft)
	})
}

// SubmitModal godoc
// @Summary Submit the open dialog
// @Description On failure the dialog stays open and the error is returned.
// @Tags Screens
// @Produce json
// @Param id path string true "Screen ID"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/modal/submit [post]
func (h *ScreenHandler) SubmitModal(c *gin.Context) {
	h.withScreen(c, func(screen service.Screen) error {
		return screen.SubmitModal(c.Request.Context())
	})
}

// CloseModal godoc
// @Summary Close the dialog and discard its draft
// @Tags Screens
// @Produce json
// @Param id path string true "Screen ID"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/modal [delete]
func (h *ScreenHandler) CloseModal(c *gin.Context) {
	h.withScreen(c, func(screen service.Screen) error {
		screen.CloseModal()
		return nil
	})
}

// DismissNotification godoc
// @Summary Dismiss a notification before it expires
// @Tags Screens
// @Produce json
// @Param id path string true "Screen ID"
// @Param notificationId path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /screens/{id}/notifications/{notificationId} [delete]
func (h *ScreenHandler) DismissNotification(c *gin.Context) {
	h.withScreen(c, func(screen service.Screen) error {
		screen.DismissNotification(c.Param("notificationId"))
		return nil
	})
}

// Export godoc
// @Summary Download the filtered collection
// @Tags Screens
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Screen ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /screens/{id}/export [get]
func (h *ScreenHandler) Export(c *gin.Context) {
	screen, format, ok := h.exportTarget(c)
	if !ok {
		return
	}
	data, err := screen.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := string(screen.Resource()) + "." + string(format)
	response.Attachment(c, filename, format.ContentType(), data)
}

// PublishExport godoc
// @Summary Store an export and return a signed download link
// @Tags Screens
// @Produce json
// @Param id path string true "Screen ID"
// @Param format query string false "csv or pdf"
// @Success 201 {object} response.Envelope
// @Router /screens/{id}/exports [post]
func (h *ScreenHandler) PublishExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "stored exports are disabled"))
		return
	}
	screen, format, ok := h.exportTarget(c)
	if !ok {
		return
	}
	session, _ := sessionFromContext(c)
	link, err := h.exports.Publish(c.Request.Context(), session, screen, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link, withMeta(c, map[string]interface{}{
		"download_path": "/exports/" + link.Token,
	}))
}

// Download godoc
// @Summary Download a stored export by signed token
// @Tags Screens
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Router /exports/{token} [get]
func (h *ScreenHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	file, filename, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := export.FormatCSV
	if strings.HasSuffix(filename, "."+string(export.FormatPDF)) {
		format = export.FormatPDF
	}
	response.Attachment(c, filename, format.ContentType(), data)
}

// Unmount godoc
// @Summary Close a screen
// @Tags Screens
// @Param id path string true "Screen ID"
// @Success 204
// @Router /screens/{id} [delete]
func (h *ScreenHandler) Unmount(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.screens.Unmount(session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// withScreen resolves the caller's screen, applies op and responds with the
// resulting view, or with op's error.
func (h *ScreenHandler) withScreen(c *gin.Context, op func(screen service.Screen) error) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	screen, err := h.screens.Get(session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := op(screen); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, screen.View(c.Request.Context()), nil, withMeta(c, nil))
}

func (h *ScreenHandler) exportTarget(c *gin.Context) (service.Screen, export.Format, bool) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.WithFields(map[string]string{"format": "must be csv or pdf"}))
		return nil, "", false
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return nil, "", false
	}
	screen, err := h.screens.Get(session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return nil, "", false
	}
	return screen, format, true
}
