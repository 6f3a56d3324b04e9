package mindmap

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mindmap-backend/internal/extract"
	"mindmap-backend/internal/shared/metrics"
	"mindmap-backend/internal/shared/server/flash"
	"mindmap-backend/internal/shared/server/middleware"
	"mindmap-backend/internal/shared/server/respond"
	"mindmap-backend/internal/shared/telemetry"
)

const (
	pageTemplate = "index.html"
	formField    = "file"
)

// Handler serves the upload form and the generated mindmap page.
type Handler struct {
	Svc    *Service
	Flash  *flash.Store
	MaxMem int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, flashes *flash.Store) *Handler {
	return &Handler{Svc: svc, Flash: flashes, MaxMem: 8 << 20}
}

// RegisterRoutes attaches the page routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.form)
	r.POST("/", h.upload)
}

func (h *Handler) form(c *gin.Context) {
	respond.Page(c, http.StatusOK, pageTemplate, gin.H{
		"Messages": h.Flash.Pop(c),
	})
}

func (h *Handler) upload(c *gin.Context) {
	metrics.IncRequests()
	start := time.Now()
	defer func() {
		metrics.ObserveDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if err := c.Request.ParseMultipartForm(h.MaxMem); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			c.Set(middleware.StageKey, string(StageUpload))
			c.Set(middleware.OutcomeKey, "too_large")
			metrics.IncFailed(string(StageUpload))
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Uploaded file is too large")
			return
		}
		telemetry.Warn("upload.parse_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err,
		})
	}

	form := c.Request.MultipartForm
	if form == nil || len(form.File[formField]) == 0 {
		// A file input submitted without a selection arrives as a value part.
		if form != nil {
			if _, ok := form.Value[formField]; ok {
				h.fail(c, stageErr(StageUpload, ErrNoSelectedFile))
				return
			}
		}
		h.fail(c, stageErr(StageUpload, ErrNoFilePart))
		return
	}

	header := form.File[formField][0]
	c.Set(middleware.FileExtKey, extract.Ext(header.Filename))
	if _, err := CheckFileName(header.Filename); err != nil {
		h.fail(c, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, stageErr(StageUpload, err))
		return
	}
	defer file.Close()

	res, err := h.Svc.Generate(c.Request.Context(), Upload{FileName: header.Filename, Body: file})
	if res.UploadID != "" {
		middleware.SetUploadID(c, res.UploadID)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set(middleware.OutcomeKey, "rendered")
	metrics.IncCompleted()
	respond.Page(c, http.StatusOK, pageTemplate, gin.H{
		"FileName":    header.Filename,
		"MindmapJSON": string(res.JSON),
	})
}

// fail flashes the user-facing message for err and redirects to the form.
func (h *Handler) fail(c *gin.Context, err error) {
	stage := StageOf(err)
	c.Set(middleware.StageKey, string(stage))
	c.Set(middleware.OutcomeKey, "error")
	metrics.IncFailed(string(stage))

	telemetry.Warn("mindmap.failed", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"stage":      string(stage),
		"error":      err,
	})

	if flashErr := h.Flash.Add(c, UserMessage(err)); flashErr != nil {
		telemetry.Error("flash.add_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      flashErr,
		})
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
