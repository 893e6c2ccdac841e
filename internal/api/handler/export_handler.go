package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/service"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler file downloads.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportOverview GET /api/v1/export/overview
func (h *ExportHandler) ExportOverview(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportOverview(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, buf, filename, contentTypeXLSX)
}

// ExportCalendar GET /api/v1/lectures/:id/calendar
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, buf, filename, contentTypeICS)
}

func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLectureNotFound):
		response.NotFound(c, 20001, "lecture not found")
	case errors.Is(err, service.ErrExportNoLectures):
		response.NotFound(c, 23001, "semester has no lectures")
	case errors.Is(err, service.ErrExportNoSheets):
		response.NotFound(c, 23002, "lecture has no sheets")
	default:
		response.InternalError(c)
	}
}
