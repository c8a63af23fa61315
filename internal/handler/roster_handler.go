package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/service"
	appErrors "github.com/alxtrnr/roster-api/pkg/errors"
	"github.com/alxtrnr/roster-api/pkg/response"
)

// RosterHandler wires the scheduling pipeline to HTTP routes.
type RosterHandler struct {
	roster    *service.RosterService
	export    *service.RosterExportService
	exportJob *service.ExportJobService
}

// NewRosterHandler constructs a new RosterHandler.
func NewRosterHandler(roster *service.RosterService, export *service.RosterExportService, exportJob *service.ExportJobService) *RosterHandler {
	return &RosterHandler{roster: roster, export: export, exportJob: exportJob}
}

// Solve godoc
// @Summary Run the ward scheduler for a shift
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.SolveRequest true "Solve payload"
// @Success 201 {object} response.Envelope
// @Router /roster/solve [post]
func (h *RosterHandler) Solve(c *gin.Context) {
	var req service.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve payload"))
		return
	}
	claims := claimsFromContext(c)
	run, err := h.roster.Solve(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, run)
}

// GetRun godoc
// @Summary Get a solve run by id
// @Tags Roster
// @Produce json
// @Param id path string true "Solve Run ID"
// @Success 200 {object} response.Envelope
// @Router /roster/runs/{id} [get]
func (h *RosterHandler) GetRun(c *gin.Context) {
	claims := claimsFromContext(c)
	run, err := h.roster.GetRun(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// ListRuns godoc
// @Summary List solve run history
// @Tags Roster
// @Produce json
// @Param shift query string false "Shift (D or N)"
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /roster/runs [get]
func (h *RosterHandler) ListRuns(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.SolveRunFilter{CoordinatorID: claims.UserID}
	if shift := c.Query("shift"); shift != "" {
		val := models.RosterShift(shift)
		filter.Shift = &val
	}
	if status := c.Query("status"); status != "" {
		val := models.SolveStatus(status)
		filter.Status = &val
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	runs, pagination, err := h.roster.ListRuns(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}

// ExportRun godoc
// @Summary Render a solve run's roster to a signed download link
// @Tags Roster
// @Produce json
// @Param id path string true "Solve Run ID"
// @Param format query string false "csv or pdf"
// @Param table query string false "staff or patient (csv only; pdf always renders both)"
// @Success 201 {object} response.Envelope
// @Router /roster/runs/{id}/export [post]
func (h *RosterHandler) ExportRun(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	format := service.RosterExportFormat(c.DefaultQuery("format", string(service.RosterExportCSV)))
	table := service.RosterExportTable(c.DefaultQuery("table", string(service.TableStaffMajor)))
	claims := claimsFromContext(c)
	result, err := h.export.Generate(c.Request.Context(), claims.UserID, c.Param("id"), format, table)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// DownloadExport godoc
// @Summary Download an exported roster via signed token
// @Tags Roster
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *RosterHandler) DownloadExport(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	token := c.Param("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	runID, relPath, _, err := h.export.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token"))
		return
	}
	file, err := h.export.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export metadata"))
		return
	}
	contentType := mimeForRosterExport(relPath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"roster_%s%s\"", runID, extOf(relPath)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}

// QueueExport godoc
// @Summary Queue a background roster export render
// @Tags Roster
// @Accept json
// @Produce json
// @Param id path string true "Solve Run ID"
// @Param format query string false "csv or pdf"
// @Param table query string false "staff or patient (csv only; pdf always renders both)"
// @Success 202 {object} response.Envelope
// @Router /roster/runs/{id}/export/async [post]
func (h *RosterHandler) QueueExport(c *gin.Context) {
	if h.exportJob == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export job service not configured"))
		return
	}
	format := service.RosterExportFormat(c.DefaultQuery("format", string(service.RosterExportCSV)))
	table := service.RosterExportTable(c.DefaultQuery("table", string(service.TableStaffMajor)))
	claims := claimsFromContext(c)
	job, err := h.exportJob.CreateJob(c.Request.Context(), c.Param("id"), claims.UserID, format, table)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Poll the status of a queued roster export
// @Tags Roster
// @Produce json
// @Param jobId path string true "Export Job ID"
// @Success 200 {object} response.Envelope
// @Router /roster/exports/{jobId} [get]
func (h *RosterHandler) ExportStatus(c *gin.Context) {
	if h.exportJob == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export job service not configured"))
		return
	}
	claims := claimsFromContext(c)
	job, err := h.exportJob.GetStatus(c.Request.Context(), c.Param("jobId"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func mimeForRosterExport(path string) string {
	if extOf(path) == ".pdf" {
		return "application/pdf"
	}
	return "text/csv"
}
