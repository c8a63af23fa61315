package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/service"
	appErrors "github.com/alxtrnr/roster-api/pkg/errors"
	"github.com/alxtrnr/roster-api/pkg/response"
)

// StaffHandler wires staff roster-input services to HTTP routes.
type StaffHandler struct {
	staff  *service.StaffService
	repair *service.RepairService
}

// NewStaffHandler constructs a new StaffHandler.
func NewStaffHandler(staff *service.StaffService, repair *service.RepairService) *StaffHandler {
	return &StaffHandler{staff: staff, repair: repair}
}

// List godoc
// @Summary List staff
// @Tags Staff
// @Produce json
// @Param search query string false "Search by name"
// @Param assigned query bool false "Filter by assigned status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.StaffFilter{
		CoordinatorID: claims.UserID,
		Search:        strings.TrimSpace(c.Query("search")),
		SortBy:        c.Query("sort"),
		SortOrder:     c.Query("order"),
	}
	if assigned := c.Query("assigned"); assigned != "" {
		switch strings.ToLower(assigned) {
		case "true":
			val := true
			filter.Assigned = &val
		case "false":
			val := false
			filter.Assigned = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	staff, pagination, err := h.staff.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, pagination)
}

// Get godoc
// @Summary Get staff detail
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	staff, err := h.staff.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// Create godoc
// @Summary Create staff
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body service.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	claims := claimsFromContext(c)
	staff, err := h.staff.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, staff)
}

// Update godoc
// @Summary Update staff
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param payload body service.UpdateStaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req service.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	claims := claimsFromContext(c)
	staff, err := h.staff.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// Delete godoc
// @Summary Delete staff
// @Tags Staff
// @Param id path string true "Staff ID"
// @Success 204
// @Router /staff/{id} [delete]
func (h *StaffHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.staff.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Repair godoc
// @Summary Re-derive duration and prune dangling whitelist references
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/repair [post]
func (h *StaffHandler) Repair(c *gin.Context) {
	if h.repair == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "repair service not configured"))
		return
	}
	claims := claimsFromContext(c)
	report, err := h.repair.Run(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
