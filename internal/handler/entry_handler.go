package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/service"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
	"github.com/siwes-hub/logbook-api/pkg/response"
)

// EntryHandler wires HTTP endpoints to the entry service.
type EntryHandler struct {
	service *service.EntryService
	metrics *service.MetricsService
}

// NewEntryHandler creates a new handler.
func NewEntryHandler(svc *service.EntryService, metrics *service.MetricsService) *EntryHandler {
	return &EntryHandler{service: svc, metrics: metrics}
}

// SaveDay godoc
// @Summary Save a daily entry
// @Description Upsert the authenticated student's entry for one weekday
// @Tags Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SaveDayRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /entries [put]
func (h *EntryHandler) SaveDay(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SaveDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entry payload"))
		return
	}

	entry, err := h.service.SaveDay(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncWorkflowEvent("entry_save")
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// GetWeek godoc
// @Summary Read one week of entries
// @Tags Entries
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student id"
// @Param week path int true "Week ordinal"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/weeks/{week} [get]
func (h *EntryHandler) GetWeek(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week must be a number"))
		return
	}

	resp, err := h.service.GetWeek(c.Request.Context(), claims.UserID, claims.Role, c.Param("studentId"), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Weeks godoc
// @Summary List weeks with saved entries
// @Tags Entries
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/weeks [get]
func (h *EntryHandler) Weeks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	weeks, err := h.service.Weeks(c.Request.Context(), claims.UserID, claims.Role, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weeks, nil)
}

// Review godoc
// @Summary Review a submitted entry
// @Description Approve or reject a supervised student's submitted entry
// @Tags Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry id"
// @Param payload body dto.ReviewEntryRequest true "Review verdict"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /entries/{id}/review [post]
func (h *EntryHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReviewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	entry, err := h.service.Review(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncWorkflowEvent("entry_review")
	}
	response.JSON(c, http.StatusOK, entry, nil)
}
